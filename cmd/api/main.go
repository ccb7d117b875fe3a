package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recept/internal/api"
	"recept/internal/core/ai"
	"recept/internal/core/auth"
	"recept/internal/core/cache"
	"recept/internal/core/importer"
	"recept/internal/core/recipe"
	"recept/internal/infrastructure/config"
	"recept/internal/infrastructure/storage"
	"recept/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel, cfg.LogDir); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("storage_backend", cfg.Storage.Backend),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.Bool("openrouter_enabled", cfg.OpenRouter.Enabled),
		zap.String("openrouter_model", cfg.OpenRouter.Model),
	)

	if err := run(cfg); err != nil {
		common.LogError("Server stopped with error", zap.Error(err))
		common.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	store, err := storage.Open(cfg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	snapshots, err := cache.New(cfg)
	if err != nil {
		return fmt.Errorf("init cache: %w", err)
	}
	defer snapshots.Close()

	provider, err := ai.NewProvider(cfg.OpenRouter)
	if err != nil {
		return fmt.Errorf("init ai provider: %w", err)
	}
	converter := ai.NewConverter(provider, snapshots)
	defer converter.Close()

	editors := auth.ParseCodes(cfg.Auth.Codes)
	if !editors.Enabled() {
		common.LogWarn("AUTH_CODES 未設定，編輯功能停用")
	}

	router := api.SetupRouter(cfg, api.Dependencies{
		Store: store,
		Cache: snapshots,
		Recipes: recipe.NewService(store, snapshots, recipe.ServiceOptions{
			FallbackImage: cfg.Catalogue.FallbackImage,
			Workers:       cfg.Catalogue.LoadWorkers,
		}),
		Importer:  importer.New(importer.DefaultLayout(), cfg.Import.DefaultImage),
		Fetcher:   importer.NewFetcher(cfg.Import),
		Converter: converter,
		Editors:   editors,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Int("port", cfg.Server.Port),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}

	common.LogInfo("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	common.LogInfo("Server exited")
	return nil
}
