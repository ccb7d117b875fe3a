// Package api 組裝 gin 路由、中間件與處理器。
package api

import (
	"context"
	"net/http"
	"time"

	"recept/internal/api/handlers"
	"recept/internal/api/handlers/health"
	importHandler "recept/internal/api/handlers/importer"
	recipeHandler "recept/internal/api/handlers/recipe"
	"recept/internal/api/middleware"
	"recept/internal/core/ai"
	"recept/internal/core/auth"
	"recept/internal/core/cache"
	"recept/internal/core/importer"
	"recept/internal/core/recipe"
	"recept/internal/infrastructure/config"
	"recept/internal/infrastructure/storage"
	"recept/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies 路由需要的服務
type Dependencies struct {
	Store     storage.Store
	Cache     cache.Cache
	Recipes   *recipe.Service
	Importer  *importer.Importer
	Fetcher   *importer.Fetcher
	Converter *ai.Converter
	Editors   *auth.CodeList
}

// pinger 可檢查連線的依賴（SQLite、Redis）
type pinger interface {
	Ping(ctx context.Context) error
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	if deps.Editors == nil {
		deps.Editors = auth.ParseCodes("")
	}
	if deps.Converter == nil {
		deps.Converter = ai.NewConverter(nil, deps.Cache)
	}

	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		common.LogWarn("無效的 trusted proxies 設定，改用連線位址", zap.Strings("proxies", cfg.Server.TrustedProxies), zap.Error(err))
		_ = router.SetTrustedProxies(nil)
	}

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(common.GenerateUUID)))
	router.Use(middleware.Logger())

	allowOrigins := cfg.Server.AllowOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"*"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:  allowOrigins,
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	if cfg.RateLimit.Enabled && cfg.RateLimit.Requests > 0 && cfg.RateLimit.Window > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		router.Use(middleware.RateLimit(limiter, cfg.RateLimit.Window))
	}
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// 設置配置
	router.Use(func(c *gin.Context) {
		c.Set("config", cfg)
		c.Next()
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck(readinessChecks(deps)))
	router.GET("/live", health.LivenessCheck)

	recipes := recipeHandler.NewHandler(deps.Recipes)
	imports := importHandler.NewHandler(deps.Importer, deps.Fetcher)
	convert := handlers.NewAIHandler(deps.Converter)

	editor := middleware.RequireEditor(deps.Editors, cfg.Auth.Realm)
	dedup := middleware.Deduplication(middleware.NewDeduplicator(cfg.DedupWindow))

	// API 路由組
	api := router.Group("/api/v1")
	{
		api.GET("/recipes", recipes.List)
		api.GET("/recipes/:slug", recipes.Get)
		api.POST("/recipes/validate", recipes.Validate)
		api.POST("/recipes", editor, dedup, recipes.Save)
		api.DELETE("/recipes/:slug", editor, recipes.Delete)

		api.GET("/categories", recipes.Categories)
		api.GET("/categories/:slug", recipes.Category)
		api.GET("/tags", recipes.Tags)

		api.GET("/template", recipes.Template)
		api.GET("/prompt", recipes.Prompt)

		importGroup := api.Group("/import")
		{
			importGroup.POST("/fetch", editor, imports.Fetch)
			importGroup.POST("/wordpress", editor, dedup, imports.WordPress)
			importGroup.POST("/html", imports.HTML)
		}

		api.POST("/convert", editor, dedup, convert.Convert)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, common.MessageResponse{Error: "Not found", Code: common.ErrCodeNotFound})
	})

	common.LogInfo("Router setup completed successfully",
		zap.String("storage", deps.Store.Name()),
		zap.Bool("editing_enabled", deps.Editors.Enabled()),
		zap.Bool("ai_enabled", deps.Converter.Enabled()),
		zap.Duration("timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router
}

func readinessChecks(deps Dependencies) map[string]health.Check {
	checks := map[string]health.Check{
		"storage": func(ctx context.Context) error {
			if p, ok := deps.Store.(pinger); ok {
				return p.Ping(ctx)
			}
			_, err := deps.Store.List(ctx)
			return err
		},
	}
	if p, ok := deps.Cache.(pinger); ok {
		checks["cache"] = p.Ping
	}
	return checks
}
