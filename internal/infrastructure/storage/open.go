package storage

import (
	"fmt"

	"recept/internal/infrastructure/config"
	"recept/internal/pkg/common"

	"go.uber.org/zap"
)

// Open 依設定建立儲存後端
func Open(cfg *config.Config) (Store, error) {
	var (
		store Store
		err   error
	)
	switch cfg.Storage.Backend {
	case config.BackendFilesystem:
		store, err = NewFilesystemStore(cfg.Storage.DataDir)
	case config.BackendSQLite:
		store, err = OpenSQLite(cfg.Storage.SQLitePath)
	case config.BackendGitHub:
		store, err = NewGitHubStore(GitHubOptions{
			Owner:   cfg.GitHub.Owner,
			Repo:    cfg.GitHub.Repo,
			Branch:  cfg.GitHub.Branch,
			Token:   cfg.GitHub.Token,
			Path:    cfg.GitHub.Path,
			BaseURL: cfg.GitHub.BaseURL,
			Timeout: cfg.GitHub.Timeout,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Storage.Backend == config.BackendGitHub && cfg.Storage.LocalFallback {
		local, err := NewFilesystemStore(cfg.Storage.DataDir)
		if err != nil {
			return nil, err
		}
		store = WithFallback(store, local)
	}

	common.LogInfo("儲存後端已初始化", zap.String("backend", store.Name()))
	return store, nil
}
