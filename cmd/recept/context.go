package main

import (
	"strings"
	"sync"

	"recept/internal/core/cache"
	"recept/internal/core/recipe"
	"recept/internal/infrastructure/config"
	"recept/internal/infrastructure/storage"
)

type commandContext struct {
	envFlag *string
	dirFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(envFlag, dirFlag *string) *commandContext {
	return &commandContext{envFlag: envFlag, dirFlag: dirFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.envFlag != nil {
			path = strings.TrimSpace(*c.envFlag)
		}
		c.config, c.configErr = config.Load(path)
	})
	return c.config, c.configErr
}

// openStore --dir 優先，否則使用設定的後端
func (c *commandContext) openStore() (storage.Store, error) {
	if c.dirFlag != nil && strings.TrimSpace(*c.dirFlag) != "" {
		return storage.NewFilesystemStore(strings.TrimSpace(*c.dirFlag))
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return storage.Open(cfg)
}

// withService 開啟儲存後端並建立不帶快取的目錄服務
func (c *commandContext) withService(fn func(*recipe.Service, storage.Store) error) error {
	store, err := c.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	opts := recipe.ServiceOptions{}
	if cfg, err := c.ensureConfig(); err == nil {
		opts.FallbackImage = cfg.Catalogue.FallbackImage
		opts.Workers = cfg.Catalogue.LoadWorkers
	}
	return fn(recipe.NewService(store, cache.Noop{}, opts), store)
}
