// Package cache 快取已載入的食譜文件原文，降低儲存後端的呼叫次數。
package cache

import (
	"context"
	"errors"

	"recept/internal/infrastructure/config"
	"recept/internal/pkg/common"
)

// Cache 字串鍵值快取
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// IsMiss 是否為未命中（包含快取停用）
func IsMiss(err error) bool {
	return errors.Is(err, common.ErrCacheMiss) || errors.Is(err, common.ErrCacheDisabled)
}

// New 依設定建立快取；停用時回傳 Noop
func New(cfg *config.Config) (Cache, error) {
	if !cfg.Cache.Enabled {
		return Noop{}, nil
	}
	if cfg.Cache.Backend == config.CacheRedis {
		return NewRedisCache(&cfg.Cache)
	}
	return NewManager(&cfg.Cache), nil
}

// Noop 停用時使用的空快取
type Noop struct{}

// Get 永遠未命中
func (Noop) Get(context.Context, string) (string, error) { return "", common.ErrCacheDisabled }

// Set 不做任何事
func (Noop) Set(context.Context, string, string) error { return nil }

// Delete 不做任何事
func (Noop) Delete(context.Context, string) error { return nil }

// Close 不做任何事
func (Noop) Close() error { return nil }
