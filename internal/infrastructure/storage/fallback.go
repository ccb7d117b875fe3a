package storage

import (
	"context"
	"errors"

	"recept/internal/pkg/common"

	"go.uber.org/zap"
)

// FallbackStore 讀取時主要後端失敗就改讀本機副本；寫入只走主要後端
type FallbackStore struct {
	primary  Store
	fallback Store
}

// WithFallback 包裝主要後端與唯讀備援
func WithFallback(primary, fallback Store) *FallbackStore {
	return &FallbackStore{primary: primary, fallback: fallback}
}

// Name 後端名稱
func (s *FallbackStore) Name() string {
	return s.primary.Name() + "+" + s.fallback.Name()
}

// List 主要後端失敗時列出本機文件
func (s *FallbackStore) List(ctx context.Context) ([]string, error) {
	slugs, err := s.primary.List(ctx)
	if err == nil {
		return slugs, nil
	}
	common.LogWarn("Falling back to local recipes", zap.String("backend", s.primary.Name()), zap.Error(err))
	return s.fallback.List(ctx)
}

// Load 主要後端失敗（非 not found）時讀本機文件
func (s *FallbackStore) Load(ctx context.Context, slug string) (string, error) {
	content, err := s.primary.Load(ctx, slug)
	if err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidSlug) {
		return content, err
	}
	common.LogWarn("Remote fetch failed, using local", zap.String("slug", slug), zap.Error(err))
	return s.fallback.Load(ctx, slug)
}

// Save 只寫入主要後端
func (s *FallbackStore) Save(ctx context.Context, slug, content, message string) error {
	return s.primary.Save(ctx, slug, content, message)
}

// Delete 只刪除主要後端
func (s *FallbackStore) Delete(ctx context.Context, slug, message string) error {
	return s.primary.Delete(ctx, slug, message)
}

// Close 關閉兩個後端
func (s *FallbackStore) Close() error {
	return errors.Join(s.primary.Close(), s.fallback.Close())
}
