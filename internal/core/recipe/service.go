package recipe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"recept/internal/core/cache"
	"recept/internal/infrastructure/storage"
	"recept/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ServiceOptions 食譜目錄服務設定
type ServiceOptions struct {
	FallbackImage string
	Workers       int
	Now           func() time.Time
}

// Service 食譜目錄：讀取、驗證、儲存與衍生查詢。
// 快取只存放文件原文，每次讀取都重新驗證。
type Service struct {
	store         storage.Store
	cache         cache.Cache
	fallbackImage string
	workers       int
	now           func() time.Time
}

// NewService 創建新的食譜服務
func NewService(store storage.Store, c cache.Cache, opts ServiceOptions) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	if opts.Workers <= 0 {
		opts.Workers = 8
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.FallbackImage == "" {
		opts.FallbackImage = DefaultImage
	}
	return &Service{
		store:         store,
		cache:         c,
		fallbackImage: opts.FallbackImage,
		workers:       opts.Workers,
		now:           opts.Now,
	}
}

// StoreName 目前使用的儲存後端
func (s *Service) StoreName() string {
	return s.store.Name()
}

// Validate 只驗證，不儲存
func (s *Service) Validate(text string) Result {
	return ParseRecipe(text)
}

// List 載入全部食譜。無法讀取或驗證失敗的文件會被略過並記錄。
func (s *Service) List(ctx context.Context) ([]*Recipe, error) {
	slugs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}

	results := make([]*Recipe, len(slugs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, slug := range slugs {
		i, slug := i, slug
		g.Go(func() error {
			r, err := s.Get(gctx, slug)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				common.LogWarn("略過無法載入的食譜", zap.String("slug", slug), zap.Error(err))
				return nil
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]*Recipe, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out, nil
}

// Get 讀取並驗證單一食譜
func (s *Service) Get(ctx context.Context, slug string) (*Recipe, error) {
	text, err := s.loadText(ctx, slug)
	if err != nil {
		return nil, err
	}
	res := ParseRecipe(text)
	if !res.OK() {
		return nil, common.NewValidationError(res.Errors...)
	}
	return res.Recipe, nil
}

// Save 驗證並儲存文件。
// createdAt 依序取新文件、既有文件、現在時間；updatedAt 一律為現在時間。
func (s *Service) Save(ctx context.Context, text, message string) (*Recipe, error) {
	res := ParseRecipe(text)
	if !res.OK() {
		return nil, common.NewValidationError(res.Errors...)
	}
	r := res.Recipe

	now := FormatTimestamp(s.now())
	if r.CreatedAt == "" {
		r.CreatedAt = s.existingCreatedAt(ctx, r.Slug)
	}
	if r.CreatedAt == "" {
		r.CreatedAt = now
	}
	r.UpdatedAt = now

	out, err := ToJSON(r)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(message) == "" {
		message = "Update recipe " + r.Slug
	}
	if err := s.store.Save(ctx, r.Slug, out, message); err != nil {
		return nil, fmt.Errorf("save %s: %w", r.Slug, err)
	}

	if err := s.cache.Set(ctx, cacheKey(r.Slug), out); err != nil {
		common.LogWarn("快取寫入失敗", zap.String("slug", r.Slug), zap.Error(err))
	}
	common.LogInfo("食譜已儲存", zap.String("slug", r.Slug), zap.String("backend", s.store.Name()))
	return r, nil
}

// Delete 刪除食譜
func (s *Service) Delete(ctx context.Context, slug, message string) error {
	if strings.TrimSpace(message) == "" {
		message = "Delete recipe " + slug
	}
	if err := s.store.Delete(ctx, slug, message); err != nil {
		return s.storeError(slug, err)
	}
	if err := s.cache.Delete(ctx, cacheKey(slug)); err != nil {
		common.LogWarn("快取刪除失敗", zap.String("slug", slug), zap.Error(err))
	}
	common.LogInfo("食譜已刪除", zap.String("slug", slug))
	return nil
}

// Search 依條件篩選
func (s *Service) Search(ctx context.Context, q Query) ([]*Recipe, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(all, q), nil
}

// Categories 所有分類
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return BuildCategories(all, s.fallbackImage), nil
}

// Category 單一分類與其食譜
func (s *Service) Category(ctx context.Context, slug string) (Category, []*Recipe, error) {
	all, err := s.List(ctx)
	if err != nil {
		return Category{}, nil, err
	}
	for _, c := range BuildCategories(all, s.fallbackImage) {
		if c.Slug == slug {
			return c, Filter(all, Query{Category: slug}), nil
		}
	}
	return Category{}, nil, common.NewError(common.ErrCodeNotFound, "Category not found", http.StatusNotFound,
		fmt.Errorf("category %q not found", slug))
}

// Tags 標籤索引
func (s *Service) Tags(ctx context.Context) ([]TagCount, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return CollectTags(all), nil
}

func (s *Service) loadText(ctx context.Context, slug string) (string, error) {
	key := cacheKey(slug)
	if text, err := s.cache.Get(ctx, key); err == nil {
		return text, nil
	} else if !cache.IsMiss(err) {
		common.LogWarn("快取讀取失敗", zap.String("slug", slug), zap.Error(err))
	}

	text, err := s.store.Load(ctx, slug)
	if err != nil {
		return "", s.storeError(slug, err)
	}
	if err := s.cache.Set(ctx, key, text); err != nil {
		common.LogDebug("快取寫入失敗", zap.String("slug", slug), zap.Error(err))
	}
	return text, nil
}

func (s *Service) existingCreatedAt(ctx context.Context, slug string) string {
	existing, err := s.Get(ctx, slug)
	if err != nil {
		return ""
	}
	return existing.CreatedAt
}

// storeError 將儲存層錯誤轉為 API 錯誤碼
func (s *Service) storeError(slug string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return common.ErrNotFound.Wrap(err)
	case errors.Is(err, storage.ErrInvalidSlug):
		return common.ErrInvalidRequest.Wrap(err)
	}
	return fmt.Errorf("load %s: %w", slug, err)
}

func cacheKey(slug string) string {
	return "recipe:" + slug
}
