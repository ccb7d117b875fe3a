package recipe

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"recept/internal/core/cache"
	"recept/internal/infrastructure/config"
	"recept/internal/infrastructure/storage"
	"recept/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type serviceFixture struct {
	svc   *Service
	dir   string
	clock time.Time
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFilesystemStore(dir)
	require.NoError(t, err)
	mgr := cache.NewManager(&config.CacheConfig{Enabled: true, MaxSize: 50, TTL: time.Minute})
	t.Cleanup(func() {
		_ = mgr.Close()
		_ = store.Close()
	})

	f := &serviceFixture{dir: dir, clock: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	f.svc = NewService(store, mgr, ServiceOptions{
		FallbackImage: "/images/fallback.jpg",
		Workers:       2,
		Now:           func() time.Time { return f.clock },
	})
	return f
}

func docWithout(key string) string {
	lines := strings.Split(validDoc, "\n")
	out := lines[:0]
	for _, l := range lines {
		if strings.Contains(l, `"`+key+`"`) {
			continue
		}
		out = append(out, l)
	}
	return strings.Join(out, "\n")
}

func TestServiceSaveAndGet(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	saved, err := f.svc.Save(ctx, validDoc, "")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-05T12:00:00.000Z", saved.CreatedAt)
	assert.Equal(t, "2024-03-01T09:00:00.000Z", saved.UpdatedAt)

	raw, err := os.ReadFile(filepath.Join(f.dir, "tomatsoppa.json"))
	require.NoError(t, err)
	res := ParseRecipe(string(raw))
	require.True(t, res.OK(), res.Errors)
	assert.Equal(t, saved, res.Recipe)

	got, err := f.svc.Get(ctx, "tomatsoppa")
	require.NoError(t, err)
	assert.Equal(t, saved, got)
	assert.Equal(t, "filesystem", f.svc.StoreName())
}

func TestServiceSavePreservesCreatedAt(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	doc := strings.Replace(validDoc, `,
  "createdAt": "2024-01-05T12:00:00.000Z"`, "", 1)
	require.NotContains(t, doc, "createdAt")

	first, err := f.svc.Save(ctx, doc, "Add tomatsoppa")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01T09:00:00.000Z", first.CreatedAt)

	f.clock = f.clock.Add(48 * time.Hour)
	second, err := f.svc.Save(ctx, doc, "")
	require.NoError(t, err)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, "2024-03-03T09:00:00.000Z", second.UpdatedAt)
}

func TestServiceSaveRejectsInvalid(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.svc.Save(context.Background(), docWithout("servings"), "")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, common.StatusOf(err))
	assert.Contains(t, common.ValidationMessages(err), "servings: Required")

	entries, err := os.ReadDir(f.dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".json"), e.Name())
	}
}

func TestServiceListSkipsBrokenDocuments(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.Save(ctx, validDoc, "")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "trasig.json"), []byte(`{"title":`), 0o644))

	all, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "tomatsoppa", all[0].Slug)

	_, err = f.svc.Get(ctx, "trasig")
	assert.True(t, common.IsValidationError(err))
}

func TestServiceCatalogueQueries(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.Save(ctx, validDoc, "")
	require.NoError(t, err)
	second := strings.NewReplacer(
		`"title": "Tomatsoppa"`, `"title": "Ölbröd"`,
		`"slug": "tomatsoppa"`, `"slug": "olbrod"`,
		`"categoryType": "Soppa"`, `"categoryType": "Bröd"`,
		`"categories": ["Soppa", "Snabbt"]`, `"categories": []`,
		`"imageUrl": "/images/recipes/tomatsoppa.jpg",`, ``,
	).Replace(validDoc)
	_, err = f.svc.Save(ctx, second, "")
	require.NoError(t, err)

	cats, err := f.svc.Categories(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Bröd", "Snabbt", "Soppa", "Tomat", "Vardag"}, names)
	assert.Equal(t, "/images/fallback.jpg", cats[0].Image)

	cat, recipes, err := f.svc.Category(ctx, "vardag")
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Count)
	assert.Len(t, recipes, 2)

	_, _, err = f.svc.Category(ctx, "finns-inte")
	assert.Equal(t, http.StatusNotFound, common.StatusOf(err))

	found, err := f.svc.Search(ctx, Query{Text: "ölbröd"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "olbrod", found[0].Slug)

	tags, err := f.svc.Tags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []TagCount{{Tag: "soppa", Count: 2}, {Tag: "vegetariskt", Count: 2}}, tags)
}

func TestServiceDelete(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.Save(ctx, validDoc, "")
	require.NoError(t, err)
	_, err = f.svc.Get(ctx, "tomatsoppa")
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, "tomatsoppa", ""))
	_, err = f.svc.Get(ctx, "tomatsoppa")
	assert.Equal(t, http.StatusNotFound, common.StatusOf(err))

	err = f.svc.Delete(ctx, "tomatsoppa", "")
	assert.Equal(t, http.StatusNotFound, common.StatusOf(err))
	_, err = f.svc.Get(ctx, "Inte-Giltig")
	assert.Equal(t, http.StatusBadRequest, common.StatusOf(err))
}

type failingDeleteCache struct {
	cache.Noop
}

func (failingDeleteCache) Delete(context.Context, string) error {
	return errors.New("redis: connection refused")
}

func TestServiceDeleteLogsCacheFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	prev := common.Logger
	common.Logger = zap.New(core)
	t.Cleanup(func() { common.Logger = prev })

	store, err := storage.NewFilesystemStore(t.TempDir())
	require.NoError(t, err)
	svc := NewService(store, failingDeleteCache{}, ServiceOptions{})
	ctx := context.Background()

	_, err = svc.Save(ctx, validDoc, "")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, "tomatsoppa", ""), "a cache failure does not fail the delete")

	entries := logs.FilterMessage("快取刪除失敗").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "tomatsoppa", entries[0].ContextMap()["slug"])
}
