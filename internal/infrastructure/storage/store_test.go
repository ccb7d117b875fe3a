package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `{
  "title": "Tomatsoppa"
}`

// exerciseStore 所有後端共用的行為測試
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	slugs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, slugs)

	_, err = store.Load(ctx, "tomatsoppa")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(ctx, "tomatsoppa", sampleDoc, "Add tomatsoppa"))
	require.NoError(t, store.Save(ctx, "anka", `{"title":"Anka"}`, ""))

	got, err := store.Load(ctx, "tomatsoppa")
	require.NoError(t, err)
	assert.Equal(t, sampleDoc, got)

	require.NoError(t, store.Save(ctx, "tomatsoppa", `{"title":"Ny"}`, "Update"))
	got, err = store.Load(ctx, "tomatsoppa")
	require.NoError(t, err)
	assert.Equal(t, `{"title":"Ny"}`, got)

	slugs, err = store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"anka", "tomatsoppa"}, slugs)

	require.NoError(t, store.Delete(ctx, "anka", "Remove"))
	assert.ErrorIs(t, store.Delete(ctx, "anka", "Remove"), ErrNotFound)

	slugs, err = store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"tomatsoppa"}, slugs)
}

func TestCheckSlug(t *testing.T) {
	for _, slug := range []string{"tomatsoppa", "kyckling-2", "a"} {
		assert.NoError(t, CheckSlug(slug), slug)
	}
	for _, slug := range []string{"", "../etc/passwd", "Tomat", "a b", "a/b", "åsa"} {
		assert.ErrorIs(t, CheckSlug(slug), ErrInvalidSlug, slug)
	}
}

func TestFilesystemStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "recipes")
	store, err := NewFilesystemStore(dir)
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)

	t.Run("rejects unsafe slugs", func(t *testing.T) {
		err := store.Save(context.Background(), "../escape", "{}", "")
		assert.ErrorIs(t, err, ErrInvalidSlug)
		_, err = store.Load(context.Background(), "../escape")
		assert.ErrorIs(t, err, ErrInvalidSlug)
	})

	t.Run("ignores non-recipe files", func(t *testing.T) {
		require.NoError(t, store.Save(context.Background(), "ok", "{}", ""))
		slugs, err := store.List(context.Background())
		require.NoError(t, err)
		assert.NotContains(t, slugs, ".recipes")
		assert.Contains(t, slugs, "ok")
	})
}

func TestSQLiteStore(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "db", "recipes.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Ping(context.Background()))
	exerciseStore(t, store)
}
