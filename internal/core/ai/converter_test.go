package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"recept/internal/core/cache"
	"recept/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const convertedRecipe = "```json\n" + `{
  "title": "Pannkakor",
  "slug": "pannkakor",
  "description": "Tunna pannkakor.",
  "tags": ["frukost"],
  "prepTimeMinutes": 5,
  "cookTimeMinutes": 20,
  "servings": 4,
  "ingredients": [{ "label": "mjöl", "amount": "2 dl" }],
  "steps": [{ "body": "Vispa och stek." }]
}` + "\n```"

type fakeProvider struct {
	content string
	err     error
	calls   int
	prompts []string
}

func (f *fakeProvider) Generate(_ context.Context, req *Request) (*Response, error) {
	f.calls++
	f.prompts = append(f.prompts, req.Messages[0].Content)
	if f.err != nil {
		return nil, f.err
	}
	return &Response{Content: f.content}, nil
}

func (f *fakeProvider) GetModel() string { return "fake/model" }
func (f *fakeProvider) Close() error     { return nil }

func newTestCache() cache.Cache {
	return cache.NewManager(&config.CacheConfig{MaxSize: 10, TTL: time.Minute})
}

func TestConvertDisabled(t *testing.T) {
	_, err := NewConverter(nil, nil).Convert(context.Background(), "text")
	assert.ErrorIs(t, err, ErrProviderDisabled)
}

func TestConvertEmptyText(t *testing.T) {
	_, err := NewConverter(&fakeProvider{}, nil).Convert(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestConvertParsesFencedJSON(t *testing.T) {
	provider := &fakeProvider{content: convertedRecipe}
	conv := NewConverter(provider, newTestCache())

	got, err := conv.Convert(context.Background(), "Pannkakor: 2 dl mjöl ...")
	require.NoError(t, err)
	require.NotNil(t, got.Recipe)
	assert.Empty(t, got.Errors)
	assert.Equal(t, "pannkakor", got.Recipe.Slug)
	assert.Contains(t, got.JSON, `"title": "Pannkakor"`)
	assert.False(t, got.Cached)
	require.Len(t, provider.prompts, 1)
	assert.True(t, strings.HasSuffix(provider.prompts[0], "Pannkakor: 2 dl mjöl ..."))

	again, err := conv.Convert(context.Background(), "Pannkakor: 2 dl mjöl ...")
	require.NoError(t, err)
	assert.True(t, again.Cached)
	assert.Equal(t, 1, provider.calls)
}

func TestConvertReportsInvalidOutput(t *testing.T) {
	provider := &fakeProvider{content: `{"title": "Utan steg"}`}
	got, err := NewConverter(provider, nil).Convert(context.Background(), "text")
	require.NoError(t, err)
	assert.Nil(t, got.Recipe)
	assert.NotEmpty(t, got.Errors)
	assert.Equal(t, `{"title": "Utan steg"}`, got.Raw)
}

func TestConvertProviderError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("boom")}
	_, err := NewConverter(provider, nil).Convert(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestOpenRouterGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test-key", r.Header.Get("Authorization"))

		var body chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test/model", body.Model)
		assert.Equal(t, 500, body.MaxTokens)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{}"}}],"usage":{"total_tokens":12}}`))
	}))
	defer server.Close()

	p, err := NewOpenRouter(config.OpenRouterConfig{
		APIKey: "sk-test-key", Model: "test/model", MaxTokens: 500, BaseURL: server.URL,
	})
	require.NoError(t, err)

	resp, err := p.Generate(context.Background(), &Request{Messages: []Message{{Role: "user", Content: "hej"}}})
	require.NoError(t, err)
	assert.Equal(t, "{}", resp.Content)
	assert.Equal(t, 12, resp.Usage.TotalTokens)
}

func TestOpenRouterError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	p, err := NewOpenRouter(config.OpenRouterConfig{APIKey: "k", Model: "m", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), &Request{Messages: []Message{{Role: "user", Content: "x"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}
