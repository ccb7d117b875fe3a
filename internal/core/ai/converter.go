package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"recept/internal/core/cache"
	"recept/internal/core/recipe"
	"recept/internal/pkg/common"

	"go.uber.org/zap"
)

// ErrEmptyText 沒有可轉換的文字
var ErrEmptyText = errors.New("recipe text is empty")

// Conversion 轉換結果。Errors 非空時 Recipe 為 nil，Raw 保留模型原始輸出供人工修正。
type Conversion struct {
	Recipe *recipe.Recipe `json:"recipe,omitempty"`
	JSON   string         `json:"json,omitempty"`
	Raw    string         `json:"raw"`
	Errors []string       `json:"errors,omitempty"`
	Model  string         `json:"model"`
	Cached bool           `json:"cached"`
}

// Converter 將自由文字食譜交給 LLM 轉為 JSON，再經過正規化驗證
type Converter struct {
	provider Provider
	cache    cache.Cache
}

// NewConverter 創建轉換器；provider 為 nil 表示停用
func NewConverter(provider Provider, c cache.Cache) *Converter {
	if c == nil {
		c = cache.Noop{}
	}
	return &Converter{provider: provider, cache: c}
}

// Enabled 是否有可用的提供者
func (c *Converter) Enabled() bool {
	return c.provider != nil
}

// Convert 轉換文字。模型輸出不合格不算錯誤，會放在 Conversion.Errors。
func (c *Converter) Convert(ctx context.Context, text string) (*Conversion, error) {
	if c.provider == nil {
		return nil, ErrProviderDisabled
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	prompt := recipe.BuildPrompt(text)
	key := "convert:" + hashString(c.provider.GetModel()+"\x00"+prompt)

	raw, err := c.cache.Get(ctx, key)
	cached := err == nil
	if !cached {
		resp, err := c.provider.Generate(ctx, &Request{
			Messages: []Message{{Role: "user", Content: prompt}},
		})
		if err != nil {
			common.LogError("AI 轉換失敗", zap.String("model", c.provider.GetModel()), zap.Error(err))
			return nil, common.ErrAIServiceError.Wrap(err)
		}
		raw = resp.Content
	}

	conv := &Conversion{Raw: raw, Model: c.provider.GetModel(), Cached: cached}
	res := recipe.ParseRecipe(common.ExtractJSONObject(raw))
	if !res.OK() {
		conv.Errors = res.Errors
		return conv, nil
	}

	out, err := recipe.ToJSON(res.Recipe)
	if err != nil {
		return nil, fmt.Errorf("encode converted recipe: %w", err)
	}
	conv.Recipe = res.Recipe
	conv.JSON = out

	if !cached {
		if err := c.cache.Set(ctx, key, raw); err != nil {
			common.LogDebug("快取寫入失敗", zap.Error(err))
		}
	}
	return conv, nil
}

// Close 關閉提供者
func (c *Converter) Close() error {
	if c.provider == nil {
		return nil
	}
	return c.provider.Close()
}

// hashString 計算字符串的 SHA-256 哈希值
func hashString(s string) string {
	hash := sha256.Sum256([]byte(s))
	return hex.EncodeToString(hash[:])
}
