package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"recept/internal/infrastructure/config"
	"recept/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// OpenRouter 透過 OpenRouter chat completions API 的提供者
type OpenRouter struct {
	cfg    config.OpenRouterConfig
	client *resty.Client
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewOpenRouter 創建 OpenRouter 提供者
func NewOpenRouter(cfg config.OpenRouterConfig) (*OpenRouter, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openrouter api key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetAuthToken(cfg.APIKey).
		SetHeader("X-Title", "Recept")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	return &OpenRouter{cfg: cfg, client: client}, nil
}

// Generate 生成回應
func (o *OpenRouter) Generate(ctx context.Context, req *Request) (*Response, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = o.cfg.MaxTokens
	}

	var result chatResponse
	resp, err := o.client.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model:       o.cfg.Model,
			Messages:    req.Messages,
			MaxTokens:   maxTokens,
			Temperature: req.Temperature,
		}).
		SetResult(&result).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}

	if resp.IsError() {
		msg := resp.String()
		var ae apiError
		if common.ParseJSONBytes(resp.Body(), &ae) == nil && ae.Error.Message != "" {
			msg = ae.Error.Message
		}
		return nil, fmt.Errorf("OpenRouter API returned %d: %s", resp.StatusCode(), msg)
	}

	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("no choices in OpenRouter response")
	}

	common.LogDebug("OpenRouter 回應",
		zap.String("model", o.cfg.Model),
		zap.Int("total_tokens", result.Usage.TotalTokens),
	)
	return &Response{Content: result.Choices[0].Message.Content, Usage: result.Usage}, nil
}

// GetModel 獲取模型名稱
func (o *OpenRouter) GetModel() string {
	return o.cfg.Model
}

// Close 無需釋放資源
func (o *OpenRouter) Close() error {
	return nil
}

// NewProvider 依設定建立提供者；停用時回傳 nil
func NewProvider(cfg config.OpenRouterConfig) (Provider, error) {
	if !cfg.Enabled {
		common.LogInfo("AI 轉換未啟用")
		return nil, nil
	}
	p, err := NewOpenRouter(cfg)
	if err != nil {
		return nil, err
	}
	common.LogInfo("AI 轉換已啟用", zap.String("model", cfg.Model), zap.String("key", config.MaskSecret(cfg.APIKey)))
	return p, nil
}
