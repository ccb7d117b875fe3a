package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"recept/internal/infrastructure/config"
	"recept/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// 抓取頁面時的錯誤
var (
	ErrMissingURL       = errors.New("Saknar url-parameter.")
	ErrInvalidURL       = errors.New("Ogiltig URL. Kontrollera att du angivit hela adressen.")
	ErrSchemeNotAllowed = errors.New("Endast http eller https är tillåtet.")
	ErrPageTooLarge     = errors.New("Sidan är för stor för att importeras.")
)

// StatusError 來源網站回傳非 2xx
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Kunde inte hämta sidan (%d).", e.Status)
}

// Fetcher 抓取 WordPress 頁面 HTML，只允許 http 與 https
type Fetcher struct {
	client  *resty.Client
	maxBody int64
}

// NewFetcher 建立抓取器
func NewFetcher(cfg config.ImportConfig) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "ReceptImporter/1.0"
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 5 << 20
	}

	client := resty.New().
		SetTimeout(timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10)).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml")

	return &Fetcher{client: client, maxBody: maxBody}
}

// NormalizeURL 補上缺少的 https:// 並檢查 scheme
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrMissingURL
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", ErrInvalidURL
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return "", ErrSchemeNotAllowed
	}
	return u.String(), nil
}

// Fetch 抓取頁面 HTML，回應大小受 MaxBodyBytes 限制
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	target, err := NormalizeURL(rawURL)
	if err != nil {
		return "", err
	}

	start := time.Now()
	resp, err := f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(target)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", target, err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() || resp.StatusCode() >= 300 {
		common.LogWarn("抓取頁面失敗", zap.String("url", target), zap.Int("status", resp.StatusCode()))
		return "", &StatusError{Status: resp.StatusCode()}
	}

	data, err := io.ReadAll(io.LimitReader(body, f.maxBody+1))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", target, err)
	}
	if int64(len(data)) > f.maxBody {
		return "", ErrPageTooLarge
	}

	common.LogInfo("已抓取頁面",
		zap.String("url", target),
		zap.Int("bytes", len(data)),
		zap.Duration("耗時", time.Since(start)),
	)
	return string(data), nil
}
