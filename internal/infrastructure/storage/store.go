// Package storage 提供以 slug 為鍵的食譜 JSON 文件儲存後端。
package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"recept/internal/pkg/common"
)

// ErrNotFound 指定的 slug 不存在
var ErrNotFound = errors.New("recipe document not found")

// ErrInvalidSlug slug 不符合 ^[a-z0-9-]+$，不會進入任何路徑或 URL
var ErrInvalidSlug = errors.New("invalid recipe slug")

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// Store 食譜文件儲存介面。文件內容是原始 JSON 文字，驗證由呼叫端負責。
type Store interface {
	Name() string
	List(ctx context.Context) ([]string, error)
	Load(ctx context.Context, slug string) (string, error)
	Save(ctx context.Context, slug, content, message string) error
	Delete(ctx context.Context, slug, message string) error
	Close() error
}

// CheckSlug 驗證 slug 可安全用於檔名與 URL
func CheckSlug(slug string) error {
	if !slugPattern.MatchString(slug) {
		return fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	}
	return nil
}

// observed 為每次儲存操作記錄耗時與錯誤
func observed(backend, op, slug string, fn func() error) error {
	start := time.Now()
	err := fn()
	logErr := err
	if errors.Is(err, ErrNotFound) {
		logErr = nil
	}
	common.LogStoreCall(backend, op, slug, time.Since(start), logErr)
	return err
}
