package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

const (
	documentExt   = ".json"
	lockFileName  = ".recipes.lock"
	lockRetryWait = 50 * time.Millisecond
)

// FilesystemStore 將每份食譜存成 <dir>/<slug>.json
type FilesystemStore struct {
	dir  string
	mu   sync.Mutex
	lock *flock.Flock
}

// NewFilesystemStore 建立檔案系統儲存，目錄不存在時自動建立
func NewFilesystemStore(dir string) (*FilesystemStore, error) {
	if dir == "" {
		return nil, errors.New("filesystem store requires a directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create recipes dir: %w", err)
	}
	return &FilesystemStore{
		dir:  dir,
		lock: flock.New(filepath.Join(dir, lockFileName)),
	}, nil
}

// Name 後端名稱
func (s *FilesystemStore) Name() string { return "filesystem" }

// Dir 文件所在目錄
func (s *FilesystemStore) Dir() string { return s.dir }

// List 列出所有 slug，依字母排序
func (s *FilesystemStore) List(ctx context.Context) ([]string, error) {
	var slugs []string
	err := observed(s.Name(), "list", "", func() error {
		entries, err := os.ReadDir(s.dir)
		if err != nil {
			return fmt.Errorf("read recipes dir: %w", err)
		}
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || !strings.HasSuffix(name, documentExt) {
				continue
			}
			slug := strings.TrimSuffix(name, documentExt)
			if CheckSlug(slug) != nil {
				continue
			}
			slugs = append(slugs, slug)
		}
		return nil
	})
	sort.Strings(slugs)
	return slugs, err
}

// Load 讀取單一文件
func (s *FilesystemStore) Load(ctx context.Context, slug string) (string, error) {
	if err := CheckSlug(slug); err != nil {
		return "", err
	}
	var content string
	err := observed(s.Name(), "load", slug, func() error {
		data, err := os.ReadFile(s.path(slug))
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, slug)
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", slug, err)
		}
		content = string(data)
		return nil
	})
	return content, err
}

// Save 以暫存檔加改名的方式原子寫入；寫入期間持有跨行程鎖
func (s *FilesystemStore) Save(ctx context.Context, slug, content, _ string) error {
	if err := CheckSlug(slug); err != nil {
		return err
	}
	return observed(s.Name(), "save", slug, func() error {
		return s.withLock(ctx, func() error {
			tmp, err := os.CreateTemp(s.dir, "."+slug+"-*.tmp")
			if err != nil {
				return fmt.Errorf("create temp file: %w", err)
			}
			tmpName := tmp.Name()
			defer os.Remove(tmpName)

			if _, err := tmp.WriteString(content); err != nil {
				_ = tmp.Close()
				return fmt.Errorf("write %s: %w", slug, err)
			}
			if err := tmp.Sync(); err != nil {
				_ = tmp.Close()
				return fmt.Errorf("sync %s: %w", slug, err)
			}
			if err := tmp.Close(); err != nil {
				return fmt.Errorf("close %s: %w", slug, err)
			}
			if err := os.Chmod(tmpName, 0o644); err != nil {
				return fmt.Errorf("chmod %s: %w", slug, err)
			}
			if err := os.Rename(tmpName, s.path(slug)); err != nil {
				return fmt.Errorf("rename %s: %w", slug, err)
			}
			return nil
		})
	})
}

// Delete 刪除文件
func (s *FilesystemStore) Delete(ctx context.Context, slug, _ string) error {
	if err := CheckSlug(slug); err != nil {
		return err
	}
	return observed(s.Name(), "delete", slug, func() error {
		return s.withLock(ctx, func() error {
			err := os.Remove(s.path(slug))
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("%w: %s", ErrNotFound, slug)
			}
			return err
		})
	})
}

// Close 釋放鎖檔
func (s *FilesystemStore) Close() error {
	if s.lock.Locked() {
		return s.lock.Unlock()
	}
	return nil
}

func (s *FilesystemStore) path(slug string) string {
	return filepath.Join(s.dir, slug+documentExt)
}

// withLock 行程內以 mutex 序列化，跨行程以 flock 序列化
func (s *FilesystemStore) withLock(ctx context.Context, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.lock.TryLockContext(ctx, lockRetryWait)
	if err != nil {
		return fmt.Errorf("acquire recipes lock: %w", err)
	}
	if !ok {
		return errors.New("recipes directory is locked by another process")
	}
	defer func() {
		_ = s.lock.Unlock()
	}()
	return fn()
}
