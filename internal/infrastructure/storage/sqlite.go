package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

const recipesSchema = `CREATE TABLE IF NOT EXISTS recipes (
	slug       TEXT PRIMARY KEY,
	document   TEXT NOT NULL,
	message    TEXT NOT NULL DEFAULT '',
	updated_at TEXT NOT NULL
)`

// SQLiteStore 以單一資料表保存食譜文件
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite 開啟或建立資料庫
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite store requires a path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(recipesSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create recipes table: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// Name 後端名稱
func (s *SQLiteStore) Name() string { return "sqlite" }

// List 列出所有 slug
func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
	var slugs []string
	err := observed(s.Name(), "list", "", func() error {
		rows, err := s.db.QueryContext(ctx, "SELECT slug FROM recipes ORDER BY slug")
		if err != nil {
			return fmt.Errorf("list recipes: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var slug string
			if err := rows.Scan(&slug); err != nil {
				return fmt.Errorf("scan slug: %w", err)
			}
			slugs = append(slugs, slug)
		}
		return rows.Err()
	})
	return slugs, err
}

// Load 讀取單一文件
func (s *SQLiteStore) Load(ctx context.Context, slug string) (string, error) {
	if err := CheckSlug(slug); err != nil {
		return "", err
	}
	var content string
	err := observed(s.Name(), "load", slug, func() error {
		err := s.db.QueryRowContext(ctx, "SELECT document FROM recipes WHERE slug = ?", slug).Scan(&content)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrNotFound, slug)
		}
		if err != nil {
			return fmt.Errorf("load %s: %w", slug, err)
		}
		return nil
	})
	return content, err
}

// Save 新增或覆寫文件
func (s *SQLiteStore) Save(ctx context.Context, slug, content, message string) error {
	if err := CheckSlug(slug); err != nil {
		return err
	}
	return observed(s.Name(), "save", slug, func() error {
		now := time.Now().UTC().Format(time.RFC3339Nano)
		return retryOnBusy(ctx, func() error {
			_, err := s.db.ExecContext(ctx, `INSERT INTO recipes (slug, document, message, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(slug) DO UPDATE SET document = excluded.document, message = excluded.message, updated_at = excluded.updated_at`,
				slug, content, message, now)
			return err
		})
	})
}

// Delete 刪除文件
func (s *SQLiteStore) Delete(ctx context.Context, slug, _ string) error {
	if err := CheckSlug(slug); err != nil {
		return err
	}
	return observed(s.Name(), "delete", slug, func() error {
		var affected int64
		err := retryOnBusy(ctx, func() error {
			res, err := s.db.ExecContext(ctx, "DELETE FROM recipes WHERE slug = ?", slug)
			if err != nil {
				return err
			}
			affected, err = res.RowsAffected()
			return err
		})
		if err != nil {
			return fmt.Errorf("delete %s: %w", slug, err)
		}
		if affected == 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, slug)
		}
		return nil
	})
}

// Ping 檢查資料庫連線
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close 關閉資料庫
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
