package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"recept/internal/pkg/common"

	"github.com/go-resty/resty/v2"
)

// GitHubOptions GitHub contents API 儲存設定
type GitHubOptions struct {
	Owner   string
	Repo    string
	Branch  string
	Token   string
	Path    string
	BaseURL string
	Timeout time.Duration
}

// GitHubStore 透過 GitHub contents API 讀寫 <path>/<slug>.json，每次寫入都是一次 commit
type GitHubStore struct {
	opts   GitHubOptions
	client *resty.Client
}

type contentEntry struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	SHA      string `json:"sha"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

type githubError struct {
	Message string `json:"message"`
}

// NewGitHubStore 建立 GitHub 儲存
func NewGitHubStore(opts GitHubOptions) (*GitHubStore, error) {
	if opts.Owner == "" || opts.Repo == "" {
		return nil, errors.New("github store requires owner and repo")
	}
	if opts.Branch == "" {
		opts.Branch = "main"
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.github.com"
	}
	opts.Path = strings.Trim(opts.Path, "/")
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/vnd.github+json").
		SetHeader("X-GitHub-Api-Version", "2022-11-28").
		SetHeader("User-Agent", "recept")
	if opts.Token != "" {
		client.SetAuthToken(opts.Token)
	}

	return &GitHubStore{opts: opts, client: client}, nil
}

// Name 後端名稱
func (s *GitHubStore) Name() string { return "github" }

// List 列出目錄中的 .json 文件
func (s *GitHubStore) List(ctx context.Context) ([]string, error) {
	var slugs []string
	err := observed(s.Name(), "list", "", func() error {
		var entries []contentEntry
		resp, err := s.client.R().
			SetContext(ctx).
			SetQueryParam("ref", s.opts.Branch).
			SetResult(&entries).
			Get(s.contentsURL(""))
		if err != nil {
			return fmt.Errorf("list recipes from github: %w", err)
		}
		if resp.StatusCode() == http.StatusNotFound {
			return nil
		}
		if resp.IsError() {
			return s.apiError("list recipes", resp)
		}
		for _, e := range entries {
			if e.Type != "" && e.Type != "file" {
				continue
			}
			if !strings.HasSuffix(e.Name, documentExt) {
				continue
			}
			slug := strings.TrimSuffix(e.Name, documentExt)
			if CheckSlug(slug) == nil {
				slugs = append(slugs, slug)
			}
		}
		return nil
	})
	sort.Strings(slugs)
	return slugs, err
}

// Load 讀取單一文件
func (s *GitHubStore) Load(ctx context.Context, slug string) (string, error) {
	if err := CheckSlug(slug); err != nil {
		return "", err
	}
	var content string
	err := observed(s.Name(), "load", slug, func() error {
		entry, err := s.fetch(ctx, slug)
		if err != nil {
			return err
		}
		content, err = decodeContent(entry)
		return err
	})
	return content, err
}

// Save 以 PUT 建立或更新文件；既有文件需要帶上 sha
func (s *GitHubStore) Save(ctx context.Context, slug, content, message string) error {
	if err := CheckSlug(slug); err != nil {
		return err
	}
	if s.opts.Token == "" {
		return errors.New("GITHUB_TOKEN is required to commit")
	}
	return observed(s.Name(), "save", slug, func() error {
		body := map[string]string{
			"message": commitMessage(message, "Update recipe "+slug),
			"content": base64.StdEncoding.EncodeToString([]byte(content)),
			"branch":  s.opts.Branch,
		}
		existing, err := s.fetch(ctx, slug)
		switch {
		case err == nil:
			body["sha"] = existing.SHA
		case !errors.Is(err, ErrNotFound):
			return err
		}

		resp, err := s.client.R().
			SetContext(ctx).
			SetBody(body).
			Put(s.contentsURL(slug + documentExt))
		if err != nil {
			return fmt.Errorf("commit %s: %w", slug, err)
		}
		if resp.IsError() {
			return s.apiError("commit "+slug, resp)
		}
		return nil
	})
}

// Delete 刪除文件（需要目前的 sha）
func (s *GitHubStore) Delete(ctx context.Context, slug, message string) error {
	if err := CheckSlug(slug); err != nil {
		return err
	}
	if s.opts.Token == "" {
		return errors.New("GITHUB_TOKEN is required to commit")
	}
	return observed(s.Name(), "delete", slug, func() error {
		existing, err := s.fetch(ctx, slug)
		if err != nil {
			return err
		}
		resp, err := s.client.R().
			SetContext(ctx).
			SetBody(map[string]string{
				"message": commitMessage(message, "Delete recipe "+slug),
				"sha":     existing.SHA,
				"branch":  s.opts.Branch,
			}).
			Delete(s.contentsURL(slug + documentExt))
		if err != nil {
			return fmt.Errorf("delete %s: %w", slug, err)
		}
		if resp.IsError() {
			return s.apiError("delete "+slug, resp)
		}
		return nil
	})
}

// Close 無需釋放資源
func (s *GitHubStore) Close() error { return nil }

func (s *GitHubStore) fetch(ctx context.Context, slug string) (*contentEntry, error) {
	var entry contentEntry
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("ref", s.opts.Branch).
		SetResult(&entry).
		Get(s.contentsURL(slug + documentExt))
	if err != nil {
		return nil, fmt.Errorf("fetch %s from github: %w", slug, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, slug)
	}
	if resp.IsError() {
		return nil, s.apiError("fetch "+slug, resp)
	}
	return &entry, nil
}

func (s *GitHubStore) contentsURL(name string) string {
	p := s.opts.Path
	if name != "" {
		if p != "" {
			p += "/"
		}
		p += name
	}
	return fmt.Sprintf("/repos/%s/%s/contents/%s", s.opts.Owner, s.opts.Repo, p)
}

func (s *GitHubStore) apiError(op string, resp *resty.Response) error {
	msg := strings.TrimSpace(resp.String())
	var ge githubError
	if jsonErr := common.ParseJSONBytes(resp.Body(), &ge); jsonErr == nil && ge.Message != "" {
		msg = ge.Message
	}
	return fmt.Errorf("github %s failed: %d %s", op, resp.StatusCode(), msg)
}

func decodeContent(entry *contentEntry) (string, error) {
	if entry.Encoding != "" && entry.Encoding != "base64" {
		return "", fmt.Errorf("unsupported github content encoding %q", entry.Encoding)
	}
	// GitHub 以每 60 字元換行的 base64 回傳
	raw := strings.NewReplacer("\n", "", "\r", "").Replace(entry.Content)
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", fmt.Errorf("decode github content: %w", err)
	}
	return string(data), nil
}

func commitMessage(message, fallback string) string {
	if m := strings.TrimSpace(message); m != "" {
		return m
	}
	return fallback
}
