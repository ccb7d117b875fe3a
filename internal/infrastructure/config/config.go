package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 儲存後端名稱
const (
	BackendFilesystem = "filesystem"
	BackendGitHub     = "github"
	BackendSQLite     = "sqlite"
)

// 快取後端名稱
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config 應用配置
type Config struct {
	App         AppConfig        `mapstructure:"app"`
	Server      ServerConfig     `mapstructure:"server"`
	Storage     StorageConfig    `mapstructure:"storage"`
	GitHub      GitHubConfig     `mapstructure:"github"`
	Auth        AuthConfig       `mapstructure:"auth"`
	Cache       CacheConfig      `mapstructure:"cache"`
	OpenRouter  OpenRouterConfig `mapstructure:"openrouter"`
	Import      ImportConfig     `mapstructure:"import"`
	Catalogue   CatalogueConfig  `mapstructure:"catalogue"`
	RateLimit   RateLimitConfig  `mapstructure:"rate_limit"`
	DedupWindow time.Duration    `mapstructure:"dedup_window"`
	LogLevel    string           `mapstructure:"log_level"`
	LogDir      string           `mapstructure:"log_dir"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
	AllowOrigins   []string      `mapstructure:"allow_origins"`
	// TrustedProxies 可信任的反向代理（IP 或 CIDR）；為空時忽略 X-Forwarded-For
	TrustedProxies []string      `mapstructure:"trusted_proxies"`
}

// StorageConfig 食譜文件儲存設定
type StorageConfig struct {
	Backend       string `mapstructure:"backend"`
	DataDir       string `mapstructure:"data_dir"`
	SQLitePath    string `mapstructure:"sqlite_path"`
	LocalFallback bool   `mapstructure:"local_fallback"`
}

// GitHubConfig GitHub contents API 設定
type GitHubConfig struct {
	Owner   string        `mapstructure:"owner"`
	Repo    string        `mapstructure:"repo"`
	Branch  string        `mapstructure:"branch"`
	Token   string        `mapstructure:"token"`
	Path    string        `mapstructure:"path"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// AuthConfig 編輯權限設定，Codes 格式為 "login:code,login2:code2"
type AuthConfig struct {
	Codes string `mapstructure:"codes"`
	Realm string `mapstructure:"realm"`
}

// CacheConfig 緩存配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Backend         string        `mapstructure:"backend"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
}

// OpenRouterConfig OpenRouter 配置
type OpenRouterConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	APIKey    string        `mapstructure:"api_key"`
	Model     string        `mapstructure:"model"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
	BaseURL   string        `mapstructure:"base_url"`
}

// ImportConfig WordPress 匯入與頁面抓取設定
type ImportConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
	UserAgent    string        `mapstructure:"user_agent"`
	DefaultImage string        `mapstructure:"default_image"`
}

// CatalogueConfig 食譜目錄設定
type CatalogueConfig struct {
	FallbackImage string `mapstructure:"fallback_image"`
	LoadWorkers   int    `mapstructure:"load_workers"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoadConfig 從目前目錄的 .env 與環境變數載入設定
func LoadConfig() (*Config, error) {
	return Load(".env")
}

// Load 載入設定；envFile 不存在時只使用環境變數與預設值
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定常用環境變數
	bindings := map[string]string{
		"storage.backend":        "STORAGE_BACKEND",
		"storage.data_dir":       "RECIPES_DIR",
		"storage.sqlite_path":    "SQLITE_PATH",
		"github.owner":           "GITHUB_OWNER",
		"github.repo":            "GITHUB_REPO",
		"github.branch":          "GITHUB_BRANCH",
		"github.token":           "GITHUB_TOKEN",
		"github.path":            "GITHUB_RECIPES_PATH",
		"auth.codes":             "AUTH_CODES",
		"cache.enabled":          "CACHE_ENABLED",
		"cache.backend":          "CACHE_BACKEND",
		"cache.redis_addr":       "REDIS_ADDR",
		"cache.redis_password":   "REDIS_PASSWORD",
		"openrouter.enabled":     "OPENROUTER_ENABLED",
		"openrouter.api_key":     "OPENROUTER_API_KEY",
		"openrouter.model":       "OPENROUTER_MODEL",
		"openrouter.max_tokens":  "MODEL_MAX_TOKENS",
		"server.port":            "PORT",
		"server.trusted_proxies": "TRUSTED_PROXIES",
		"rate_limit.enabled":     "RATE_LIMIT_ENABLED",
		"rate_limit.requests":    "RATE_LIMIT_REQUESTS",
		"rate_limit.window":      "RATE_LIMIT_WINDOW",
		"dedup_window":           "DEDUP_WINDOW",
		"log_level":              "LOG_LEVEL",
		"log_dir":                "LOG_DIR",
		"catalogue.load_workers": "LOAD_WORKERS",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// OpenRouter 有金鑰時自動啟用
	if config.OpenRouter.APIKey != "" && !v.IsSet("openrouter.enabled") {
		config.OpenRouter.Enabled = true
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// MaskSecret 遮罩金鑰，只顯示前後各 4 個字符
func MaskSecret(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "recept")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("server.max_body_bytes", 2*1024*1024)
	v.SetDefault("server.allow_origins", []string{"*"})

	// 儲存設定
	v.SetDefault("storage.backend", BackendFilesystem)
	v.SetDefault("storage.data_dir", "data/recipes")
	v.SetDefault("storage.sqlite_path", "data/recipes.db")
	v.SetDefault("storage.local_fallback", true)

	// GitHub 設定
	v.SetDefault("github.branch", "main")
	v.SetDefault("github.path", "data/recipes")
	v.SetDefault("github.base_url", "https://api.github.com")
	v.SetDefault("github.timeout", "15s")

	v.SetDefault("auth.realm", "Recept")

	// 快取設定
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.backend", CacheMemory)
	v.SetDefault("cache.max_size", 1000)
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("cache.cleanup_interval", "1m")
	v.SetDefault("cache.redis_addr", "localhost:6379")

	// OpenRouter 設定
	v.SetDefault("openrouter.model", "openai/gpt-4o-mini")
	v.SetDefault("openrouter.max_tokens", 2000)
	v.SetDefault("openrouter.timeout", "60s")
	v.SetDefault("openrouter.base_url", "https://openrouter.ai/api/v1")

	// 匯入設定
	v.SetDefault("import.timeout", "15s")
	v.SetDefault("import.max_body_bytes", 5*1024*1024)
	v.SetDefault("import.user_agent", "ReceptImporter/1.0")
	v.SetDefault("import.default_image", "/images/recipes/new-recipe.jpg")

	v.SetDefault("catalogue.fallback_image", "/images/recipes/new-recipe.jpg")
	v.SetDefault("catalogue.load_workers", 8)

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("dedup_window", "1s")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_dir", "logs")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 {
		return fmt.Errorf("server port is required")
	}

	switch config.Storage.Backend {
	case BackendFilesystem:
		if config.Storage.DataDir == "" {
			return fmt.Errorf("storage data dir is required")
		}
	case BackendSQLite:
		if config.Storage.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required")
		}
	case BackendGitHub:
		if config.GitHub.Owner == "" || config.GitHub.Repo == "" {
			return fmt.Errorf("GITHUB_OWNER and GITHUB_REPO are required for the github backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", config.Storage.Backend)
	}

	if config.Cache.Enabled {
		switch config.Cache.Backend {
		case CacheMemory:
			if config.Cache.MaxSize <= 0 {
				return fmt.Errorf("invalid cache max size")
			}
			if config.Cache.CleanupInterval <= 0 {
				return fmt.Errorf("invalid cache cleanup interval")
			}
		case CacheRedis:
			if config.Cache.RedisAddr == "" {
				return fmt.Errorf("REDIS_ADDR is required for the redis cache")
			}
		default:
			return fmt.Errorf("unknown cache backend %q", config.Cache.Backend)
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
	}

	if config.OpenRouter.Enabled && config.OpenRouter.APIKey == "" {
		return fmt.Errorf("OPENROUTER_API_KEY is required when openrouter is enabled")
	}

	if config.Catalogue.LoadWorkers <= 0 {
		return fmt.Errorf("invalid catalogue load workers")
	}

	return nil
}
