package landscaping

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"gopkg.in/yaml.v3"

	"github.com/Jt-schofield1/landscaping-website/storage"
)

// SiteConfig holds all configuration for the site.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site name (default "Adjacent Property Management")
	URL         string `yaml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `yaml:"description"` // Site description for RSS and meta tags

	Addr         string `yaml:"addr"`          // Listen address (default ":3000")
	DatabasePath string `yaml:"database_path"` // SQLite path (default "data/blog.db")
	LogLevel     string `yaml:"log_level"`     // debug, info, warn or error (default "info")

	MediaDir    string `yaml:"media_dir"`    // Root directory of object buckets (default "data/media")
	MediaURL    string `yaml:"media_url"`    // Public base URL of buckets (default URL + "/media")
	ImageBucket string `yaml:"image_bucket"` // Bucket for uploaded images (default "blog-images")

	AdminPassword string `yaml:"admin_password"` // Required: shared admin secret
	SessionSecret string `yaml:"session_secret"` // Required: session cookie encryption secret
	CookieSecure  bool   `yaml:"cookie_secure"`  // Set true for HTTPS

	PostCacheTTL time.Duration `yaml:"post_cache_ttl"` // Public post cache TTL (default 60s, negative disables)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Adjacent Property Management"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimRight(c.URL, "/")
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/blog.db"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.MediaDir == "" {
		c.MediaDir = "data/media"
	}
	if c.MediaURL == "" {
		c.MediaURL = c.URL + mediaPrefix
	}
	if c.ImageBucket == "" {
		c.ImageBucket = "blog-images"
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 60 * time.Second
	}
}

// Validate checks the configuration after defaults are applied.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.URL, validation.Required, is.URL),
		validation.Field(&c.MediaURL, validation.Required, is.URL),
		validation.Field(&c.AdminPassword, validation.Required),
		validation.Field(&c.SessionSecret, validation.Required, validation.Length(16, 0)),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
	)
}

// LoadConfig reads a YAML config file, expanding ${VAR} references from the
// environment, and applies defaults.
func LoadConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file %s: %w", path, err)
	}
	cfg.setDefaults()
	return cfg, nil
}

// ConfigFromEnv builds a SiteConfig from environment variables.
func ConfigFromEnv() SiteConfig {
	cfg := SiteConfig{
		Name:          EnvOr("SITE_NAME", ""),
		URL:           EnvOr("SITE_URL", ""),
		Description:   EnvOr("SITE_DESCRIPTION", ""),
		Addr:          EnvOr("ADDR", ""),
		DatabasePath:  EnvOr("DATABASE_PATH", ""),
		LogLevel:      EnvOr("LOG_LEVEL", ""),
		MediaDir:      EnvOr("MEDIA_DIR", ""),
		MediaURL:      EnvOr("MEDIA_URL", ""),
		ImageBucket:   EnvOr("IMAGE_BUCKET", ""),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
	}
	cfg.CookieSecure, _ = strconv.ParseBool(EnvOr("COOKIE_SECURE", "false"))
	if ttl, err := time.ParseDuration(EnvOr("POST_CACHE_TTL", "")); err == nil {
		cfg.PostCacheTTL = ttl
	}
	cfg.setDefaults()
	return cfg
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithBucket replaces the file-system image bucket.
func WithBucket(b storage.Bucket) Option {
	return func(a *App) {
		a.Bucket = b
	}
}

// WithClock overrides the time source used for timestamps and upload keys.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}
