package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the collaboard.yaml layout. Durations are strings
// ("90s", "1h") parsed during resolution; unset sections fall back to the
// Default* constructors.
type fileConfig struct {
	Server   *serverYAML   `yaml:"server"`
	Database *databaseYAML `yaml:"database"`
	Cache    *cacheYAML    `yaml:"cache"`
	Session  *sessionYAML  `yaml:"session"`
	LLM      *llmYAML      `yaml:"llm"`
	Export   *exportYAML   `yaml:"export"`
	Auth     *authYAML     `yaml:"auth"`
}

type serverYAML struct {
	Host             string   `yaml:"host"`
	Port             int      `yaml:"port"`
	BaseURL          string   `yaml:"base_url"`
	AllowedWSOrigins []string `yaml:"allowed_ws_origins"`
	WriteTimeout     string   `yaml:"write_timeout"`
	SendBuffer       int      `yaml:"send_buffer"`
}

type databaseYAML struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	Database        string `yaml:"database"`
	SSLMode         string `yaml:"ssl_mode"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime string `yaml:"conn_max_idle_time"`
}

type cacheYAML struct {
	Backend string     `yaml:"backend"`
	Redis   *redisYAML `yaml:"redis"`
	LockTTL string     `yaml:"lock_ttl"`
}

type redisYAML struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type sessionYAML struct {
	TTL           string `yaml:"ttl"`
	PurgeInterval string `yaml:"purge_interval"`
	JoinTimeout   string `yaml:"join_timeout"`
}

type llmYAML struct {
	Provider    string   `yaml:"provider"`
	Model       string   `yaml:"model"`
	MaxTokens   int      `yaml:"max_tokens"`
	Temperature *float64 `yaml:"temperature"`
	Timeout     string   `yaml:"timeout"`
}

type exportYAML struct {
	Dir             string `yaml:"dir"`
	Retention       string `yaml:"retention"`
	CleanupInterval string `yaml:"cleanup_interval"`
	FontDir         string `yaml:"font_dir"`
}

type authYAML struct {
	SessionTTL string `yaml:"session_ttl"`
	BcryptCost int    `yaml:"bcrypt_cost"`
}

// Initialize loads, resolves, and validates configuration from path. A
// missing file is not an error: every setting has a default, and secrets
// arrive via {{.ENV_VAR}} expansion or the environment anyway.
func Initialize(_ context.Context, path string) (*Config, error) {
	log := slog.With("config_file", path)
	log.Info("Initializing configuration")

	fc, err := loadFile(path)
	if err != nil {
		return nil, NewLoadError(path, err)
	}

	cfg := &Config{
		Server:   resolveServer(fc.Server),
		Database: resolveDatabase(fc.Database),
		Cache:    resolveCache(fc.Cache),
		Session:  resolveSession(fc.Session),
		LLM:      resolveLLM(fc.LLM),
		Export:   resolveExport(fc.Export),
		Auth:     resolveAuth(fc.Auth),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	log.Info("Configuration initialized successfully",
		"port", cfg.Server.Port,
		"cache_backend", cfg.Cache.Backend,
		"llm_provider", cfg.LLM.Provider,
		"export_dir", cfg.Export.Dir)

	return cfg, nil
}

func loadFile(path string) (*fileConfig, error) {
	var fc fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("Config file not found, using defaults", "path", path)
			return &fc, nil
		}
		return nil, err
	}

	data = ExpandEnv(data)

	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	return &fc, nil
}

// parseDuration parses a user-supplied duration, keeping fallback (and
// warning) when the value is absent or malformed.
func parseDuration(field, value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("Invalid duration in config, using default",
			"field", field, "value", value, "default", fallback, "error", err)
		return fallback
	}
	return d
}

func resolveServer(y *serverYAML) *ServerConfig {
	cfg := DefaultServerConfig()
	if y == nil {
		return cfg
	}
	overlay := &ServerConfig{
		Host:             y.Host,
		Port:             y.Port,
		BaseURL:          y.BaseURL,
		AllowedWSOrigins: y.AllowedWSOrigins,
		SendBuffer:       y.SendBuffer,
	}
	if err := mergo.Merge(cfg, overlay, mergo.WithOverride); err != nil {
		slog.Warn("Failed to merge server config, using defaults", "error", err)
	}
	cfg.WriteTimeout = parseDuration("server.write_timeout", y.WriteTimeout, cfg.WriteTimeout)
	return cfg
}

func resolveDatabase(y *databaseYAML) *DatabaseConfig {
	cfg := DefaultDatabaseConfig()
	if y == nil {
		return cfg
	}
	overlay := &DatabaseConfig{
		Host:         y.Host,
		Port:         y.Port,
		User:         y.User,
		Password:     y.Password,
		Database:     y.Database,
		SSLMode:      y.SSLMode,
		MaxOpenConns: y.MaxOpenConns,
		MaxIdleConns: y.MaxIdleConns,
	}
	if err := mergo.Merge(cfg, overlay, mergo.WithOverride); err != nil {
		slog.Warn("Failed to merge database config, using defaults", "error", err)
	}
	cfg.ConnMaxLifetime = parseDuration("database.conn_max_lifetime", y.ConnMaxLifetime, cfg.ConnMaxLifetime)
	cfg.ConnMaxIdleTime = parseDuration("database.conn_max_idle_time", y.ConnMaxIdleTime, cfg.ConnMaxIdleTime)
	return cfg
}

func resolveCache(y *cacheYAML) *CacheConfig {
	cfg := DefaultCacheConfig()
	if y == nil {
		return cfg
	}
	if y.Backend != "" {
		cfg.Backend = y.Backend
	}
	if y.Redis != nil {
		cfg.Redis = &RedisConfig{
			Addr:     y.Redis.Addr,
			Password: y.Redis.Password,
			DB:       y.Redis.DB,
		}
	}
	cfg.LockTTL = parseDuration("cache.lock_ttl", y.LockTTL, cfg.LockTTL)
	return cfg
}

func resolveSession(y *sessionYAML) *SessionConfig {
	cfg := DefaultSessionConfig()
	if y == nil {
		return cfg
	}
	cfg.TTL = parseDuration("session.ttl", y.TTL, cfg.TTL)
	cfg.PurgeInterval = parseDuration("session.purge_interval", y.PurgeInterval, cfg.PurgeInterval)
	cfg.JoinTimeout = parseDuration("session.join_timeout", y.JoinTimeout, cfg.JoinTimeout)
	return cfg
}

func resolveLLM(y *llmYAML) *LLMConfig {
	cfg := DefaultLLMConfig()
	if y == nil {
		return cfg
	}
	if y.Provider != "" {
		cfg.Provider = y.Provider
	}
	if y.Model != "" {
		cfg.Model = y.Model
	}
	if y.MaxTokens > 0 {
		cfg.MaxTokens = y.MaxTokens
	}
	if y.Temperature != nil {
		cfg.Temperature = *y.Temperature
	}
	cfg.Timeout = parseDuration("llm.timeout", y.Timeout, cfg.Timeout)
	return cfg
}

func resolveExport(y *exportYAML) *ExportConfig {
	cfg := DefaultExportConfig()
	if y == nil {
		return cfg
	}
	if y.Dir != "" {
		cfg.Dir = y.Dir
	}
	if y.FontDir != "" {
		cfg.FontDir = y.FontDir
	}
	cfg.Retention = parseDuration("export.retention", y.Retention, cfg.Retention)
	cfg.CleanupInterval = parseDuration("export.cleanup_interval", y.CleanupInterval, cfg.CleanupInterval)
	return cfg
}

func resolveAuth(y *authYAML) *AuthConfig {
	cfg := DefaultAuthConfig()
	if y == nil {
		return cfg
	}
	if y.BcryptCost > 0 {
		cfg.BcryptCost = y.BcryptCost
	}
	cfg.SessionTTL = parseDuration("auth.session_ttl", y.SessionTTL, cfg.SessionTTL)
	return cfg
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d", ErrInvalidValue, c.Server.Port)
	}
	if c.Server.SendBuffer < 1 {
		return fmt.Errorf("%w: server.send_buffer must be at least 1", ErrInvalidValue)
	}
	switch c.Cache.Backend {
	case "memory":
	case "redis":
		if c.Cache.Redis == nil || c.Cache.Redis.Addr == "" {
			return fmt.Errorf("%w: cache.backend is redis but cache.redis.addr is unset", ErrInvalidValue)
		}
	default:
		return fmt.Errorf("%w: cache.backend %q (want memory or redis)", ErrInvalidValue, c.Cache.Backend)
	}
	if c.Database.Database == "" || c.Database.User == "" {
		return fmt.Errorf("%w: database.user and database.database are required", ErrInvalidValue)
	}
	if c.LLM.Provider != "anthropic" {
		return fmt.Errorf("%w: llm.provider %q (only anthropic is supported)", ErrInvalidValue, c.LLM.Provider)
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("%w: llm.model is required", ErrInvalidValue)
	}
	if c.Export.Dir == "" {
		return fmt.Errorf("%w: export.dir is required", ErrInvalidValue)
	}
	return nil
}
