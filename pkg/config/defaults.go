package config

import "time"

// DefaultServerConfig returns the built-in server defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		BaseURL:      "http://localhost:8080",
		WriteTimeout: 10 * time.Second,
		SendBuffer:   32,
	}
}

// DefaultDatabaseConfig returns the built-in database defaults.
func DefaultDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		Host:            "localhost",
		Port:            5432,
		User:            "collaboard",
		Password:        "collaboard",
		Database:        "collaboard",
		SSLMode:         "disable",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 10 * time.Minute,
	}
}

// DefaultCacheConfig returns the built-in cache defaults (in-process).
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Backend: "memory",
		LockTTL: 1 * time.Hour,
	}
}

// DefaultSessionConfig returns the built-in session registry defaults.
func DefaultSessionConfig() *SessionConfig {
	return &SessionConfig{
		TTL:           1 * time.Hour,
		PurgeInterval: 10 * time.Minute,
		JoinTimeout:   10 * time.Second,
	}
}

// DefaultLLMConfig returns the built-in summarization defaults.
func DefaultLLMConfig() *LLMConfig {
	return &LLMConfig{
		Provider:    "anthropic",
		Model:       "claude-sonnet-4-5",
		MaxTokens:   4096,
		Temperature: 0.2,
		Timeout:     60 * time.Second,
	}
}

// DefaultExportConfig returns the built-in export defaults.
func DefaultExportConfig() *ExportConfig {
	return &ExportConfig{
		Dir:             "media/exports",
		Retention:       1 * time.Hour,
		CleanupInterval: 1 * time.Hour,
	}
}

// DefaultAuthConfig returns the built-in auth defaults.
func DefaultAuthConfig() *AuthConfig {
	return &AuthConfig{
		SessionTTL: 14 * 24 * time.Hour,
		BcryptCost: 10,
	}
}
