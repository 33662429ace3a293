// Package config loads and validates application configuration from a YAML
// file plus environment, applying defaults for everything left unset.
package config

import "time"

// Config is the fully resolved application configuration. All durations are
// parsed and all defaults applied; the rest of the codebase never touches
// YAML or environment lookups directly.
type Config struct {
	Server   *ServerConfig
	Database *DatabaseConfig
	Cache    *CacheConfig
	Session  *SessionConfig
	LLM      *LLMConfig
	Export   *ExportConfig
	Auth     *AuthConfig
}

// ServerConfig holds the HTTP/WebSocket server settings.
type ServerConfig struct {
	Host string
	Port int

	// BaseURL is the externally visible origin used when building download
	// links, e.g. "http://localhost:8080".
	BaseURL string

	// AllowedWSOrigins lists origin patterns accepted on WebSocket
	// upgrades, in addition to the server's own host.
	AllowedWSOrigins []string

	// WriteTimeout bounds a single WebSocket write.
	WriteTimeout time.Duration

	// SendBuffer is the per-subscriber outbound queue length; a subscriber
	// that falls this far behind is force-closed.
	SendBuffer int
}

// DatabaseConfig holds PostgreSQL connection and pool settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// CacheConfig selects the backend for the meeting-locked flags.
type CacheConfig struct {
	// Backend is "memory" or "redis".
	Backend string

	Redis *RedisConfig

	// LockTTL is how long a meeting_locked_<code> flag survives without
	// being refreshed.
	LockTTL time.Duration
}

// RedisConfig holds connection settings for the redis cache backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// SessionConfig controls the in-memory session registry and the join
// handshake.
type SessionConfig struct {
	// TTL is how long a registered session may exist before the purge loop
	// removes it; a live host always unregisters sooner.
	TTL time.Duration

	// PurgeInterval is how often the registry sweeps for expired entries.
	PurgeInterval time.Duration

	// JoinTimeout bounds how long a participant may sit on an open socket
	// before sending its join message.
	JoinTimeout time.Duration
}

// LLMConfig configures the summarization provider.
type LLMConfig struct {
	// Provider names the backend; only "anthropic" is implemented.
	Provider string

	Model       string
	MaxTokens   int
	Temperature float64

	// Timeout bounds one summarization call.
	Timeout time.Duration
}

// ExportConfig controls where rendered summaries land and how long they are
// kept.
type ExportConfig struct {
	// Dir is the export root; files are written as meeting_<id>.<ext>.
	Dir string

	// Retention is the maximum age of an export file before the reaper
	// deletes it.
	Retention time.Duration

	// CleanupInterval is how often the reaper runs.
	CleanupInterval time.Duration

	// FontDir optionally points at a directory containing the DejaVu Sans
	// TTF files used to embed a Unicode font into PDFs. When empty or the
	// files are missing, the renderer falls back to the built-in core font
	// with codepage translation.
	FontDir string
}

// AuthConfig controls account sessions.
type AuthConfig struct {
	// SessionTTL is how long an issued login token stays valid.
	SessionTTL time.Duration

	// BcryptCost is the bcrypt work factor for password hashes.
	BcryptCost int
}
