// Package cache provides a small TTL flag store used for transient
// cross-connection state such as meeting lock markers.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/JBK2116/CollaBoard/pkg/clock"
	"github.com/JBK2116/CollaBoard/pkg/config"
)

// FlagStore stores presence flags with a TTL. A flag either exists (and has
// not expired) or it does not; values carry no payload.
type FlagStore interface {
	// Set records the flag, replacing any existing TTL.
	Set(ctx context.Context, key string, ttl time.Duration) error

	// Exists reports whether the flag is present and unexpired.
	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes the flag. Deleting an absent flag is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any backing resources.
	Close() error
}

// New builds the configured flag store backend.
func New(cfg *config.CacheConfig, clk clock.Clock) (FlagStore, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryStore(clk), nil
	case "redis":
		return NewRedisStore(cfg.Redis)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
