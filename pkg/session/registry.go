package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/JBK2116/CollaBoard/pkg/cache"
	"github.com/JBK2116/CollaBoard/pkg/clock"
	"github.com/JBK2116/CollaBoard/pkg/config"
)

// ErrSessionExists indicates the meeting already has a live host session.
var ErrSessionExists = errors.New("meeting session already active")

// lockKeyPrefix namespaces lock flags in the shared flag store.
const lockKeyPrefix = "meeting_locked_"

// Registry owns the set of live meeting sessions and the lock flags that
// keep late participants out once a meeting has started.
type Registry struct {
	ttl           time.Duration
	purgeInterval time.Duration
	lockTTL       time.Duration

	flags  cache.FlagStore
	clk    clock.Clock
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*State

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg *config.SessionConfig, cacheCfg *config.CacheConfig, flags cache.FlagStore, clk clock.Clock, logger *slog.Logger) *Registry {
	return &Registry{
		ttl:           cfg.TTL,
		purgeInterval: cfg.PurgeInterval,
		lockTTL:       cacheCfg.LockTTL,
		flags:         flags,
		clk:           clk,
		logger:        logger.With("component", "session.registry"),
		sessions:      make(map[string]*State),
		stopCh:        make(chan struct{}),
	}
}

// Register records a meeting as live under its access code. Returns
// ErrSessionExists when that code already has an active host session.
func (r *Registry) Register(state *State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[state.AccessCode]; exists {
		return fmt.Errorf("access code %s: %w", state.AccessCode, ErrSessionExists)
	}
	r.sessions[state.AccessCode] = state
	r.logger.Info("Session registered", "meeting_id", state.MeetingID, "access_code", state.AccessCode)
	return nil
}

// Lookup returns the live session joined through an access code, if any.
func (r *Registry) Lookup(accessCode string) (*State, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.sessions[accessCode]
	return state, ok
}

// Unregister removes a session and clears its lock flag. Called when the
// host connection ends, whichever way the meeting finished.
func (r *Registry) Unregister(ctx context.Context, accessCode string) {
	r.mu.Lock()
	state, ok := r.sessions[accessCode]
	delete(r.sessions, accessCode)
	r.mu.Unlock()

	if !ok {
		return
	}
	if err := r.flags.Delete(ctx, lockKeyPrefix+accessCode); err != nil {
		r.logger.Warn("Failed to clear meeting lock flag", "access_code", accessCode, "error", err)
	}
	r.logger.Info("Session unregistered", "meeting_id", state.MeetingID, "access_code", accessCode)
}

// MarkLocked flags the meeting as closed to new participants. The flag
// carries a TTL so a crashed host cannot lock a code forever.
func (r *Registry) MarkLocked(ctx context.Context, accessCode string) error {
	if err := r.flags.Set(ctx, lockKeyPrefix+accessCode, r.lockTTL); err != nil {
		return fmt.Errorf("failed to mark meeting locked: %w", err)
	}
	return nil
}

// IsLocked reports whether the meeting behind the access code has started
// and is refusing new participants.
func (r *Registry) IsLocked(ctx context.Context, accessCode string) (bool, error) {
	locked, err := r.flags.Exists(ctx, lockKeyPrefix+accessCode)
	if err != nil {
		return false, fmt.Errorf("failed to check meeting lock: %w", err)
	}
	return locked, nil
}

// Len reports how many sessions are live.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Start launches the background purge loop. It runs once immediately, then
// on every purge interval until Stop is called.
func (r *Registry) Start(ctx context.Context) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		r.purge(ctx)

		ticker := r.clk.NewTicker(r.purgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-r.stopCh:
				return
			case <-ticker.C():
				r.purge(ctx)
			}
		}
	}()
	r.logger.Info("Session purge loop started", "interval", r.purgeInterval, "ttl", r.ttl)
}

// Stop terminates the purge loop and waits for it to exit.
func (r *Registry) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	r.wg.Wait()
}

// purge drops sessions older than the TTL. A session normally unregisters
// itself when its host disconnects; this catches entries leaked by crashed
// connections so their access codes become joinable again.
func (r *Registry) purge(ctx context.Context) {
	cutoff := r.clk.Now().Add(-r.ttl)

	r.mu.Lock()
	var stale []*State
	for code, state := range r.sessions {
		if state.CreatedAt.Before(cutoff) {
			stale = append(stale, state)
			delete(r.sessions, code)
		}
	}
	r.mu.Unlock()

	for _, state := range stale {
		if err := r.flags.Delete(ctx, lockKeyPrefix+state.AccessCode); err != nil {
			r.logger.Warn("Failed to clear lock flag for purged session", "meeting_id", state.MeetingID, "error", err)
		}
		r.logger.Warn("Purged stale meeting session", "meeting_id", state.MeetingID, "created_at", state.CreatedAt)
	}

	if sweeper, ok := r.flags.(interface{ Sweep() int }); ok {
		if removed := sweeper.Sweep(); removed > 0 {
			r.logger.Debug("Swept expired lock flags", "count", removed)
		}
	}
}
