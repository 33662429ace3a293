// Package cleanup provides data retention for generated artifacts and
// expired credentials.
package cleanup

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/JBK2116/CollaBoard/pkg/clock"
	"github.com/JBK2116/CollaBoard/pkg/config"
)

// SessionPurger removes expired login sessions and reports how many went.
type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

// Service periodically enforces retention policies:
//   - Deletes exported summary documents past their retention age
//   - Removes expired login session rows
//
// All operations are idempotent and safe to re-run.
type Service struct {
	config *config.ExportConfig
	purger SessionPurger
	clk    clock.Clock

	cancel context.CancelFunc
	done   chan struct{}
}

// NewService creates a new cleanup service.
func NewService(cfg *config.ExportConfig, purger SessionPurger, clk clock.Clock) *Service {
	if cfg == nil {
		panic("cleanup.NewService: cfg must not be nil")
	}
	return &Service{
		config: cfg,
		purger: purger,
		clk:    clk,
	}
}

// Start launches the background cleanup loop.
func (s *Service) Start(ctx context.Context) {
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go s.run(ctx)

	slog.Info("Cleanup service started",
		"export_dir", s.config.Dir,
		"retention", s.config.Retention,
		"interval", s.config.CleanupInterval)
}

// Stop signals the cleanup loop to exit and waits for it to finish.
func (s *Service) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	slog.Info("Cleanup service stopped")
}

func (s *Service) run(ctx context.Context) {
	defer close(s.done)

	s.runAll(ctx)

	ticker := s.clk.NewTicker(s.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			s.runAll(ctx)
		}
	}
}

func (s *Service) runAll(ctx context.Context) {
	s.reapExports()
	s.purgeAuthSessions(ctx)
}

// reapExports deletes export files older than the retention window. Only
// files matching the export naming scheme are touched; anything else in
// the directory is left alone.
func (s *Service) reapExports() {
	entries, err := os.ReadDir(s.config.Dir)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("Retention: export scan failed", "dir", s.config.Dir, "error", err)
		}
		return
	}

	cutoff := s.clk.Now().Add(-s.config.Retention)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !isExportFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.config.Dir, entry.Name())); err != nil {
			slog.Error("Retention: export removal failed", "file", entry.Name(), "error", err)
			continue
		}
		removed++
	}
	if removed > 0 {
		slog.Info("Retention: removed expired exports", "count", removed)
	}
}

func (s *Service) purgeAuthSessions(ctx context.Context) {
	count, err := s.purger.PurgeExpiredSessions(ctx)
	if err != nil {
		slog.Error("Retention: session purge failed", "error", err)
		return
	}
	if count > 0 {
		slog.Info("Retention: purged expired login sessions", "count", count)
	}
}

func isExportFile(name string) bool {
	return strings.HasPrefix(name, "meeting_") &&
		(strings.HasSuffix(name, ".pdf") || strings.HasSuffix(name, ".docx"))
}
