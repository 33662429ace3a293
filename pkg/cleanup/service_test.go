package cleanup

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JBK2116/CollaBoard/pkg/clock"
	"github.com/JBK2116/CollaBoard/pkg/config"
)

type fakePurger struct {
	mu    sync.Mutex
	count int64
	err   error
	calls int
}

func (p *fakePurger) PurgeExpiredSessions(context.Context) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.count, p.err
}

func (p *fakePurger) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func writeFileWithModTime(t *testing.T, path string, modTime time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	require.NoError(t, os.Chtimes(path, modTime, modTime))
}

func TestReapRemovesExpiredExports(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)
	clk := clock.NewFake(start)

	old := start.Add(-48 * time.Hour)
	fresh := start.Add(-1 * time.Hour)
	writeFileWithModTime(t, filepath.Join(dir, "meeting_a.pdf"), old)
	writeFileWithModTime(t, filepath.Join(dir, "meeting_a.docx"), old)
	writeFileWithModTime(t, filepath.Join(dir, "meeting_b.pdf"), fresh)
	writeFileWithModTime(t, filepath.Join(dir, "notes.txt"), old)

	cfg := &config.ExportConfig{Dir: dir, Retention: 24 * time.Hour, CleanupInterval: time.Hour}
	svc := NewService(cfg, &fakePurger{}, clk)
	svc.runAll(context.Background())

	assert.NoFileExists(t, filepath.Join(dir, "meeting_a.pdf"))
	assert.NoFileExists(t, filepath.Join(dir, "meeting_a.docx"))
	assert.FileExists(t, filepath.Join(dir, "meeting_b.pdf"), "files inside the retention window stay")
	assert.FileExists(t, filepath.Join(dir, "notes.txt"), "unrelated files must not be touched")
}

func TestReapToleratesMissingDirectory(t *testing.T) {
	cfg := &config.ExportConfig{
		Dir:             filepath.Join(t.TempDir(), "never-created"),
		Retention:       24 * time.Hour,
		CleanupInterval: time.Hour,
	}
	purger := &fakePurger{}
	svc := NewService(cfg, purger, clock.NewFake(time.Now()))

	svc.runAll(context.Background())

	assert.Equal(t, 1, purger.callCount(), "session purge should still run")
}

func TestPurgeErrorDoesNotStopLoop(t *testing.T) {
	cfg := &config.ExportConfig{Dir: t.TempDir(), Retention: time.Hour, CleanupInterval: time.Hour}
	purger := &fakePurger{err: assert.AnError}
	svc := NewService(cfg, purger, clock.NewFake(time.Now()))

	svc.runAll(context.Background())
	svc.runAll(context.Background())

	assert.Equal(t, 2, purger.callCount())
}

func TestStartRunsOnTicker(t *testing.T) {
	cfg := &config.ExportConfig{Dir: t.TempDir(), Retention: time.Hour, CleanupInterval: time.Minute}
	purger := &fakePurger{}
	clk := clock.NewFake(time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC))
	svc := NewService(cfg, purger, clk)

	svc.Start(context.Background())
	defer svc.Stop()
	svc.Start(context.Background()) // second Start is a no-op

	require.Eventually(t, func() bool { return purger.callCount() >= 1 },
		time.Second, 5*time.Millisecond, "one pass runs immediately on start")

	// The ticker is created after the first pass; keep advancing until the
	// tick lands.
	require.Eventually(t, func() bool {
		clk.Advance(cfg.CleanupInterval)
		return purger.callCount() >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestStopIsIdempotent(t *testing.T) {
	cfg := &config.ExportConfig{Dir: t.TempDir(), Retention: time.Hour, CleanupInterval: time.Hour}
	svc := NewService(cfg, &fakePurger{}, clock.NewFake(time.Now()))

	svc.Stop() // Stop before Start is a no-op

	svc.Start(context.Background())
	svc.Stop()
	svc.Stop()
}
