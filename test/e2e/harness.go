// Package e2e boots a complete CollaBoard instance against a real
// PostgreSQL schema and exercises it the way the frontends do: plain HTTP
// for accounts and meeting management, WebSockets for the live session,
// and a scripted model provider for summarization.
package e2e

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/JBK2116/CollaBoard/pkg/api"
	"github.com/JBK2116/CollaBoard/pkg/cache"
	"github.com/JBK2116/CollaBoard/pkg/clock"
	"github.com/JBK2116/CollaBoard/pkg/config"
	"github.com/JBK2116/CollaBoard/pkg/database"
	"github.com/JBK2116/CollaBoard/pkg/events"
	"github.com/JBK2116/CollaBoard/pkg/meeting"
	"github.com/JBK2116/CollaBoard/pkg/services"
	"github.com/JBK2116/CollaBoard/pkg/session"
	"github.com/JBK2116/CollaBoard/test/util"
)

// TestApp boots a full CollaBoard instance for e2e testing.
type TestApp struct {
	// Core
	Config   *config.Config
	DBClient *database.Client
	Store    *database.Store

	// Mocks / test wiring
	LLM *ScriptedLLMClient

	// Real infrastructure
	Registry *session.Registry
	Broker   *events.Broker
	Engine   *meeting.Engine
	Server   *api.Server

	// Runtime
	BaseURL string // e.g. "http://127.0.0.1:54321"
	WSBase  string // e.g. "ws://127.0.0.1:54321"

	t            *testing.T
	cancel       context.CancelFunc
	shutdownOnce sync.Once
}

// testAppConfig holds options accumulated before creating the TestApp.
type testAppConfig struct {
	cfg       *config.Config
	llmClient *ScriptedLLMClient
	clk       clock.Clock
	exportDir string
}

// TestAppOption configures the test app.
type TestAppOption func(*testAppConfig)

// WithConfig sets a custom config. The server BaseURL and the export
// directory are still overwritten with test-local values.
func WithConfig(cfg *config.Config) TestAppOption {
	return func(c *testAppConfig) { c.cfg = cfg }
}

// WithLLMClient sets a pre-scripted model provider.
func WithLLMClient(client *ScriptedLLMClient) TestAppOption {
	return func(c *testAppConfig) { c.llmClient = client }
}

// WithClock injects a clock, typically a *clock.Fake so tests can drive
// the meeting timers deterministically.
func WithClock(clk clock.Clock) TestAppOption {
	return func(c *testAppConfig) { c.clk = clk }
}

// WithExportDir overrides the directory rendered exports land in.
// Defaults to a per-test temp directory.
func WithExportDir(dir string) TestAppOption {
	return func(c *testAppConfig) { c.exportDir = dir }
}

// NewTestApp creates and starts a full CollaBoard test instance on a
// random local port. Shutdown is registered via t.Cleanup automatically.
func NewTestApp(t *testing.T, opts ...TestAppOption) *TestApp {
	t.Helper()

	tc := &testAppConfig{}
	for _, opt := range opts {
		opt(tc)
	}
	if tc.cfg == nil {
		tc.cfg = defaultTestConfig()
	}
	if tc.llmClient == nil {
		tc.llmClient = NewScriptedLLMClient()
	}
	if tc.clk == nil {
		tc.clk = clock.New()
	}
	if tc.exportDir == "" {
		tc.exportDir = t.TempDir()
	}
	tc.cfg.Export.Dir = tc.exportDir

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	// 1. Database — per-test schema with migrations applied.
	db := util.SetupTestDatabase(t)
	dbClient := database.NewClientFromDB(db)
	store := database.NewStore(db)

	// 2. Listener first: the export service bakes the download origin into
	// its URLs, so the port must be known before the services exist.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	baseURL := fmt.Sprintf("http://%s", addr)
	tc.cfg.Server.BaseURL = baseURL

	// 3. Session registry and broker.
	flags := cache.NewMemoryStore(tc.clk)
	registry := session.NewRegistry(tc.cfg.Session, tc.cfg.Cache, flags, tc.clk, logger)
	broker := events.NewBroker(tc.cfg.Server.SendBuffer, logger)

	// 4. Domain services on the scripted provider.
	authService := services.NewAuthService(store, tc.cfg.Auth, tc.clk)
	meetingService := services.NewMeetingService(store)
	responseService := services.NewResponseService(store)
	summaryService := services.NewSummaryService(store, tc.llmClient)
	exportService := services.NewExportService(store, tc.cfg.Export, baseURL)

	// 5. Session engine and HTTP server.
	engine := meeting.NewEngine(tc.cfg.Server, tc.cfg.Session, registry, broker,
		meetingService, responseService, authService, tc.clk, logger)
	server := api.NewServer(tc.cfg, dbClient, authService, meetingService,
		summaryService, exportService, engine)

	// The app context reaches hijacked WebSocket connections through the
	// server's BaseContext; cancelling it runs every live meeting's end
	// sequence, which Shutdown alone cannot do.
	appCtx, cancel := context.WithCancel(context.Background())
	registry.Start(appCtx)

	go func() {
		_ = server.StartWithListener(appCtx, ln)
	}()

	app := &TestApp{
		Config:   tc.cfg,
		DBClient: dbClient,
		Store:    store,
		LLM:      tc.llmClient,
		Registry: registry,
		Broker:   broker,
		Engine:   engine,
		Server:   server,
		BaseURL:  baseURL,
		WSBase:   fmt.Sprintf("ws://%s", addr),
		t:        t,
		cancel:   cancel,
	}

	// DB cleanup is handled by util.SetupTestDatabase.
	t.Cleanup(app.Shutdown)

	return app
}

// Shutdown stops the instance the way the binary does on SIGTERM: cancel
// the app context so live meetings run their end sequences, then drain the
// HTTP server. Idempotent; registered with t.Cleanup automatically.
func (app *TestApp) Shutdown() {
	app.shutdownOnce.Do(func() {
		app.cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = app.Server.Shutdown(shutdownCtx)
		app.Registry.Stop()
	})
}

// defaultTestConfig mirrors the production defaults with timings tightened
// for tests. Auth uses the cheapest bcrypt cost; e2e tests hash a lot of
// throwaway passwords.
func defaultTestConfig() *config.Config {
	return &config.Config{
		Server: &config.ServerConfig{
			Host:         "127.0.0.1",
			WriteTimeout: 5 * time.Second,
			SendBuffer:   32,
		},
		Cache: &config.CacheConfig{
			Backend: "memory",
			LockTTL: time.Hour,
		},
		Session: &config.SessionConfig{
			TTL:           time.Hour,
			PurgeInterval: time.Minute,
			JoinTimeout:   10 * time.Second,
		},
		Export: &config.ExportConfig{
			Retention:       time.Hour,
			CleanupInterval: time.Hour,
		},
		Auth: &config.AuthConfig{
			SessionTTL: 24 * time.Hour,
			BcryptCost: bcrypt.MinCost,
		},
	}
}
