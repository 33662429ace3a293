// Package api exposes the HTTP and WebSocket surface: director account
// endpoints, meeting management, the summarize/export routes, export
// downloads, and the upgrade handlers that hand live connections to the
// session engine.
package api

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JBK2116/CollaBoard/pkg/config"
	"github.com/JBK2116/CollaBoard/pkg/database"
	"github.com/JBK2116/CollaBoard/pkg/meeting"
	"github.com/JBK2116/CollaBoard/pkg/services"
)

// Server is the HTTP/WebSocket front of the application. All state lives
// in the injected services; the server itself only routes, validates, and
// translates errors.
type Server struct {
	cfg *config.Config
	db  *database.Client

	auth      *services.AuthService
	meetings  *services.MeetingService
	summaries *services.SummaryService
	exports   *services.ExportService
	engine    *meeting.Engine

	router  *gin.Engine
	httpSrv *http.Server
}

// NewServer creates the API server and registers all routes.
func NewServer(
	cfg *config.Config,
	db *database.Client,
	auth *services.AuthService,
	meetings *services.MeetingService,
	summaries *services.SummaryService,
	exports *services.ExportService,
	engine *meeting.Engine,
) *Server {
	if cfg == nil || db == nil {
		panic("NewServer: cfg and db must not be nil")
	}
	if auth == nil || meetings == nil || summaries == nil || exports == nil || engine == nil {
		panic("NewServer: services must not be nil")
	}

	s := &Server{
		cfg:       cfg,
		db:        db,
		auth:      auth,
		meetings:  meetings,
		summaries: summaries,
		exports:   exports,
		engine:    engine,
	}
	s.router = s.buildRouter()
	return s
}

// buildRouter wires middleware and routes onto a fresh gin engine.
func (s *Server) buildRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), securityHeaders())

	r.GET("/healthz", s.healthHandler)

	api := r.Group("/api")
	{
		api.POST("/auth/register", s.registerHandler)
		api.POST("/auth/login", s.loginHandler)
		api.POST("/auth/logout", s.requireSession(), s.logoutHandler)

		authed := api.Group("", s.requireSession())
		{
			authed.POST("/meetings", s.createMeetingHandler)
			authed.GET("/meetings", s.listMeetingsHandler)
			authed.DELETE("/meetings/:meeting_id", s.deleteMeetingHandler)

			// Summarize/export keep their historical paths, meeting ID
			// directly under /api.
			authed.POST("/:meeting_id/summarize/", s.summarizeHandler)
			authed.POST("/:meeting_id/export/", s.exportHandler)
		}
	}

	r.GET("/download/:filename", s.downloadHandler)

	ws := r.Group("/ws/meeting")
	{
		ws.GET("/:id/host/", s.hostWSHandler)
		ws.GET("/:id/participant/", s.participantWSHandler)
	}

	return r
}

// Handler exposes the router, mainly for httptest-based tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on addr and serves until Shutdown or a fatal error.
// Request contexts descend from ctx, so cancelling it reaches every live
// WebSocket endpoint and triggers their end-of-meeting sequences.
func (s *Server) Start(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.StartWithListener(ctx, ln)
}

// StartWithListener serves on an existing listener. Tests use this to bind
// a random port before starting.
func (s *Server) StartWithListener(ctx context.Context, ln net.Listener) error {
	s.httpSrv = &http.Server{
		Handler: s.router,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
	return s.httpSrv.Serve(ln)
}

// Shutdown stops accepting connections and waits for in-flight requests,
// bounded by ctx. Live WebSocket sessions are ended through the base
// context, not here.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}
