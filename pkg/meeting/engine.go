// Package meeting implements the live session engine: the host and
// participant WebSocket endpoints, the meeting timers, and the ordered
// end-of-meeting sequence.
//
// Each endpoint is a single goroutine selecting over three sources: frames
// read from its socket, messages fanned in through the broker, and timer
// channels. Cross-endpoint communication happens only through broker
// messages; per-meeting counters live in the host goroutine and are never
// shared.
package meeting

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/JBK2116/CollaBoard/pkg/clock"
	"github.com/JBK2116/CollaBoard/pkg/config"
	"github.com/JBK2116/CollaBoard/pkg/events"
	"github.com/JBK2116/CollaBoard/pkg/services"
	"github.com/JBK2116/CollaBoard/pkg/session"
)

// maxDisplayNameLength bounds the name a participant may request in its
// join handshake.
const maxDisplayNameLength = 30

// endSequenceTimeout bounds the whole end-of-meeting sequence. It is
// detached from the connection context so stats still get persisted when
// the trigger was the host socket (or the server) going away.
const endSequenceTimeout = 10 * time.Second

// Engine serves the live side of meetings. One Engine instance handles
// every concurrent session in the process.
type Engine struct {
	registry  *session.Registry
	broker    *events.Broker
	meetings  *services.MeetingService
	responses *services.ResponseService
	auth      *services.AuthService
	clk       clock.Clock
	logger    *slog.Logger

	joinTimeout  time.Duration
	writeTimeout time.Duration
}

// NewEngine creates the session engine.
func NewEngine(
	serverCfg *config.ServerConfig,
	sessionCfg *config.SessionConfig,
	registry *session.Registry,
	broker *events.Broker,
	meetings *services.MeetingService,
	responses *services.ResponseService,
	auth *services.AuthService,
	clk clock.Clock,
	logger *slog.Logger,
) *Engine {
	if serverCfg == nil || sessionCfg == nil {
		panic("NewEngine: config must not be nil")
	}
	if registry == nil || broker == nil || meetings == nil || responses == nil || auth == nil {
		panic("NewEngine: dependencies must not be nil")
	}
	return &Engine{
		registry:     registry,
		broker:       broker,
		meetings:     meetings,
		responses:    responses,
		auth:         auth,
		clk:          clk,
		logger:       logger.With("component", "meeting.engine"),
		joinTimeout:  sessionCfg.JoinTimeout,
		writeTimeout: serverCfg.WriteTimeout,
	}
}

// writeJSON marshals the payload and writes it as one text frame under the
// configured write timeout.
func (e *Engine) writeJSON(ctx context.Context, conn *websocket.Conn, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return e.writeRaw(ctx, conn, data)
}

// writeRaw writes an already-marshalled frame, used when forwarding broker
// traffic unchanged.
func (e *Engine) writeRaw(ctx context.Context, conn *websocket.Conn, data []byte) error {
	writeCtx, cancel := context.WithTimeout(ctx, e.writeTimeout)
	defer cancel()

	if err := conn.Write(writeCtx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return nil
}

// closeWith closes the socket with a status code and reason. The peer may
// already be gone, so failures are only worth a debug line.
func (e *Engine) closeWith(conn *websocket.Conn, code websocket.StatusCode, reason string) {
	if err := conn.Close(code, reason); err != nil {
		e.logger.Debug("WebSocket close failed", "code", int(code), "error", err)
	}
}

// readResult is one outcome of a socket read: a frame or the error that
// ended the connection.
type readResult struct {
	data []byte
	err  error
}

// startReader pumps inbound frames into a channel so endpoint loops can
// select over socket reads, broker traffic, and timers at once. The
// channel closes after the terminal error is delivered or ctx is
// cancelled.
func startReader(ctx context.Context, conn *websocket.Conn) <-chan readResult {
	ch := make(chan readResult)
	go func() {
		defer close(ch)
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				select {
				case ch <- readResult{err: err}:
				case <-ctx.Done():
				}
				return
			}
			select {
			case ch <- readResult{data: data}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// hostPostMeetingPath is where the host frontend is redirected once its
// meeting ends.
func hostPostMeetingPath(meetingID uuid.UUID) string {
	return "/post-meeting/" + meetingID.String() + "/host/"
}

// participantPostMeetingPath is where participant frontends are redirected
// once the meeting ends.
func participantPostMeetingPath() string {
	return "/post-meeting/"
}
