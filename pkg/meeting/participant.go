package meeting

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/coder/websocket"

	"github.com/JBK2116/CollaBoard/pkg/events"
	"github.com/JBK2116/CollaBoard/pkg/services"
	"github.com/JBK2116/CollaBoard/pkg/session"
)

// ServeParticipant runs the participant side of one live meeting: the join
// handshake, broadcast forwarding, and answer submission. It blocks until
// the meeting ends or the connection drops. The caller has already
// accepted the WebSocket upgrade.
func (e *Engine) ServeParticipant(ctx context.Context, conn *websocket.Conn, accessCode string) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := e.logger.With("role", "participant", "access_code", accessCode)

	state, ok := e.registry.Lookup(accessCode)
	if !ok {
		e.closeWith(conn, StatusNotFound, reasonNoMeeting)
		return
	}
	locked, err := e.registry.IsLocked(ctx, accessCode)
	if err != nil {
		// Unknown lock state refuses the join rather than risking a late
		// entry into a started meeting.
		logger.Error("Failed to check meeting lock", "error", err)
		e.closeWith(conn, StatusLocked, reasonLocked)
		return
	}
	if locked {
		e.closeWith(conn, StatusLocked, reasonLocked)
		return
	}

	readCh := startReader(ctx, conn)

	name, ok := e.awaitJoin(ctx, conn, readCh, state, logger)
	if !ok {
		return
	}
	logger = logger.With("participant", name)

	sub := e.broker.Subscribe(events.ParticipantGroup(accessCode))
	defer e.broker.Unsubscribe(sub)

	joined := events.ParticipantJoinedFanIn{
		Type:               events.TypeParticipantJoined,
		ParticipantName:    name,
		ParticipantChannel: sub.ID(),
	}
	if err := e.broker.Publish(events.HostGroup(accessCode), joined); err != nil {
		logger.Error("Failed to announce join", "error", err)
	}
	logger.Info("Participant joined")

	// The host counts this participant now, so every exit except the end
	// broadcast reports the departure.
	ended := false
	defer func() {
		if ended {
			return
		}
		left := events.ParticipantLeftPayload{Type: events.TypeParticipantLeft, Name: name}
		if err := e.broker.Publish(events.HostGroup(accessCode), left); err != nil {
			logger.Warn("Failed to announce departure", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			e.closeWith(conn, websocket.StatusGoingAway, "server shutting down")
			return

		case data, ok := <-sub.C():
			if !ok {
				logger.Warn("Subscription overflowed, dropping participant")
				e.closeWith(conn, websocket.StatusTryAgainLater, reasonOverflow)
				return
			}
			var msg broadcastMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				logger.Warn("Invalid broadcast message", "error", err)
				continue
			}
			switch msg.Type {
			case events.TypeEndMeeting:
				end := events.MeetingEndedPayload{
					Type: events.TypeEndMeeting,
					URL:  participantPostMeetingPath(),
				}
				if err := e.writeJSON(ctx, conn, end); err != nil {
					logger.Warn("Failed to send end_meeting", "error", err)
				}
				e.closeWith(conn, websocket.StatusNormalClosure, reasonClosed)
				ended = true
				return

			case events.TypeStartMeeting, events.TypeNextQuestion:
				// Broadcast frames are already in frontend shape.
				if err := e.writeRaw(ctx, conn, data); err != nil {
					logger.Warn("Failed to forward question", "type", msg.Type, "error", err)
					return
				}

			default:
				logger.Debug("Ignoring unexpected broadcast", "type", msg.Type)
			}

		case res, ok := <-readCh:
			if !ok || res.err != nil {
				if res.err != nil {
					logger.Info("Participant disconnected", "error", res.err)
				}
				return
			}
			var msg inboundMessage
			if err := json.Unmarshal(res.data, &msg); err != nil {
				logger.Warn("Invalid WebSocket message", "error", err)
				continue
			}
			switch msg.Type {
			case events.TypeSubmitAnswer:
				e.handleSubmitAnswer(ctx, conn, accessCode, msg, logger)
			case events.TypeParticipantJoined:
				logger.Debug("Ignoring duplicate join message")
			default:
				logger.Debug("Ignoring unexpected participant message", "type", msg.Type)
			}
		}
	}
}

// awaitJoin waits for the participant_joined handshake, adopts a unique
// display name, and reports it back when disambiguated. Returns ok=false
// with the socket already closed on any handshake failure.
func (e *Engine) awaitJoin(ctx context.Context, conn *websocket.Conn, readCh <-chan readResult, state *session.State, logger *slog.Logger) (string, bool) {
	var msg inboundMessage
	select {
	case <-ctx.Done():
		e.closeWith(conn, StatusBadRoute, reasonBadRoute)
		return "", false

	case <-e.clk.After(e.joinTimeout):
		logger.Warn("Join handshake timed out")
		e.closeWith(conn, StatusBadRoute, reasonBadRoute)
		return "", false

	case res, ok := <-readCh:
		if !ok || res.err != nil {
			return "", false
		}
		if err := json.Unmarshal(res.data, &msg); err != nil {
			logger.Warn("Invalid WebSocket message", "error", err)
			e.closeWith(conn, StatusBadRoute, reasonBadRoute)
			return "", false
		}
	}

	if msg.Type != events.TypeParticipantJoined {
		logger.Warn("Unexpected handshake message", "type", msg.Type)
		e.closeWith(conn, StatusBadRoute, reasonBadRoute)
		return "", false
	}
	if msg.Name == "" || len(msg.Name) > maxDisplayNameLength {
		logger.Warn("Rejected display name", "length", len(msg.Name))
		e.closeWith(conn, StatusBadRoute, reasonBadRoute)
		return "", false
	}

	adopted := state.AdoptName(msg.Name)
	if adopted != msg.Name {
		update := events.NameUpdatePayload{Type: events.TypeUpdateName, Name: adopted}
		if err := e.writeJSON(ctx, conn, update); err != nil {
			logger.Warn("Failed to send update_name", "error", err)
		}
	}
	return adopted, true
}

// handleSubmitAnswer funnels a submission through the response service and
// translates the outcome for the frontend: submit_error for missing fields
// or an unresolvable meeting/question, invalid_answer for text that failed
// validation, and a host fan-in on success.
func (e *Engine) handleSubmitAnswer(ctx context.Context, conn *websocket.Conn, accessCode string, msg inboundMessage, logger *slog.Logger) {
	err := e.responses.SubmitAnswer(ctx, accessCode, msg.Question, msg.Answer)
	if err != nil {
		reply := events.TypeSubmitError
		var vErr *services.ValidationError
		switch {
		case errors.As(err, &vErr):
			logger.Info("Rejected invalid answer", "field", vErr.Field, "reason", vErr.Message)
			reply = events.TypeInvalidAnswer
		case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrNotFound):
			logger.Warn("Rejected answer submission", "error", err)
		default:
			logger.Error("Failed to store answer", "error", err)
		}
		if werr := e.writeJSON(ctx, conn, events.AckPayload{Type: reply}); werr != nil {
			logger.Warn("Failed to send submission reply", "error", werr)
		}
		return
	}

	submitted := events.AnswerSubmittedPayload{Type: events.TypeAnswerSubmitted}
	if err := e.broker.Publish(events.HostGroup(accessCode), submitted); err != nil {
		logger.Error("Failed to announce answer", "error", err)
	}
}
