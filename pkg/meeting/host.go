package meeting

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/JBK2116/CollaBoard/pkg/events"
	"github.com/JBK2116/CollaBoard/pkg/models"
	"github.com/JBK2116/CollaBoard/pkg/services"
	"github.com/JBK2116/CollaBoard/pkg/session"
)

// hostRun is the per-connection state the host goroutine owns. Counters
// are updated only from that goroutine; participants influence them
// exclusively through fan-in messages.
type hostRun struct {
	conn    *websocket.Conn
	meeting *models.Meeting
	logger  *slog.Logger

	started bool
	counter *DurationCounter

	participants       int
	responses          int
	questionsPresented int
}

// ServeHost runs the host side of one live meeting and blocks until the
// meeting ends or the connection drops. The caller has already accepted
// the WebSocket upgrade; rawMeetingID and sessionToken come straight from
// the URL route and query string.
func (e *Engine) ServeHost(ctx context.Context, conn *websocket.Conn, rawMeetingID, sessionToken string) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	meetingID, err := uuid.Parse(rawMeetingID)
	if err != nil {
		e.closeWith(conn, StatusBadRoute, reasonBadRoute)
		return
	}
	logger := e.logger.With("role", "host", "meeting_id", meetingID)

	if sessionToken == "" {
		e.closeWith(conn, StatusNoSession, reasonNoSession)
		return
	}
	user, err := e.auth.ResolveSession(ctx, sessionToken)
	if err != nil {
		logger.Warn("Host authentication failed", "error", err)
		e.closeWith(conn, StatusAuthFailed, reasonAuthFailed)
		return
	}

	meeting, questions, err := e.meetings.GetMeetingWithQuestions(ctx, meetingID)
	if err != nil {
		if !errors.Is(err, services.ErrNotFound) {
			logger.Error("Failed to load meeting", "error", err)
		}
		e.closeWith(conn, StatusNotFound, reasonNoMeeting)
		return
	}
	// Refused with the same not-found code so meeting IDs stay
	// unguessable for authenticated non-owners.
	if meeting.DirectorID != user.ID {
		logger.Warn("Connect refused: user is not the meeting director", "user_id", user.ID)
		e.closeWith(conn, StatusNotFound, reasonNoMeeting)
		return
	}
	if len(questions) == 0 {
		e.closeWith(conn, StatusNotFound, reasonNoQuestions)
		return
	}

	// Subscribe before registering so no join fan-in can slip through
	// between the session becoming visible and the host listening.
	sub := e.broker.Subscribe(events.HostGroup(meeting.AccessCode))
	defer e.broker.Unsubscribe(sub)

	if err := e.registry.Register(session.NewState(meeting.ID, meeting.AccessCode, e.clk.Now())); err != nil {
		logger.Warn("Connect refused: access code already live", "access_code", meeting.AccessCode, "error", err)
		e.closeWith(conn, StatusCodeTaken, reasonCodeTaken)
		return
	}

	run := &hostRun{
		conn:    conn,
		meeting: meeting,
		logger:  logger,
		// The first question counts as presented the moment the host
		// screen shows it.
		questionsPresented: 1,
	}

	descriptions := make([]string, len(questions))
	for i, q := range questions {
		descriptions[i] = q.Description
	}
	greeting := events.HostGreetingPayload{
		Type:       events.TypeStartMeeting,
		Questions:  descriptions,
		AccessCode: meeting.AccessCode,
	}
	if err := e.writeJSON(ctx, conn, greeting); err != nil {
		// The session is registered, so any exit from here on must run
		// the end sequence: participants that already joined would
		// otherwise wait on a dead meeting.
		logger.Warn("Failed to greet host", "error", err)
		e.endMeeting(run, websocket.StatusNormalClosure, reasonMeetingOver)
		return
	}
	logger.Info("Host connected", "access_code", meeting.AccessCode, "question_count", len(questions))

	e.runHost(ctx, run, sub)
}

// runHost multiplexes frontend commands, participant fan-in, and the
// auto-end timer until the meeting ends.
func (e *Engine) runHost(ctx context.Context, run *hostRun, sub *events.Subscription) {
	readCh := startReader(ctx, run.conn)

	// Armed when the host starts the meeting.
	var autoEnd <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			run.logger.Info("Server context cancelled, ending meeting")
			e.endMeeting(run, websocket.StatusGoingAway, "server shutting down")
			return

		case <-autoEnd:
			run.logger.Info("Meeting duration elapsed, auto-ending")
			e.endMeeting(run, websocket.StatusNormalClosure, reasonMeetingOver)
			return

		case res, ok := <-readCh:
			if !ok || res.err != nil {
				if res.err != nil {
					run.logger.Info("Host disconnected", "error", res.err)
				}
				e.endMeeting(run, websocket.StatusNormalClosure, reasonMeetingOver)
				return
			}

			var msg inboundMessage
			if err := json.Unmarshal(res.data, &msg); err != nil {
				run.logger.Warn("Invalid WebSocket message", "error", err)
				continue
			}
			switch msg.Type {
			case events.TypeStartMeeting:
				if run.started {
					run.logger.Warn("Meeting already started, ignoring start_meeting")
					continue
				}
				run.started = true
				if err := e.registry.MarkLocked(ctx, run.meeting.AccessCode); err != nil {
					run.logger.Error("Failed to lock meeting to new joins", "error", err)
				}
				run.counter = StartDurationCounter(e.clk)
				autoEnd = e.clk.After(time.Duration(run.meeting.DurationMinutes) * time.Minute)
				if msg.Question != "" {
					e.broadcastQuestion(run, events.TypeStartMeeting, msg.Question)
				}
				run.logger.Info("Meeting started", "duration_minutes", run.meeting.DurationMinutes)

			case events.TypeNextQuestion:
				if !run.started {
					run.logger.Warn("Meeting not started, ignoring next_question")
					continue
				}
				if msg.Question == "" {
					run.logger.Warn("Ignoring next_question without a question")
					continue
				}
				e.broadcastQuestion(run, events.TypeNextQuestion, msg.Question)
				run.questionsPresented++

			case events.TypeEndMeeting:
				e.endMeeting(run, websocket.StatusNormalClosure, reasonMeetingOver)
				return

			default:
				run.logger.Debug("Ignoring unexpected host message", "type", msg.Type)
			}

		case data, ok := <-sub.C():
			if !ok {
				// Force-closed by the broker for falling behind. A host
				// that cannot keep up cannot run the meeting.
				run.logger.Warn("Host subscription overflowed, ending meeting")
				e.endMeeting(run, websocket.StatusTryAgainLater, reasonOverflow)
				return
			}
			e.forwardFanIn(ctx, run, data)
		}
	}
}

// broadcastQuestion sends a question frame to every participant.
func (e *Engine) broadcastQuestion(run *hostRun, msgType, question string) {
	payload := events.QuestionPayload{Type: msgType, Question: question}
	if err := e.broker.Publish(events.ParticipantGroup(run.meeting.AccessCode), payload); err != nil {
		run.logger.Error("Failed to broadcast question", "type", msgType, "error", err)
	}
}

// forwardFanIn reshapes one participant fan-in message for the host
// frontend and updates the host-owned counters.
func (e *Engine) forwardFanIn(ctx context.Context, run *hostRun, data []byte) {
	var msg fanInMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		run.logger.Warn("Invalid fan-in message", "error", err)
		return
	}

	switch msg.Type {
	case events.TypeParticipantJoined:
		if msg.ParticipantName == "" || msg.ParticipantChannel == "" {
			return
		}
		run.participants++
		payload := events.HostParticipantJoinedPayload{
			Type: events.TypeParticipantJoined,
			Participant: events.ParticipantInfo{
				Name:   msg.ParticipantName,
				Status: "Connected",
			},
		}
		if err := e.writeJSON(ctx, run.conn, payload); err != nil {
			run.logger.Warn("Failed to forward participant_joined", "error", err)
		}

	case events.TypeParticipantLeft:
		if msg.Name == "" {
			return
		}
		payload := events.ParticipantLeftPayload{Type: events.TypeParticipantLeft, Name: msg.Name}
		if err := e.writeJSON(ctx, run.conn, payload); err != nil {
			run.logger.Warn("Failed to forward participant_left", "error", err)
		}

	case events.TypeAnswerSubmitted:
		run.responses++
		payload := events.AnswerSubmittedPayload{Type: events.TypeAnswerSubmitted}
		if err := e.writeJSON(ctx, run.conn, payload); err != nil {
			run.logger.Warn("Failed to forward answer_submitted", "error", err)
		}

	default:
		run.logger.Debug("Ignoring unexpected fan-in message", "type", msg.Type)
	}
}

// endMeeting runs the ordered end sequence: stop the timers, persist the
// stats, tell the host frontend, broadcast to participants, unregister,
// close. Failures along the way are logged but never abort later steps;
// the meeting is over either way.
func (e *Engine) endMeeting(run *hostRun, code websocket.StatusCode, reason string) {
	// Detached from the connection context so the sequence survives the
	// trigger being the host socket or the server context going away.
	ctx, cancel := context.WithTimeout(context.Background(), endSequenceTimeout)
	defer cancel()

	if run.started {
		finalCount := run.counter.Stop()
		stats := services.EndStats{
			DurationSeconds:    finalCount,
			Participants:       run.participants,
			QuestionsPresented: run.questionsPresented,
			Responses:          run.responses,
		}
		if err := e.meetings.FinalizeMeeting(ctx, run.meeting, stats); err != nil {
			run.logger.Error("Failed to persist end-of-meeting stats", "error", err)
		}
		run.logger.Info("Meeting ended",
			"duration_seconds", finalCount,
			"participants", run.participants,
			"questions_presented", run.questionsPresented,
			"responses", run.responses)
	} else {
		run.logger.Info("Meeting ended before starting, skipping stats")
	}

	hostEnd := events.MeetingEndedPayload{
		Type: events.TypeEndMeeting,
		URL:  hostPostMeetingPath(run.meeting.ID),
	}
	if err := e.writeJSON(ctx, run.conn, hostEnd); err != nil {
		run.logger.Warn("Failed to send end_meeting to host", "error", err)
	}

	// Participants fill in their own redirect URL; the broadcast is bare.
	endAll := events.MeetingEndedPayload{Type: events.TypeEndMeeting}
	if err := e.broker.Publish(events.ParticipantGroup(run.meeting.AccessCode), endAll); err != nil {
		run.logger.Error("Failed to broadcast end_meeting", "error", err)
	}

	e.registry.Unregister(ctx, run.meeting.AccessCode)
	e.closeWith(run.conn, code, reason)
}
