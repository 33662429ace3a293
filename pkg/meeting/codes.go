package meeting

import "github.com/coder/websocket"

// Application close codes sent when a connection is refused or a session
// ends. The 4xxx range is reserved for application use by RFC 6455; the
// frontends key their error screens off these values.
const (
	// StatusBadRoute rejects a malformed URL route or a join handshake
	// that never completed.
	StatusBadRoute websocket.StatusCode = 4001

	// StatusNoSession rejects a host connect without a session token.
	StatusNoSession websocket.StatusCode = 4002

	// StatusAuthFailed rejects a host whose session token does not
	// resolve to a user.
	StatusAuthFailed websocket.StatusCode = 4003

	// StatusNotFound rejects a connect for a missing meeting or a
	// meeting without questions.
	StatusNotFound websocket.StatusCode = 4004

	// StatusCodeTaken rejects a host connect whose access code already
	// has a live session.
	StatusCodeTaken websocket.StatusCode = 4005

	// StatusLocked rejects a participant joining after the meeting
	// started.
	StatusLocked websocket.StatusCode = 4401
)

// Close reasons paired with the codes above.
const (
	reasonBadRoute    = "Missing or invalid URL route"
	reasonNoSession   = "Missing or invalid session"
	reasonAuthFailed  = "Authentication failed"
	reasonNoMeeting   = "No meeting found"
	reasonNoQuestions = "No questions found"
	reasonCodeTaken   = "Access code missing or invalid"
	reasonLocked      = "meeting_locked"

	// reasonMeetingOver accompanies the normal close after the end
	// sequence has run.
	reasonMeetingOver = "Meeting successfully closed"

	// reasonClosed accompanies the participant's normal close.
	reasonClosed = "Connection successfully closed"

	// reasonOverflow accompanies the 1013 close of a subscriber that
	// fell too far behind the broker.
	reasonOverflow = "subscriber overflow"
)
