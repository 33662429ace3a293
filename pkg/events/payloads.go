package events

// HostGreetingPayload is sent to the host frontend immediately after a
// successful connect, carrying everything needed to run the meeting.
type HostGreetingPayload struct {
	Type       string   `json:"type"`        // always TypeStartMeeting
	Questions  []string `json:"questions"`   // descriptions in position order
	AccessCode string   `json:"access_code"` // join code to show participants
}

// QuestionPayload is broadcast to the participant group when the meeting
// starts (TypeStartMeeting) and on every advance (TypeNextQuestion).
type QuestionPayload struct {
	Type     string `json:"type"`
	Question string `json:"question"` // question text to display
}

// MeetingEndedPayload ends the session for one peer. URL points the
// frontend at its post-meeting page; the group broadcast omits it and each
// participant endpoint fills in its own.
type MeetingEndedPayload struct {
	Type string `json:"type"`          // always TypeEndMeeting
	URL  string `json:"url,omitempty"` // post-meeting redirect target
}

// NameUpdatePayload informs a participant of its deduplicated display name.
// Only sent when the requested name was already taken.
type NameUpdatePayload struct {
	Type string `json:"type"` // always TypeUpdateName
	Name string `json:"name"` // the name actually adopted
}

// ParticipantJoinedFanIn flows from a participant endpoint to the host
// group when a join handshake completes.
type ParticipantJoinedFanIn struct {
	Type               string `json:"type"`                // always TypeParticipantJoined
	ParticipantName    string `json:"participant_name"`    // adopted display name
	ParticipantChannel string `json:"participant_channel"` // subscription ID of the joiner
}

// ParticipantInfo is the display form of a participant on the host screen.
type ParticipantInfo struct {
	Name   string `json:"name"`
	Status string `json:"status"` // currently always "Connected"
}

// HostParticipantJoinedPayload is what the host frontend receives for each
// completed join.
type HostParticipantJoinedPayload struct {
	Type        string          `json:"type"` // always TypeParticipantJoined
	Participant ParticipantInfo `json:"participant"`
}

// ParticipantLeftPayload flows to the host group when a participant
// disconnects, and to the host frontend unchanged.
type ParticipantLeftPayload struct {
	Type string `json:"type"` // always TypeParticipantLeft
	Name string `json:"name"` // display name that left
}

// AnswerSubmittedPayload notifies the host group that a response was
// persisted. Carries no detail; the host only counts these.
type AnswerSubmittedPayload struct {
	Type string `json:"type"` // always TypeAnswerSubmitted
}

// AckPayload is a bare typed message used for submit_error and
// invalid_answer replies.
type AckPayload struct {
	Type string `json:"type"`
}
