// Package events provides the in-process pub/sub broker that carries live
// meeting traffic between host and participant endpoints.
//
// Each live meeting has two channel groups, both keyed by access code:
//
//	meeting_host_<code>  — the host's private group (singleton subscriber).
//	                       Participants fan in join/leave/answer events here.
//	meeting_<code>       — the participant group. The host broadcasts
//	                       question and end-of-meeting events here.
//
// Every message is a JSON object carrying a "type" tag. Delivery preserves
// per-publisher order for each subscriber; a subscriber that cannot keep up
// has its subscription force-closed rather than stalling the publisher.
package events

// Message types exchanged during a live meeting.
const (
	// TypeStartMeeting doubles as the host greeting (questions + access
	// code on connect) and the meeting-start broadcast (first question).
	TypeStartMeeting = "start_meeting"

	// TypeNextQuestion advances every participant to the next question.
	TypeNextQuestion = "next_question"

	// TypeEndMeeting is the final message of a session in every group.
	TypeEndMeeting = "end_meeting"

	// TypeParticipantJoined flows participant → host group on a completed
	// join handshake, and server → host frontend in its display form.
	TypeParticipantJoined = "participant_joined"

	// TypeParticipantLeft flows participant → host group on disconnect.
	TypeParticipantLeft = "participant_left"

	// TypeUpdateName tells a participant which display name it was
	// actually given after deduplication.
	TypeUpdateName = "update_name"

	// TypeSubmitAnswer carries a participant's answer to the server.
	TypeSubmitAnswer = "submit_answer"

	// TypeSubmitError rejects a submit_answer with missing fields or an
	// unresolvable meeting/question.
	TypeSubmitError = "submit_error"

	// TypeInvalidAnswer rejects a submit_answer whose text failed
	// validation.
	TypeInvalidAnswer = "invalid_answer"

	// TypeAnswerSubmitted notifies the host group of a stored answer.
	TypeAnswerSubmitted = "answer_submitted"
)

// HostGroup returns the host group name for an access code.
// Format: "meeting_host_{access_code}"
func HostGroup(accessCode string) string {
	return "meeting_host_" + accessCode
}

// ParticipantGroup returns the participant group name for an access code.
// Format: "meeting_{access_code}"
func ParticipantGroup(accessCode string) string {
	return "meeting_" + accessCode
}
