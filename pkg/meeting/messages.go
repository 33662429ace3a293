package meeting

// inboundMessage is the decoded form of a frontend-to-server frame. Only
// the fields belonging to the given type are populated.
type inboundMessage struct {
	Type     string `json:"type"`
	Question string `json:"question,omitempty"`
	Answer   string `json:"answer,omitempty"`
	Name     string `json:"name,omitempty"`
}

// fanInMessage is the decoded form of host-group traffic published by
// participant endpoints.
type fanInMessage struct {
	Type               string `json:"type"`
	ParticipantName    string `json:"participant_name,omitempty"`
	ParticipantChannel string `json:"participant_channel,omitempty"`
	Name               string `json:"name,omitempty"`
}

// broadcastMessage is the decoded form of participant-group traffic
// published by the host endpoint.
type broadcastMessage struct {
	Type     string `json:"type"`
	Question string `json:"question,omitempty"`
}
