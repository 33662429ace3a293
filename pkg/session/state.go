// Package session tracks live meeting sessions in memory: which meetings
// currently have a connected host, which display names are taken, and
// whether a meeting is locked to new joins.
package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the shared in-memory state for one live meeting. The host
// connection creates it at registration; participant connections consult it
// for display-name uniqueness.
type State struct {
	MeetingID  uuid.UUID
	AccessCode string
	CreatedAt  time.Time

	mu    sync.Mutex
	names map[string]struct{}
}

// NewState creates session state for a meeting going live.
func NewState(meetingID uuid.UUID, accessCode string, now time.Time) *State {
	return &State{
		MeetingID:  meetingID,
		AccessCode: accessCode,
		CreatedAt:  now,
		names:      make(map[string]struct{}),
	}
}

// AdoptName claims a display name for a joining participant. If k prior
// participants already claimed the name (or one of its "name(i)" variants),
// the new participant becomes "name(k)". Returns the name actually claimed.
//
// Claimed names are never released: keeping them for the session's lifetime
// keeps displayed identifiers stable even after their owner disconnects.
func (s *State) AdoptName(requested string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := 0
	for name := range s.names {
		if name == requested || strings.HasPrefix(name, requested+"(") {
			k++
		}
	}
	name := requested
	if k > 0 {
		name = fmt.Sprintf("%s(%d)", requested, k)
	}
	// A participant may have claimed a "name(i)" variant as their literal
	// requested name, so probe upward until the candidate is free.
	for {
		if _, taken := s.names[name]; !taken {
			break
		}
		k++
		name = fmt.Sprintf("%s(%d)", requested, k)
	}
	s.names[name] = struct{}{}
	return name
}

// NameCount reports how many display names are currently claimed.
func (s *State) NameCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.names)
}
