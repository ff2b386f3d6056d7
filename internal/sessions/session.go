package sessions

import (
	"slices"
	"time"

	"github.com/attendbot/internal/chatbot"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

type ID string

func NewID() ID {
	return ID(gonanoid.Must())
}

type Role uint

const (
	RoleUndefined Role = iota
	RoleUser
	RoleAssistant
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAssistant:
		return "assistant"
	default:
		return "undefined"
	}
}

// Entry is one line of a chat transcript.
type Entry struct {
	Role Role
	Time time.Time
	Text string
	// Response is set for assistant entries.
	Response chatbot.Response
	// Warning is set when the reply could not be persisted.
	Warning string
}

type Session struct {
	ID         ID
	Transcript []Entry

	lastSeen time.Time
}

func (s *Session) clone() *Session {
	return &Session{
		ID:         s.ID,
		Transcript: slices.Clone(s.Transcript),
	}
}
