// Package session persists tutoring conversations as one JSON record
// per session.
package session

import (
	"fmt"

	"github.com/abhisek/sokrates/internal/llm"
)

// ChatMessage is a single conversation turn. Immutable once created.
type ChatMessage struct {
	Role    llm.Role `json:"role"`
	Content string   `json:"content"`
}

// Session is a persisted tutoring conversation.
// Messages preserve chronological insertion order and are only ever
// appended, never modified in place.
type Session struct {
	ID       string        `json:"session_id"`
	Subject  string        `json:"subject"`
	Goal     string        `json:"goal"`
	Language string        `json:"language"`
	Messages []ChatMessage `json:"messages"`
}

// Summary is the listing view of a session record.
type Summary struct {
	ID      string
	Subject string
	Goal    string
}

// ErrNotFound indicates no record exists for the given session id.
type ErrNotFound struct {
	ID string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("session not found: %s", e.ID)
}
