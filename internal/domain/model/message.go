package model

import "time"

// Message is one participant's contribution on one turn. Immutable once
// finalized; the session message list is append-only.
type Message struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"session_id"`
	ParticipantID string    `json:"participant_id"`
	Turn          int       `json:"turn"` // monotonic, starts at 0
	Role          string    `json:"role"`
	Content       string    `json:"content"`
	Agreement     bool      `json:"agreement"` // set by the analyzer, never by the author
	InputTokens   int       `json:"input_tokens"`
	OutputTokens  int       `json:"output_tokens"`
	CreatedAt     time.Time `json:"created_at"`
}
