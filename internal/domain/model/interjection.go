package model

import (
	"fmt"
	"time"

	"ai-debate-orchestrator/internal/domain"
)

type InterjectionType string

const (
	InterjectionComment   InterjectionType = "comment"
	InterjectionSteer     InterjectionType = "steer"
	InterjectionChallenge InterjectionType = "challenge"
	InterjectionClarify   InterjectionType = "clarify"
)

// ParseInterjectionType validates a caller-supplied type string.
// An empty string defaults to "comment".
func ParseInterjectionType(s string) (InterjectionType, error) {
	switch InterjectionType(s) {
	case "":
		return InterjectionComment, nil
	case InterjectionComment, InterjectionSteer, InterjectionChallenge, InterjectionClarify:
		return InterjectionType(s), nil
	default:
		return "", fmt.Errorf("%w: unknown interjection type %q", domain.ErrInvalidArgument, s)
	}
}

// Interjection is a user note submitted while a debate is running. It is
// never deleted, only marked consumed as participants incorporate it.
type Interjection struct {
	ID              string              `json:"id"`
	SessionID       string              `json:"session_id"`
	Content         string              `json:"content"`
	Type            InterjectionType    `json:"type"`
	TargetMessageID string              `json:"target_message_id,omitempty"`
	AfterTurn       int                 `json:"after_turn"` // turn index after which it was submitted
	AcknowledgedBy  map[string]struct{} `json:"-"`          // participant IDs that consumed it
	Consumed        bool                `json:"consumed"`
	CreatedAt       time.Time           `json:"created_at"`
}

func (i *Interjection) Acknowledge(participantID string) {
	if i.AcknowledgedBy == nil {
		i.AcknowledgedBy = make(map[string]struct{}, 2)
	}
	i.AcknowledgedBy[participantID] = struct{}{}
}

func (i *Interjection) AcknowledgedByParticipant(participantID string) bool {
	_, ok := i.AcknowledgedBy[participantID]
	return ok
}
