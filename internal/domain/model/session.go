package model

import (
	"time"
)

type DebateStatus string

const (
	DebateStarting     DebateStatus = "starting"
	DebateDebating     DebateStatus = "debating"
	DebateSynthesizing DebateStatus = "synthesizing"
	DebateComplete     DebateStatus = "complete"
	DebateUserEnded    DebateStatus = "user_ended"
	DebateError        DebateStatus = "error"
)

// Terminal reports whether the status admits no further transitions.
func (s DebateStatus) Terminal() bool {
	switch s {
	case DebateComplete, DebateUserEnded, DebateError:
		return true
	}
	return false
}

type DebateStyle string

const (
	StyleCooperative DebateStyle = "cooperative"
	StyleAdversarial DebateStyle = "adversarial"
	StyleRedTeam     DebateStyle = "red_team"
	StylePanel       DebateStyle = "panel"
)

// DebateSession is the aggregate root for one debate. It is owned exclusively
// by the controller goroutine serving it; outside callers see copies.
type DebateSession struct {
	ID           string        `json:"id"`
	Question     string        `json:"question"`
	Style        DebateStyle   `json:"style"`
	Participants []Participant `json:"participants"`
	Messages     []Message     `json:"messages"`
	Status       DebateStatus  `json:"status"`
	MaxRounds    int           `json:"max_rounds"`
	Consensus    *Consensus    `json:"consensus,omitempty"`
	Cost         CostReport    `json:"cost"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func NewDebateSession(id, question string, style DebateStyle, participants []Participant, maxRounds int) *DebateSession {
	now := time.Now()
	return &DebateSession{
		ID:           id,
		Question:     question,
		Style:        style,
		Participants: participants,
		Messages:     make([]Message, 0, len(participants)*maxRounds),
		Status:       DebateStarting,
		MaxRounds:    maxRounds,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NextTurn is the turn number the next finalized message will carry.
// Turn numbers are gapless and strictly increasing, so this is simply the
// message count.
func (s *DebateSession) NextTurn() int {
	return len(s.Messages)
}

// RoundCount is ceil(messages / participants).
func (s *DebateSession) RoundCount() int {
	n := len(s.Participants)
	if n == 0 {
		return 0
	}
	return (len(s.Messages) + n - 1) / n
}

// RoundComplete reports whether every participant has spoken in the current
// round, i.e. the message count is a whole multiple of the participant count.
func (s *DebateSession) RoundComplete() bool {
	n := len(s.Participants)
	return n > 0 && len(s.Messages)%n == 0
}

func (s *DebateSession) AddMessage(m Message) {
	s.Messages = append(s.Messages, m)
	s.UpdatedAt = time.Now()
}

// MessagesByParticipant returns the concatenated transcript text of one
// participant, used by the position analyzer.
func (s *DebateSession) MessagesByParticipant(participantID string) []Message {
	out := make([]Message, 0, len(s.Messages))
	for _, m := range s.Messages {
		if m.ParticipantID == participantID {
			out = append(out, m)
		}
	}
	return out
}

// Clone returns a deep-enough copy safe to hand to readers outside the
// controller goroutine.
func (s *DebateSession) Clone() *DebateSession {
	cp := *s
	cp.Participants = append([]Participant(nil), s.Participants...)
	cp.Messages = append([]Message(nil), s.Messages...)
	cp.Cost = s.Cost.Clone()
	if s.Consensus != nil {
		c := *s.Consensus
		c.Agreements = append([]string(nil), s.Consensus.Agreements...)
		c.Disagreements = append([]string(nil), s.Consensus.Disagreements...)
		cp.Consensus = &c
	}
	return &cp
}
