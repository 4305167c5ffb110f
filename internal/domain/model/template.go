package model

import (
	"fmt"
	"strings"
	"time"

	"ai-debate-orchestrator/internal/domain"
)

const (
	MinRounds = 1
	MaxRounds = 20
)

// DebateTemplate is a reusable named preset for starting debates. Templates
// are read-only inputs to session creation; the debate never mutates them.
type DebateTemplate struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	Style        DebateStyle   `json:"style"`
	MaxRounds    int           `json:"max_rounds"`
	Participants []Participant `json:"participants"`
	BuiltIn      bool          `json:"built_in"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func (t *DebateTemplate) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: template name required", domain.ErrInvalidArgument)
	}
	if t.MaxRounds < MinRounds || t.MaxRounds > MaxRounds {
		return fmt.Errorf("%w: max_rounds must be within [%d, %d], got %d",
			domain.ErrInvalidConfiguration, MinRounds, MaxRounds, t.MaxRounds)
	}
	if err := ValidateParticipants(t.Participants); err != nil {
		return err
	}
	switch t.Style {
	case StyleCooperative, StyleAdversarial, StyleRedTeam, StylePanel:
		return nil
	default:
		return fmt.Errorf("%w: unknown style %q", domain.ErrInvalidConfiguration, t.Style)
	}
}

func (t *DebateTemplate) Clone() *DebateTemplate {
	cp := *t
	cp.Participants = append([]Participant(nil), t.Participants...)
	return &cp
}
