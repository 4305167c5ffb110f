package model

import (
	"fmt"
	"strings"

	"ai-debate-orchestrator/internal/domain"
)

// Participant is one debater in a session. The ordered participant list is
// fixed at session creation and defines turn order.
type Participant struct {
	ID           string `json:"id" yaml:"id"`
	Model        string `json:"model" yaml:"model"`
	Role         string `json:"role" yaml:"role"` // e.g. "architect", "critic"
	DisplayName  string `json:"display_name" yaml:"display_name"`
	Instructions string `json:"instructions,omitempty" yaml:"instructions,omitempty"` // per-participant override
}

func (p Participant) Name() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	if p.Role != "" {
		return p.Role
	}
	return p.Model
}

// ValidateParticipants enforces the minimum debate shape: at least two
// entries, each with a model reference.
func ValidateParticipants(parts []Participant) error {
	if len(parts) < 2 {
		return fmt.Errorf("%w: a debate requires at least 2 participants, got %d", domain.ErrInvalidConfiguration, len(parts))
	}
	for i, p := range parts {
		if strings.TrimSpace(p.Model) == "" {
			return fmt.Errorf("%w: participant %d has no model", domain.ErrInvalidConfiguration, i)
		}
	}
	return nil
}
