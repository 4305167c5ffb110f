//go:build !integration

package usecase

import (
	"errors"
	"testing"

	"ai-debate-orchestrator/internal/domain"
	"ai-debate-orchestrator/internal/domain/model"
)

func TestTurnSchedulerRoundRobin(t *testing.T) {
	parts := []model.Participant{
		{ID: "a", Model: "m1"},
		{ID: "b", Model: "m2"},
		{ID: "c", Model: "m3"},
	}
	s, err := NewTurnScheduler(parts, NewInterjectionQueue(0))
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	if s.ParticipantCount() != 3 {
		t.Fatalf("expected 3 participants, got %d", s.ParticipantCount())
	}

	want := []string{"a", "b", "c", "a", "b", "c", "a"}
	for turn, id := range want {
		p, _ := s.Next(turn)
		if p.ID != id {
			t.Errorf("turn %d: expected %s, got %s", turn, id, p.ID)
		}
	}
}

func TestTurnSchedulerNeedsTwoParticipants(t *testing.T) {
	_, err := NewTurnScheduler([]model.Participant{{ID: "solo", Model: "m"}}, NewInterjectionQueue(0))
	if !errors.Is(err, domain.ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration, got %v", err)
	}
}
