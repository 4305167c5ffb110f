package usecase

import (
	"ai-debate-orchestrator/internal/domain/model"
)

// TurnScheduler decides which participant speaks next. The only policy is
// strict round-robin over the ordered participant list; a participant never
// speaks twice within one round.
type TurnScheduler struct {
	participants []model.Participant
	queue        *InterjectionQueue
}

// NewTurnScheduler fails with ErrInvalidConfiguration (wrapped) when fewer
// than two participants are supplied: a debate needs at least two voices.
func NewTurnScheduler(participants []model.Participant, queue *InterjectionQueue) (*TurnScheduler, error) {
	if err := model.ValidateParticipants(participants); err != nil {
		return nil, err
	}
	return &TurnScheduler{participants: participants, queue: queue}, nil
}

// Next returns the participant for the given turn together with all pending
// interjections that participant should see. Draining marks each returned
// interjection acknowledged by the participant.
func (s *TurnScheduler) Next(turn int) (model.Participant, []*model.Interjection) {
	p := s.participants[turn%len(s.participants)]
	return p, s.queue.Drain(p.ID, turn)
}

func (s *TurnScheduler) ParticipantCount() int {
	return len(s.participants)
}
