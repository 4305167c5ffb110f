package usecase

import (
	"sync"

	"ai-debate-orchestrator/internal/domain/model"
)

// InterjectionQueue is the per-session FIFO of pending user interjections.
// Enqueue is safe from any goroutine while the session is active; Drain is
// called by the scheduler before each turn. Items are never removed, only
// marked consumed, and an item is delivered to at most `horizon` turns after
// the turn it was submitted on.
type InterjectionQueue struct {
	mu      sync.Mutex
	items   []*model.Interjection
	horizon int
}

const defaultInterjectionHorizon = 2

func NewInterjectionQueue(horizon int) *InterjectionQueue {
	if horizon <= 0 {
		horizon = defaultInterjectionHorizon
	}
	return &InterjectionQueue{horizon: horizon}
}

func (q *InterjectionQueue) Enqueue(inj *model.Interjection) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, inj)
}

// Drain returns, in submission order, every interjection still deliverable
// to the given turn that this participant has not yet consumed, and marks
// each one acknowledged by the participant. Items past the staleness horizon
// are marked consumed without delivery so the backlog stays bounded.
func (q *InterjectionQueue) Drain(participantID string, turn int) []*model.Interjection {
	q.mu.Lock()
	defer q.mu.Unlock()

	var out []*model.Interjection
	for _, it := range q.items {
		if it.Consumed {
			continue
		}
		if turn-it.AfterTurn >= q.horizon {
			// Stale: drop silently.
			it.Consumed = true
			continue
		}
		if turn < it.AfterTurn || it.AcknowledgedByParticipant(participantID) {
			continue
		}
		it.Acknowledge(participantID)
		if turn-it.AfterTurn == q.horizon-1 {
			// Last turn inside the horizon; fully consumed after this one.
			it.Consumed = true
		}
		out = append(out, it)
	}
	return out
}

// Pending counts interjections not yet consumed.
func (q *InterjectionQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, it := range q.items {
		if !it.Consumed {
			n++
		}
	}
	return n
}
