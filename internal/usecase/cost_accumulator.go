package usecase

import (
	"sync"

	"ai-debate-orchestrator/internal/domain/model"
	"ai-debate-orchestrator/internal/domain/ports/adapter"
)

// CostAccumulator keeps running token and cost totals per participant.
// Totals are strictly additive; nothing ever resets within a session.
type CostAccumulator struct {
	rates model.RateTable

	mu            sync.Mutex
	byParticipant map[string]model.ParticipantCost
	totals        model.ParticipantCost
}

func NewCostAccumulator(rates model.RateTable) *CostAccumulator {
	if rates == nil {
		rates = model.DefaultRateTable()
	}
	return &CostAccumulator{
		rates:         rates,
		byParticipant: make(map[string]model.ParticipantCost, 4),
	}
}

// Add records the usage of one finalized message and returns the updated
// snapshot.
func (a *CostAccumulator) Add(participantID, modelName string, usage adapter.Usage) model.CostReport {
	rate := a.rates.RateFor(modelName)
	delta := rate.CostMicros(usage.PromptTokens, usage.CompletionTokens)

	a.mu.Lock()
	defer a.mu.Unlock()

	pc := a.byParticipant[participantID]
	pc.InputTokens += usage.PromptTokens
	pc.OutputTokens += usage.CompletionTokens
	pc.CostMicros += delta
	a.byParticipant[participantID] = pc

	a.totals.InputTokens += usage.PromptTokens
	a.totals.OutputTokens += usage.CompletionTokens
	a.totals.CostMicros += delta

	return a.snapshotLocked()
}

// Snapshot returns a point-in-time copy of the running totals.
func (a *CostAccumulator) Snapshot() model.CostReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

// TotalCostMicros is the sum across participants.
func (a *CostAccumulator) TotalCostMicros() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.totals.CostMicros
}

func (a *CostAccumulator) snapshotLocked() model.CostReport {
	by := make(map[string]model.ParticipantCost, len(a.byParticipant))
	for k, v := range a.byParticipant {
		by[k] = v
	}
	return model.CostReport{
		ByParticipant: by,
		InputTokens:   a.totals.InputTokens,
		OutputTokens:  a.totals.OutputTokens,
		CostMicros:    a.totals.CostMicros,
	}
}
