//go:build !integration

package usecase

import (
	"testing"

	"ai-debate-orchestrator/internal/domain/model"
	"ai-debate-orchestrator/internal/domain/ports/adapter"
)

func TestCostAccumulatorAdds(t *testing.T) {
	rates := model.RateTable{
		"model-x": {InputMicrosPer1K: 1000, OutputMicrosPer1K: 2000},
	}
	acc := NewCostAccumulator(rates)

	r1 := acc.Add("p1", "model-x", adapter.Usage{PromptTokens: 1000, CompletionTokens: 500})
	if r1.CostMicros != 1000+1000 {
		t.Errorf("expected 2000 micros after first add, got %d", r1.CostMicros)
	}

	r2 := acc.Add("p2", "model-x", adapter.Usage{PromptTokens: 2000, CompletionTokens: 0})
	if r2.CostMicros != 2000+2000 {
		t.Errorf("expected 4000 micros after second add, got %d", r2.CostMicros)
	}
	if r2.InputTokens != 3000 || r2.OutputTokens != 500 {
		t.Errorf("token totals wrong: %d in / %d out", r2.InputTokens, r2.OutputTokens)
	}

	p1 := r2.ByParticipant["p1"]
	p2 := r2.ByParticipant["p2"]
	if p1.CostMicros != 2000 || p2.CostMicros != 2000 {
		t.Errorf("per-participant split wrong: p1=%d p2=%d", p1.CostMicros, p2.CostMicros)
	}
	if acc.TotalCostMicros() != 4000 {
		t.Errorf("expected running total 4000, got %d", acc.TotalCostMicros())
	}
}

func TestCostSnapshotIsIsolated(t *testing.T) {
	acc := NewCostAccumulator(nil)
	acc.Add("p1", "gpt-4o", adapter.Usage{PromptTokens: 100, CompletionTokens: 100})

	snap := acc.Snapshot()
	snap.ByParticipant["p1"] = model.ParticipantCost{CostMicros: 999999}
	snap.CostMicros = -1

	fresh := acc.Snapshot()
	if fresh.CostMicros <= 0 {
		t.Error("mutating a snapshot leaked into the accumulator")
	}
	if fresh.ByParticipant["p1"].CostMicros == 999999 {
		t.Error("mutating a snapshot map leaked into the accumulator")
	}
}
