//go:build !integration

package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"ai-debate-orchestrator/internal/domain"
	"ai-debate-orchestrator/internal/domain/event"
	"ai-debate-orchestrator/internal/domain/model"
	"ai-debate-orchestrator/internal/domain/ports/adapter"
)

// Replies with pairwise-disjoint vocabulary so the keyword analyzer never
// reads accidental agreement into them.
var distinctReplies = []string{
	"Caching reduces latency dramatically.",
	"Sharding improves write throughput.",
	"Monitoring catches regressions early.",
	"Documentation helps onboarding engineers.",
	"Encryption protects customer records.",
	"Batching lowers network overhead.",
	"Indexes accelerate range queries.",
	"Observability simplifies incident response.",
}

func testParticipants() []model.Participant {
	return []model.Participant{
		{Model: "fake-a", Role: "architect", DisplayName: "Alpha"},
		{Model: "fake-b", Role: "pragmatist", DisplayName: "Beta"},
	}
}

func newTestUC(t *testing.T, ai adapter.AIServiceAdapter, settings DebateSettings) *debateUC {
	t.Helper()
	logger := zerolog.Nop()
	return NewDebateUseCase(settings, ai, nil, nil, nil, nil, &logger)
}

func disjointFakeAI() *fakeAI {
	ai := newFakeAI()
	ai.reply = func(call int, _ string, _ []adapter.Message) string {
		return distinctReplies[call%len(distinctReplies)]
	}
	return ai
}

func collectEvents(ch <-chan event.Event) []event.Event {
	var out []event.Event
	for ev := range ch {
		out = append(out, ev)
	}
	return out
}

func TestDebateFullTurnSequence(t *testing.T) {
	ai := disjointFakeAI()
	uc := newTestUC(t, ai, DebateSettings{DefaultMaxRounds: 3, RetryBackoff: time.Millisecond})

	sess, events, err := uc.Start(context.Background(), StartDebateRequest{
		Question:     "How should we scale the ingestion pipeline?",
		Participants: testParticipants(),
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	evs := collectEvents(events)

	if evs[0].Type() != event.TypeDebateStart {
		t.Errorf("expected debate_start first, got %s", evs[0].Type())
	}

	var starts []event.ModelStart
	completes := 0
	sawSynthesisStart, sawSynthesisComplete := false, false
	var final *event.DebateComplete
	for _, ev := range evs {
		switch v := ev.(type) {
		case event.ModelStart:
			starts = append(starts, v)
		case event.ModelComplete:
			completes++
		case event.SynthesisStart:
			sawSynthesisStart = true
		case event.SynthesisComplete:
			sawSynthesisComplete = true
		case event.DebateComplete:
			final = &v
		case event.DebateError:
			t.Fatalf("unexpected debate_error: %s", v.Error)
		}
	}

	// 2 participants x 3 rounds: turns 0..5, strict alternation.
	if len(starts) != 6 || completes != 6 {
		t.Fatalf("expected 6 turns, got %d starts / %d completes", len(starts), completes)
	}
	for i, ms := range starts {
		if ms.Turn != i {
			t.Errorf("turn %d: expected gapless turn number, got %d", i, ms.Turn)
		}
		wantModel := []string{"fake-a", "fake-b"}[i%2]
		if ms.ModelID != wantModel {
			t.Errorf("turn %d: expected %s to speak, got %s", i, wantModel, ms.ModelID)
		}
	}
	if !sawSynthesisStart || !sawSynthesisComplete {
		t.Error("expected synthesis_start and synthesis_complete")
	}
	if final == nil {
		t.Fatal("expected a debate_complete event")
	}
	if final.Status != string(model.DebateComplete) {
		t.Errorf("expected terminal status complete, got %s", final.Status)
	}
	if final.Consensus == nil || final.Consensus.Summary == "" {
		t.Error("expected a consensus summary on completion")
	}

	// Each message cost 10 in / 5 out at the default rate (25 micros).
	if final.Cost.CostMicros != 6*25 {
		t.Errorf("expected 150 cost micros (synthesis excluded), got %d", final.Cost.CostMicros)
	}

	snap, err := uc.Snapshot(sess.ID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Status != model.DebateComplete {
		t.Errorf("expected snapshot status complete, got %s", snap.Status)
	}
	if len(snap.Messages) != 6 {
		t.Fatalf("expected 6 messages, got %d", len(snap.Messages))
	}
	for i, m := range snap.Messages {
		if m.Turn != i {
			t.Errorf("message %d carries turn %d", i, m.Turn)
		}
	}
	if snap.RoundCount() != 3 {
		t.Errorf("expected 3 rounds, got %d", snap.RoundCount())
	}
}

func TestCostUpdatesAreMonotonic(t *testing.T) {
	ai := disjointFakeAI()
	uc := newTestUC(t, ai, DebateSettings{DefaultMaxRounds: 2, RetryBackoff: time.Millisecond})

	_, events, err := uc.Start(context.Background(), StartDebateRequest{
		Question:     "q",
		Participants: testParticipants(),
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	var last int64 = -1
	updates := 0
	for _, ev := range collectEvents(events) {
		cu, ok := ev.(event.CostUpdate)
		if !ok {
			continue
		}
		updates++
		if cu.Cost.CostMicros <= last {
			t.Errorf("cost update %d not strictly increasing: %d after %d", updates, cu.Cost.CostMicros, last)
		}
		last = cu.Cost.CostMicros
	}
	if updates != 4 {
		t.Errorf("expected one cost update per finalized message (4), got %d", updates)
	}
}

func TestStartValidation(t *testing.T) {
	uc := newTestUC(t, disjointFakeAI(), DebateSettings{})

	t.Run("empty question", func(t *testing.T) {
		_, _, err := uc.Start(context.Background(), StartDebateRequest{
			Question:     "  ",
			Participants: testParticipants(),
		})
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("single participant fails before any state change", func(t *testing.T) {
		sess, events, err := uc.Start(context.Background(), StartDebateRequest{
			Question:     "q",
			Participants: []model.Participant{{Model: "fake-a"}},
		})
		if !errors.Is(err, domain.ErrInvalidConfiguration) {
			t.Errorf("expected ErrInvalidConfiguration, got %v", err)
		}
		if sess != nil || events != nil {
			t.Error("expected no session and no stream on rejection")
		}
	})

	t.Run("unknown style", func(t *testing.T) {
		_, _, err := uc.Start(context.Background(), StartDebateRequest{
			Question:     "q",
			Style:        "shouting-match",
			Participants: testParticipants(),
		})
		if !errors.Is(err, domain.ErrInvalidConfiguration) {
			t.Errorf("expected ErrInvalidConfiguration, got %v", err)
		}
	})

	t.Run("rounds out of range", func(t *testing.T) {
		_, _, err := uc.Start(context.Background(), StartDebateRequest{
			Question:     "q",
			MaxRounds:    model.MaxRounds + 1,
			Participants: testParticipants(),
		})
		if !errors.Is(err, domain.ErrInvalidConfiguration) {
			t.Errorf("expected ErrInvalidConfiguration, got %v", err)
		}
	})
}

func TestCompletionFailurePreservesHistory(t *testing.T) {
	ai := disjointFakeAI()
	// Turn 2 fails its initial attempt and its single retry.
	boom := fmt.Errorf("provider unavailable")
	ai.errAt[2] = boom
	ai.errAt[3] = boom

	uc := newTestUC(t, ai, DebateSettings{
		DefaultMaxRounds: 3,
		MaxRetries:       1,
		RetryBackoff:     time.Millisecond,
	})

	sess, events, err := uc.Start(context.Background(), StartDebateRequest{
		Question:     "q",
		Participants: testParticipants(),
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	errorEvents := 0
	for _, ev := range collectEvents(events) {
		switch v := ev.(type) {
		case event.DebateError:
			errorEvents++
			if !strings.Contains(v.Error, "turn 2") {
				t.Errorf("expected the failing turn in the error, got %q", v.Error)
			}
		case event.DebateComplete:
			t.Error("failed debate must not emit debate_complete")
		}
	}
	if errorEvents != 1 {
		t.Fatalf("expected exactly one debate_error, got %d", errorEvents)
	}

	snap, err := uc.Snapshot(sess.ID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Status != model.DebateError {
		t.Errorf("expected status error, got %s", snap.Status)
	}
	if len(snap.Messages) != 2 {
		t.Fatalf("expected turns 0-1 preserved, got %d messages", len(snap.Messages))
	}
	if snap.Messages[0].Turn != 0 || snap.Messages[1].Turn != 1 {
		t.Error("preserved history lost its turn numbering")
	}
}

func TestCancelEndsAtTurnBoundary(t *testing.T) {
	ai := disjointFakeAI()
	uc := newTestUC(t, ai, DebateSettings{DefaultMaxRounds: 3, RetryBackoff: time.Millisecond})

	idCh := make(chan string, 1)
	ai.onCall = func(call int) {
		if call == 2 {
			if err := uc.Cancel(<-idCh); err != nil {
				t.Errorf("cancel: %v", err)
			}
		}
	}

	sess, events, err := uc.Start(context.Background(), StartDebateRequest{
		Question:     "q",
		Participants: testParticipants(),
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	idCh <- sess.ID

	completes := 0
	var final *event.DebateComplete
	for _, ev := range collectEvents(events) {
		switch v := ev.(type) {
		case event.ModelComplete:
			completes++
		case event.SynthesisStart:
			t.Error("cancelled debate must not synthesize")
		case event.DebateError:
			t.Errorf("cancellation is not an error: %s", v.Error)
		case event.DebateComplete:
			final = &v
		}
	}

	// The in-flight turn finishes; cancellation lands at the next boundary.
	if completes != 3 {
		t.Errorf("expected 3 finalized turns, got %d", completes)
	}
	if final == nil || final.Status != string(model.DebateUserEnded) {
		t.Fatalf("expected debate_complete with user_ended, got %+v", final)
	}

	snap, _ := uc.Snapshot(sess.ID)
	if snap.Status != model.DebateUserEnded {
		t.Errorf("expected snapshot status user_ended, got %s", snap.Status)
	}
	if len(snap.Messages) != completes {
		t.Errorf("history truncated on cancel: %d messages for %d completes", len(snap.Messages), completes)
	}
}

func TestEarlyStopOnSustainedAgreement(t *testing.T) {
	ai := newFakeAI()
	ai.reply = func(call int, _ string, _ []adapter.Message) string {
		if call == 0 {
			return "We should adopt caching for the hot path."
		}
		return "I agree with the previous point entirely."
	}

	uc := newTestUC(t, ai, DebateSettings{
		DefaultMaxRounds:     3,
		MinRounds:            1,
		EarlyStopOnAgreement: true,
		RetryBackoff:         time.Millisecond,
	})

	sess, events, err := uc.Start(context.Background(), StartDebateRequest{
		Question:     "q",
		Participants: testParticipants(),
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	agreements, completes := 0, 0
	var final *event.DebateComplete
	for _, ev := range collectEvents(events) {
		switch v := ev.(type) {
		case event.AgreementDetected:
			agreements++
		case event.ModelComplete:
			completes++
		case event.DebateComplete:
			final = &v
		}
	}

	if agreements != 1 {
		t.Errorf("expected exactly one agreement_detected, got %d", agreements)
	}
	if completes >= 6 {
		t.Errorf("expected early stop before the full 6 turns, got %d", completes)
	}
	if completes < 2 {
		t.Errorf("early stop must respect the one-round floor, got %d turns", completes)
	}
	if completes%2 != 0 {
		t.Errorf("early stop must land on a round boundary, got %d turns for 2 participants", completes)
	}
	if final == nil || final.Status != string(model.DebateComplete) {
		t.Fatal("early-stopped debate still completes with consensus")
	}

	snap, _ := uc.Snapshot(sess.ID)
	if snap.Consensus == nil {
		t.Error("expected consensus after early stop")
	}
}

func TestInterjectionReachesNextTurnPrompt(t *testing.T) {
	ai := disjointFakeAI()
	uc := newTestUC(t, ai, DebateSettings{DefaultMaxRounds: 2, RetryBackoff: time.Millisecond})

	idCh := make(chan string, 1)
	ai.onCall = func(call int) {
		if call == 0 {
			id := <-idCh
			if _, err := uc.Interject(context.Background(), id, "Please consider operational cost.", "steer", ""); err != nil {
				t.Errorf("interject: %v", err)
			}
		}
	}

	sess, events, err := uc.Start(context.Background(), StartDebateRequest{
		Question:     "q",
		Participants: testParticipants(),
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	idCh <- sess.ID
	collectEvents(events)

	// Turn 0 was already scheduled when the interjection arrived, so it is
	// first deliverable on turn 1.
	turn0 := ai.promptAt(0)
	for _, m := range turn0 {
		if strings.Contains(m.Content, "User interjection") {
			t.Error("interjection leaked into the turn that was already in flight")
		}
	}
	turn1 := ai.promptAt(1)
	found := false
	for _, m := range turn1 {
		if strings.Contains(m.Content, "[User interjection (steer)] Please consider operational cost.") {
			found = true
		}
	}
	if !found {
		t.Error("expected the interjection in the next turn's prompt")
	}
}

func TestInterjectLifecycleErrors(t *testing.T) {
	ai := disjointFakeAI()
	uc := newTestUC(t, ai, DebateSettings{DefaultMaxRounds: 1, RetryBackoff: time.Millisecond})

	if _, err := uc.Interject(context.Background(), "nope", "hello", "", ""); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown session, got %v", err)
	}

	sess, events, err := uc.Start(context.Background(), StartDebateRequest{
		Question:     "q",
		Participants: testParticipants(),
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	collectEvents(events) // run to completion

	if _, err := uc.Interject(context.Background(), sess.ID, "too late", "", ""); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState after completion, got %v", err)
	}
	if err := uc.Cancel(sess.ID); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState cancelling a finished debate, got %v", err)
	}
}

func TestReapFinished(t *testing.T) {
	ai := disjointFakeAI()
	uc := newTestUC(t, ai, DebateSettings{DefaultMaxRounds: 1, RetryBackoff: time.Millisecond})

	sess, events, err := uc.Start(context.Background(), StartDebateRequest{
		Question:     "q",
		Participants: testParticipants(),
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	collectEvents(events)

	if n := uc.ReapFinished(time.Hour); n != 0 {
		t.Errorf("retention window not passed, expected 0 reaped, got %d", n)
	}
	if n := uc.ReapFinished(0); n != 1 {
		t.Errorf("expected 1 reaped, got %d", n)
	}
	if _, err := uc.Snapshot(sess.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after reaping, got %v", err)
	}
}

func TestZeroUsageProviderFallsBackToCounting(t *testing.T) {
	ai := disjointFakeAI()
	ai.usage = adapter.Usage{} // provider streams no usage block
	uc := newTestUC(t, ai, DebateSettings{DefaultMaxRounds: 1, RetryBackoff: time.Millisecond})

	sess, events, err := uc.Start(context.Background(), StartDebateRequest{
		Question:     "q",
		Participants: testParticipants(),
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	var final *event.DebateComplete
	for _, ev := range collectEvents(events) {
		if v, ok := ev.(event.DebateComplete); ok {
			final = &v
		}
	}
	if final == nil {
		t.Fatal("expected a debate_complete event")
	}

	// The fake tokenizer counts 10 tokens per prompt message. Turn 0's prompt
	// is system+nudge (20 in), turn 1's adds the first reply (30 in); each
	// reply counts as one message (10 out). Default rate: 1000/3000 micros
	// per 1K tokens.
	if final.Cost.InputTokens != 50 || final.Cost.OutputTokens != 20 {
		t.Errorf("expected 50 in / 20 out from the tokenizer fallback, got %d / %d",
			final.Cost.InputTokens, final.Cost.OutputTokens)
	}
	if final.Cost.CostMicros != 110 {
		t.Errorf("expected 110 cost micros, got %d", final.Cost.CostMicros)
	}

	snap, err := uc.Snapshot(sess.ID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Messages[0].InputTokens != 20 || snap.Messages[0].OutputTokens != 10 {
		t.Errorf("turn 0 token counts not backfilled: %d in / %d out",
			snap.Messages[0].InputTokens, snap.Messages[0].OutputTokens)
	}
	if snap.Messages[1].InputTokens != 30 {
		t.Errorf("turn 1 prompt count wrong: %d in", snap.Messages[1].InputTokens)
	}
}

// holdRunner accepts tasks without running them, so tests can act on a
// session before its loop goroutine has moved it out of starting.
type holdRunner struct {
	tasks []func(ctx context.Context) error
}

func (r *holdRunner) Submit(task func(ctx context.Context) error) error {
	r.tasks = append(r.tasks, task)
	return nil
}

func TestControlOpsAcceptedBeforeFirstTurn(t *testing.T) {
	runner := &holdRunner{}
	logger := zerolog.Nop()
	uc := NewDebateUseCase(DebateSettings{}, disjointFakeAI(), nil, nil, runner, nil, &logger)

	sess, events, err := uc.Start(context.Background(), StartDebateRequest{
		Question:     "q",
		Participants: testParticipants(),
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	snap, _ := uc.Snapshot(sess.ID)
	if snap.Status != model.DebateStarting {
		t.Fatalf("expected the session still starting, got %s", snap.Status)
	}

	if _, err := uc.Interject(context.Background(), sess.ID, "note", "", ""); err != nil {
		t.Errorf("interjection right after Start must be accepted, got %v", err)
	}
	if err := uc.Cancel(sess.ID); err != nil {
		t.Errorf("cancel right after Start must be accepted, got %v", err)
	}

	if len(runner.tasks) != 1 {
		t.Fatalf("expected one queued loop task, got %d", len(runner.tasks))
	}
	_ = runner.tasks[0](context.Background())

	var final *event.DebateComplete
	for _, ev := range collectEvents(events) {
		switch v := ev.(type) {
		case event.ModelStart:
			t.Error("pre-start cancellation must prevent every turn")
		case event.DebateComplete:
			final = &v
		}
	}
	if final == nil || final.Status != string(model.DebateUserEnded) {
		t.Fatalf("expected debate_complete with user_ended, got %+v", final)
	}
}

type rejectingRunner struct{}

func (rejectingRunner) Submit(func(ctx context.Context) error) error {
	return errors.New("queue full")
}

func TestStartRejectedWhenRunnerSaturated(t *testing.T) {
	logger := zerolog.Nop()
	uc := NewDebateUseCase(DebateSettings{}, disjointFakeAI(), nil, nil, rejectingRunner{}, nil, &logger)

	sess, _, err := uc.Start(context.Background(), StartDebateRequest{
		Question:     "q",
		Participants: testParticipants(),
	})
	if !errors.Is(err, domain.ErrTooManyDebates) {
		t.Fatalf("expected ErrTooManyDebates, got %v", err)
	}
	if sess != nil {
		t.Error("expected no session on capacity rejection")
	}
	if n := uc.ReapFinished(0); n != 0 {
		t.Errorf("rejected session must not linger in the registry, reaped %d", n)
	}
}

func TestSynthesisFailureIsError(t *testing.T) {
	ai := disjointFakeAI()
	ai.chatErr = errors.New("synthesis provider down")
	uc := newTestUC(t, ai, DebateSettings{DefaultMaxRounds: 1, MaxRetries: 0, RetryBackoff: time.Millisecond})

	sess, events, err := uc.Start(context.Background(), StartDebateRequest{
		Question:     "q",
		Participants: testParticipants(),
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	sawError := false
	for _, ev := range collectEvents(events) {
		if _, ok := ev.(event.DebateError); ok {
			sawError = true
		}
		if _, ok := ev.(event.SynthesisComplete); ok {
			t.Error("failed synthesis must not emit synthesis_complete")
		}
	}
	if !sawError {
		t.Error("expected debate_error on synthesis failure")
	}

	snap, _ := uc.Snapshot(sess.ID)
	if snap.Status != model.DebateError {
		t.Errorf("expected status error, got %s", snap.Status)
	}
	if len(snap.Messages) != 2 {
		t.Errorf("transcript must survive synthesis failure, got %d messages", len(snap.Messages))
	}
	if snap.Consensus != nil {
		t.Error("no fabricated consensus on synthesis failure")
	}
}
