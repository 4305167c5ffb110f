package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ai-debate-orchestrator/internal/domain"
	"ai-debate-orchestrator/internal/domain/event"
	"ai-debate-orchestrator/internal/domain/model"
	"ai-debate-orchestrator/internal/domain/ports/adapter"
	"ai-debate-orchestrator/internal/infra/logging"
)

// Compile-time check
var _ DebateUseCase = (*debateUC)(nil)

// DebateUseCase is the public contract of the session controller.
type DebateUseCase interface {
	// Start validates the request, registers a session and begins the turn
	// loop. The returned channel carries the session's totally ordered event
	// stream and is closed when the session reaches a terminal status.
	Start(ctx context.Context, req StartDebateRequest) (*model.DebateSession, <-chan event.Event, error)

	// Cancel requests user-ended termination. Honored at the next safe
	// checkpoint: after the in-flight completion finishes, never mid-token.
	Cancel(sessionID string) error

	// Interject queues a user note for upcoming turns. Valid from the moment
	// Start returns until the session reaches a terminal status.
	Interject(ctx context.Context, sessionID, content, injType, targetMessageID string) (*model.Interjection, error)

	// Snapshot returns a point-in-time copy of the session.
	Snapshot(sessionID string) (*model.DebateSession, error)

	// ReapFinished drops terminal sessions older than the given age from the
	// registry and returns how many were removed.
	ReapFinished(olderThan time.Duration) int
}

type StartDebateRequest struct {
	Question     string
	Style        model.DebateStyle
	MaxRounds    int
	TemplateID   string
	Participants []model.Participant
}

// Runner bounds how many debate loops execute concurrently. Satisfied by the
// worker pool; nil means plain goroutines.
type Runner interface {
	Submit(task func(ctx context.Context) error) error
}

// DebateSettings tunes the controller. Zero values fall back to defaults.
type DebateSettings struct {
	DefaultMaxRounds     int
	MinRounds            int  // round floor before agreement may end the debate
	EarlyStopOnAgreement bool // policy: sustained agreement shortens the debate
	InterjectionHorizon  int  // turns an interjection stays deliverable
	MaxRetries           int  // completion retries per turn
	RetryBackoff         time.Duration
	EventBuffer          int
	SynthesisModel       string // defaults to the first participant's model
}

func (s DebateSettings) withDefaults() DebateSettings {
	if s.DefaultMaxRounds <= 0 {
		s.DefaultMaxRounds = 3
	}
	if s.MinRounds <= 0 {
		s.MinRounds = 1
	}
	if s.InterjectionHorizon <= 0 {
		s.InterjectionHorizon = defaultInterjectionHorizon
	}
	if s.MaxRetries < 0 {
		s.MaxRetries = 0
	}
	if s.RetryBackoff <= 0 {
		s.RetryBackoff = 500 * time.Millisecond
	}
	if s.EventBuffer <= 0 {
		s.EventBuffer = 64
	}
	return s
}

type debateUC struct {
	settings  DebateSettings
	ai        adapter.AIServiceAdapter
	analyzer  AgreementAnalyzer
	templates TemplateUseCase // optional; required only for template starts
	runner    Runner          // optional
	rates     model.RateTable
	log       *zerolog.Logger

	mu   sync.RWMutex
	runs map[string]*debateRun
}

func NewDebateUseCase(
	settings DebateSettings,
	ai adapter.AIServiceAdapter,
	analyzer AgreementAnalyzer,
	templates TemplateUseCase,
	runner Runner,
	rates model.RateTable,
	logger *zerolog.Logger,
) *debateUC {
	if analyzer == nil {
		analyzer = NewKeywordAnalyzer()
	}
	if rates == nil {
		rates = model.DefaultRateTable()
	}
	return &debateUC{
		settings:  settings.withDefaults(),
		ai:        ai,
		analyzer:  analyzer,
		templates: templates,
		runner:    runner,
		rates:     rates,
		log:       logger,
		runs:      make(map[string]*debateRun),
	}
}

// debateRun is the controller-side state of one live session. The loop
// goroutine is the only writer of sess; external readers take the lock and
// receive copies.
type debateRun struct {
	mu    sync.RWMutex
	sess  *model.DebateSession
	queue *InterjectionQueue
	sched *TurnScheduler
	costs *CostAccumulator

	events    chan event.Event
	cancelled atomic.Bool
}

func (r *debateRun) status() model.DebateStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sess.Status
}

func (r *debateRun) setStatus(st model.DebateStatus) {
	r.mu.Lock()
	r.sess.Status = st
	r.sess.UpdatedAt = time.Now()
	r.mu.Unlock()
}

func (r *debateRun) snapshot() *model.DebateSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sess.Clone()
}

func (uc *debateUC) Start(ctx context.Context, req StartDebateRequest) (*model.DebateSession, <-chan event.Event, error) {
	defer logging.TraceDuration(uc.log, "DebateUC.Start")()

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, nil, fmt.Errorf("%w: question required", domain.ErrInvalidArgument)
	}

	style := req.Style
	maxRounds := req.MaxRounds
	participants := append([]model.Participant(nil), req.Participants...)

	if req.TemplateID != "" {
		if uc.templates == nil {
			return nil, nil, fmt.Errorf("%w: template resolution not configured", domain.ErrInvalidConfiguration)
		}
		tpl, err := uc.templates.Resolve(ctx, req.TemplateID)
		if err != nil {
			return nil, nil, err
		}
		if style == "" {
			style = tpl.Style
		}
		if maxRounds == 0 {
			maxRounds = tpl.MaxRounds
		}
		if len(participants) == 0 {
			participants = tpl.Participants
		}
	}

	if style == "" {
		style = model.StyleCooperative
	}
	switch style {
	case model.StyleCooperative, model.StyleAdversarial, model.StyleRedTeam, model.StylePanel:
	default:
		return nil, nil, fmt.Errorf("%w: unknown style %q", domain.ErrInvalidConfiguration, style)
	}
	if maxRounds == 0 {
		maxRounds = uc.settings.DefaultMaxRounds
	}
	if maxRounds < model.MinRounds || maxRounds > model.MaxRounds {
		return nil, nil, fmt.Errorf("%w: max_rounds must be within [%d, %d], got %d",
			domain.ErrInvalidConfiguration, model.MinRounds, model.MaxRounds, maxRounds)
	}
	for i := range participants {
		if participants[i].ID == "" {
			participants[i].ID = uuid.NewString()
		}
	}

	queue := NewInterjectionQueue(uc.settings.InterjectionHorizon)
	sched, err := NewTurnScheduler(participants, queue)
	if err != nil {
		// Rejected before any state transition: no session, no messages.
		return nil, nil, err
	}

	sess := model.NewDebateSession(uuid.NewString(), question, style, participants, maxRounds)
	run := &debateRun{
		sess:   sess,
		queue:  queue,
		sched:  sched,
		costs:  NewCostAccumulator(uc.rates),
		events: make(chan event.Event, uc.settings.EventBuffer),
	}

	uc.mu.Lock()
	uc.runs[sess.ID] = run
	uc.mu.Unlock()

	callerCtx := ctx
	task := func(poolCtx context.Context) error {
		// The loop observes both the caller going away and pool shutdown.
		loopCtx, cancel := context.WithCancel(callerCtx)
		defer cancel()
		stop := context.AfterFunc(poolCtx, cancel)
		defer stop()
		uc.runLoop(loopCtx, run)
		return nil
	}
	if uc.runner != nil {
		if err := uc.runner.Submit(task); err != nil {
			uc.mu.Lock()
			delete(uc.runs, sess.ID)
			uc.mu.Unlock()
			return nil, nil, fmt.Errorf("%w: %v", domain.ErrTooManyDebates, err)
		}
	} else {
		go func() { _ = task(context.Background()) }()
	}

	return run.snapshot(), run.events, nil
}

func (uc *debateUC) Cancel(sessionID string) error {
	run := uc.run(sessionID)
	if run == nil {
		return domain.ErrNotFound
	}
	switch run.status() {
	case model.DebateStarting, model.DebateDebating:
	default:
		return domain.ErrInvalidState
	}
	run.cancelled.Store(true)
	return nil
}

func (uc *debateUC) Interject(ctx context.Context, sessionID, content, injType, targetMessageID string) (*model.Interjection, error) {
	run := uc.run(sessionID)
	if run == nil {
		return nil, domain.ErrNotFound
	}
	typ, err := model.ParseInterjectionType(injType)
	if err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: empty interjection", domain.ErrInvalidArgument)
	}

	run.mu.RLock()
	st := run.sess.Status
	afterTurn := run.sess.NextTurn()
	run.mu.RUnlock()
	if st.Terminal() {
		return nil, domain.ErrInvalidState
	}

	inj := &model.Interjection{
		ID:              uuid.NewString(),
		SessionID:       sessionID,
		Content:         content,
		Type:            typ,
		TargetMessageID: targetMessageID,
		AfterTurn:       afterTurn,
		CreatedAt:       time.Now(),
	}
	run.queue.Enqueue(inj)
	return inj, nil
}

func (uc *debateUC) Snapshot(sessionID string) (*model.DebateSession, error) {
	run := uc.run(sessionID)
	if run == nil {
		return nil, domain.ErrNotFound
	}
	return run.snapshot(), nil
}

func (uc *debateUC) ReapFinished(olderThan time.Duration) int {
	cutoff := time.Now().Add(-olderThan)
	uc.mu.Lock()
	defer uc.mu.Unlock()
	n := 0
	for id, run := range uc.runs {
		run.mu.RLock()
		dead := run.sess.Status.Terminal() && run.sess.UpdatedAt.Before(cutoff)
		run.mu.RUnlock()
		if dead {
			delete(uc.runs, id)
			n++
		}
	}
	return n
}

func (uc *debateUC) run(sessionID string) *debateRun {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.runs[sessionID]
}

// ---- the turn loop ----

func (uc *debateUC) runLoop(ctx context.Context, run *debateRun) {
	defer close(run.events)
	log := uc.log.With().Str("session_id", run.sess.ID).Logger()
	start := time.Now()

	uc.emit(ctx, run, event.DebateStart{SessionID: run.sess.ID})
	run.setStatus(model.DebateDebating)

	nParts := run.sched.ParticipantCount()
	maxTurns := run.sess.MaxRounds * nParts
	earlyStopFloor := uc.settings.MinRounds * nParts

	agreementSignalled := false
	prevAgreement := false
	prevParticipant := ""

	for turn := 0; turn < maxTurns; turn++ {
		// Safe checkpoint: between turns, never mid-token.
		if run.cancelled.Load() || ctx.Err() != nil {
			uc.endUserCancelled(ctx, run, &log)
			return
		}
		// Agreement ends the debate only at a round boundary, so every
		// participant gets a final say in the round that settled it.
		if uc.settings.EarlyStopOnAgreement && agreementSignalled &&
			turn >= earlyStopFloor && run.sess.RoundComplete() {
			log.Info().Int("turn", turn).Msg("sustained agreement, moving to synthesis early")
			break
		}

		p, injs := run.sched.Next(turn)
		prompt := buildTurnMessages(run.sess, p, injs)

		content, usage, err := uc.completeTurn(ctx, run, p, turn, prompt, &log)
		if err != nil {
			if ctx.Err() != nil || run.cancelled.Load() {
				// Aborted by the caller: not an error, and the partial
				// message is discarded entirely.
				uc.endUserCancelled(ctx, run, &log)
				return
			}
			uc.fail(ctx, run, &log, fmt.Errorf("%w: turn %d (%s): %v", domain.ErrCompletionFailed, turn, p.Model, err))
			return
		}

		agreement := uc.analyzer.Affirms(p.ID, content, run.sess.Messages)
		msg := model.Message{
			ID:            uuid.NewString(),
			SessionID:     run.sess.ID,
			ParticipantID: p.ID,
			Turn:          turn,
			Role:          p.Role,
			Content:       content,
			Agreement:     agreement,
			InputTokens:   usage.PromptTokens,
			OutputTokens:  usage.CompletionTokens,
			CreatedAt:     time.Now(),
		}
		run.mu.Lock()
		run.sess.AddMessage(msg)
		run.mu.Unlock()
		uc.emit(ctx, run, event.ModelComplete{})

		if agreement && prevAgreement && prevParticipant != p.ID && !agreementSignalled {
			agreementSignalled = true
			uc.emit(ctx, run, event.AgreementDetected{})
			log.Debug().Int("turn", turn).Msg("agreement streak detected")
		}
		if !agreement {
			agreementSignalled = false
		}
		prevAgreement, prevParticipant = agreement, p.ID

		report := run.costs.Add(p.ID, p.Model, usage)
		run.mu.Lock()
		run.sess.Cost = report
		run.mu.Unlock()
		uc.emit(ctx, run, event.CostUpdate{Cost: report})
	}

	if run.cancelled.Load() || ctx.Err() != nil {
		uc.endUserCancelled(ctx, run, &log)
		return
	}

	run.setStatus(model.DebateSynthesizing)
	uc.emit(ctx, run, event.SynthesisStart{})

	cons, err := uc.synthesize(ctx, run, &log)
	if err != nil {
		// History up to this point stays intact; never substitute a
		// fabricated consensus.
		uc.fail(ctx, run, &log, fmt.Errorf("%w: %v", domain.ErrSynthesisFailed, err))
		return
	}

	run.mu.Lock()
	run.sess.Consensus = cons
	run.sess.Status = model.DebateComplete
	run.sess.UpdatedAt = time.Now()
	run.mu.Unlock()

	uc.emit(ctx, run, event.SynthesisComplete{Consensus: *cons})
	uc.emit(ctx, run, event.DebateComplete{
		SessionID: run.sess.ID,
		Status:    string(model.DebateComplete),
		Consensus: cons,
		Cost:      run.costs.Snapshot(),
	})
	log.Info().
		Int("messages", len(run.sess.Messages)).
		Int64("cost_micros", run.costs.TotalCostMicros()).
		Dur("duration", time.Since(start)).
		Msg("debate complete")
}

// completeTurn requests one streamed completion with bounded retries. Every
// attempt re-announces the turn with ModelStart so consumers reset their
// chunk accumulator for the same turn number.
func (uc *debateUC) completeTurn(
	ctx context.Context,
	run *debateRun,
	p model.Participant,
	turn int,
	prompt []adapter.Message,
	log *zerolog.Logger,
) (string, adapter.Usage, error) {
	var lastErr error
	for attempt := 0; attempt <= uc.settings.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(uc.settings.RetryBackoff):
			case <-ctx.Done():
				return "", adapter.Usage{}, ctx.Err()
			}
		}
		uc.emit(ctx, run, event.ModelStart{ModelID: p.Model, ParticipantID: p.ID, Turn: turn})
		content, usage, err := uc.ai.ChatStream(ctx, p.Model, prompt, func(delta string) error {
			if delta != "" {
				uc.emit(ctx, run, event.ModelChunk{Content: delta})
			}
			return ctx.Err()
		})
		if err == nil {
			if usage == (adapter.Usage{}) && content != "" {
				// Provider streamed no usage block; count through the
				// adapter's tokenizer so the turn never books zero cost.
				usage = uc.countUsage(ctx, p.Model, prompt, content, log)
			}
			return content, usage, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", adapter.Usage{}, ctx.Err()
		}
		log.Warn().Err(err).Int("turn", turn).Int("attempt", attempt+1).Str("model", p.Model).Msg("completion attempt failed")
	}
	return "", adapter.Usage{}, lastErr
}

func (uc *debateUC) countUsage(ctx context.Context, modelName string, prompt []adapter.Message, content string, log *zerolog.Logger) adapter.Usage {
	in, err := uc.ai.CountTokens(ctx, modelName, prompt)
	if err != nil {
		log.Warn().Err(err).Str("model", modelName).Msg("prompt token count fallback failed")
		return adapter.Usage{}
	}
	out, err := uc.ai.CountTokens(ctx, modelName, []adapter.Message{{Role: "assistant", Content: content}})
	if err != nil {
		log.Warn().Err(err).Str("model", modelName).Msg("completion token count fallback failed")
		return adapter.Usage{}
	}
	return adapter.Usage{PromptTokens: in, CompletionTokens: out, TotalTokens: in + out}
}

func (uc *debateUC) synthesize(ctx context.Context, run *debateRun, log *zerolog.Logger) (*model.Consensus, error) {
	modelName := uc.settings.SynthesisModel
	if modelName == "" {
		modelName = run.sess.Participants[0].Model
	}
	prompt := buildSynthesisMessages(run.sess)

	var (
		text string
		err  error
	)
	for attempt := 0; attempt <= uc.settings.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(uc.settings.RetryBackoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		text, _, err = uc.ai.Chat(ctx, modelName, prompt)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn().Err(err).Int("attempt", attempt+1).Msg("synthesis attempt failed")
	}
	if err != nil {
		return nil, err
	}

	agreements, disagreements := uc.comparePositions(run.sess)
	return &model.Consensus{
		Summary:       strings.TrimSpace(text),
		Agreements:    agreements,
		Disagreements: disagreements,
		Confidence:    confidence(agreements, disagreements),
		CreatedAt:     time.Now(),
	}, nil
}

// comparePositions runs the pairwise claim comparison across all participant
// pairs. Claim lists are capped by the analyzer, so this stays O(n·m) over
// small n and m.
func (uc *debateUC) comparePositions(sess *model.DebateSession) (agreements, disagreements []string) {
	claims := make([][]string, len(sess.Participants))
	for i, p := range sess.Participants {
		var b strings.Builder
		for _, m := range sess.MessagesByParticipant(p.ID) {
			b.WriteString(m.Content)
			b.WriteString("\n")
		}
		claims[i] = uc.analyzer.ExtractClaims(b.String())
	}

	matched := make([]map[string]bool, len(claims))
	for i := range matched {
		matched[i] = make(map[string]bool)
	}
	seen := make(map[string]struct{})
	for i := 0; i < len(claims); i++ {
		for j := i + 1; j < len(claims); j++ {
			cmp := uc.analyzer.Compare(claims[i], claims[j])
			for _, pair := range cmp.Agreements {
				matched[i][pair.A] = true
				matched[j][pair.B] = true
				if _, dup := seen[pair.A]; !dup {
					seen[pair.A] = struct{}{}
					agreements = append(agreements, pair.A)
				}
			}
		}
	}
	for i, p := range sess.Participants {
		for _, c := range claims[i] {
			if !matched[i][c] {
				disagreements = append(disagreements, fmt.Sprintf("%s: %s", p.Name(), c))
			}
		}
	}
	return agreements, disagreements
}

func confidence(agreements, disagreements []string) float64 {
	total := len(agreements) + len(disagreements)
	if total == 0 {
		return 0.5
	}
	return float64(len(agreements)) / float64(total)
}

func (uc *debateUC) fail(ctx context.Context, run *debateRun, log *zerolog.Logger, err error) {
	run.setStatus(model.DebateError)
	uc.emit(ctx, run, event.DebateError{Error: err.Error()})
	log.Error().Err(err).Int("messages_preserved", len(run.sess.Messages)).Msg("debate failed")
}

func (uc *debateUC) endUserCancelled(ctx context.Context, run *debateRun, log *zerolog.Logger) {
	run.setStatus(model.DebateUserEnded)
	uc.emit(ctx, run, event.DebateComplete{
		SessionID: run.sess.ID,
		Status:    string(model.DebateUserEnded),
		Cost:      run.costs.Snapshot(),
	})
	log.Info().
		Int("messages", len(run.sess.Messages)).
		Int("interjections_dropped", run.queue.Pending()).
		Msg("debate ended by user")
}

// emit delivers an event in order; when the consumer is gone the event is
// dropped and the loop winds down at its next checkpoint.
func (uc *debateUC) emit(ctx context.Context, run *debateRun, ev event.Event) {
	select {
	case run.events <- ev:
	case <-ctx.Done():
	}
}
