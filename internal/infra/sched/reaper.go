package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"ai-debate-orchestrator/internal/usecase"
)

// SessionReaper periodically drops finished debates from the in-memory
// registry once their retention window passes.
type SessionReaper struct {
	interval  time.Duration
	retention time.Duration
	debates   usecase.DebateUseCase
	log       *zerolog.Logger
}

func NewSessionReaper(interval, retention time.Duration, debates usecase.DebateUseCase, logger *zerolog.Logger) *SessionReaper {
	reapLog := logger.With().Str("component", "SessionReaper").Logger()
	return &SessionReaper{
		interval:  interval,
		retention: retention,
		debates:   debates,
		log:       &reapLog,
	}
}

func (w *SessionReaper) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("starting session reaper")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping session reaper")
			return ctx.Err()
		case <-ticker.C:
			if n := w.debates.ReapFinished(w.retention); n > 0 {
				w.log.Info().Int("count", n).Msg("reaped finished debates")
			}
		}
	}
}
