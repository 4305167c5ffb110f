package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ai-debate-orchestrator/internal/domain"
	"ai-debate-orchestrator/internal/domain/event"
	"ai-debate-orchestrator/internal/domain/model"
	"ai-debate-orchestrator/internal/infra/logging"
	"ai-debate-orchestrator/internal/infra/metrics"
	red "ai-debate-orchestrator/internal/infra/redis"
	"ai-debate-orchestrator/internal/usecase"
)

const (
	interjectionLimit  = 10
	interjectionWindow = time.Minute
)

type startDebateRequest struct {
	Question     string              `json:"question"`
	Style        string              `json:"style"`
	MaxRounds    int                 `json:"max_rounds"`
	TemplateID   string              `json:"template_id"`
	Participants []model.Participant `json:"participants"`
}

type interjectRequest struct {
	Content         string `json:"content"`
	Type            string `json:"type"`
	TargetMessageID string `json:"target_message_id"`
}

// handleStartDebate validates the request, starts the session and serves its
// event stream over SSE until a terminal event or client disconnect.
func (s *Server) handleStartDebate(w http.ResponseWriter, r *http.Request) {
	var req startDebateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	sess, events, err := s.debates.Start(r.Context(), usecase.StartDebateRequest{
		Question:     req.Question,
		Style:        model.DebateStyle(req.Style),
		MaxRounds:    req.MaxRounds,
		TemplateID:   req.TemplateID,
		Participants: req.Participants,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Session-Id", sess.ID)
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	metrics.DebateStarted()
	metrics.SSEStreamOpened()
	defer metrics.SSEStreamClosed()
	defer func() {
		status := "abandoned"
		if snap, err := s.debates.Snapshot(sess.ID); err == nil && snap.Status.Terminal() {
			status = string(snap.Status)
		}
		metrics.DebateFinished(status)
	}()

	streamLog := logging.With(logging.WithSessID(r.Context(), sess.ID), s.log)

	var turnStart time.Time
	for ev := range events {
		if err := event.Encode(w, ev); err != nil {
			streamLog.Debug().Err(err).Msg("stream write failed, client gone")
			return
		}
		flusher.Flush()

		switch ev.(type) {
		case event.ModelStart:
			turnStart = time.Now()
		case event.ModelComplete:
			if !turnStart.IsZero() {
				metrics.ObserveTurn(time.Since(turnStart))
				turnStart = time.Time{}
			}
		case event.AgreementDetected:
			metrics.AgreementDetected()
		}
	}
}

func (s *Server) handleGetDebate(w http.ResponseWriter, r *http.Request) {
	sess, err := s.debates.Snapshot(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

func (s *Server) handleInterject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(r.Context(), red.InterjectionKey(id), interjectionLimit, interjectionWindow)
		if err != nil {
			s.log.Warn().Err(err).Msg("interjection rate limit check failed")
		} else if !allowed {
			http.Error(w, "Too many interjections", http.StatusTooManyRequests)
			return
		}
	}

	var req interjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	inj, err := s.debates.Interject(r.Context(), id, req.Content, req.Type, req.TargetMessageID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	metrics.IncInterjection(string(inj.Type))
	respondJSON(w, http.StatusAccepted, inj)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.debates.Cancel(id); err != nil {
		s.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{
		"session_id": id,
		"status":     string(model.DebateUserEnded),
	})
}

// writeError maps domain sentinels to HTTP statuses. Everything else is an
// opaque 500 so internals never leak to clients.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	msg := "internal error"
	switch {
	case errors.Is(err, domain.ErrNotFound):
		code, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrInvalidConfiguration):
		code, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, domain.ErrBuiltinTemplate):
		code, msg = http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrTooManyDebates):
		code, msg = http.StatusServiceUnavailable, err.Error()
	default:
		s.log.Error().Err(err).Msg("unhandled handler error")
	}
	respondJSON(w, code, map[string]string{"error": msg})
}
