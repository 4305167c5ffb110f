//go:build !integration

package usecase

import (
	"context"
	"fmt"
	"sync"

	"ai-debate-orchestrator/internal/domain"
	"ai-debate-orchestrator/internal/domain/model"
	"ai-debate-orchestrator/internal/domain/ports/adapter"
)

// fakeAI is a scriptable in-memory implementation of the AI port. Each
// streamed completion is delivered as two chunks. The reply function decides
// the content per streaming call; errAt can fail specific calls to exercise
// the retry path.
type fakeAI struct {
	mu          sync.Mutex
	streamCalls int
	chatCalls   int
	prompts     [][]adapter.Message // prompt of each ChatStream call
	reply       func(call int, model string, msgs []adapter.Message) string
	errAt       map[int]error // by ChatStream call index
	chatErr     error
	synthesis   string
	onCall      func(call int) // invoked at the start of each ChatStream
	usage       adapter.Usage
}

func newFakeAI() *fakeAI {
	return &fakeAI{
		reply: func(call int, model string, msgs []adapter.Message) string {
			return fmt.Sprintf("Position statement %d about topic %d.", call, call)
		},
		errAt:     map[int]error{},
		synthesis: "The participants converged on a pragmatic plan.",
		usage:     adapter.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}
}

func (f *fakeAI) ListModels(ctx context.Context) ([]string, error) {
	return []string{"fake-model"}, nil
}

func (f *fakeAI) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	return len(messages) * 10, nil
}

func (f *fakeAI) Chat(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error) {
	f.mu.Lock()
	f.chatCalls++
	err := f.chatErr
	f.mu.Unlock()
	if err != nil {
		return "", adapter.Usage{}, err
	}
	return f.synthesis, f.usage, nil
}

func (f *fakeAI) ChatStream(ctx context.Context, model string, messages []adapter.Message, onChunk adapter.ChunkFunc) (string, adapter.Usage, error) {
	f.mu.Lock()
	call := f.streamCalls
	f.streamCalls++
	f.prompts = append(f.prompts, append([]adapter.Message(nil), messages...))
	hook := f.onCall
	err := f.errAt[call]
	f.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	if err != nil {
		return "", adapter.Usage{}, err
	}

	text := f.reply(call, model, messages)
	half := len(text) / 2
	for _, chunk := range []string{text[:half], text[half:]} {
		if chunk == "" {
			continue
		}
		if cbErr := onChunk(chunk); cbErr != nil {
			return "", adapter.Usage{}, cbErr
		}
	}
	return text, f.usage, nil
}

func (f *fakeAI) promptAt(call int) []adapter.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	if call >= len(f.prompts) {
		return nil
	}
	return f.prompts[call]
}

// memStore is a minimal in-memory TemplateStore for use case tests.
type memStore struct {
	mu   sync.Mutex
	byID map[string]*model.DebateTemplate
}

func newMemStore() *memStore {
	return &memStore{byID: make(map[string]*model.DebateTemplate)}
}

func (s *memStore) FindByID(ctx context.Context, id string) (*model.DebateTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tpl, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return tpl.Clone(), nil
}

func (s *memStore) ListAll(ctx context.Context) ([]*model.DebateTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.DebateTemplate, 0, len(s.byID))
	for _, tpl := range s.byID {
		out = append(out, tpl.Clone())
	}
	return out, nil
}

func (s *memStore) Save(ctx context.Context, tpl *model.DebateTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[tpl.ID] = tpl.Clone()
	return nil
}

func (s *memStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}
