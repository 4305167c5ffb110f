package memory

import (
	"context"
	"sort"
	"sync"

	"ai-debate-orchestrator/internal/domain"
	"ai-debate-orchestrator/internal/domain/model"
	"ai-debate-orchestrator/internal/domain/ports/repository"
)

var _ repository.TemplateStore = (*TemplateStore)(nil)

// TemplateStore keeps templates in process memory. Used for db-less dev runs
// and tests; semantics match the Postgres store.
type TemplateStore struct {
	mu   sync.RWMutex
	byID map[string]*model.DebateTemplate
}

func NewTemplateStore() *TemplateStore {
	return &TemplateStore{byID: make(map[string]*model.DebateTemplate)}
}

func (s *TemplateStore) FindByID(ctx context.Context, id string) (*model.DebateTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tpl, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return tpl.Clone(), nil
}

func (s *TemplateStore) ListAll(ctx context.Context) ([]*model.DebateTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.DebateTemplate, 0, len(s.byID))
	for _, tpl := range s.byID {
		out = append(out, tpl.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *TemplateStore) Save(ctx context.Context, tpl *model.DebateTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[tpl.ID] = tpl.Clone()
	return nil
}

func (s *TemplateStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}
