package repository

import (
	"context"

	"ai-debate-orchestrator/internal/domain/model"
)

// TemplateStore persists debate templates. Implementations: Postgres,
// Redis-cached wrapper, and an in-memory store for tests and db-less runs.
// The controller never reaches for ambient template state; a store is always
// injected.
type TemplateStore interface {
	FindByID(ctx context.Context, id string) (*model.DebateTemplate, error)
	ListAll(ctx context.Context) ([]*model.DebateTemplate, error)
	Save(ctx context.Context, tpl *model.DebateTemplate) error
	Delete(ctx context.Context, id string) error
}
