package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ai-debate-orchestrator/internal/domain"
	"ai-debate-orchestrator/internal/domain/model"
	"ai-debate-orchestrator/internal/domain/ports/repository"
)

// Compile-time check
var _ TemplateUseCase = (*templateUC)(nil)

type TemplateUseCase interface {
	List(ctx context.Context) ([]*model.DebateTemplate, error)
	Get(ctx context.Context, id string) (*model.DebateTemplate, error)
	Create(ctx context.Context, tpl *model.DebateTemplate) (*model.DebateTemplate, error)
	Update(ctx context.Context, tpl *model.DebateTemplate) (*model.DebateTemplate, error)
	Delete(ctx context.Context, id string) error

	// Resolve expands a template (built-in or stored) into a concrete,
	// validated participant list ready for the controller.
	Resolve(ctx context.Context, id string) (*model.DebateTemplate, error)
}

type templateUC struct {
	store    repository.TemplateStore
	builtins []*model.DebateTemplate
}

func NewTemplateUseCase(store repository.TemplateStore) *templateUC {
	return &templateUC{store: store, builtins: builtinTemplates()}
}

func (t *templateUC) List(ctx context.Context) ([]*model.DebateTemplate, error) {
	stored, err := t.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	out := make([]*model.DebateTemplate, 0, len(t.builtins)+len(stored))
	for _, b := range t.builtins {
		out = append(out, b.Clone())
	}
	out = append(out, stored...)
	return out, nil
}

func (t *templateUC) Get(ctx context.Context, id string) (*model.DebateTemplate, error) {
	if b := t.builtin(id); b != nil {
		return b.Clone(), nil
	}
	return t.store.FindByID(ctx, id)
}

func (t *templateUC) Create(ctx context.Context, tpl *model.DebateTemplate) (*model.DebateTemplate, error) {
	if err := tpl.Validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	tpl.ID = uuid.NewString()
	tpl.BuiltIn = false
	tpl.CreatedAt = now
	tpl.UpdatedAt = now
	if err := t.store.Save(ctx, tpl); err != nil {
		return nil, fmt.Errorf("save template: %w", err)
	}
	return tpl, nil
}

func (t *templateUC) Update(ctx context.Context, tpl *model.DebateTemplate) (*model.DebateTemplate, error) {
	if t.builtin(tpl.ID) != nil {
		return nil, domain.ErrBuiltinTemplate
	}
	existing, err := t.store.FindByID(ctx, tpl.ID)
	if err != nil {
		return nil, err
	}
	if err := tpl.Validate(); err != nil {
		return nil, err
	}
	tpl.BuiltIn = false
	tpl.CreatedAt = existing.CreatedAt
	tpl.UpdatedAt = time.Now()
	if err := t.store.Save(ctx, tpl); err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}
	return tpl, nil
}

func (t *templateUC) Delete(ctx context.Context, id string) error {
	if t.builtin(id) != nil {
		return domain.ErrBuiltinTemplate
	}
	return t.store.Delete(ctx, id)
}

func (t *templateUC) Resolve(ctx context.Context, id string) (*model.DebateTemplate, error) {
	tpl, err := t.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	tpl = tpl.Clone()
	for i := range tpl.Participants {
		if tpl.Participants[i].ID == "" {
			tpl.Participants[i].ID = uuid.NewString()
		}
	}
	if err := tpl.Validate(); err != nil {
		return nil, err
	}
	return tpl, nil
}

func (t *templateUC) builtin(id string) *model.DebateTemplate {
	for _, b := range t.builtins {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// builtinTemplates returns fresh preset copies on every construction so no
// caller can mutate shared state.
func builtinTemplates() []*model.DebateTemplate {
	return []*model.DebateTemplate{
		{
			ID:          "builtin-architecture-review",
			Name:        "Architecture Review",
			Description: "Two models iterate toward a shared system design.",
			Style:       model.StyleCooperative,
			MaxRounds:   3,
			BuiltIn:     true,
			Participants: []model.Participant{
				{Model: "gpt-4o", Role: "architect", DisplayName: "Architect"},
				{Model: "gemini-2.0-flash", Role: "pragmatist", DisplayName: "Pragmatist",
					Instructions: "Favor boring, proven technology. Push back on accidental complexity."},
			},
		},
		{
			ID:          "builtin-red-team",
			Name:        "Red Team Review",
			Description: "One model proposes, the other attacks the proposal.",
			Style:       model.StyleRedTeam,
			MaxRounds:   2,
			BuiltIn:     true,
			Participants: []model.Participant{
				{Model: "gpt-4o", Role: "proposer", DisplayName: "Proposer"},
				{Model: "gpt-4o-mini", Role: "attacker", DisplayName: "Attacker",
					Instructions: "Assume the proposal will be deployed as described. Find the ways it breaks."},
			},
		},
		{
			ID:          "builtin-expert-panel",
			Name:        "Expert Panel",
			Description: "Three specialists weigh in from different angles.",
			Style:       model.StylePanel,
			MaxRounds:   2,
			BuiltIn:     true,
			Participants: []model.Participant{
				{Model: "gpt-4o", Role: "product", DisplayName: "Product"},
				{Model: "gemini-2.0-flash", Role: "engineering", DisplayName: "Engineering"},
				{Model: "gpt-4o-mini", Role: "operations", DisplayName: "Operations"},
			},
		},
	}
}
