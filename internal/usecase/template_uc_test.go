//go:build !integration

package usecase

import (
	"context"
	"errors"
	"testing"

	"ai-debate-orchestrator/internal/domain"
	"ai-debate-orchestrator/internal/domain/model"
)

func customTemplate() *model.DebateTemplate {
	return &model.DebateTemplate{
		Name:      "Storage Review",
		Style:     model.StyleAdversarial,
		MaxRounds: 2,
		Participants: []model.Participant{
			{Model: "gpt-4o", Role: "proposer"},
			{Model: "gemini-2.0-flash", Role: "critic"},
		},
	}
}

func TestTemplateListIncludesBuiltins(t *testing.T) {
	uc := NewTemplateUseCase(newMemStore())
	tpls, err := uc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tpls) != 3 {
		t.Fatalf("expected the 3 built-ins, got %d", len(tpls))
	}
	for _, tpl := range tpls {
		if !tpl.BuiltIn {
			t.Errorf("template %s should be marked built-in", tpl.ID)
		}
	}
}

func TestTemplateCreateAndGet(t *testing.T) {
	uc := NewTemplateUseCase(newMemStore())

	created, err := uc.Create(context.Background(), customTemplate())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Error("expected an assigned ID")
	}
	if created.BuiltIn {
		t.Error("user templates are never built-in")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}

	got, err := uc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Storage Review" {
		t.Errorf("round trip lost the name: %s", got.Name)
	}

	if _, err := uc.Get(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTemplateCreateValidates(t *testing.T) {
	uc := NewTemplateUseCase(newMemStore())
	tpl := customTemplate()
	tpl.Participants = tpl.Participants[:1]
	if _, err := uc.Create(context.Background(), tpl); !errors.Is(err, domain.ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestBuiltinTemplatesAreImmutable(t *testing.T) {
	uc := NewTemplateUseCase(newMemStore())

	tpl := customTemplate()
	tpl.ID = "builtin-red-team"
	if _, err := uc.Update(context.Background(), tpl); !errors.Is(err, domain.ErrBuiltinTemplate) {
		t.Errorf("expected ErrBuiltinTemplate on update, got %v", err)
	}
	if err := uc.Delete(context.Background(), "builtin-expert-panel"); !errors.Is(err, domain.ErrBuiltinTemplate) {
		t.Errorf("expected ErrBuiltinTemplate on delete, got %v", err)
	}
}

func TestTemplateUpdatePreservesCreatedAt(t *testing.T) {
	uc := NewTemplateUseCase(newMemStore())
	created, err := uc.Create(context.Background(), customTemplate())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	edit := created.Clone()
	edit.Name = "Storage Review v2"
	updated, err := uc.Update(context.Background(), edit)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Error("update must not rewrite CreatedAt")
	}
	if updated.Name != "Storage Review v2" {
		t.Errorf("update lost the edit: %s", updated.Name)
	}
}

func TestTemplateResolveAssignsParticipantIDs(t *testing.T) {
	uc := NewTemplateUseCase(newMemStore())

	resolved, err := uc.Resolve(context.Background(), "builtin-architecture-review")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	seen := map[string]bool{}
	for _, p := range resolved.Participants {
		if p.ID == "" {
			t.Error("resolved participant missing an ID")
		}
		if seen[p.ID] {
			t.Errorf("duplicate participant ID %s", p.ID)
		}
		seen[p.ID] = true
	}

	// Resolving again must not reuse the previous run's IDs.
	again, err := uc.Resolve(context.Background(), "builtin-architecture-review")
	if err != nil {
		t.Fatalf("resolve again: %v", err)
	}
	for _, p := range again.Participants {
		if seen[p.ID] {
			t.Error("resolve leaked participant IDs between sessions")
		}
	}
}

func TestTemplateDelete(t *testing.T) {
	uc := NewTemplateUseCase(newMemStore())
	created, _ := uc.Create(context.Background(), customTemplate())

	if err := uc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := uc.Get(context.Background(), created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
