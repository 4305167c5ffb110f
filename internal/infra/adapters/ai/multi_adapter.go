package ai

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"ai-debate-orchestrator/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.AIServiceAdapter = (*MultiAIAdapter)(nil)

// MultiAIAdapter routes every call to a provider adapter chosen by model
// name, so one debate can seat participants from different providers.
// Resolution order: explicit model mapping, then well-known name prefixes,
// then the default provider.
type MultiAIAdapter struct {
	defaultProvider string
	providers       map[string]adapter.AIServiceAdapter
	modelOverrides  map[string]string
}

var providerPrefixes = []struct {
	prefix   string
	provider string
}{
	{"gemini", "gemini"},
	{"gpt", "openai"},
	{"o1", "openai"},
	{"o3", "openai"},
}

func NewMultiAIAdapter(
	defaultProvider string,
	providers map[string]adapter.AIServiceAdapter,
	modelOverrides map[string]string,
) *MultiAIAdapter {
	return &MultiAIAdapter{
		defaultProvider: strings.ToLower(defaultProvider),
		providers:       providers,
		modelOverrides:  modelOverrides,
	}
}

func (m *MultiAIAdapter) providerFor(model string) (adapter.AIServiceAdapter, error) {
	name := m.defaultProvider
	if override := m.modelOverrides[model]; override != "" {
		name = strings.ToLower(override)
	} else {
		lower := strings.ToLower(model)
		for _, pp := range providerPrefixes {
			if strings.HasPrefix(lower, pp.prefix) {
				name = pp.provider
				break
			}
		}
	}
	if a := m.providers[name]; a != nil {
		return a, nil
	}
	// The resolved provider is not configured; any configured one beats
	// failing the whole turn.
	for _, a := range m.providers {
		if a != nil {
			return a, nil
		}
	}
	return nil, fmt.Errorf("no AI provider configured for model %q", model)
}

// ListModels merges the catalogues of every provider plus the override keys,
// deduplicated and sorted for stable output.
func (m *MultiAIAdapter) ListModels(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	for name := range m.modelOverrides {
		seen[name] = struct{}{}
	}
	for _, a := range m.providers {
		names, err := a.ListModels(ctx)
		if err != nil {
			continue // a provider outage must not hide the others
		}
		for _, name := range names {
			if name != "" {
				seen[name] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

func (m *MultiAIAdapter) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	a, err := m.providerFor(model)
	if err != nil {
		return 0, err
	}
	return a.CountTokens(ctx, model, messages)
}

func (m *MultiAIAdapter) Chat(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error) {
	a, err := m.providerFor(model)
	if err != nil {
		return "", adapter.Usage{}, err
	}
	return a.Chat(ctx, model, messages)
}

func (m *MultiAIAdapter) ChatStream(ctx context.Context, model string, messages []adapter.Message, onChunk adapter.ChunkFunc) (string, adapter.Usage, error) {
	a, err := m.providerFor(model)
	if err != nil {
		return "", adapter.Usage{}, err
	}
	return a.ChatStream(ctx, model, messages, onChunk)
}
