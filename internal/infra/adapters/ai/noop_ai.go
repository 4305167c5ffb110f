package ai

import (
	"context"
	"fmt"
	"time"

	"ai-debate-orchestrator/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*NoopAIAdapter)(nil)

// NoopAIAdapter implements adapter.AIServiceAdapter for local/dev runs. It
// produces deterministic canned turns instead of calling real providers, so a
// full debate can be exercised without API keys.
type NoopAIAdapter struct {
	delay time.Duration
}

func NewNoopAIAdapter() *NoopAIAdapter {
	return &NoopAIAdapter{delay: 50 * time.Millisecond}
}

func (a *NoopAIAdapter) ListModels(ctx context.Context) ([]string, error) {
	return []string{"noop-model"}, nil
}

func (a *NoopAIAdapter) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	n := 0
	for _, m := range messages {
		n += len(m.Content) / 4
	}
	return n, nil
}

func (a *NoopAIAdapter) Chat(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error) {
	select {
	case <-time.After(a.delay):
	case <-ctx.Done():
		return "", adapter.Usage{}, ctx.Err()
	}
	text := a.reply(model, messages)
	return text, a.usage(messages, text), nil
}

func (a *NoopAIAdapter) ChatStream(ctx context.Context, model string, messages []adapter.Message, onChunk adapter.ChunkFunc) (string, adapter.Usage, error) {
	text := a.reply(model, messages)
	// stream word by word so SSE consumers see real chunking
	full := ""
	for i := 0; i < len(text); i += 16 {
		select {
		case <-time.After(a.delay / 4):
		case <-ctx.Done():
			return "", adapter.Usage{}, ctx.Err()
		}
		end := i + 16
		if end > len(text) {
			end = len(text)
		}
		chunk := text[i:end]
		full += chunk
		if onChunk != nil {
			if err := onChunk(chunk); err != nil {
				return "", adapter.Usage{}, err
			}
		}
	}
	return full, a.usage(messages, full), nil
}

func (a *NoopAIAdapter) reply(model string, messages []adapter.Message) string {
	turn := 0
	for _, m := range messages {
		if m.Role == "assistant" {
			turn++
		}
	}
	if turn == 0 {
		return fmt.Sprintf("I recommend starting with the simplest design that can work. (%s)", model)
	}
	return fmt.Sprintf("I agree with the previous point; we should also recommend monitoring from day one. (%s, turn %d)", model, turn)
}

func (a *NoopAIAdapter) usage(messages []adapter.Message, text string) adapter.Usage {
	in := 0
	for _, m := range messages {
		in += len(m.Content) / 4
	}
	out := len(text) / 4
	return adapter.Usage{PromptTokens: in, CompletionTokens: out, TotalTokens: in + out}
}
