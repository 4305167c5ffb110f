package ai

import (
	"context"
	"time"

	"ai-debate-orchestrator/internal/domain/model"
	"ai-debate-orchestrator/internal/domain/ports/adapter"
	"ai-debate-orchestrator/internal/infra/metrics"
)

var _ adapter.AIServiceAdapter = (*instrumentedAI)(nil)

// instrumentedAI records latency, outcome, token usage and estimated spend
// for every provider call.
type instrumentedAI struct {
	inner adapter.AIServiceAdapter
	rates model.RateTable
}

func NewInstrumentedAI(inner adapter.AIServiceAdapter, rates model.RateTable) adapter.AIServiceAdapter {
	if rates == nil {
		rates = model.DefaultRateTable()
	}
	return &instrumentedAI{inner: inner, rates: rates}
}

func (i *instrumentedAI) ListModels(ctx context.Context) ([]string, error) {
	return i.inner.ListModels(ctx)
}

func (i *instrumentedAI) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	return i.inner.CountTokens(ctx, model, messages)
}

func (i *instrumentedAI) Chat(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error) {
	start := time.Now()
	text, usage, err := i.inner.Chat(ctx, model, messages)
	i.observe(model, "chat", time.Since(start), usage, err)
	return text, usage, err
}

func (i *instrumentedAI) ChatStream(ctx context.Context, model string, messages []adapter.Message, onChunk adapter.ChunkFunc) (string, adapter.Usage, error) {
	start := time.Now()
	text, usage, err := i.inner.ChatStream(ctx, model, messages, onChunk)
	i.observe(model, "chat_stream", time.Since(start), usage, err)
	return text, usage, err
}

func (i *instrumentedAI) observe(modelName, kind string, d time.Duration, usage adapter.Usage, err error) {
	metrics.ObserveAIRequest(modelName, kind, d, err)
	if err != nil {
		return
	}
	metrics.AddAITokens(modelName, usage.PromptTokens, usage.CompletionTokens)
	rate := i.rates.RateFor(modelName)
	metrics.AddDebateCost(modelName, rate.CostMicros(usage.PromptTokens, usage.CompletionTokens))
}
