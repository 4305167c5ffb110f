package ai

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"ai-debate-orchestrator/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*GeminiAdapter)(nil)

type GeminiAdapter struct {
	client       *genai.Client
	defaultModel string
	maxOut       int
}

// NewGeminiAdapter creates a Gemini adapter using the official SDK.
func NewGeminiAdapter(ctx context.Context, apiKey, baseURL, defaultModel string, maxOut int) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	if defaultModel == "" {
		defaultModel = "gemini-2.0-flash"
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiAdapter{client: c, defaultModel: defaultModel, maxOut: maxOut}, nil
}

func (g *GeminiAdapter) ListModels(ctx context.Context) ([]string, error) {
	models := g.client.Models.All(ctx)
	var out []string
	for m := range models {
		if m.Name != "" {
			out = append(out, m.Name)
		}
	}
	if len(out) == 0 {
		out = []string{g.defaultModel}
	}
	return out, nil
}

func (g *GeminiAdapter) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	contents, _ := toGenAIContents(messages)
	resp, err := g.client.Models.CountTokens(ctx, modelOrDefault(model, g.defaultModel), contents, nil)
	if err != nil {
		return 0, err
	}
	return int(resp.TotalTokens), nil
}

func (g *GeminiAdapter) Chat(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error) {
	contents, cfg := toGenAIContents(messages)
	if g.maxOut > 0 {
		cfg.MaxOutputTokens = int32(g.maxOut)
	}
	resp, err := g.client.Models.GenerateContent(ctx, modelOrDefault(model, g.defaultModel), contents, cfg)
	if err != nil {
		return "", adapter.Usage{}, fmt.Errorf("gemini chat: %w", err)
	}
	text := candidateText(resp)
	if text == "" {
		return "", adapter.Usage{}, errors.New("gemini: empty response")
	}
	return text, usageOf(resp), nil
}

func (g *GeminiAdapter) ChatStream(ctx context.Context, model string, messages []adapter.Message, onChunk adapter.ChunkFunc) (string, adapter.Usage, error) {
	contents, cfg := toGenAIContents(messages)
	if g.maxOut > 0 {
		cfg.MaxOutputTokens = int32(g.maxOut)
	}

	var (
		full  string
		usage adapter.Usage
	)
	for resp, err := range g.client.Models.GenerateContentStream(ctx, modelOrDefault(model, g.defaultModel), contents, cfg) {
		if err != nil {
			return "", adapter.Usage{}, fmt.Errorf("gemini stream: %w", err)
		}
		if delta := candidateText(resp); delta != "" {
			full += delta
			if onChunk != nil {
				if cbErr := onChunk(delta); cbErr != nil {
					return "", adapter.Usage{}, cbErr
				}
			}
		}
		if u := usageOf(resp); u.TotalTokens > 0 {
			usage = u
		}
	}
	if full == "" {
		return "", adapter.Usage{}, errors.New("gemini: empty stream")
	}
	return full, usage, nil
}

// --- internal ---

// toGenAIContents maps adapter messages to genai contents. System messages
// become the system instruction; "assistant" maps to the "model" role.
func toGenAIContents(messages []adapter.Message) ([]*genai.Content, *genai.GenerateContentConfig) {
	cfg := &genai.GenerateContentConfig{}
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case "system":
			cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: m.Content}}}
		case "assistant":
			contents = append(contents, &genai.Content{Role: "model", Parts: []*genai.Part{{Text: m.Content}}})
		default:
			contents = append(contents, &genai.Content{Role: "user", Parts: []*genai.Part{{Text: m.Content}}})
		}
	}
	return contents, cfg
}

func candidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	text := ""
	for _, p := range resp.Candidates[0].Content.Parts {
		text += p.Text
	}
	return text
}

func usageOf(resp *genai.GenerateContentResponse) adapter.Usage {
	if resp == nil || resp.UsageMetadata == nil {
		return adapter.Usage{}
	}
	return adapter.Usage{
		PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
		CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
	}
}
