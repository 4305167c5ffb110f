package adapter

import "context"

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// Usage for a single completion call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ChunkFunc receives one streamed content fragment. Returning an error
// aborts the in-flight completion.
type ChunkFunc func(content string) error

// AIServiceAdapter is the port for model invocation. The orchestrator treats
// it as an opaque capability: request a completion for a model given
// context, get back text plus usage, or a failure.
type AIServiceAdapter interface {
	ListModels(ctx context.Context) ([]string, error)

	// CountTokens must return prompt tokens for the provided messages
	// (provider-specific counting; best-effort when exact isn't available).
	CountTokens(ctx context.Context, model string, messages []Message) (int, error)

	// Chat returns the full assistant text plus usage in one shot.
	Chat(ctx context.Context, model string, messages []Message) (string, Usage, error)

	// ChatStream invokes onChunk for each content fragment as it arrives
	// and returns the accumulated text plus usage once the stream ends.
	ChatStream(ctx context.Context, model string, messages []Message, onChunk ChunkFunc) (string, Usage, error)
}
