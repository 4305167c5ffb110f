// Package event defines the debate stream protocol: a closed set of event
// variants emitted by the session controller, plus an SSE codec for
// transporting them to clients.
package event

import "ai-debate-orchestrator/internal/domain/model"

type Type string

const (
	TypeDebateStart       Type = "debate_start"
	TypeModelStart        Type = "model_start"
	TypeModelChunk        Type = "model_chunk"
	TypeModelComplete     Type = "model_complete"
	TypeAgreementDetected Type = "agreement_detected"
	TypeSynthesisStart    Type = "synthesis_start"
	TypeSynthesisComplete Type = "synthesis_complete"
	TypeCostUpdate        Type = "cost_update"
	TypeDebateComplete    Type = "debate_complete"
	TypeDebateError       Type = "debate_error"
)

// Event is a sealed sum type: exactly one variant per wire event kind.
// Consumers switch on the concrete type rather than probing fields.
type Event interface {
	Type() Type
	sealed()
}

// DebateStart opens every stream.
type DebateStart struct {
	SessionID string `json:"session_id"`
}

// ModelStart announces the participant about to speak on a turn. A retried
// turn re-emits ModelStart with the same turn number; chunks from the failed
// attempt are superseded.
type ModelStart struct {
	ModelID       string `json:"model_id"`
	ParticipantID string `json:"participant_id"`
	Turn          int    `json:"turn"`
}

// ModelChunk carries one streamed content fragment. The full message is the
// concatenation of all chunks between a ModelStart and its ModelComplete.
type ModelChunk struct {
	Content string `json:"content"`
}

// ModelComplete finalizes the message built from the preceding chunks.
type ModelComplete struct{}

// AgreementDetected signals the sustained-agreement condition. Advisory
// unless early termination by agreement is enabled.
type AgreementDetected struct{}

// SynthesisStart marks entry into the synthesizing phase.
type SynthesisStart struct{}

// SynthesisComplete carries the consensus produced by the synthesis request.
type SynthesisComplete struct {
	Consensus model.Consensus `json:"consensus"`
}

// CostUpdate is a running cost snapshot, emitted after every finalized
// message.
type CostUpdate struct {
	Cost model.CostReport `json:"cost"`
}

// DebateComplete terminates the stream on the complete and user_ended paths.
// Consensus is nil when the debate was cancelled before synthesis.
type DebateComplete struct {
	SessionID string           `json:"session_id"`
	Status    string           `json:"status"`
	Consensus *model.Consensus `json:"consensus,omitempty"`
	Cost      model.CostReport `json:"cost"`
}

// DebateError terminates the stream on the error path. History up to the
// failure point remains valid; this event is emitted exactly once.
type DebateError struct {
	Error string `json:"error"`
}

func (DebateStart) Type() Type       { return TypeDebateStart }
func (ModelStart) Type() Type        { return TypeModelStart }
func (ModelChunk) Type() Type        { return TypeModelChunk }
func (ModelComplete) Type() Type     { return TypeModelComplete }
func (AgreementDetected) Type() Type { return TypeAgreementDetected }
func (SynthesisStart) Type() Type    { return TypeSynthesisStart }
func (SynthesisComplete) Type() Type { return TypeSynthesisComplete }
func (CostUpdate) Type() Type        { return TypeCostUpdate }
func (DebateComplete) Type() Type    { return TypeDebateComplete }
func (DebateError) Type() Type       { return TypeDebateError }

func (DebateStart) sealed()       {}
func (ModelStart) sealed()        {}
func (ModelChunk) sealed()        {}
func (ModelComplete) sealed()     {}
func (AgreementDetected) sealed() {}
func (SynthesisStart) sealed()    {}
func (SynthesisComplete) sealed() {}
func (CostUpdate) sealed()        {}
func (DebateComplete) sealed()    {}
func (DebateError) sealed()       {}
