package model

// ParticipantCost holds running token totals for one participant.
// Totals only ever grow within a session.
type ParticipantCost struct {
	InputTokens  int   `json:"input_tokens"`
	OutputTokens int   `json:"output_tokens"`
	CostMicros   int64 `json:"cost_micros"` // micro-USD
}

// CostReport is a point-in-time snapshot across all participants.
type CostReport struct {
	ByParticipant map[string]ParticipantCost `json:"by_participant"`
	InputTokens   int                        `json:"input_tokens"`
	OutputTokens  int                        `json:"output_tokens"`
	CostMicros    int64                      `json:"cost_micros"`
}

func (r CostReport) Clone() CostReport {
	cp := r
	cp.ByParticipant = make(map[string]ParticipantCost, len(r.ByParticipant))
	for k, v := range r.ByParticipant {
		cp.ByParticipant[k] = v
	}
	return cp
}
