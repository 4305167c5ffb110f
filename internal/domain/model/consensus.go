package model

import "time"

// Consensus is the synthesis result: at most one per session, created during
// the synthesizing phase and immutable afterwards.
type Consensus struct {
	Summary       string    `json:"summary"`
	Agreements    []string  `json:"agreements"`
	Disagreements []string  `json:"disagreements"`
	Confidence    float64   `json:"confidence"` // 0..1
	CreatedAt     time.Time `json:"created_at"`
}
