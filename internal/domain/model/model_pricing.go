package model

import "strings"

// ModelRate prices one model in micro-USD per 1K tokens.
type ModelRate struct {
	InputMicrosPer1K  int64
	OutputMicrosPer1K int64
}

// RateTable maps a model name to its rate. Lookups fall back to a prefix
// match and finally to a conservative default so cost totals never stall on
// an unknown model.
type RateTable map[string]ModelRate

var defaultRate = ModelRate{InputMicrosPer1K: 1000, OutputMicrosPer1K: 3000}

func DefaultRateTable() RateTable {
	return RateTable{
		"gpt-4o":           {InputMicrosPer1K: 2500, OutputMicrosPer1K: 10000},
		"gpt-4o-mini":      {InputMicrosPer1K: 150, OutputMicrosPer1K: 600},
		"gpt-4.1":          {InputMicrosPer1K: 2000, OutputMicrosPer1K: 8000},
		"gpt-4.1-mini":     {InputMicrosPer1K: 400, OutputMicrosPer1K: 1600},
		"gemini-2.0-flash": {InputMicrosPer1K: 100, OutputMicrosPer1K: 400},
		"gemini-1.5-pro":   {InputMicrosPer1K: 1250, OutputMicrosPer1K: 5000},
	}
}

func (t RateTable) RateFor(modelName string) ModelRate {
	if r, ok := t[modelName]; ok {
		return r
	}
	// Longest-prefix match so "gpt-4o-mini-2024-07-18" resolves to
	// "gpt-4o-mini", not "gpt-4o".
	best := ""
	var bestRate ModelRate
	for name, r := range t {
		if strings.HasPrefix(modelName, name) && len(name) > len(best) {
			best, bestRate = name, r
		}
	}
	if best != "" {
		return bestRate
	}
	return defaultRate
}

// CostMicros converts token counts to micro-USD at this rate.
func (r ModelRate) CostMicros(inputTokens, outputTokens int) int64 {
	return int64(inputTokens)*r.InputMicrosPer1K/1000 + int64(outputTokens)*r.OutputMicrosPer1K/1000
}
