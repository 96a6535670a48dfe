// Package pricing holds the per-model token pricing table and the token
// estimation heuristic shared by dry runs and pre-request budget checks.
//
// The table is package-level, initialized once, and never mutated
// afterwards, so it is safe to read from concurrent language runs.
package pricing

import "strings"

// ModelPricing contains USD prices per million tokens for one model.
type ModelPricing struct {
	// PromptPerMTok is the prompt (input) price per million tokens.
	PromptPerMTok float64
	// CompletionPerMTok is the completion (output) price per million tokens.
	CompletionPerMTok float64
}

// models maps model identifiers to pricing. Prefix matching in Lookup
// covers dated snapshots ("gpt-4o-mini-2024-07-18").
var models = map[string]ModelPricing{
	"gpt-4o":        {PromptPerMTok: 2.50, CompletionPerMTok: 10.00},
	"gpt-4o-mini":   {PromptPerMTok: 0.15, CompletionPerMTok: 0.60},
	"gpt-4.1":       {PromptPerMTok: 2.00, CompletionPerMTok: 8.00},
	"gpt-4.1-mini":  {PromptPerMTok: 0.40, CompletionPerMTok: 1.60},
	"gpt-4.1-nano":  {PromptPerMTok: 0.10, CompletionPerMTok: 0.40},
	"gpt-3.5-turbo": {PromptPerMTok: 0.50, CompletionPerMTok: 1.50},
}

// defaultPricing is used for unknown models so budget checks stay
// conservative rather than free.
var defaultPricing = ModelPricing{PromptPerMTok: 2.50, CompletionPerMTok: 10.00}

// Lookup returns the pricing for a model. Dated model snapshots match
// their base model by longest prefix; unknown models get defaultPricing.
func Lookup(model string) ModelPricing {
	if p, ok := models[model]; ok {
		return p
	}
	var (
		best    ModelPricing
		bestLen = -1
	)
	for name, p := range models {
		if strings.HasPrefix(model, name) && len(name) > bestLen {
			best, bestLen = p, len(name)
		}
	}
	if bestLen >= 0 {
		return best
	}
	return defaultPricing
}

// charsPerToken is the estimation heuristic: roughly four characters of
// western text per token. Deliberately simple so dry-run reports and
// budget pre-checks agree exactly.
const charsPerToken = 4

// EstimateTokens estimates the token count of a text.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + charsPerToken - 1) / charsPerToken
}

// Cost converts token counts into USD for a model.
func Cost(model string, promptTokens, completionTokens int) float64 {
	p := Lookup(model)
	return float64(promptTokens)*p.PromptPerMTok/1e6 +
		float64(completionTokens)*p.CompletionPerMTok/1e6
}
