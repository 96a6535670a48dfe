// Package client provides the translation backends: the OpenAI chat
// API adapter, the dry-run adapter, and the retry policy shared by
// both. Cost estimation for budget pre-checks also lives here so that
// dry runs and budget gates price a batch the same way.
package client

import (
	"context"
	"strings"

	"github.com/publishpress/publishpress-translator-sub000/ledger"
	"github.com/publishpress/publishpress-translator-sub000/pricing"
)

// Item is a single string sent for translation. PluralText is empty
// for singular entries. Context and Comments carry the msgctxt and
// extracted comments so the model can disambiguate short strings.
type Item struct {
	Text       string
	PluralText string
	Context    string
	Comments   []string
}

// Translation is the result for one item. Forms has one element for
// singular items and nplurals elements for plural items.
type Translation struct {
	Forms  []string
	DryRun bool
}

// BatchRequest describes one batch sent to a backend.
type BatchRequest struct {
	SourceLang string
	TargetLang string
	// TargetName is the English name of the target language, used in
	// the prompt.
	TargetName   string
	Model        string
	SystemPrompt string
	// Nplurals is the plural-form count of the target language.
	Nplurals int
	Items    []Item
}

// BatchResult carries the translations and the usage of a finished
// batch. Translations is aligned with the request items.
type BatchResult struct {
	Translations []Translation
	Usage        ledger.Record
}

// Client translates batches of strings.
type Client interface {
	TranslateBatch(ctx context.Context, req BatchRequest) (BatchResult, error)
}

// EstimateBatch prices a batch without sending it anywhere. Both the
// dry-run backend and the per-batch budget gate use this, so a dry run
// reports exactly what the budget check would have charged against.
func EstimateBatch(req BatchRequest) ledger.Record {
	var payload strings.Builder
	for _, item := range req.Items {
		payload.WriteString(item.Text)
		payload.WriteString("\n")
		if item.PluralText != "" {
			payload.WriteString(item.PluralText)
			payload.WriteString("\n")
		}
	}

	promptTokens := pricing.EstimateTokens(req.SystemPrompt) + pricing.EstimateTokens(payload.String())
	// Translated output is assumed to be roughly the size of the
	// input; plural targets multiply the output per item.
	completionTokens := pricing.EstimateTokens(payload.String())
	if req.Nplurals > 2 {
		completionTokens = completionTokens * req.Nplurals / 2
	}

	return ledger.Record{
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		Cost:             pricing.Cost(req.Model, promptTokens, completionTokens),
		Model:            req.Model,
		DryRun:           true,
	}
}
