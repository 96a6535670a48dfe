package client

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/publishpress/publishpress-translator-sub000/ledger"
	"github.com/publishpress/publishpress-translator-sub000/pricing"
)

// completionAPI is the slice of the OpenAI client the adapter uses.
// Tests substitute a fake.
type completionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAI translates batches through the OpenAI chat completion API.
type OpenAI struct {
	api         completionAPI
	temperature float32
}

// NewOpenAI builds the adapter. baseURL is optional and supports
// API-compatible endpoints.
func NewOpenAI(apiKey, baseURL string) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAI{
		api:         openai.NewClientWithConfig(cfg),
		temperature: 0.2,
	}
}

// DefaultSystemPrompt builds the translation instructions for a
// target language.
func DefaultSystemPrompt(sourceLang, targetName string, nplurals int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a professional software localizer. Translate user interface strings from %s to %s.\n", sourceLang, targetName)
	b.WriteString("The input is a JSON array. Plain strings and objects with a \"text\" key are singular messages. ")
	b.WriteString("Objects with \"one\" and \"other\" keys are plural messages. ")
	b.WriteString("\"context\" and \"notes\" fields are disambiguation hints, never translate them.\n")
	fmt.Fprintf(&b, "Reply with a JSON array of the same length. Translate singular messages to strings and plural messages to arrays of exactly %d strings, one per plural form of the target language in grammatical order.\n", nplurals)
	b.WriteString("Preserve all printf-style placeholders (%s, %d, %1$s), HTML tags, and leading or trailing whitespace exactly. ")
	b.WriteString("Do not translate placeholder names. Reply with the JSON array only, no commentary.")
	return b.String()
}

// TranslateBatch sends one batch to the chat API. The returned usage
// is valid even when parsing fails, so callers can still account for
// consumed tokens.
func (c *OpenAI) TranslateBatch(ctx context.Context, req BatchRequest) (BatchResult, error) {
	payload, err := marshalItems(req.Items)
	if err != nil {
		return BatchResult{}, fmt.Errorf("encoding batch: %w", err)
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: payload},
		},
		Temperature: c.temperature,
	})
	if err != nil {
		return BatchResult{}, classifyAPIError(err)
	}

	usage := ledger.Record{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		Cost:             pricing.Cost(req.Model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens),
		Model:            req.Model,
	}

	if len(resp.Choices) == 0 {
		return BatchResult{Usage: usage}, fmt.Errorf("%w: empty choice list", ErrBadResponse)
	}

	translations, err := parseTranslations(resp.Choices[0].Message.Content, req.Items, req.Nplurals)
	if err != nil {
		return BatchResult{Usage: usage}, err
	}
	return BatchResult{Translations: translations, Usage: usage}, nil
}

// wireItem is the object shape used in the prompt for entries that
// need more than a bare string: plurals, msgctxt, or extracted
// comments.
type wireItem struct {
	One     string   `json:"one,omitempty"`
	Other   string   `json:"other,omitempty"`
	Text    string   `json:"text,omitempty"`
	Context string   `json:"context,omitempty"`
	Notes   []string `json:"notes,omitempty"`
}

func marshalItems(items []Item) (string, error) {
	wire := make([]any, len(items))
	for i, item := range items {
		switch {
		case item.PluralText != "":
			wire[i] = wireItem{One: item.Text, Other: item.PluralText, Context: item.Context, Notes: item.Comments}
		case item.Context != "" || len(item.Comments) > 0:
			wire[i] = wireItem{Text: item.Text, Context: item.Context, Notes: item.Comments}
		default:
			wire[i] = item.Text
		}
	}
	out, err := json.Marshal(wire)
	return string(out), err
}

var markdownFence = regexp.MustCompile("(?s)^\\s*```(?:json)?\\s*(.*?)\\s*```\\s*$")

// parseTranslations aligns the model output with the request items.
// Models occasionally wrap the array in a markdown fence or prose, so
// the parser slices out the outermost bracket pair first.
func parseTranslations(content string, items []Item, nplurals int) ([]Translation, error) {
	if m := markdownFence.FindStringSubmatch(content); m != nil {
		content = m[1]
	}
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON array found", ErrBadResponse)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if len(raw) != len(items) {
		return nil, fmt.Errorf("%w: got %d translations for %d strings", ErrBadResponse, len(raw), len(items))
	}

	if nplurals < 1 {
		nplurals = 2
	}

	translations := make([]Translation, len(raw))
	for i, msg := range raw {
		var single string
		var forms []string

		if err := json.Unmarshal(msg, &single); err == nil {
			forms = []string{single}
		} else if err := json.Unmarshal(msg, &forms); err != nil || len(forms) == 0 {
			return nil, fmt.Errorf("%w: element %d is neither string nor array", ErrBadResponse, i)
		}

		if items[i].PluralText != "" {
			forms = padForms(forms, nplurals)
		} else {
			forms = forms[:1]
		}
		translations[i] = Translation{Forms: forms}
	}
	return translations, nil
}

// padForms resizes to n forms, repeating the last form when the model
// returned too few.
func padForms(forms []string, n int) []string {
	out := make([]string, n)
	for i := 0; i < n; i++ {
		if i < len(forms) {
			out[i] = forms[i]
		} else {
			out[i] = forms[len(forms)-1]
		}
	}
	return out
}
