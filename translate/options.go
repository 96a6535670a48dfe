// Package translate implements the batch translation pipeline: batch
// planning, the per-batch execution engine with its budget and failure
// policies, the per-language run coordinator, and the cross-language
// orchestrator.
package translate

import (
	"time"

	"github.com/publishpress/publishpress-translator-sub000/client"
	"github.com/publishpress/publishpress-translator-sub000/config"
	"github.com/publishpress/publishpress-translator-sub000/dictionary"
)

// Options configures a whole run across all target languages.
type Options struct {
	// Source is the POT/PO template path.
	Source string
	// OutputDir is where per-language files are written. Default: the
	// source file's directory.
	OutputDir string
	// OutputPrefix is prepended to the language code in output file
	// names ("{prefix}{lang}.po").
	OutputPrefix string
	// BaseFile is an explicit pre-existing .po to merge for every
	// language instead of the conventional output path.
	BaseFile string

	// Languages are the target language codes.
	Languages []string
	// SourceLang is the source language code (default "en").
	SourceLang string

	// Client is the translation backend. Required.
	Client client.Client
	// Model is the chat model name, used for pricing and prompts.
	Model string
	// SystemPrompt overrides the default system prompt.
	SystemPrompt string

	// BatchSize is the number of strings per request. Default: 50.
	BatchSize int
	// MaxStrings caps translated strings per language (0 = no cap).
	MaxStrings int
	// MaxCost caps estimated spend per language in USD (0 = no cap).
	MaxCost float64
	// TotalMaxStrings caps translated strings across all languages
	// (0 = no cap). Forces sequential processing.
	TotalMaxStrings int
	// TotalMaxCost caps spend across all languages (0 = no cap).
	// Forces sequential processing.
	TotalMaxCost float64

	// OnFailure is one of config.FailureContinue, FailureAbort,
	// FailureSkipLanguage. Default: continue.
	OnFailure string
	// MaxRetries is the retry count per batch. Default: 3.
	MaxRetries int
	// RetryDelay is the initial inter-attempt delay. Default: 2s.
	RetryDelay time.Duration
	// MaxConcurrent is the parallel language limit (default 4),
	// ignored whenever a global ceiling forces sequential mode.
	MaxConcurrent int

	// DryRun translates nothing, writing placeholder entries and
	// estimated costs instead. Placeholders are persisted.
	DryRun bool
	// ForceRetranslate skips the merge of pre-existing translations.
	ForceRetranslate bool
	// RetranslateFuzzy treats fuzzy entries as untranslated.
	RetranslateFuzzy bool

	// Dictionary is an optional glossary applied before planning.
	Dictionary *dictionary.Dictionary

	// OnProgress is called after each batch with per-language counts.
	OnProgress func(lang string, done, total int)
	// OnLog emits log messages during translation.
	OnLog func(format string, args ...any)
	// OnError emits error messages during translation.
	OnError func(format string, args ...any)
}

func (o *Options) log(format string, args ...any) {
	if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) logError(format string, args ...any) {
	if o.OnError != nil {
		o.OnError(format, args...)
	} else if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) effectiveSourceLang() string {
	if o.SourceLang != "" {
		return o.SourceLang
	}
	return "en"
}

func (o *Options) effectiveBatchSize() int {
	if o.BatchSize > 0 {
		return o.BatchSize
	}
	return 50
}

func (o *Options) effectiveMaxRetries() int {
	if o.MaxRetries > 0 {
		return o.MaxRetries
	}
	return 3
}

func (o *Options) effectiveRetryDelay() time.Duration {
	if o.RetryDelay > 0 {
		return o.RetryDelay
	}
	return 2 * time.Second
}

func (o *Options) effectiveMaxConcurrent() int {
	if o.MaxConcurrent > 0 {
		return o.MaxConcurrent
	}
	return 4
}

func (o *Options) effectiveOnFailure() string {
	if o.OnFailure != "" {
		return o.OnFailure
	}
	return config.FailureContinue
}
