package translate

import (
	"time"

	"github.com/publishpress/publishpress-translator-sub000/ledger"
)

// Method tags how a language was processed.
type Method string

const (
	// MethodAPI is the normal batch translation path.
	MethodAPI Method = "api"
	// MethodSourceCopy is the same-language fast path: source strings
	// copied straight into the translation slots.
	MethodSourceCopy Method = "source_copy"
	// MethodCostLimited marks a language skipped before any work
	// because a global ceiling was already exhausted.
	MethodCostLimited Method = "cost_limited"
)

// LanguageStats summarizes one language run. A stats value is created
// at the start of the run, updated throughout, and final once the run
// returns.
type LanguageStats struct {
	Language string `json:"language"`
	Method   Method `json:"method"`

	// TotalEntries is the number of translatable entries in the
	// catalog.
	TotalEntries int `json:"total_entries"`
	// AlreadyTranslated counts entries that needed no work after the
	// merge.
	AlreadyTranslated int `json:"already_translated"`
	// Merged counts entries carried over from a pre-existing file.
	Merged int `json:"merged"`
	// FromDictionary counts glossary hits.
	FromDictionary int `json:"from_dictionary,omitempty"`
	// TranslatedInRun counts entries translated by this run.
	TranslatedInRun int `json:"translated_in_run"`
	// FailedInRun counts entries whose batches failed or were
	// abandoned by the failure policy.
	FailedInRun int `json:"failed_in_run"`
	// SkippedBudget counts entries skipped by the cost ceiling.
	SkippedBudget int `json:"skipped_budget"`
	// SkippedLimit counts entries left out by a string ceiling.
	SkippedLimit int `json:"skipped_limit"`

	Totals     ledger.Totals `json:"totals"`
	OutputPath string        `json:"output_path,omitempty"`
	Error      string        `json:"error,omitempty"`

	Elapsed        time.Duration `json:"-"`
	ElapsedSeconds float64       `json:"elapsed_seconds"`
}

// finalize stamps the elapsed time once the run is done.
func (s *LanguageStats) finalize(start time.Time) {
	s.Elapsed = time.Since(start)
	s.ElapsedSeconds = s.Elapsed.Seconds()
}

// attempted reports whether the run tried to translate anything.
func (s *LanguageStats) attempted() bool {
	return s.TranslatedInRun > 0 || s.FailedInRun > 0
}
