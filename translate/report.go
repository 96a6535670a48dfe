package translate

import (
	"encoding/json"
	"io"
	"time"

	"github.com/publishpress/publishpress-translator-sub000/ledger"
)

// Report aggregates all language runs of one invocation.
type Report struct {
	Languages []*LanguageStats `json:"languages"`
	Totals    ledger.Totals    `json:"totals"`
	DryRun    bool             `json:"dry_run,omitempty"`

	Elapsed        time.Duration `json:"-"`
	ElapsedSeconds float64       `json:"elapsed_seconds"`
}

// byLanguage returns the stats for a language code, or nil.
func (r *Report) byLanguage(lang string) *LanguageStats {
	for _, s := range r.Languages {
		if s.Language == lang {
			return s
		}
	}
	return nil
}

// Failed reports whether the run should exit non-zero: any language
// with a terminal error, or work attempted everywhere with nothing
// succeeding.
func (r *Report) Failed() bool {
	attempted := false
	translated := 0
	for _, s := range r.Languages {
		if s.Error != "" {
			return true
		}
		if s.attempted() {
			attempted = true
		}
		translated += s.TranslatedInRun
	}
	return attempted && translated == 0
}

// WriteJSON renders the report for machine consumers.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// addTotals folds a language's ledger totals into the aggregate.
func (r *Report) addTotals(t ledger.Totals) {
	r.Totals.Add(t)
}
