// Package ledger accumulates per-request token usage and cost for one
// language run.
package ledger

import "sort"

// Record captures the usage of one translation request. Records are
// immutable once added to a Ledger.
type Record struct {
	// PromptTokens is the number of input tokens billed or estimated.
	PromptTokens int `json:"promptTokens"`
	// CompletionTokens is the number of output tokens billed or estimated.
	CompletionTokens int `json:"completionTokens"`
	// Cost is the request cost in USD.
	Cost float64 `json:"cost"`
	// Model is the model identifier the request was billed against.
	Model string `json:"model"`
	// DryRun marks estimated (not billed) records.
	DryRun bool `json:"dryRun"`
}

// Totals is the aggregate over all records in a ledger.
type Totals struct {
	PromptTokens     int      `json:"promptTokens"`
	CompletionTokens int      `json:"completionTokens"`
	TotalTokens      int      `json:"totalTokens"`
	TotalCost        float64  `json:"totalCost"`
	Requests         int      `json:"requests"`
	Models           []string `json:"models,omitempty"`
	// DryRun is true once any record is a dry-run estimate.
	DryRun bool `json:"dryRun,omitempty"`
}

// Add merges another aggregate into this one. Used by the orchestrator
// to build the cross-language report.
func (t *Totals) Add(other Totals) {
	t.PromptTokens += other.PromptTokens
	t.CompletionTokens += other.CompletionTokens
	t.TotalTokens += other.TotalTokens
	t.TotalCost += other.TotalCost
	t.Requests += other.Requests
	t.DryRun = t.DryRun || other.DryRun
	for _, m := range other.Models {
		if !contains(t.Models, m) {
			t.Models = append(t.Models, m)
		}
	}
	sort.Strings(t.Models)
}

// Ledger stores the cost records of one language run. Totals are
// recomputed from the stored records on every call, so the aggregate
// always equals the sum of the records.
type Ledger struct {
	records []Record
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{}
}

// Add appends a record.
func (l *Ledger) Add(r Record) {
	l.records = append(l.records, r)
}

// Len returns the number of stored records.
func (l *Ledger) Len() int {
	return len(l.records)
}

// Totals recomputes the aggregate from all stored records.
func (l *Ledger) Totals() Totals {
	var t Totals
	for _, r := range l.records {
		t.PromptTokens += r.PromptTokens
		t.CompletionTokens += r.CompletionTokens
		t.TotalTokens += r.PromptTokens + r.CompletionTokens
		t.TotalCost += r.Cost
		t.Requests++
		if r.DryRun {
			t.DryRun = true
		}
		if r.Model != "" && !contains(t.Models, r.Model) {
			t.Models = append(t.Models, r.Model)
		}
	}
	sort.Strings(t.Models)
	return t
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
