package ledger

import (
	"math"
	"testing"
)

func TestTotalsAdditivity(t *testing.T) {
	l := New()
	records := []Record{
		{PromptTokens: 100, CompletionTokens: 50, Cost: 0.001, Model: "gpt-4o-mini"},
		{PromptTokens: 0, CompletionTokens: 0, Cost: 0, Model: "gpt-4o-mini"},
		{PromptTokens: 200, CompletionTokens: 300, Cost: 0.0045, Model: "gpt-4o", DryRun: true},
	}

	var wantCost float64
	for _, r := range records {
		l.Add(r)
		wantCost += r.Cost
	}

	got := l.Totals()
	if math.Abs(got.TotalCost-wantCost) > 1e-12 {
		t.Errorf("TotalCost = %v, want %v", got.TotalCost, wantCost)
	}
	if got.PromptTokens != 300 || got.CompletionTokens != 350 {
		t.Errorf("tokens = %d/%d, want 300/350", got.PromptTokens, got.CompletionTokens)
	}
	if got.TotalTokens != 650 {
		t.Errorf("TotalTokens = %d, want 650", got.TotalTokens)
	}
	if got.Requests != 3 {
		t.Errorf("Requests = %d, want 3", got.Requests)
	}
	if len(got.Models) != 2 {
		t.Errorf("Models = %v, want 2 distinct", got.Models)
	}
}

func TestEmptyLedger(t *testing.T) {
	got := New().Totals()
	if got.TotalCost != 0 || got.Requests != 0 || got.TotalTokens != 0 {
		t.Errorf("empty ledger totals = %+v, want zero", got)
	}
	if got.DryRun {
		t.Error("empty ledger should not be dry-run")
	}
}

func TestDryRunSticky(t *testing.T) {
	l := New()
	l.Add(Record{Cost: 0.001})
	if l.Totals().DryRun {
		t.Fatal("no dry-run record yet")
	}
	l.Add(Record{Cost: 0.002, DryRun: true})
	l.Add(Record{Cost: 0.003})
	if !l.Totals().DryRun {
		t.Error("DryRun should be sticky once any record is an estimate")
	}
}

func TestTotalsAdd(t *testing.T) {
	a := Totals{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15, TotalCost: 0.1, Requests: 1, Models: []string{"a"}}
	b := Totals{PromptTokens: 20, CompletionTokens: 10, TotalTokens: 30, TotalCost: 0.2, Requests: 2, Models: []string{"a", "b"}, DryRun: true}

	a.Add(b)
	if a.TotalTokens != 45 || a.Requests != 3 {
		t.Errorf("merged = %+v", a)
	}
	if math.Abs(a.TotalCost-0.3) > 1e-12 {
		t.Errorf("TotalCost = %v, want 0.3", a.TotalCost)
	}
	if len(a.Models) != 2 {
		t.Errorf("Models = %v", a.Models)
	}
	if !a.DryRun {
		t.Error("DryRun should propagate")
	}
}
