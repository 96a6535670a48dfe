package translate

import (
	"context"
	"errors"
	"fmt"

	"github.com/publishpress/publishpress-translator-sub000/client"
	"github.com/publishpress/publishpress-translator-sub000/config"
	"github.com/publishpress/publishpress-translator-sub000/ledger"
)

// batchState classifies a processed batch.
type batchState int

const (
	batchSucceeded batchState = iota
	batchPartiallyFailed
	batchFailed
)

func classifyOutcome(translated, failed int) batchState {
	switch {
	case failed == 0:
		return batchSucceeded
	case translated > 0:
		return batchPartiallyFailed
	default:
		return batchFailed
	}
}

// engine drives the batches of one language run: budget pre-check,
// adapter call with retries, outcome classification, reconciliation
// into the catalog, and a persist after every batch.
type engine struct {
	opts     *Options
	lang     string
	backend  client.Client
	retry    client.RetryPolicy
	budget   *budgetState
	led      *ledger.Ledger
	stats    *LanguageStats
	request  func(b Batch) client.BatchRequest
	persist  func() error
	nplurals int
}

// run processes all batches in planning order. The returned error is
// terminal for the language (abort policy or write failure); budget
// skips and ordinary batch failures are absorbed into the stats.
func (e *engine) run(ctx context.Context, batches []Batch) error {
	total := planSize(batches)
	done := 0

	for i, b := range batches {
		if e.budget.enabled() {
			estimate := client.EstimateBatch(e.request(b))
			if !e.budget.allows(estimate.Cost) {
				// A budget skip ends the loop: no batch runs after it.
				for _, rest := range batches[i:] {
					e.stats.SkippedBudget += len(rest.Entries)
				}
				e.opts.log("[%s] cost ceiling reached after $%.4f, skipping %d remaining strings",
					e.lang, e.budget.spent, total-done)
				return nil
			}
		}

		res, err := e.translate(ctx, b)
		if err != nil {
			if terminal := e.handleFailure(i, batches, err); terminal != nil {
				return terminal
			}
			if e.opts.effectiveOnFailure() == config.FailureSkipLanguage {
				return nil
			}
			continue
		}

		translated, failed := e.reconcile(b, res)
		e.stats.TranslatedInRun += translated
		e.stats.FailedInRun += failed
		if outcome := classifyOutcome(translated, failed); outcome != batchSucceeded {
			e.opts.logError("[%s] batch %d/%d: %d of %d strings came back unusable",
				e.lang, i+1, len(batches), failed, len(b.Entries))
		}

		if err := e.persist(); err != nil {
			return fmt.Errorf("writing %s: %w", e.stats.OutputPath, err)
		}

		done += len(b.Entries)
		if e.opts.OnProgress != nil {
			e.opts.OnProgress(e.lang, done, total)
		}
	}
	return nil
}

// translate runs the adapter with the retry policy. Usage is recorded
// for every attempt that consumed tokens, whether or not the attempt
// parsed.
func (e *engine) translate(ctx context.Context, b Batch) (client.BatchResult, error) {
	var res client.BatchResult
	err := e.retry.Do(ctx, func() error {
		r, err := e.backend.TranslateBatch(ctx, e.request(b))
		if r.Usage.Model != "" {
			e.led.Add(r.Usage)
			e.budget.charge(r.Usage.Cost)
		}
		res = r
		return err
	})
	return res, err
}

// handleFailure applies the failure policy to a batch that exhausted
// its retries. A non-nil return terminates the language run.
func (e *engine) handleFailure(i int, batches []Batch, cause error) error {
	b := batches[i]
	e.opts.logError("[%s] batch %d/%d failed: %v", e.lang, i+1, len(batches), cause)

	var authErr *client.AuthError
	isAuth := errors.As(cause, &authErr)

	switch {
	case e.opts.effectiveOnFailure() == config.FailureAbort || isAuth:
		e.stats.FailedInRun += len(b.Entries)
		if err := e.persist(); err != nil {
			return fmt.Errorf("writing %s: %w", e.stats.OutputPath, err)
		}
		return fmt.Errorf("batch %d/%d: %w", i+1, len(batches), cause)

	case e.opts.effectiveOnFailure() == config.FailureSkipLanguage:
		// This batch plus everything not yet attempted counts as
		// failed; the language run ends without an error so siblings
		// still run.
		for _, rest := range batches[i:] {
			e.stats.FailedInRun += len(rest.Entries)
		}
		if err := e.persist(); err != nil {
			return fmt.Errorf("writing %s: %w", e.stats.OutputPath, err)
		}
		return nil

	default:
		e.stats.FailedInRun += len(b.Entries)
		return nil
	}
}

// reconcile writes successful translations back into the catalog.
// Failed entries keep whatever they held before.
func (e *engine) reconcile(b Batch, res client.BatchResult) (translated, failed int) {
	for i, entry := range b.Entries {
		if i >= len(res.Translations) {
			failed++
			continue
		}
		tr := res.Translations[i]
		if !formsComplete(tr.Forms) {
			failed++
			continue
		}

		if entry.MsgIDPlural != "" {
			forms := make([]string, e.nplurals)
			for j := range forms {
				if j < len(tr.Forms) {
					forms[j] = tr.Forms[j]
				} else {
					forms[j] = tr.Forms[len(tr.Forms)-1]
				}
			}
			entry.MsgStrs = forms
		} else {
			entry.MsgStrs = []string{tr.Forms[0]}
		}
		entry.SetFuzzy(false)
		translated++
	}
	return translated, failed
}

func formsComplete(forms []string) bool {
	if len(forms) == 0 {
		return false
	}
	for _, f := range forms {
		if f == "" {
			return false
		}
	}
	return true
}
