package translate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/publishpress/publishpress-translator-sub000/client"
	"github.com/publishpress/publishpress-translator-sub000/pofile"
)

// Run translates the source catalog into every target language and
// returns the aggregated report. The returned error covers failures
// that prevent any language from starting (unreadable source catalog,
// missing options); per-language failures land in the report instead.
func Run(ctx context.Context, opts Options) (*Report, error) {
	if opts.Source == "" {
		return nil, errors.New("no source catalog given")
	}
	if len(opts.Languages) == 0 {
		return nil, errors.New("no target languages given")
	}

	backend := opts.Client
	if opts.DryRun {
		backend = client.NewDryRun()
	}
	if backend == nil {
		return nil, errors.New("no translation backend configured")
	}

	source, err := pofile.ParseFile(opts.Source)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", opts.Source, err)
	}

	start := time.Now()
	report := &Report{DryRun: opts.DryRun}

	// Global ceilings require cost/string state threaded between
	// languages, which only works one language at a time.
	if opts.TotalMaxStrings > 0 || opts.TotalMaxCost > 0 {
		runSequential(ctx, &opts, backend, source, report)
	} else {
		runParallel(ctx, &opts, backend, source, report)
	}

	for _, s := range report.Languages {
		report.addTotals(s.Totals)
	}
	report.Elapsed = time.Since(start)
	report.ElapsedSeconds = report.Elapsed.Seconds()
	return report, nil
}

// perLanguageMax returns the configured per-language string ceiling,
// -1 for unlimited.
func (o *Options) perLanguageMax() int {
	if o.MaxStrings > 0 {
		return o.MaxStrings
	}
	return -1
}

// runParallel processes languages concurrently up to the concurrency
// limit. Each run owns its catalog and ledger, so the only shared
// work is slotting results into the report.
func runParallel(ctx context.Context, opts *Options, backend client.Client, source *pofile.File, report *Report) {
	report.Languages = make([]*LanguageStats, len(opts.Languages))

	sem := make(chan struct{}, opts.effectiveMaxConcurrent())
	var wg sync.WaitGroup

	for i, lang := range opts.Languages {
		wg.Add(1)
		go func(i int, lang string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			report.Languages[i] = runLanguage(ctx, opts, backend, source, lang, opts.perLanguageMax(), opts.MaxCost)
		}(i, lang)
	}
	wg.Wait()
}

// runSequential processes languages one at a time, threading the
// global string and cost budgets between them.
func runSequential(ctx context.Context, opts *Options, backend client.Client, source *pofile.File, report *Report) {
	stringsLeft := opts.TotalMaxStrings
	stringCeiling := opts.TotalMaxStrings > 0
	global := newBudgetState(opts.TotalMaxCost)
	stopped := false

	for _, lang := range opts.Languages {
		if stopped || (stringCeiling && stringsLeft <= 0) || global.exhausted() {
			report.Languages = append(report.Languages, skippedStats(lang))
			continue
		}

		maxStrings := opts.perLanguageMax()
		if stringCeiling && (maxStrings < 0 || maxStrings > stringsLeft) {
			maxStrings = stringsLeft
		}

		maxCost := opts.MaxCost
		if global.enabled() {
			remaining := global.remaining()
			if maxCost <= 0 || remaining < maxCost {
				maxCost = remaining
			}
		}

		stats := runLanguage(ctx, opts, backend, source, lang, maxStrings, maxCost)
		report.Languages = append(report.Languages, stats)

		// Attempted strings consume the global allowance whether they
		// succeeded or not; a failing language must not hand its
		// quota to the next one and balloon the run.
		stringsLeft -= stats.TranslatedInRun + stats.FailedInRun
		global.charge(stats.Totals.TotalCost)
		if global.exhausted() {
			stopped = true
		}
	}
}

// skippedStats is the zero-work record for a language never started
// because a global ceiling ran out.
func skippedStats(lang string) *LanguageStats {
	return &LanguageStats{
		Language: lang,
		Method:   MethodCostLimited,
	}
}
