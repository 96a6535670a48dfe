package translate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/publishpress/publishpress-translator-sub000/client"
	"github.com/publishpress/publishpress-translator-sub000/langmeta"
	"github.com/publishpress/publishpress-translator-sub000/ledger"
	"github.com/publishpress/publishpress-translator-sub000/pofile"
)

// outputPath returns the conventional per-language output file.
func (o *Options) outputPath(lang string) string {
	dir := o.OutputDir
	if dir == "" {
		dir = filepath.Dir(o.Source)
	}
	return filepath.Join(dir, o.OutputPrefix+lang+".po")
}

// langRun is one language's working state.
type langRun struct {
	opts    *Options
	backend client.Client
	lang    string
	catalog *pofile.File
	led     *ledger.Ledger
	stats   *LanguageStats

	name     string
	rule     string
	nplurals int
}

// runLanguage processes one target language end to end: same-language
// fast path, merge of prior work, glossary, planning, the batch
// engine, and the final persist. maxStrings and maxCost are the
// effective per-language ceilings the orchestrator decided on
// (maxStrings < 0 means unlimited).
func runLanguage(ctx context.Context, opts *Options, backend client.Client, source *pofile.File, lang string, maxStrings int, maxCost float64) *LanguageStats {
	start := time.Now()
	stats := &LanguageStats{
		Language:   lang,
		Method:     MethodAPI,
		OutputPath: opts.outputPath(lang),
	}
	defer stats.finalize(start)

	r := &langRun{
		opts:    opts,
		backend: backend,
		lang:    lang,
		catalog: source.Clone(),
		led:     ledger.New(),
		stats:   stats,
	}
	r.resolveMeta()
	r.catalog.SetNplurals(r.nplurals)
	stats.TotalEntries = r.catalog.Count()

	if langmeta.BaseCode(lang) == langmeta.BaseCode(opts.effectiveSourceLang()) {
		r.sourceCopy()
		return stats
	}

	if !opts.ForceRetranslate {
		stats.Merged = r.mergeExisting()
	}
	stats.FromDictionary = opts.Dictionary.Apply(r.catalog, lang)

	pending := Pending(r.catalog, opts.RetranslateFuzzy)
	stats.AlreadyTranslated = stats.TotalEntries - len(pending)

	batches := PlanEntries(pending, opts.effectiveBatchSize(), maxStrings)
	stats.SkippedLimit = len(pending) - planSize(batches)

	if len(batches) == 0 {
		// Everything was already translated (or the string ceiling is
		// zero); still write the merged catalog once.
		if err := r.persist(); err != nil {
			stats.Error = err.Error()
		}
		return stats
	}

	eng := &engine{
		opts:    opts,
		lang:    lang,
		backend: backend,
		retry: client.RetryPolicy{
			MaxRetries: opts.effectiveMaxRetries(),
			Delay:      opts.effectiveRetryDelay(),
			OnRetry: func(attempt int, err error) {
				opts.log("[%s] retrying (attempt %d): %v", lang, attempt, err)
			},
		},
		budget:   newBudgetState(maxCost),
		led:      r.led,
		stats:    stats,
		request:  r.request,
		persist:  r.persist,
		nplurals: r.nplurals,
	}
	if err := eng.run(ctx, batches); err != nil {
		stats.Error = err.Error()
	}
	stats.Totals = r.led.Totals()
	return stats
}

// resolveMeta fills language name and plural rule. Unknown codes get
// the Germanic default from the registry.
func (r *langRun) resolveMeta() {
	meta := langmeta.Resolve(r.lang)
	r.name = meta.Name
	r.rule = meta.PluralForms
	r.nplurals = langmeta.NpluralsFromRule(r.rule)
	if r.nplurals < 1 {
		r.nplurals = 2
	}
}

// sourceCopy is the same-language fast path: every untranslated entry
// gets its source string copied into the translation slots, no
// backend involved.
func (r *langRun) sourceCopy() {
	r.stats.Method = MethodSourceCopy
	copied := 0
	for _, e := range r.catalog.Entries {
		if !e.NeedsTranslation() {
			continue
		}
		if e.MsgIDPlural != "" {
			forms := make([]string, r.nplurals)
			forms[0] = e.MsgID
			for i := 1; i < r.nplurals; i++ {
				forms[i] = e.MsgIDPlural
			}
			e.MsgStrs = forms
		} else {
			e.MsgStrs = []string{e.MsgID}
		}
		e.SetFuzzy(false)
		copied++
	}
	r.stats.TranslatedInRun = copied
	r.stats.AlreadyTranslated = r.stats.TotalEntries - copied
	if err := r.persist(); err != nil {
		r.stats.Error = err.Error()
	}
}

// mergeExisting folds a prior output file (or the explicit base file)
// into the working catalog. An unreadable existing file is a warning,
// not an error: the run proceeds from a clean slate.
func (r *langRun) mergeExisting() int {
	path := r.opts.BaseFile
	if path == "" {
		path = r.opts.outputPath(r.lang)
	}

	existing, err := pofile.ParseFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			r.opts.logError("[%s] cannot reuse %s: %v", r.lang, path, err)
		}
		return 0
	}
	return pofile.MergeCatalogs(r.catalog, existing, r.nplurals)
}

// request builds the adapter request for a batch.
func (r *langRun) request(b Batch) client.BatchRequest {
	items := make([]client.Item, len(b.Entries))
	for i, e := range b.Entries {
		items[i] = client.Item{
			Text:       e.MsgID,
			PluralText: e.MsgIDPlural,
			Context:    e.MsgCtxt,
			Comments:   e.ExtractedComments,
		}
	}
	prompt := r.opts.SystemPrompt
	if prompt == "" {
		prompt = client.DefaultSystemPrompt(r.opts.effectiveSourceLang(), r.name, r.nplurals)
	}
	return client.BatchRequest{
		SourceLang:   r.opts.effectiveSourceLang(),
		TargetLang:   r.lang,
		TargetName:   r.name,
		Model:        r.opts.Model,
		SystemPrompt: prompt,
		Nplurals:     r.nplurals,
		Items:        items,
	}
}

// persist compiles the catalog to the output path. Called after every
// batch so a hard stop loses at most one batch of work.
func (r *langRun) persist() error {
	path := r.opts.outputPath(r.lang)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return r.catalog.CompileToFile(path, pofile.HeaderOverrides{
		Language:    r.lang,
		PluralForms: r.rule,
	})
}
