// potrans — AI batch translation of gettext PO/POT catalogs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/publishpress/publishpress-translator-sub000/client"
	"github.com/publishpress/publishpress-translator-sub000/config"
	"github.com/publishpress/publishpress-translator-sub000/dictionary"
	"github.com/publishpress/publishpress-translator-sub000/i18n"
	"github.com/publishpress/publishpress-translator-sub000/langmeta"
	"github.com/publishpress/publishpress-translator-sub000/pofile"
	"github.com/publishpress/publishpress-translator-sub000/settings"
	"github.com/publishpress/publishpress-translator-sub000/translate"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	tagInfo    = color.New(color.FgBlue).Sprint("[INFO]")
	tagSuccess = color.New(color.FgGreen).Sprint("[OK]")
	tagWarning = color.New(color.FgYellow).Sprint("[WARN]")
	tagError   = color.New(color.FgRed).Sprint("[ERROR]")
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, tagInfo+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, tagSuccess+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, tagWarning+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, tagError+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flag
// ---------------------------------------------------------------------------

var rootDir string

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "potrans",
		Short: "AI batch translation of gettext PO/POT catalogs",
		Long: `potrans — AI batch translation of gettext PO/POT catalogs.

Reads a .pot template (or .po file), plans the untranslated strings into
batches, translates them through an OpenAI-compatible chat API, and writes
one .po file per target language. Pre-existing translations are merged and
kept; the output file is rewritten after every batch so an interrupted run
loses at most one batch of work.

Commands:
  translate   Translate the catalog into the target languages
  estimate    Dry-run the whole pipeline and report estimated cost
  status      Show per-language translation statistics
  auth        Manage stored API credentials

Project defaults can live in a .potrans.yaml file; flags override it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory")

	root.AddCommand(
		newTranslateCmd(),
		newEstimateCmd(),
		newStatusCmd(),
		newAuthCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	// A .env next to the binary invocation is a convenience for
	// OPENAI_API_KEY; missing files are fine.
	_ = godotenv.Load()
	i18n.Init("")

	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("potrans version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// translate / estimate
// ---------------------------------------------------------------------------

type translateArgs struct {
	source           string
	outputDir        string
	outputPrefix     string
	baseFile         string
	languages        []string
	sourceLang       string
	model            string
	apiKey           string
	baseURL          string
	prompt           string
	dictPath         string
	batchSize        int
	maxStrings       int
	maxCost          float64
	totalMaxStrings  int
	totalMaxCost     float64
	onFailure        string
	maxConcurrent    int
	maxRetries       int
	dryRun           bool
	force            bool
	retranslateFuzzy bool
	jsonOut          bool
}

func addTranslateFlags(cmd *cobra.Command, a *translateArgs) {
	f := cmd.Flags()
	f.StringVarP(&a.source, "source", "s", "", "Source .pot/.po catalog")
	f.StringVarP(&a.outputDir, "output-dir", "o", "", "Output directory (default: source directory)")
	f.StringVar(&a.outputPrefix, "prefix", "", "Output file name prefix ({prefix}{lang}.po)")
	f.StringVar(&a.baseFile, "base", "", "Explicit .po file to merge instead of the output file")
	f.StringSliceVarP(&a.languages, "languages", "l", nil, "Target language codes (e.g. ru,de,pt_BR)")
	f.StringVar(&a.sourceLang, "source-lang", "", "Source language code (default en)")
	f.StringVarP(&a.model, "model", "m", "", "Chat model name (default gpt-4o-mini)")
	f.StringVar(&a.apiKey, "api-key", "", "API key (overrides env and stored credentials)")
	f.StringVar(&a.baseURL, "base-url", "", "OpenAI-compatible endpoint URL")
	f.StringVar(&a.prompt, "prompt", "", "System prompt override")
	f.StringVar(&a.dictPath, "dictionary", "", "Glossary YAML applied before translation")
	f.IntVar(&a.batchSize, "batch-size", 0, "Strings per API request (default 50)")
	f.IntVar(&a.maxStrings, "max-strings", 0, "Per-language string cap (0 = unlimited)")
	f.Float64Var(&a.maxCost, "max-cost", 0, "Per-language cost cap in USD (0 = unlimited)")
	f.IntVar(&a.totalMaxStrings, "total-max-strings", 0, "Cross-language string cap, forces sequential runs")
	f.Float64Var(&a.totalMaxCost, "total-max-cost", 0, "Cross-language cost cap in USD, forces sequential runs")
	f.StringVar(&a.onFailure, "on-failure", "", "Failure policy: continue, abort, skip-language")
	f.IntVar(&a.maxConcurrent, "parallel", 0, "Concurrent language limit (default 4)")
	f.IntVar(&a.maxRetries, "max-retries", 0, "Retries per batch (default 3)")
	f.BoolVar(&a.force, "force", false, "Retranslate everything, ignore existing translations")
	f.BoolVar(&a.retranslateFuzzy, "retranslate-fuzzy", false, "Treat fuzzy entries as untranslated")
	f.BoolVar(&a.jsonOut, "json", false, "Print the run report as JSON")
}

func newTranslateCmd() *cobra.Command {
	var a translateArgs
	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate the catalog into the target languages",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(a)
		},
	}
	addTranslateFlags(cmd, &a)
	cmd.Flags().BoolVar(&a.dryRun, "dry-run", false, "Write placeholder translations and report estimated cost")
	return cmd
}

func newEstimateCmd() *cobra.Command {
	var a translateArgs
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Dry-run the whole pipeline and report estimated cost",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.dryRun = true
			return runTranslate(a)
		},
	}
	addTranslateFlags(cmd, &a)
	return cmd
}

// applyConfig fills unset args from .potrans.yaml.
func (a *translateArgs) applyConfig(pf *config.PotransFile) {
	if pf == nil {
		return
	}
	if a.source == "" {
		a.source = pf.Source
	}
	if a.outputDir == "" {
		a.outputDir = pf.OutputDir
	}
	if len(a.languages) == 0 {
		a.languages = pf.Languages
	}
	if a.sourceLang == "" {
		a.sourceLang = pf.SourceLang
	}
	if a.model == "" {
		a.model = pf.Model
	}
	if a.baseURL == "" {
		a.baseURL = pf.BaseURL
	}
	if a.prompt == "" {
		a.prompt = pf.Prompt
	}
	if a.dictPath == "" {
		a.dictPath = pf.Dictionary
	}
	if a.batchSize == 0 {
		a.batchSize = pf.BatchSize
	}
	if a.maxStrings == 0 {
		a.maxStrings = pf.MaxStrings
	}
	if a.maxCost == 0 {
		a.maxCost = pf.MaxCost
	}
	if a.totalMaxStrings == 0 {
		a.totalMaxStrings = pf.TotalMaxStrings
	}
	if a.totalMaxCost == 0 {
		a.totalMaxCost = pf.TotalMaxCost
	}
	if a.onFailure == "" {
		a.onFailure = pf.OnFailure
	}
	if a.maxConcurrent == 0 {
		a.maxConcurrent = pf.Parallel
	}
	if a.maxRetries == 0 {
		a.maxRetries = pf.MaxRetries
	}
	if pf.RetranslateFuzzy {
		a.retranslateFuzzy = true
	}
}

// resolveAPIKey follows flag > environment > credential store.
func resolveAPIKey(flagKey string) string {
	if flagKey != "" {
		return flagKey
	}
	for _, name := range []string{"POTRANS_API_KEY", "OPENAI_API_KEY"} {
		if env := os.Getenv(name); env != "" {
			return env
		}
	}
	return settings.GetAPIKey(settings.DefaultProvider)
}

func runTranslate(a translateArgs) error {
	pf, err := config.Load(rootDir)
	if err != nil {
		return err
	}
	a.applyConfig(pf)

	if a.source == "" {
		return fmt.Errorf("no source catalog: use --source or a .potrans.yaml")
	}
	if len(a.languages) == 0 {
		return fmt.Errorf("no target languages: use --languages or a .potrans.yaml")
	}
	if !filepath.IsAbs(a.source) {
		a.source = filepath.Join(rootDir, a.source)
	}
	if a.outputDir != "" && !filepath.IsAbs(a.outputDir) {
		a.outputDir = filepath.Join(rootDir, a.outputDir)
	}

	var backend client.Client
	if a.dryRun {
		logInfo("%s", i18n.T("Dry run: no API calls will be made."))
	} else {
		key := resolveAPIKey(a.apiKey)
		if key == "" {
			return fmt.Errorf("no API key: use --api-key, POTRANS_API_KEY, or `potrans auth set`")
		}
		if a.baseURL == "" {
			a.baseURL = settings.GetBaseURL(settings.DefaultProvider)
		}
		backend = client.NewOpenAI(key, a.baseURL)
	}

	var dict *dictionary.Dictionary
	if a.dictPath != "" {
		dict, err = dictionary.Load(a.dictPath)
		if err != nil {
			return fmt.Errorf("loading dictionary: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	singleLang := len(a.languages) == 1
	var bar *progressbar.ProgressBar

	opts := translate.Options{
		Source:           a.source,
		OutputDir:        a.outputDir,
		OutputPrefix:     a.outputPrefix,
		BaseFile:         a.baseFile,
		Languages:        a.languages,
		SourceLang:       a.sourceLang,
		Client:           backend,
		Model:            a.model,
		SystemPrompt:     a.prompt,
		BatchSize:        a.batchSize,
		MaxStrings:       a.maxStrings,
		MaxCost:          a.maxCost,
		TotalMaxStrings:  a.totalMaxStrings,
		TotalMaxCost:     a.totalMaxCost,
		OnFailure:        a.onFailure,
		MaxConcurrent:    a.maxConcurrent,
		MaxRetries:       a.maxRetries,
		DryRun:           a.dryRun,
		ForceRetranslate: a.force,
		RetranslateFuzzy: a.retranslateFuzzy,
		Dictionary:       dict,
		OnLog:            logInfo,
		OnError:          logWarning,
		OnProgress: func(lang string, done, total int) {
			if !singleLang {
				logInfo("[%s] %d/%d", lang, done, total)
				return
			}
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetDescription(fmt.Sprintf(i18n.T("Translating %s..."), lang)),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
			}
			_ = bar.Set(done)
		},
	}
	if opts.Model == "" {
		opts.Model = "gpt-4o-mini"
	}

	report, err := translate.Run(ctx, opts)
	if err != nil {
		return err
	}
	if bar != nil {
		_ = bar.Finish()
	}

	if a.jsonOut {
		if err := report.WriteJSON(os.Stdout); err != nil {
			return err
		}
	} else {
		renderReport(report)
	}

	if report.Failed() {
		return fmt.Errorf("translation finished with failures")
	}
	logSuccess("%s", i18n.T("Done."))
	return nil
}

// renderReport prints the per-language summary table.
func renderReport(r *translate.Report) {
	bold := color.New(color.Bold)
	fmt.Println()
	bold.Printf("%-10s %-12s %10s %10s %8s %8s %10s\n",
		i18n.T("Language"), "Method", i18n.T("Translated"), "Merged", i18n.T("Failed"), "Skipped", "Cost")

	for _, s := range r.Languages {
		cost := fmt.Sprintf("$%.4f", s.Totals.TotalCost)
		line := fmt.Sprintf("%-10s %-12s %10d %10d %8d %8d %10s",
			s.Language, s.Method, s.TranslatedInRun, s.Merged,
			s.FailedInRun, s.SkippedBudget+s.SkippedLimit, cost)
		switch {
		case s.Error != "":
			color.Red("%s  %s", line, s.Error)
		case s.Method == translate.MethodCostLimited:
			color.Yellow("%s", line)
		default:
			fmt.Println(line)
		}
	}

	fmt.Println()
	label := i18n.T("Total cost:")
	if r.DryRun {
		label = i18n.T("Estimated cost:")
	}
	bold.Printf("%s $%.4f (%d requests, %s)\n", label,
		r.Totals.TotalCost, r.Totals.Requests, strings.Join(r.Totals.Models, ", "))
}

// ---------------------------------------------------------------------------
// status
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	var source, outputDir, prefix string
	var languages []string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show per-language translation statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			pf, err := config.Load(rootDir)
			if err != nil {
				return err
			}
			if pf != nil {
				if source == "" {
					source = pf.Source
				}
				if outputDir == "" {
					outputDir = pf.OutputDir
				}
				if len(languages) == 0 {
					languages = pf.Languages
				}
			}
			if source == "" {
				return fmt.Errorf("no source catalog: use --source or a .potrans.yaml")
			}
			if !filepath.IsAbs(source) {
				source = filepath.Join(rootDir, source)
			}
			if outputDir == "" {
				outputDir = filepath.Dir(source)
			} else if !filepath.IsAbs(outputDir) {
				outputDir = filepath.Join(rootDir, outputDir)
			}
			return runStatus(source, outputDir, prefix, languages)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&source, "source", "s", "", "Source .pot/.po catalog")
	f.StringVarP(&outputDir, "output-dir", "o", "", "Directory with per-language .po files")
	f.StringVar(&prefix, "prefix", "", "Output file name prefix")
	f.StringSliceVarP(&languages, "languages", "l", nil, "Language codes (default: all .po files found)")
	return cmd
}

func runStatus(source, outputDir, prefix string, languages []string) error {
	src, err := pofile.ParseFile(source)
	if err != nil {
		return err
	}
	total := src.Count()
	logInfo("%s: %d strings", source, total)

	if len(languages) == 0 {
		languages, err = discoverLanguages(outputDir, prefix)
		if err != nil {
			return err
		}
	}
	if len(languages) == 0 {
		logWarning("no .po files found in %s", outputDir)
		return nil
	}

	bold := color.New(color.Bold)
	bold.Printf("%-10s %-22s %12s %8s %14s\n",
		i18n.T("Language"), "Name", i18n.T("Translated"), i18n.T("Fuzzy"), i18n.T("Untranslated"))

	for _, lang := range languages {
		path := filepath.Join(outputDir, prefix+lang+".po")
		f, err := pofile.ParseFile(path)
		if err != nil {
			color.Red("%-10s %-22s %s", lang, langmeta.Name(lang), err)
			continue
		}
		ftotal, translated, fuzzy, untranslated := f.Stats()
		line := fmt.Sprintf("%-10s %-22s %7d/%-4d %8d %14d",
			lang, langmeta.Name(lang), translated, ftotal, fuzzy, untranslated)
		if untranslated == 0 && fuzzy == 0 {
			color.Green("%s", line)
		} else {
			fmt.Println(line)
		}
	}
	return nil
}

// discoverLanguages lists the language codes of the .po files in a
// directory.
func discoverLanguages(dir, prefix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var langs []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".po") || !strings.HasPrefix(name, prefix) {
			continue
		}
		langs = append(langs, strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".po"))
	}
	sort.Strings(langs)
	return langs, nil
}

// ---------------------------------------------------------------------------
// auth
// ---------------------------------------------------------------------------

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage stored API credentials",
		Long: `Manage stored API credentials.

Keys are stored in ` + settings.FilePath() + ` with 0600 permissions.
The translate command looks up keys as: --api-key flag, then the
POTRANS_API_KEY or OPENAI_API_KEY environment variables, then this
store.`,
	}
	cmd.AddCommand(newAuthSetCmd(), newAuthShowCmd(), newAuthRemoveCmd())
	return cmd
}

func newAuthSetCmd() *cobra.Command {
	var baseURL string
	cmd := &cobra.Command{
		Use:   "set <api-key>",
		Short: "Store an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if baseURL != "" {
				err = settings.SetAPIKeyWithBaseURL(settings.DefaultProvider, args[0], baseURL)
			} else {
				err = settings.SetAPIKey(settings.DefaultProvider, args[0])
			}
			if err != nil {
				return err
			}
			logSuccess("%s", i18n.T("API key saved."))
			return nil
		},
	}
	cmd.Flags().StringVar(&baseURL, "base-url", "", "OpenAI-compatible endpoint URL to store with the key")
	return cmd
}

func newAuthShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the stored API key (masked)",
		RunE: func(cmd *cobra.Command, args []string) error {
			key := settings.GetAPIKey(settings.DefaultProvider)
			if key == "" {
				logWarning("%s", i18n.T("No API key configured."))
				return nil
			}
			fmt.Printf("key:      %s\n", settings.MaskKey(key))
			if url := settings.GetBaseURL(settings.DefaultProvider); url != "" {
				fmt.Printf("base URL: %s\n", url)
			}
			fmt.Printf("file:     %s\n", settings.FilePath())
			return nil
		},
	}
}

func newAuthRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove",
		Short: "Delete the stored API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := settings.Remove(settings.DefaultProvider); err != nil {
				return err
			}
			logSuccess("%s", i18n.T("API key removed."))
			return nil
		},
	}
}
