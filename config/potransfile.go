// Package config — .potrans.yaml configuration file support.
//
// When a .potrans.yaml file exists in the working directory, it
// provides per-project defaults for the translate command. Flags
// still override everything it sets.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/publishpress/publishpress-translator-sub000/langmeta"
)

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// PotransFile is the top-level .potrans.yaml structure.
type PotransFile struct {
	// Source is the POT or PO template file path.
	Source string `yaml:"source"`
	// OutputDir is where per-language .po files are written (default
	// the source file's directory).
	OutputDir string `yaml:"output_dir,omitempty"`
	// Languages is the list of target language codes.
	Languages []string `yaml:"languages"`
	// SourceLang is the source language code (default "en").
	SourceLang string `yaml:"source_lang,omitempty"`

	// Model is the chat model name (default "gpt-4o-mini").
	Model string `yaml:"model,omitempty"`
	// BaseURL points at an API-compatible endpoint.
	BaseURL string `yaml:"base_url,omitempty"`
	// Prompt overrides the built-in system prompt.
	Prompt string `yaml:"prompt,omitempty"`

	// BatchSize is the number of strings per request (default 50).
	BatchSize int `yaml:"batch_size,omitempty"`
	// MaxStrings caps translated strings per language (0 = unlimited).
	MaxStrings int `yaml:"max_strings,omitempty"`
	// MaxCost caps estimated spend per language in USD (0 = unlimited).
	MaxCost float64 `yaml:"max_cost,omitempty"`
	// TotalMaxStrings and TotalMaxCost cap the whole run. Setting
	// either forces sequential language processing.
	TotalMaxStrings int     `yaml:"total_max_strings,omitempty"`
	TotalMaxCost    float64 `yaml:"total_max_cost,omitempty"`

	// OnFailure: "continue" (default), "abort", or "skip-language".
	OnFailure string `yaml:"on_failure,omitempty"`
	// Parallel is the number of languages translated concurrently
	// (default 4, forced to 1 by the global ceilings).
	Parallel int `yaml:"parallel,omitempty"`
	// MaxRetries is the retry count per batch (default 3).
	MaxRetries int `yaml:"max_retries,omitempty"`

	// Dictionary is an optional glossary YAML path.
	Dictionary string `yaml:"dictionary,omitempty"`
	// RetranslateFuzzy re-translates fuzzy entries instead of keeping
	// them.
	RetranslateFuzzy bool `yaml:"retranslate_fuzzy,omitempty"`
}

// Failure modes accepted by OnFailure.
const (
	FailureContinue     = "continue"
	FailureAbort        = "abort"
	FailureSkipLanguage = "skip-language"
)

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// PotransFileName is the default config file name.
const PotransFileName = ".potrans.yaml"

// Load reads and validates .potrans.yaml from the given directory.
// Returns nil if no config file exists.
func Load(rootDir string) (*PotransFile, error) {
	path := filepath.Join(rootDir, PotransFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var pf PotransFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	pf.applyDefaults()
	if err := pf.validate(path); err != nil {
		return nil, err
	}
	return &pf, nil
}

func (pf *PotransFile) applyDefaults() {
	if pf.SourceLang == "" {
		pf.SourceLang = "en"
	}
	if pf.Model == "" {
		pf.Model = "gpt-4o-mini"
	}
	if pf.BatchSize == 0 {
		pf.BatchSize = 50
	}
	if pf.OnFailure == "" {
		pf.OnFailure = FailureContinue
	}
	if pf.Parallel == 0 {
		pf.Parallel = 4
	}
	if pf.MaxRetries == 0 {
		pf.MaxRetries = 3
	}
}

func (pf *PotransFile) validate(path string) error {
	if pf.Source == "" {
		return fmt.Errorf("%s: source is required", path)
	}
	if len(pf.Languages) == 0 {
		return fmt.Errorf("%s: at least one language is required", path)
	}
	switch pf.OnFailure {
	case FailureContinue, FailureAbort, FailureSkipLanguage:
	default:
		return fmt.Errorf("%s: invalid on_failure %q (use %s, %s or %s)",
			path, pf.OnFailure, FailureContinue, FailureAbort, FailureSkipLanguage)
	}
	if pf.BatchSize < 1 {
		return fmt.Errorf("%s: batch_size must be at least 1", path)
	}
	if pf.MaxCost < 0 || pf.TotalMaxCost < 0 {
		return fmt.Errorf("%s: cost ceilings must not be negative", path)
	}
	for _, lang := range pf.Languages {
		if langmeta.BaseCode(lang) == "" {
			return fmt.Errorf("%s: empty language code", path)
		}
	}
	return nil
}
