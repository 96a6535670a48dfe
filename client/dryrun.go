package client

import (
	"context"

	"github.com/publishpress/publishpress-translator-sub000/pofile"
)

// DryRun is a backend that performs no network I/O. It produces
// placeholder translations and estimated usage, exercising the full
// pipeline including persistence.
type DryRun struct{}

// NewDryRun builds the dry-run backend.
func NewDryRun() *DryRun {
	return &DryRun{}
}

// TranslateBatch returns placeholder translations for every item and
// the same cost estimate the budget gate uses.
func (d *DryRun) TranslateBatch(_ context.Context, req BatchRequest) (BatchResult, error) {
	nplurals := req.Nplurals
	if nplurals < 1 {
		nplurals = 2
	}

	translations := make([]Translation, len(req.Items))
	for i, item := range req.Items {
		if item.PluralText == "" {
			translations[i] = Translation{
				Forms:  []string{pofile.DryRunPrefix + item.Text},
				DryRun: true,
			}
			continue
		}
		forms := make([]string, nplurals)
		forms[0] = pofile.DryRunPrefix + item.Text
		for j := 1; j < nplurals; j++ {
			forms[j] = pofile.DryRunPrefix + item.PluralText
		}
		translations[i] = Translation{Forms: forms, DryRun: true}
	}

	return BatchResult{
		Translations: translations,
		Usage:        EstimateBatch(req),
	}, nil
}
