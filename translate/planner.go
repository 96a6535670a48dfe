package translate

import "github.com/publishpress/publishpress-translator-sub000/pofile"

// Batch is an ordered slice of catalog entries sent in one request.
// Batches are fixed once planned and consumed exactly once.
type Batch struct {
	Entries []*pofile.Entry
}

// Pending collects the entries needing translation, in catalog order.
// With includeFuzzy, fuzzy entries are treated as untranslated.
func Pending(f *pofile.File, includeFuzzy bool) []*pofile.Entry {
	var pending []*pofile.Entry
	for _, e := range f.Entries {
		if e.IsHeader() || e.Obsolete {
			continue
		}
		if e.NeedsTranslation() || (includeFuzzy && e.IsFuzzy()) {
			pending = append(pending, e)
		}
	}
	return pending
}

// Plan partitions the untranslated entries of a catalog into batches
// of at most batchSize. maxStrings truncates the entry list before
// partitioning: negative means unlimited, zero yields no batches.
// Pure function, the catalog is not touched.
func Plan(f *pofile.File, batchSize, maxStrings int) []Batch {
	return PlanEntries(Pending(f, false), batchSize, maxStrings)
}

// PlanEntries partitions an already extracted entry list.
func PlanEntries(entries []*pofile.Entry, batchSize, maxStrings int) []Batch {
	if batchSize < 1 {
		batchSize = 1
	}
	if maxStrings >= 0 && maxStrings < len(entries) {
		entries = entries[:maxStrings]
	}

	var batches []Batch
	for start := 0; start < len(entries); start += batchSize {
		end := start + batchSize
		if end > len(entries) {
			end = len(entries)
		}
		batches = append(batches, Batch{Entries: entries[start:end]})
	}
	return batches
}

// planSize counts the entries across a set of batches.
func planSize(batches []Batch) int {
	n := 0
	for _, b := range batches {
		n += len(b.Entries)
	}
	return n
}
