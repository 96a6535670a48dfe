package pofile

import "strings"

// dynamicHeaders are re-injected at compile time and never adopted
// from an existing output catalog.
var dynamicHeaders = []string{
	"PO-Revision-Date",
	"Language",
	"Plural-Forms",
	"MIME-Version",
	"Content-Type",
	"Content-Transfer-Encoding",
	"POT-Creation-Date",
}

// MergeCatalogs copies translations from an existing output catalog
// into a fresh base catalog, matching entries by context plus msgid.
// Plural forms are carried positionally and resized to nplurals with
// zero fill. An entry merges only if the existing one has at least one
// non-empty form; its fuzzy flag is carried with it. Returns the
// number of merged entries.
func MergeCatalogs(base, existing *File, nplurals int) int {
	if existing == nil {
		return 0
	}
	if nplurals < 1 {
		nplurals = 1
	}

	idx := existing.Index()
	merged := 0

	for _, e := range base.Entries {
		if e.IsHeader() || e.Obsolete {
			continue
		}
		prev, ok := idx[e.Key()]
		if !ok || !hasAnyForm(prev) {
			continue
		}

		if e.MsgIDPlural != "" {
			e.MsgStrs = resizeForms(prev.MsgStrs, nplurals)
		} else {
			form := ""
			if len(prev.MsgStrs) > 0 {
				form = prev.MsgStrs[0]
			}
			e.MsgStrs = []string{form}
		}
		e.SetFuzzy(prev.IsFuzzy())
		merged++
	}

	adoptHeader(base, existing)

	return merged
}

// hasAnyForm reports whether the entry carries at least one non-empty
// translated form.
func hasAnyForm(e *Entry) bool {
	for _, s := range e.MsgStrs {
		if s != "" {
			return true
		}
	}
	return false
}

// adoptHeader carries translator-maintained header fields from the
// existing catalog into the base, leaving the dynamic fields to the
// compile step.
func adoptHeader(base, existing *File) {
	if existing.Header == nil {
		return
	}
	for _, line := range strings.Split(existing.headerStr(), "\n") {
		idx := strings.Index(line, ":")
		if idx <= 0 {
			continue
		}
		name := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		if value == "" || isDynamicHeader(name) {
			continue
		}
		base.SetHeaderField(name, value)
	}
}

func isDynamicHeader(name string) bool {
	for _, d := range dynamicHeaders {
		if strings.EqualFold(d, name) {
			return true
		}
	}
	return false
}
