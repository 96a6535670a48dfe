// Package dictionary applies a fixed glossary before any strings are
// sent for translation. Glossary hits never consume budget.
package dictionary

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/publishpress/publishpress-translator-sub000/langmeta"
	"github.com/publishpress/publishpress-translator-sub000/pofile"
)

// Dictionary maps language codes to msgid → translation tables.
type Dictionary struct {
	languages map[string]map[string]string
}

// Load reads a glossary file. The YAML layout is:
//
//	ru:
//	  "Save": "Сохранить"
//	de:
//	  "Save": "Speichern"
func Load(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var languages map[string]map[string]string
	if err := yaml.Unmarshal(data, &languages); err != nil {
		return nil, fmt.Errorf("parsing dictionary %s: %w", path, err)
	}

	normalized := make(map[string]map[string]string, len(languages))
	for lang, table := range languages {
		normalized[lang] = table
		if base := langmeta.BaseCode(lang); base != lang {
			if _, ok := normalized[base]; !ok {
				normalized[base] = table
			}
		}
	}
	return &Dictionary{languages: normalized}, nil
}

// Lookup returns the glossary translation for a msgid, falling back
// from the full language code to its base code.
func (d *Dictionary) Lookup(lang, msgid string) (string, bool) {
	if d == nil {
		return "", false
	}
	if table, ok := d.languages[lang]; ok {
		if tr, ok := table[msgid]; ok {
			return tr, true
		}
	}
	if base := langmeta.BaseCode(lang); base != lang {
		if table, ok := d.languages[base]; ok {
			if tr, ok := table[msgid]; ok {
				return tr, true
			}
		}
	}
	return "", false
}

// Apply fills untranslated singular entries from the glossary and
// returns how many it filled. Plural entries are left to the backend.
func (d *Dictionary) Apply(f *pofile.File, lang string) int {
	if d == nil {
		return 0
	}
	applied := 0
	for _, e := range f.Entries {
		if e.MsgIDPlural != "" || !e.NeedsTranslation() {
			continue
		}
		if tr, ok := d.Lookup(lang, e.MsgID); ok {
			e.MsgStrs = []string{tr}
			e.SetFuzzy(false)
			applied++
		}
	}
	return applied
}
