package pofile

import (
	"strings"
	"testing"
)

func mustParse(t *testing.T, src string) *File {
	t.Helper()
	f, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return f
}

func TestMergeCatalogs(t *testing.T) {
	base := mustParse(t, `msgid ""
msgstr ""
"POT-Creation-Date: 2026-08-01 09:00+0000\n"

msgid "Save"
msgstr ""

msgid "Cancel"
msgstr ""

msgid "%d item"
msgid_plural "%d items"
msgstr[0] ""
msgstr[1] ""
`)
	existing := mustParse(t, `msgid ""
msgstr ""
"Last-Translator: Ivan <ivan@example.org>\n"
"PO-Revision-Date: 2025-12-01 00:00+0000\n"

msgid "Save"
msgstr "Сохранить"

#, fuzzy
msgid "Cancel"
msgstr "Отменить"

msgid "%d item"
msgid_plural "%d items"
msgstr[0] "%d элемент"
msgstr[1] "%d элемента"
`)

	merged := MergeCatalogs(base, existing, 3)
	if merged != 3 {
		t.Fatalf("merged = %d, want 3", merged)
	}

	idx := base.Index()
	if got := idx["\x04Save"].MsgStrs[0]; got != "Сохранить" {
		t.Errorf("Save = %q", got)
	}
	if !idx["\x04Cancel"].IsFuzzy() {
		t.Error("fuzzy flag not carried over")
	}
	forms := idx["\x04%d item"].MsgStrs
	if len(forms) != 3 || forms[0] != "%d элемент" || forms[2] != "" {
		t.Errorf("plural forms = %v, want two carried plus zero fill", forms)
	}

	if got := base.HeaderField("Last-Translator"); got != "Ivan <ivan@example.org>" {
		t.Errorf("Last-Translator not adopted: %q", got)
	}
	if got := base.HeaderField("PO-Revision-Date"); got != "" {
		t.Errorf("dynamic header adopted from existing catalog: %q", got)
	}
	if got := base.HeaderField("POT-Creation-Date"); got != "2026-08-01 09:00+0000" {
		t.Errorf("base POT-Creation-Date lost: %q", got)
	}
}

func TestMergeSkipsEmptyExisting(t *testing.T) {
	base := mustParse(t, "msgid \"\"\nmsgstr \"\"\n\nmsgid \"Save\"\nmsgstr \"\"\n")
	existing := mustParse(t, "msgid \"\"\nmsgstr \"\"\n\nmsgid \"Save\"\nmsgstr \"\"\n")

	if merged := MergeCatalogs(base, existing, 2); merged != 0 {
		t.Errorf("merged = %d, want 0", merged)
	}
}

func TestMergeTruncatesExtraForms(t *testing.T) {
	base := mustParse(t, `msgid ""
msgstr ""

msgid "%d day"
msgid_plural "%d days"
msgstr[0] ""
msgstr[1] ""
`)
	existing := mustParse(t, `msgid ""
msgstr ""

msgid "%d day"
msgid_plural "%d days"
msgstr[0] "%d день"
msgstr[1] "%d дня"
msgstr[2] "%d дней"
`)

	MergeCatalogs(base, existing, 2)
	forms := base.Entries[0].MsgStrs
	if len(forms) != 2 || forms[1] != "%d дня" {
		t.Errorf("forms = %v, want first two carried", forms)
	}
}

func TestMergeIdempotent(t *testing.T) {
	src := `msgid ""
msgstr ""

msgid "Save"
msgstr "Сохранить"
`
	base := mustParse(t, src)
	existing := mustParse(t, src)

	first := MergeCatalogs(base, existing, 2)
	second := MergeCatalogs(base, existing, 2)
	if first != second {
		t.Errorf("merge counts diverge: %d then %d", first, second)
	}
	if got := base.Entries[0].MsgStrs[0]; got != "Сохранить" {
		t.Errorf("repeated merge corrupted translation: %q", got)
	}
}

func TestMergeNilExisting(t *testing.T) {
	base := mustParse(t, "msgid \"\"\nmsgstr \"\"\n\nmsgid \"Save\"\nmsgstr \"\"\n")
	if merged := MergeCatalogs(base, nil, 2); merged != 0 {
		t.Errorf("merged = %d, want 0", merged)
	}
}
