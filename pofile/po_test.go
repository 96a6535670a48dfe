package pofile

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const samplePOT = `msgid ""
msgstr ""
"Project-Id-Version: sample 1.0\n"
"POT-Creation-Date: 2025-01-15 10:00+0000\n"
"Content-Type: text/plain; charset=UTF-8\n"
"Plural-Forms: nplurals=INTEGER; plural=EXPRESSION;\n"

#: src/main.c:42
msgid "Hello, world!"
msgstr ""

#. A verb, not a noun.
msgctxt "menu"
msgid "Open"
msgstr ""

msgid "%d file"
msgid_plural "%d files"
msgstr[0] ""
msgstr[1] ""
`

func TestParseBasics(t *testing.T) {
	f, err := Parse(strings.NewReader(samplePOT))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if got := f.HeaderField("Project-Id-Version"); got != "sample 1.0" {
		t.Errorf("Project-Id-Version = %q, want %q", got, "sample 1.0")
	}
	if len(f.Entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(f.Entries))
	}

	e := f.Entries[0]
	if e.MsgID != "Hello, world!" {
		t.Errorf("MsgID = %q", e.MsgID)
	}
	if len(e.References) != 1 || e.References[0] != "src/main.c:42" {
		t.Errorf("References = %v", e.References)
	}

	ctx := f.Entries[1]
	if ctx.MsgCtxt != "menu" || ctx.MsgID != "Open" {
		t.Errorf("context entry = %q/%q", ctx.MsgCtxt, ctx.MsgID)
	}
	if len(ctx.ExtractedComments) != 1 {
		t.Errorf("ExtractedComments = %v", ctx.ExtractedComments)
	}

	pl := f.Entries[2]
	if pl.MsgIDPlural != "%d files" {
		t.Errorf("MsgIDPlural = %q", pl.MsgIDPlural)
	}
	if len(pl.MsgStrs) != 2 {
		t.Errorf("plural slots = %d, want 2", len(pl.MsgStrs))
	}
}

func TestKeyIncludesContext(t *testing.T) {
	f, err := Parse(strings.NewReader(samplePOT))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	plain := &Entry{MsgID: "Open"}
	if f.Entries[1].Key() == plain.Key() {
		t.Error("entries with different contexts share a key")
	}
	idx := f.Index()
	if _, ok := idx["menu\x04Open"]; !ok {
		t.Error("context entry not found under its context key")
	}
}

func TestParseMultilineAndEscapes(t *testing.T) {
	src := `msgid ""
msgstr ""

msgid ""
"First line\n"
"Second \"quoted\" line"
msgstr ""
`
	f, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := "First line\nSecond \"quoted\" line"
	if got := f.Entries[0].MsgID; got != want {
		t.Errorf("MsgID = %q, want %q", got, want)
	}
}

func TestParseObsolete(t *testing.T) {
	src := `msgid ""
msgstr ""

#~ msgid "Old string"
#~ msgstr "Stara stroka"
`
	f, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(f.Entries) != 1 || !f.Entries[0].Obsolete {
		t.Fatalf("expected one obsolete entry, got %+v", f.Entries)
	}
	if f.CountUntranslated() != 0 {
		t.Error("obsolete entries must not count as untranslated")
	}
}

func TestParseErrorReportsLine(t *testing.T) {
	src := "msgid \"\"\nmsgstr \"\"\n\nthis is not a po line\n"
	_, err := Parse(strings.NewReader(src))
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if pe.Line != 4 {
		t.Errorf("Line = %d, want 4", pe.Line)
	}
}

func TestRoundTrip(t *testing.T) {
	f, err := Parse(strings.NewReader(samplePOT))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	f.Entries[0].MsgStrs = []string{"Привет, мир!"}
	f.Entries[2].MsgStrs = []string{"%d файл", "%d файла", "%d файлов"}

	var buf bytes.Buffer
	if err := f.write(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	back, err := Parse(&buf)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if got := back.Entries[0].MsgStrs[0]; got != "Привет, мир!" {
		t.Errorf("singular = %q", got)
	}
	if got := back.Entries[2].MsgStrs; len(got) != 3 || got[2] != "%d файлов" {
		t.Errorf("plural forms = %v", got)
	}
	if got := back.Entries[1].MsgCtxt; got != "menu" {
		t.Errorf("msgctxt lost in round trip: %q", got)
	}
}

func TestCountingSkipsPlaceholders(t *testing.T) {
	f := NewFile()
	f.Entries = []*Entry{
		{MsgID: "a", MsgStrs: []string{"real"}},
		{MsgID: "b", MsgStrs: []string{DryRunPrefix + "b"}},
		{MsgID: "c", MsgStrs: []string{""}},
		{MsgID: "d", MsgStrs: []string{"real"}, Flags: []string{"fuzzy"}},
	}
	if got := f.CountTranslated(); got != 1 {
		t.Errorf("CountTranslated = %d, want 1", got)
	}
	if got := f.CountUntranslated(); got != 2 {
		t.Errorf("CountUntranslated = %d, want 2", got)
	}
}

func TestSetNplurals(t *testing.T) {
	f := NewFile()
	f.Entries = []*Entry{
		{MsgID: "one", MsgStrs: []string{"x"}},
		{MsgID: "n", MsgIDPlural: "ns", MsgStrs: []string{"a", "b"}},
	}

	f.SetNplurals(3)
	if got := f.Entries[1].MsgStrs; len(got) != 3 || got[0] != "a" || got[2] != "" {
		t.Errorf("padded forms = %v", got)
	}
	if len(f.Entries[0].MsgStrs) != 1 {
		t.Error("singular entry must keep one slot")
	}

	f.SetNplurals(1)
	if got := f.Entries[1].MsgStrs; len(got) != 1 || got[0] != "a" {
		t.Errorf("truncated forms = %v", got)
	}
}

func TestCompileHeaders(t *testing.T) {
	f, err := Parse(strings.NewReader(samplePOT))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var buf bytes.Buffer
	ov := HeaderOverrides{
		Language:    "ru",
		PluralForms: "nplurals=3; plural=(n%10==1 && n%100!=11 ? 0 : n%10>=2 && n%10<=4 && (n%100<10 || n%100>=20) ? 1 : 2);",
		Now:         time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC),
	}
	if err := f.Compile(&buf, ov); err != nil {
		t.Fatalf("Compile: %v", err)
	}

	out, err := Parse(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if got := out.HeaderField("Language"); got != "ru" {
		t.Errorf("Language = %q", got)
	}
	if got := out.HeaderField("Content-Type"); got != "text/plain; charset=UTF-8" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := out.HeaderField("PO-Revision-Date"); got != "2026-08-31 12:00+0000" {
		t.Errorf("PO-Revision-Date = %q", got)
	}
	if got := out.HeaderField("Plural-Forms"); !strings.HasPrefix(got, "nplurals=3;") {
		t.Errorf("placeholder Plural-Forms not replaced: %q", got)
	}
	if got := out.HeaderField("POT-Creation-Date"); got != "2025-01-15 10:00+0000" {
		t.Errorf("POT-Creation-Date lost: %q", got)
	}
}

func TestCompileKeepsExistingPluralRule(t *testing.T) {
	f := NewFile()
	f.SetHeaderField("Plural-Forms", "nplurals=2; plural=(n != 1);")

	var buf bytes.Buffer
	err := f.Compile(&buf, HeaderOverrides{PluralForms: "nplurals=1; plural=0;"})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	out, err := Parse(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if got := out.HeaderField("Plural-Forms"); got != "nplurals=2; plural=(n != 1);" {
		t.Errorf("existing rule overwritten: %q", got)
	}
}

func TestCompileToFile(t *testing.T) {
	f := NewFile()
	f.Entries = []*Entry{{MsgID: "hi", MsgStrs: []string{"salut"}}}

	path := filepath.Join(t.TempDir(), "fr.po")
	if err := f.CompileToFile(path, HeaderOverrides{Language: "fr"}); err != nil {
		t.Fatalf("CompileToFile: %v", err)
	}
	back, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if back.Entries[0].MsgStrs[0] != "salut" {
		t.Errorf("round trip through disk lost the translation")
	}
}

func TestClone(t *testing.T) {
	f, err := Parse(strings.NewReader(samplePOT))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	c := f.Clone()
	c.Entries[0].MsgStrs[0] = "changed"
	c.SetHeaderField("Language", "de")

	if f.Entries[0].MsgStrs[0] == "changed" {
		t.Error("clone shares entry storage with the original")
	}
	if f.HeaderField("Language") == "de" {
		t.Error("clone shares header storage with the original")
	}
}
