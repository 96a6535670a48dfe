// Package pofile implements the in-memory gettext catalog model:
// reading and writing PO/POT files, translation counting, and the
// merge of previously translated catalogs.
package pofile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/publishpress/publishpress-translator-sub000/langmeta"
)

// DryRunPrefix marks placeholder translations written by dry runs.
// Forms carrying this prefix count as untranslated.
const DryRunPrefix = "[DRY-RUN] "

// keySep joins msgctxt and msgid into a lookup key. EOT, following the
// gettext MO convention for context separation.
const keySep = "\x04"

// Entry represents a single translatable message in a catalog.
type Entry struct {
	// TranslatorComments are lines starting with "# ".
	TranslatorComments []string
	// ExtractedComments are lines starting with "#.".
	ExtractedComments []string
	// References are source code locations, lines starting with "#:".
	References []string
	// Flags are format flags, lines starting with "#,".
	Flags []string

	// MsgCtxt is the message context (msgctxt).
	MsgCtxt string
	// MsgID is the untranslated string.
	MsgID string
	// MsgIDPlural is the untranslated plural string, empty for
	// singular entries.
	MsgIDPlural string
	// MsgStrs holds the translated forms in plural-form order. A
	// singular entry has exactly one slot; a plural entry has one slot
	// per plural form of the target language.
	MsgStrs []string

	// Obsolete marks entries prefixed with "#~".
	Obsolete bool
}

// Key returns the identity of the entry: context plus msgid.
func (e *Entry) Key() string {
	return e.MsgCtxt + keySep + e.MsgID
}

// IsHeader reports whether this is the reserved header record (empty
// msgid in the default context).
func (e *Entry) IsHeader() bool {
	return e.MsgID == "" && e.MsgCtxt == ""
}

// IsFuzzy reports whether the entry carries the fuzzy flag.
func (e *Entry) IsFuzzy() bool {
	for _, f := range e.Flags {
		if f == "fuzzy" {
			return true
		}
	}
	return false
}

// SetFuzzy adds or removes the fuzzy flag.
func (e *Entry) SetFuzzy(fuzzy bool) {
	if fuzzy && !e.IsFuzzy() {
		e.Flags = append(e.Flags, "fuzzy")
		return
	}
	if !fuzzy {
		filtered := e.Flags[:0]
		for _, f := range e.Flags {
			if f != "fuzzy" {
				filtered = append(filtered, f)
			}
		}
		e.Flags = filtered
	}
}

// NeedsTranslation reports whether every translated-form slot is empty
// or holds a dry-run placeholder.
func (e *Entry) NeedsTranslation() bool {
	if e.IsHeader() || e.Obsolete {
		return false
	}
	for _, s := range e.MsgStrs {
		if s != "" && !strings.HasPrefix(s, DryRunPrefix) {
			return false
		}
	}
	return true
}

// IsTranslated reports whether the entry has a real (non-placeholder,
// non-fuzzy) translation in every form slot.
func (e *Entry) IsTranslated() bool {
	if e.IsHeader() || e.Obsolete || e.IsFuzzy() {
		return false
	}
	if len(e.MsgStrs) == 0 {
		return false
	}
	for _, s := range e.MsgStrs {
		if s == "" || strings.HasPrefix(s, DryRunPrefix) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the entry.
func (e *Entry) Clone() *Entry {
	c := *e
	c.TranslatorComments = append([]string(nil), e.TranslatorComments...)
	c.ExtractedComments = append([]string(nil), e.ExtractedComments...)
	c.References = append([]string(nil), e.References...)
	c.Flags = append([]string(nil), e.Flags...)
	c.MsgStrs = append([]string(nil), e.MsgStrs...)
	return &c
}

// File represents a parsed catalog. Entry order is the file order and
// is preserved through planning and compilation.
type File struct {
	// Header is the metadata entry (msgid "").
	Header *Entry
	// Entries are the translatable message entries.
	Entries []*Entry
}

// NewFile creates an empty catalog with a blank header.
func NewFile() *File {
	return &File{
		Header: &Entry{MsgStrs: []string{""}},
	}
}

// Clone returns a deep copy of the catalog. Each language run owns its
// own copy.
func (f *File) Clone() *File {
	c := NewFile()
	if f.Header != nil {
		c.Header = f.Header.Clone()
	}
	c.Entries = make([]*Entry, len(f.Entries))
	for i, e := range f.Entries {
		c.Entries[i] = e.Clone()
	}
	return c
}

// Index returns a key → entry map over the non-obsolete entries.
func (f *File) Index() map[string]*Entry {
	idx := make(map[string]*Entry, len(f.Entries))
	for _, e := range f.Entries {
		if !e.Obsolete {
			idx[e.Key()] = e
		}
	}
	return idx
}

// headerStr returns the header msgstr, tolerating a nil header.
func (f *File) headerStr() string {
	if f.Header == nil || len(f.Header.MsgStrs) == 0 {
		return ""
	}
	return f.Header.MsgStrs[0]
}

// HeaderField returns a header field value by name.
func (f *File) HeaderField(name string) string {
	for _, line := range strings.Split(f.headerStr(), "\n") {
		if idx := strings.Index(line, ":"); idx > 0 {
			if strings.EqualFold(strings.TrimSpace(line[:idx]), name) {
				return strings.TrimSpace(line[idx+1:])
			}
		}
	}
	return ""
}

// SetHeaderField sets a header field value, appending it if absent.
func (f *File) SetHeaderField(name, value string) {
	if f.Header == nil {
		f.Header = &Entry{MsgStrs: []string{""}}
	}
	if len(f.Header.MsgStrs) == 0 {
		f.Header.MsgStrs = []string{""}
	}

	lines := strings.Split(f.Header.MsgStrs[0], "\n")
	found := false
	for i, line := range lines {
		if idx := strings.Index(line, ":"); idx > 0 {
			if strings.EqualFold(strings.TrimSpace(line[:idx]), name) {
				lines[i] = name + ": " + value
				found = true
				break
			}
		}
	}
	if !found {
		if len(lines) > 0 && lines[len(lines)-1] == "" {
			lines = append(lines[:len(lines)-1], name+": "+value, "")
		} else {
			lines = append(lines, name+": "+value)
		}
	}
	f.Header.MsgStrs[0] = strings.Join(lines, "\n")
}

// SetNplurals resizes the translated-form slots of every plural entry
// to the target language's plural-form count, zero-filling new slots
// and truncating extra ones. Singular entries always keep one slot.
func (f *File) SetNplurals(n int) {
	if n < 1 {
		n = 1
	}
	for _, e := range f.Entries {
		if e.MsgIDPlural == "" {
			continue
		}
		e.MsgStrs = resizeForms(e.MsgStrs, n)
	}
}

// resizeForms pads or truncates a form slice to length n.
func resizeForms(forms []string, n int) []string {
	out := make([]string, n)
	copy(out, forms)
	return out
}

// CountUntranslated counts the non-header entries whose every form is
// empty or a dry-run placeholder.
func (f *File) CountUntranslated() int {
	count := 0
	for _, e := range f.Entries {
		if e.NeedsTranslation() {
			count++
		}
	}
	return count
}

// CountTranslated counts the non-header entries with a real
// translation, excluding placeholders and fuzzy entries.
func (f *File) CountTranslated() int {
	count := 0
	for _, e := range f.Entries {
		if e.IsTranslated() {
			count++
		}
	}
	return count
}

// Count returns the number of translatable (non-header, non-obsolete)
// entries.
func (f *File) Count() int {
	count := 0
	for _, e := range f.Entries {
		if !e.IsHeader() && !e.Obsolete {
			count++
		}
	}
	return count
}

// Stats returns per-catalog translation statistics.
func (f *File) Stats() (total, translated, fuzzy, untranslated int) {
	for _, e := range f.Entries {
		if e.IsHeader() || e.Obsolete {
			continue
		}
		total++
		switch {
		case e.IsFuzzy():
			fuzzy++
		case e.IsTranslated():
			translated++
		default:
			untranslated++
		}
	}
	return
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseError describes a malformed catalog. It aborts the whole run.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("po parse error at line %d: %s", e.Line, e.Reason)
}

// Parse reads a PO/POT catalog from a reader.
func Parse(r io.Reader) (*File, error) {
	f := &File{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	var current *Entry
	var plural map[int]string
	var lastField string
	lineNum := 0

	flush := func() {
		if current == nil {
			return
		}
		if current.MsgIDPlural != "" {
			// Order the msgstr[N] slots by index.
			max := -1
			for idx := range plural {
				if idx > max {
					max = idx
				}
			}
			current.MsgStrs = make([]string, max+1)
			for idx, v := range plural {
				current.MsgStrs[idx] = v
			}
		} else if len(current.MsgStrs) == 0 {
			current.MsgStrs = []string{""}
		}
		if current.IsHeader() && !current.Obsolete {
			f.Header = current
		} else {
			f.Entries = append(f.Entries, current)
		}
		current = nil
		plural = nil
		lastField = ""
	}

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		if current == nil {
			current = &Entry{}
			plural = make(map[int]string)
		}

		if strings.HasPrefix(line, "#~ ") {
			current.Obsolete = true
			line = line[3:]
		}

		if strings.HasPrefix(line, "#") && !strings.HasPrefix(line, "#~") {
			switch {
			case strings.HasPrefix(line, "#:"):
				current.References = append(current.References, strings.TrimSpace(line[2:]))
			case strings.HasPrefix(line, "#,"):
				for _, flag := range strings.Split(strings.TrimSpace(line[2:]), ",") {
					if flag = strings.TrimSpace(flag); flag != "" {
						current.Flags = append(current.Flags, flag)
					}
				}
			case strings.HasPrefix(line, "#."):
				current.ExtractedComments = append(current.ExtractedComments, strings.TrimSpace(line[2:]))
			case strings.HasPrefix(line, "#|"):
				// Previous-msgid comments are dropped; the merge layer
				// works on current identities only.
			default:
				comment := strings.TrimPrefix(line[1:], " ")
				current.TranslatorComments = append(current.TranslatorComments, comment)
			}
			continue
		}

		switch {
		case strings.HasPrefix(line, "msgctxt "):
			current.MsgCtxt = unquote(strings.TrimPrefix(line, "msgctxt "))
			lastField = "msgctxt"

		case strings.HasPrefix(line, "msgid_plural "):
			current.MsgIDPlural = unquote(strings.TrimPrefix(line, "msgid_plural "))
			lastField = "msgid_plural"

		case strings.HasPrefix(line, "msgid "):
			current.MsgID = unquote(strings.TrimPrefix(line, "msgid "))
			lastField = "msgid"

		case strings.HasPrefix(line, "msgstr["):
			var idx int
			if n, err := fmt.Sscanf(line, "msgstr[%d]", &idx); err != nil || n != 1 {
				return nil, &ParseError{Line: lineNum, Reason: "invalid msgstr index: " + line}
			}
			bracketEnd := strings.Index(line, "] ")
			if bracketEnd < 0 {
				return nil, &ParseError{Line: lineNum, Reason: "invalid msgstr format: " + line}
			}
			plural[idx] = unquote(line[bracketEnd+2:])
			lastField = fmt.Sprintf("msgstr[%d]", idx)

		case strings.HasPrefix(line, "msgstr "):
			current.MsgStrs = []string{unquote(strings.TrimPrefix(line, "msgstr "))}
			lastField = "msgstr"

		case strings.HasPrefix(line, "\""):
			val := unquote(line)
			switch {
			case lastField == "msgctxt":
				current.MsgCtxt += val
			case lastField == "msgid":
				current.MsgID += val
			case lastField == "msgid_plural":
				current.MsgIDPlural += val
			case lastField == "msgstr":
				current.MsgStrs[0] += val
			case strings.HasPrefix(lastField, "msgstr["):
				var idx int
				fmt.Sscanf(lastField, "msgstr[%d]", &idx)
				plural[idx] += val
			default:
				return nil, &ParseError{Line: lineNum, Reason: "continuation line outside any field"}
			}

		default:
			return nil, &ParseError{Line: lineNum, Reason: "unrecognized line: " + line}
		}
	}

	flush()

	if err := scanner.Err(); err != nil {
		return nil, &ParseError{Line: lineNum, Reason: err.Error()}
	}
	if f.Header == nil {
		f.Header = &Entry{MsgStrs: []string{""}}
	}

	return f, nil
}

// ParseFile reads a PO/POT catalog from disk.
func ParseFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return Parse(fh)
}

// ---------------------------------------------------------------------------
// Compilation
// ---------------------------------------------------------------------------

// HeaderOverrides carries the dynamic header fields injected at compile
// time. These always win over whatever the merged catalogs carried.
type HeaderOverrides struct {
	// Language is the target language code for the Language header.
	Language string
	// PluralForms is the freshly computed Plural-Forms rule. It is
	// skipped when the catalog already carries a non-placeholder rule.
	PluralForms string
	// Now stamps PO-Revision-Date; the zero value means time.Now.
	Now time.Time
}

// Compile serializes the catalog, forcing UTF-8 encoding and injecting
// the dynamic headers.
func (f *File) Compile(w io.Writer, ov HeaderOverrides) error {
	now := ov.Now
	if now.IsZero() {
		now = time.Now()
	}
	f.SetHeaderField("PO-Revision-Date", now.UTC().Format("2006-01-02 15:04+0000"))
	if ov.Language != "" {
		f.SetHeaderField("Language", ov.Language)
	}
	f.SetHeaderField("MIME-Version", "1.0")
	f.SetHeaderField("Content-Type", "text/plain; charset=UTF-8")
	f.SetHeaderField("Content-Transfer-Encoding", "8bit")
	if ov.PluralForms != "" {
		// A POT template ships "nplurals=INTEGER; plural=EXPRESSION;".
		// Only a real rule already present survives.
		if langmeta.NpluralsFromRule(f.HeaderField("Plural-Forms")) == 0 {
			f.SetHeaderField("Plural-Forms", ov.PluralForms)
		}
	}
	return f.write(w)
}

// CompileToFile compiles the catalog and writes it to path.
func (f *File) CompileToFile(path string, ov HeaderOverrides) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := f.Compile(out, ov); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// write serializes the catalog without touching the header.
func (f *File) write(w io.Writer) error {
	bw := bufio.NewWriter(w)

	if f.Header != nil {
		writeEntry(bw, f.Header)
	}
	for _, e := range f.Entries {
		fmt.Fprintln(bw)
		writeEntry(bw, e)
	}

	return bw.Flush()
}

func writeEntry(w *bufio.Writer, e *Entry) {
	prefix := ""
	if e.Obsolete {
		prefix = "#~ "
	}

	for _, c := range e.TranslatorComments {
		fmt.Fprintf(w, "# %s\n", c)
	}
	for _, c := range e.ExtractedComments {
		fmt.Fprintf(w, "#. %s\n", c)
	}
	for _, ref := range e.References {
		fmt.Fprintf(w, "#: %s\n", ref)
	}
	if len(e.Flags) > 0 {
		fmt.Fprintf(w, "#, %s\n", strings.Join(e.Flags, ", "))
	}

	if e.MsgCtxt != "" {
		writeQuotedField(w, prefix+"msgctxt", e.MsgCtxt)
	}
	writeQuotedField(w, prefix+"msgid", e.MsgID)

	if e.MsgIDPlural != "" {
		writeQuotedField(w, prefix+"msgid_plural", e.MsgIDPlural)
		forms := e.MsgStrs
		if len(forms) == 0 {
			forms = []string{"", ""}
		}
		for i, form := range forms {
			writeQuotedField(w, fmt.Sprintf("%smsgstr[%d]", prefix, i), form)
		}
		return
	}

	msgstr := ""
	if len(e.MsgStrs) > 0 {
		msgstr = e.MsgStrs[0]
	}
	writeQuotedField(w, prefix+"msgstr", msgstr)
}

// writeQuotedField writes a PO field with multiline quoting.
func writeQuotedField(w *bufio.Writer, field, value string) {
	if !strings.Contains(value, "\n") {
		fmt.Fprintf(w, "%s %s\n", field, quote(value))
		return
	}

	fmt.Fprintf(w, "%s \"\"\n", field)
	parts := strings.Split(value, "\n")
	for i, part := range parts {
		if i < len(parts)-1 {
			fmt.Fprintf(w, "%s\n", quote(part+"\n"))
		} else if part != "" {
			fmt.Fprintf(w, "%s\n", quote(part))
		}
	}
}

// quote produces a PO-style quoted string.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, "\t", `\t`)
	return `"` + s + `"`
}

// unquote removes PO-style quoting.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	s = s[1 : len(s)-1]

	var result strings.Builder
	result.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'n':
				result.WriteByte('\n')
				i++
			case 't':
				result.WriteByte('\t')
				i++
			case '\\':
				result.WriteByte('\\')
				i++
			case '"':
				result.WriteByte('"')
				i++
			default:
				result.WriteByte(s[i])
			}
		} else {
			result.WriteByte(s[i])
		}
	}
	return result.String()
}
