// Package langmeta provides the static language metadata registry:
// display names, native names, and gettext plural-form rules.
// The registry is read-only after package initialization and is safe
// to use from concurrent language runs.
package langmeta

import (
	"strconv"
	"strings"
)

// Meta describes one language.
type Meta struct {
	// Name is the English display name.
	Name string
	// Native is the language's own name for itself.
	Native string
	// PluralForms is the gettext Plural-Forms header value.
	PluralForms string
}

// Registry contains canonical language metadata keyed by language code.
// Locale variants (pt_BR, zh-TW) are resolved in Resolve via normalization
// and base-code fallback.
var Registry = map[string]Meta{
	"ar":    {Name: "Arabic", Native: "العربية", PluralForms: "nplurals=6; plural=(n==0 ? 0 : n==1 ? 1 : n==2 ? 2 : n%100>=3 && n%100<=10 ? 3 : n%100>=11 ? 4 : 5);"},
	"bg":    {Name: "Bulgarian", Native: "Български", PluralForms: "nplurals=2; plural=(n != 1);"},
	"bs":    {Name: "Bosnian", Native: "Bosanski", PluralForms: "nplurals=3; plural=(n%10==1 && n%100!=11 ? 0 : n%10>=2 && n%10<=4 && (n%100<10 || n%100>=20) ? 1 : 2);"},
	"ca":    {Name: "Catalan", Native: "Català", PluralForms: "nplurals=2; plural=(n != 1);"},
	"cs":    {Name: "Czech", Native: "Čeština", PluralForms: "nplurals=3; plural=(n==1 ? 0 : n>=2 && n<=4 ? 1 : 2);"},
	"da":    {Name: "Danish", Native: "Dansk", PluralForms: "nplurals=2; plural=(n != 1);"},
	"de":    {Name: "German", Native: "Deutsch", PluralForms: "nplurals=2; plural=(n != 1);"},
	"el":    {Name: "Greek", Native: "Ελληνικά", PluralForms: "nplurals=2; plural=(n != 1);"},
	"en":    {Name: "English", Native: "English", PluralForms: "nplurals=2; plural=(n != 1);"},
	"es":    {Name: "Spanish", Native: "Español", PluralForms: "nplurals=2; plural=(n != 1);"},
	"et":    {Name: "Estonian", Native: "Eesti", PluralForms: "nplurals=2; plural=(n != 1);"},
	"fa":    {Name: "Persian", Native: "فارسی", PluralForms: "nplurals=2; plural=(n > 1);"},
	"fi":    {Name: "Finnish", Native: "Suomi", PluralForms: "nplurals=2; plural=(n != 1);"},
	"fr":    {Name: "French", Native: "Français", PluralForms: "nplurals=2; plural=(n > 1);"},
	"he":    {Name: "Hebrew", Native: "עברית", PluralForms: "nplurals=2; plural=(n != 1);"},
	"hi":    {Name: "Hindi", Native: "हिन्दी", PluralForms: "nplurals=2; plural=(n != 1);"},
	"hr":    {Name: "Croatian", Native: "Hrvatski", PluralForms: "nplurals=3; plural=(n%10==1 && n%100!=11 ? 0 : n%10>=2 && n%10<=4 && (n%100<10 || n%100>=20) ? 1 : 2);"},
	"hu":    {Name: "Hungarian", Native: "Magyar", PluralForms: "nplurals=2; plural=(n != 1);"},
	"id":    {Name: "Indonesian", Native: "Bahasa Indonesia", PluralForms: "nplurals=1; plural=0;"},
	"it":    {Name: "Italian", Native: "Italiano", PluralForms: "nplurals=2; plural=(n != 1);"},
	"ja":    {Name: "Japanese", Native: "日本語", PluralForms: "nplurals=1; plural=0;"},
	"ko":    {Name: "Korean", Native: "한국어", PluralForms: "nplurals=1; plural=0;"},
	"lt":    {Name: "Lithuanian", Native: "Lietuvių", PluralForms: "nplurals=3; plural=(n%10==1 && n%100!=11 ? 0 : n%10>=2 && (n%100<10 || n%100>=20) ? 1 : 2);"},
	"lv":    {Name: "Latvian", Native: "Latviešu", PluralForms: "nplurals=3; plural=(n%10==1 && n%100!=11 ? 0 : n != 0 ? 1 : 2);"},
	"ms":    {Name: "Malay", Native: "Bahasa Melayu", PluralForms: "nplurals=1; plural=0;"},
	"nb":    {Name: "Norwegian Bokmål", Native: "Norsk bokmål", PluralForms: "nplurals=2; plural=(n != 1);"},
	"nl":    {Name: "Dutch", Native: "Nederlands", PluralForms: "nplurals=2; plural=(n != 1);"},
	"nn":    {Name: "Norwegian Nynorsk", Native: "Norsk nynorsk", PluralForms: "nplurals=2; plural=(n != 1);"},
	"no":    {Name: "Norwegian", Native: "Norsk", PluralForms: "nplurals=2; plural=(n != 1);"},
	"pl":    {Name: "Polish", Native: "Polski", PluralForms: "nplurals=3; plural=(n==1 ? 0 : n%10>=2 && n%10<=4 && (n%100<10 || n%100>=20) ? 1 : 2);"},
	"pt":    {Name: "Portuguese", Native: "Português", PluralForms: "nplurals=2; plural=(n > 1);"},
	"pt_BR": {Name: "Portuguese (Brazil)", Native: "Português (Brasil)", PluralForms: "nplurals=2; plural=(n > 1);"},
	"ro":    {Name: "Romanian", Native: "Română", PluralForms: "nplurals=3; plural=(n==1 ? 0 : (n==0 || (n%100 > 0 && n%100 < 20)) ? 1 : 2);"},
	"ru":    {Name: "Russian", Native: "Русский", PluralForms: "nplurals=3; plural=(n%10==1 && n%100!=11 ? 0 : n%10>=2 && n%10<=4 && (n%100<10 || n%100>=20) ? 1 : 2);"},
	"sk":    {Name: "Slovak", Native: "Slovenčina", PluralForms: "nplurals=3; plural=(n==1 ? 0 : n>=2 && n<=4 ? 1 : 2);"},
	"sl":    {Name: "Slovenian", Native: "Slovenščina", PluralForms: "nplurals=4; plural=(n%100==1 ? 0 : n%100==2 ? 1 : n%100==3 || n%100==4 ? 2 : 3);"},
	"sr":    {Name: "Serbian", Native: "Српски", PluralForms: "nplurals=3; plural=(n%10==1 && n%100!=11 ? 0 : n%10>=2 && n%10<=4 && (n%100<10 || n%100>=20) ? 1 : 2);"},
	"sv":    {Name: "Swedish", Native: "Svenska", PluralForms: "nplurals=2; plural=(n != 1);"},
	"th":    {Name: "Thai", Native: "ไทย", PluralForms: "nplurals=1; plural=0;"},
	"tr":    {Name: "Turkish", Native: "Türkçe", PluralForms: "nplurals=2; plural=(n > 1);"},
	"uk":    {Name: "Ukrainian", Native: "Українська", PluralForms: "nplurals=3; plural=(n%10==1 && n%100!=11 ? 0 : n%10>=2 && n%10<=4 && (n%100<10 || n%100>=20) ? 1 : 2);"},
	"vi":    {Name: "Vietnamese", Native: "Tiếng Việt", PluralForms: "nplurals=1; plural=0;"},
	"zh":    {Name: "Chinese", Native: "中文", PluralForms: "nplurals=1; plural=0;"},
	"zh_TW": {Name: "Chinese (Taiwan)", Native: "繁體中文", PluralForms: "nplurals=1; plural=0;"},
}

// defaultPluralForms is used for languages outside the registry.
const defaultPluralForms = "nplurals=2; plural=(n != 1);"

// normalize canonicalizes a language code: dashes become underscores and
// the region part is uppercased ("pt-br" -> "pt_BR").
func normalize(code string) string {
	code = strings.ReplaceAll(code, "-", "_")
	if idx := strings.IndexByte(code, '_'); idx > 0 {
		return strings.ToLower(code[:idx]) + "_" + strings.ToUpper(code[idx+1:])
	}
	return strings.ToLower(code)
}

// BaseCode returns the base language code without any region or
// encoding suffix ("pt_BR" -> "pt", "ru_RU.UTF-8" -> "ru").
func BaseCode(code string) string {
	code = normalize(code)
	if idx := strings.IndexByte(code, '.'); idx >= 0 {
		code = code[:idx]
	}
	if idx := strings.IndexByte(code, '_'); idx > 0 {
		code = code[:idx]
	}
	return code
}

// Resolve returns the metadata for a language code. Locale variants fall
// back to the base language; unknown codes get the code itself as name
// and the default plural rule.
func Resolve(code string) Meta {
	norm := normalize(code)
	if m, ok := Registry[norm]; ok {
		return m
	}
	if m, ok := Registry[BaseCode(norm)]; ok {
		return m
	}
	return Meta{Name: code, Native: code, PluralForms: defaultPluralForms}
}

// Name returns the English display name for a language code.
func Name(code string) string {
	return Resolve(code).Name
}

// NativeName returns the native display name for a language code.
func NativeName(code string) string {
	return Resolve(code).Native
}

// PluralForms returns the gettext Plural-Forms header value for a
// language code.
func PluralForms(code string) string {
	return Resolve(code).PluralForms
}

// Nplurals returns the number of plural forms for a language code,
// parsed from its Plural-Forms rule.
func Nplurals(code string) int {
	if n := NpluralsFromRule(PluralForms(code)); n > 0 {
		return n
	}
	return 2
}

// NpluralsFromRule parses the nplurals count out of a Plural-Forms
// header value. Returns 0 if the rule has no parseable count.
func NpluralsFromRule(rule string) int {
	for _, part := range strings.Split(rule, ";") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "nplurals=") {
			n, err := strconv.Atoi(strings.TrimPrefix(part, "nplurals="))
			if err == nil && n > 0 {
				return n
			}
		}
	}
	return 0
}
