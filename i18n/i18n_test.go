package i18n

import "testing"

func TestTranslationRussian(t *testing.T) {
	Init("ru")
	if got := T("Done."); got != "Готово." {
		t.Errorf("T = %q", got)
	}
	if got := N("%d string translated", "%d strings translated", 2); got != "%d строки переведены" {
		t.Errorf("N(2) = %q", got)
	}
	if got := N("%d string translated", "%d strings translated", 5); got != "%d строк переведено" {
		t.Errorf("N(5) = %q", got)
	}
}

func TestPassthroughUnknownLanguage(t *testing.T) {
	Init("zz")
	if got := T("Done."); got != "Done." {
		t.Errorf("T = %q, want passthrough", got)
	}
}

func TestDetectLanguage(t *testing.T) {
	t.Setenv("LANGUAGE", "")
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "ru_RU.UTF-8")
	if got := detectLanguage(); got != "ru_RU" {
		t.Errorf("detectLanguage = %q", got)
	}

	t.Setenv("LANGUAGE", "de:fr")
	if got := detectLanguage(); got != "de" {
		t.Errorf("detectLanguage = %q, want LANGUAGE to win", got)
	}

	t.Setenv("LANGUAGE", "C")
	t.Setenv("LANG", "POSIX")
	if got := detectLanguage(); got != "en" {
		t.Errorf("detectLanguage = %q, want en fallback", got)
	}
}
