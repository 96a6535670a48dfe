package langmeta

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		code     string
		wantName string
	}{
		{"ru", "Russian"},
		{"pt_BR", "Portuguese (Brazil)"},
		{"pt-br", "Portuguese (Brazil)"},
		{"pt_PT", "Portuguese"}, // variant falls back to base
		{"de-AT", "German"},
		{"xx", "xx"}, // unknown keeps the code
	}
	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			if got := Resolve(tc.code).Name; got != tc.wantName {
				t.Errorf("Resolve(%q).Name = %q, want %q", tc.code, got, tc.wantName)
			}
		})
	}
}

func TestBaseCode(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"ru", "ru"},
		{"pt_BR", "pt"},
		{"pt-BR", "pt"},
		{"ru_RU.UTF-8", "ru"},
		{"EN", "en"},
	}
	for _, tc := range tests {
		if got := BaseCode(tc.code); got != tc.want {
			t.Errorf("BaseCode(%q) = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestNplurals(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"ja", 1},
		{"en", 2},
		{"fr", 2},
		{"ru", 3},
		{"cs", 3},
		{"sl", 4},
		{"ar", 6},
		{"xx", 2}, // unknown gets the default Germanic rule
	}
	for _, tc := range tests {
		if got := Nplurals(tc.code); got != tc.want {
			t.Errorf("Nplurals(%q) = %d, want %d", tc.code, got, tc.want)
		}
	}
}

func TestNpluralsFromRule(t *testing.T) {
	if got := NpluralsFromRule("nplurals=3; plural=(n==1 ? 0 : 1);"); got != 3 {
		t.Errorf("got %d, want 3", got)
	}
	if got := NpluralsFromRule("nplurals=INTEGER; plural=EXPRESSION;"); got != 0 {
		t.Errorf("placeholder rule: got %d, want 0", got)
	}
	if got := NpluralsFromRule(""); got != 0 {
		t.Errorf("empty rule: got %d, want 0", got)
	}
}
