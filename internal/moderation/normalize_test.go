package moderation

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"whitespace only", "   \t\n ", ""},
		{"lowercase passthrough", "hola mundo", "hola mundo"},
		{"uppercase", "HOLA Mundo", "hola mundo"},
		{"accents stripped", "café niño über", "cafe nino uber"},
		{"punctuation to space", "hola,mundo!que-tal", "hola mundo que tal"},
		{"symbols to space", "a@b#c$d", "a b c d"},
		{"collapse whitespace", "hola    mundo\t\tbien", "hola mundo bien"},
		{"trim", "  hola mundo  ", "hola mundo"},
		{"digits kept", "tengo 2 perros", "tengo 2 perros"},
		{"mixed accent and punct", "¡Qué pasó, José!", "que paso jose"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"hola mundo",
		"¡Qué pasó, José!",
		"CAFÉ... con LECHE!!!",
		"a5 b6 c7",
		"   spaced   out   ",
	}

	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}
