package moderation

import "testing"

func testLexicon() *Lexicon {
	return NewLexicon(
		[]string{"badword", "mierda", "mala frase"},
		[]string{"concha", "analia"},
	)
}

func TestLexicon_Blocked(t *testing.T) {
	l := testLexicon()

	tests := []struct {
		name    string
		input   string // already normalized
		blocked bool
	}{
		{"empty", "", false},
		{"clean single token", "hola", false},
		{"blocked single token", "badword", true},
		{"blocked token in sentence", "este badword aqui", true},
		{"blocked with accents handled upstream", "mierda", true},
		{"substring does not block", "badwording", false},
		{"substring inside longer word", "mybadword", false},
		{"allowed whole text", "concha", false},
		{"allowed token among clean tokens", "concha bonita", false},
		{"single letter skipped", "a", false},
		{"single non-ascii letter skipped", "ß", false},
		{"pure number skipped", "12345", false},
		{"initials and numbers", "a 5", false},
		{"blocked phrase as whole words", "dijo mala frase ayer", true},
		{"phrase words separated", "mala otra frase", false},
		{"multi token rescan catches adjacency", "xx badword", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := l.Blocked(tt.input); got != tt.blocked {
				t.Errorf("Blocked(%q) = %v, want %v", tt.input, got, tt.blocked)
			}
		})
	}
}

func TestLexicon_AllowListWinsOverBlocklist(t *testing.T) {
	// A word present in both lists must never block, alone or in a phrase.
	l := NewLexicon([]string{"concha", "badword"}, []string{"concha"})

	for _, input := range []string{"concha", "la concha blanca"} {
		if l.Blocked(input) {
			t.Errorf("Blocked(%q) = true, want false (allow-list wins)", input)
		}
	}
	if !l.Blocked("badword") {
		t.Error("Blocked(\"badword\") = false, want true")
	}
}

func TestLexicon_SingleRuneTokenNeverBlocks(t *testing.T) {
	// Token length is counted in runes: a lone non-ASCII letter is an
	// initial even when it is two bytes long, block-listed or not.
	l := NewLexicon([]string{"ß"}, nil)

	for _, input := range []string{"ß", "ß 5"} {
		if l.Blocked(input) {
			t.Errorf("Blocked(%q) = true, want false (single-rune token)", input)
		}
	}
}

func TestLexicon_DefaultsNormalizeEntries(t *testing.T) {
	// Constructor input may be accented or mixed case.
	l := NewLexicon([]string{"Imbécil"}, nil)
	if !l.Blocked("imbecil") {
		t.Error("expected accented blocklist entry to match its normalized form")
	}
}

func TestDefaultLexicon(t *testing.T) {
	l := DefaultLexicon()
	if len(l.blocked) == 0 {
		t.Fatal("DefaultLexicon has no blocked words")
	}

	if !l.Blocked(Normalize("eres un pendejo")) {
		t.Error("expected default blocklist to flag a known profanity")
	}
	if l.Blocked(Normalize("Analía")) {
		t.Error("expected allow-listed name to pass")
	}
	if l.Blocked(Normalize("vendo bicicleta usada")) {
		t.Error("expected clean listing text to pass")
	}
}
