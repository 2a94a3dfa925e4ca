package moderation

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// defaultBlockedWords is the built-in Spanish profanity list. Entries are
// matched against normalized text, so accents and case do not matter here.
var defaultBlockedWords = []string{
	"puto", "puta", "putos", "putas",
	"pendejo", "pendeja", "pendejos", "pendejas",
	"idiota", "imbecil", "tarado", "estupido",
	"baboso", "babosa", "inutil",
	"cabron", "cabrona", "mierda", "chingado", "chingada",
	"chingar", "chingon", "chingona", "culero", "culera",
	"pinche", "zorra", "marica", "malparido",
	"bastardo", "perra", "perro", "tonto", "tonta", "pito", "wey",
	"payaso", "payasa", "mamon", "mamona",
}

// defaultAllowedWords are known-safe words and given names that would
// otherwise trip the blocklist. The allow-list always wins: exact-match
// blocking over real names produces false positives that are worse than the
// occasional missed slur.
var defaultAllowedWords = []string{
	"concha", "analia", "dolores", "asuncion", "salome", "rocio",
}

// Lexicon holds the immutable blocked/allowed word sets. It is built once at
// startup and is safe for concurrent use.
type Lexicon struct {
	blocked map[string]struct{}
	allowed map[string]struct{}

	// One whole-word pattern per blocked entry, used for the multi-token
	// rescan. Entries may themselves contain spaces (blocked phrases).
	patterns []*regexp.Regexp
}

// NewLexicon builds a Lexicon from the given word lists. Entries are
// normalized so callers may supply accented or mixed-case words.
func NewLexicon(blocked, allowed []string) *Lexicon {
	l := &Lexicon{
		blocked: make(map[string]struct{}, len(blocked)),
		allowed: make(map[string]struct{}, len(allowed)),
	}
	for _, w := range allowed {
		if w = Normalize(w); w != "" {
			l.allowed[w] = struct{}{}
		}
	}
	for _, w := range blocked {
		w = Normalize(w)
		// Single-rune entries can never block (initials are always
		// skipped); dropping them here keeps the rescan consistent with
		// the token rule.
		if utf8.RuneCountInString(w) <= 1 {
			continue
		}
		// Allow-list wins over the blocklist for conflicting entries.
		if _, ok := l.allowed[w]; ok {
			continue
		}
		if _, dup := l.blocked[w]; dup {
			continue
		}
		l.blocked[w] = struct{}{}
		l.patterns = append(l.patterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(w)+`\b`))
	}
	return l
}

// DefaultLexicon returns a Lexicon loaded with the built-in word lists.
func DefaultLexicon() *Lexicon {
	return NewLexicon(defaultBlockedWords, defaultAllowedWords)
}

// Blocked reports whether normalized text trips the lexicon. The input must
// already be normalized (see Normalize).
//
// Evaluation order, first match wins:
//  1. whole text on the allow-list -> not blocked
//  2. per token: skip len<=1 and pure integers; allowed tokens pass;
//     blocked tokens block
//  3. multi-token text only: whole-word rescan of every blocked entry,
//     catching blocked terms adjacent to other tokens and blocked phrases
func (l *Lexicon) Blocked(normalized string) bool {
	if normalized == "" {
		return false
	}
	if _, ok := l.allowed[normalized]; ok {
		return false
	}

	tokens := strings.Fields(normalized)
	for _, tok := range tokens {
		// Initials and bare numbers never block on their own. Counted in
		// runes: a single non-ASCII letter is still an initial.
		if utf8.RuneCountInString(tok) <= 1 {
			continue
		}
		if _, err := strconv.Atoi(tok); err == nil {
			continue
		}
		if _, ok := l.allowed[tok]; ok {
			continue
		}
		if _, ok := l.blocked[tok]; ok {
			return true
		}
	}

	if len(tokens) > 1 {
		for _, re := range l.patterns {
			if re.MatchString(normalized) {
				return true
			}
		}
	}

	return false
}
