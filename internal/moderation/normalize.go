// Package moderation provides content filtering for user-generated text and
// images. It combines a local lexicon check against blocked/allowed word sets
// with remote classification (toxicity and NSFW models) behind a single
// analyzer facade. All failures of the remote classifiers are treated as
// unsafe (fail-closed): moderation errors must never silently pass content.
package moderation

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes text for lexicon matching: lowercase, accents
// stripped (NFD decompose, drop combining marks), every non-letter/digit
// replaced by a space, whitespace runs collapsed to one space, trimmed.
//
// The function is total (any input, including empty) and idempotent:
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	s = strings.ToLower(s)

	// "café" -> "cafe". Transformers carry state between calls, so build a
	// fresh chain per invocation; this is safe for concurrent use.
	strip := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(strip, s); err == nil {
		s = out
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			// Punctuation, symbols and whitespace all become separators.
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
