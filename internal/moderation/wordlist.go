package moderation

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadWordList reads a word list file: one entry per line, blank lines and
// lines starting with '#' ignored. Entries are normalized by NewLexicon, so
// files may carry accented or mixed-case words.
func LoadWordList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("moderation: open word list: %w", err)
	}
	defer f.Close()

	var words []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("moderation: read word list: %w", err)
	}
	return words, nil
}

// LexiconFromFiles builds a Lexicon from optional word list files. An empty
// path falls back to the corresponding built-in list.
func LexiconFromFiles(blockedPath, allowedPath string) (*Lexicon, error) {
	blocked := defaultBlockedWords
	allowed := defaultAllowedWords

	if blockedPath != "" {
		var err error
		if blocked, err = LoadWordList(blockedPath); err != nil {
			return nil, err
		}
	}
	if allowedPath != "" {
		var err error
		if allowed, err = LoadWordList(allowedPath); err != nil {
			return nil, err
		}
	}
	return NewLexicon(blocked, allowed), nil
}
