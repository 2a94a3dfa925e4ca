package moderation

import (
	"strings"
	"unicode/utf8"
)

// RiskCategory classifies why content was flagged.
type RiskCategory string

const (
	CategoryNormal    RiskCategory = "Normal"
	CategoryOffensive RiskCategory = "Offensive"
	CategorySexual    RiskCategory = "Sexual"

	// CategoryError marks verdicts produced because the remote classifier
	// could not be reached or returned garbage. The policy is fail-closed:
	// these verdicts are always unsafe.
	CategoryError RiskCategory = "Error"
)

// Verdict is the outcome of one moderation request. Verdicts are produced
// fresh per call and are never persisted.
type Verdict struct {
	Safe      bool         `json:"isSafe"`
	Message   string       `json:"message"`
	Category  RiskCategory `json:"category"`
	RiskLevel string       `json:"riskLevel"` // "safe" | "unsafe"
}

func safeVerdict(msg string) Verdict {
	return Verdict{Safe: true, Message: msg, Category: CategoryNormal, RiskLevel: "safe"}
}

func unsafeVerdict(msg string, cat RiskCategory) Verdict {
	return Verdict{Safe: false, Message: msg, Category: cat, RiskLevel: "unsafe"}
}

// LabelScore is one classifier label with its confidence in [0,1].
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// FlaggedEvent is published to moderation.flagged when a user action is
// rejected by the analyzer. The moderator worker persists these for admin
// review. Publishing is fire-and-forget and never blocks the request path.
type FlaggedEvent struct {
	UserID   string       `json:"user_id"`
	Field    string       `json:"field"` // e.g. "post.description", "profile.image"
	Category RiskCategory `json:"category"`
	Excerpt  string       `json:"excerpt"`
	Ts       int64        `json:"ts"`
}

// Excerpt truncates text for audit events so flagged content snippets stay
// small on the wire and in storage. Truncation lands on a rune boundary so
// the excerpt stays valid UTF-8.
func Excerpt(text string, max int) string {
	text = strings.TrimSpace(text)
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
