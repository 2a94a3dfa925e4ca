package moderation

import (
	"context"
	"log"
	"strings"
	"unicode"

	"github.com/latroca/latroca-api/internal/metrics"
)

// User-facing verdict messages.
const (
	msgTextSafe    = "Texto seguro."
	msgTextUnsafe  = "Texto inapropiado."
	msgTextError   = "No se pudo analizar el texto."
	msgImageSafe   = "Imagen segura."
	msgImageUnsafe = "Imagen con posible contenido inapropiado."
	msgImageError  = "No se pudo analizar la imagen."
	msgImageEmpty  = "No se proporcionó una imagen válida."
)

// NSFWTier pairs an NSFW score cutoff with a minimum word-count gate. Short
// inputs produce noisy NSFW scores, so weaker signals require more words
// before they can fire.
type NSFWTier struct {
	Cutoff   float64
	MinWords int
}

// Thresholds is the tuned cutoff table for the text and image classifiers.
// Values are configuration, not business rules; they have been retuned
// repeatedly against real traffic.
type Thresholds struct {
	Toxic        float64
	Obscene      float64
	Insult       float64
	IdentityHate float64
	SevereToxic  float64
	Threat       float64

	// NSFWTiers are evaluated in order; the first tier whose cutoff and
	// word-count gate are both met flags the text as Sexual.
	NSFWTiers []NSFWTier

	// ImageNSFW is the image cutoff: an image is unsafe iff its nsfw score
	// is >= this value. The strict < on the safe side is deliberate.
	ImageNSFW float64
}

// DefaultThresholds returns the production cutoff table.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Toxic:        0.08,
		Obscene:      0.05,
		Insult:       0.05,
		IdentityHate: 0.05,
		SevereToxic:  0.05,
		Threat:       0.05,
		NSFWTiers: []NSFWTier{
			{Cutoff: 0.85, MinWords: 3},
			{Cutoff: 0.60, MinWords: 4},
			{Cutoff: 0.40, MinWords: 5},
		},
		ImageNSFW: 0.01,
	}
}

// Scorer is the remote classification dependency of the Analyzer.
// *Classifier implements it; tests substitute fakes.
type Scorer interface {
	ScoreText(ctx context.Context, model, text string) ([]LabelScore, error)
	ScoreImage(ctx context.Context, model string, data []byte, contentType string) ([]LabelScore, error)
}

// Analyzer is the moderation facade. It owns the lexicon, the threshold
// table and the remote classifier, and produces Verdicts for text and image
// content. All fields are immutable after construction; the Analyzer is safe
// for concurrent use.
type Analyzer struct {
	scorer     Scorer
	lexicon    *Lexicon
	thresholds Thresholds
	cache      *VerdictCache // nil disables caching
}

// NewAnalyzer builds an Analyzer. cache may be nil.
func NewAnalyzer(scorer Scorer, lexicon *Lexicon, thresholds Thresholds, cache *VerdictCache) *Analyzer {
	return &Analyzer{
		scorer:     scorer,
		lexicon:    lexicon,
		thresholds: thresholds,
		cache:      cache,
	}
}

// TextSafe is the lexicon-only fast path used for short profile fields
// (name, bio) and chat notification text. It never touches the network.
func (a *Analyzer) TextSafe(text string) bool {
	if strings.TrimSpace(text) == "" {
		return true
	}
	blocked := a.lexicon.Blocked(Normalize(text))
	if blocked {
		metrics.VerdictsTotal.WithLabelValues("lexicon", string(CategoryOffensive)).Inc()
	} else {
		metrics.VerdictsTotal.WithLabelValues("lexicon", string(CategoryNormal)).Inc()
	}
	return !blocked
}

// AnalyzeText runs the full text pipeline: toxicity and NSFW models are
// called concurrently and their scores reduced through the threshold table.
// Any classifier failure yields an unsafe CategoryError verdict.
func (a *Analyzer) AnalyzeText(ctx context.Context, text string) Verdict {
	if strings.TrimSpace(text) == "" {
		return safeVerdict(msgTextSafe)
	}

	if a.cache != nil {
		if v, ok := a.cache.Get(ctx, text); ok {
			metrics.VerdictCacheHits.WithLabelValues("hit").Inc()
			// Cached verdicts count too; the counter tracks verdicts
			// served, not classifier calls.
			return a.record("text", v)
		}
		metrics.VerdictCacheHits.WithLabelValues("miss").Inc()
	}

	type result struct {
		scores []LabelScore
		err    error
	}

	// The two model calls have no ordering dependency; run them together
	// and join before the decision table.
	toxCh := make(chan result, 1)
	nsfwCh := make(chan result, 1)
	go func() {
		s, err := a.scorer.ScoreText(ctx, ModelToxicity, text)
		toxCh <- result{s, err}
	}()
	go func() {
		s, err := a.scorer.ScoreText(ctx, ModelNSFWText, text)
		nsfwCh <- result{s, err}
	}()
	tox, nsfw := <-toxCh, <-nsfwCh

	if tox.err != nil || nsfw.err != nil {
		if tox.err != nil {
			log.Printf("[moderation] toxicity model: %v", tox.err)
		}
		if nsfw.err != nil {
			log.Printf("[moderation] nsfw model: %v", nsfw.err)
		}
		return a.record("text", unsafeVerdict(msgTextError, CategoryError))
	}

	v := a.decide(extractToxicity(tox.scores), extractNSFW(nsfw.scores), wordCount(text))
	if a.cache != nil {
		a.cache.Put(ctx, text, v)
	}
	return a.record("text", v)
}

// AnalyzeImage runs the single NSFW image model and applies the fixed image
// cutoff. An image is safe iff its nsfw score is strictly below the cutoff.
func (a *Analyzer) AnalyzeImage(ctx context.Context, data []byte, contentType string) Verdict {
	if len(data) == 0 {
		return a.record("image", unsafeVerdict(msgImageEmpty, CategoryError))
	}

	scores, err := a.scorer.ScoreImage(ctx, ModelNSFWImage, data, contentType)
	if err != nil {
		log.Printf("[moderation] image model: %v", err)
		return a.record("image", unsafeVerdict(msgImageError, CategoryError))
	}

	var nsfw float64
	for _, s := range scores {
		if strings.Contains(strings.ToLower(s.Label), "nsfw") {
			nsfw = s.Score
			break
		}
	}

	if nsfw < a.thresholds.ImageNSFW {
		return a.record("image", safeVerdict(msgImageSafe))
	}
	return a.record("image", unsafeVerdict(msgImageUnsafe, CategorySexual))
}

// decide is the text decision table. First match wins.
func (a *Analyzer) decide(t toxicityScores, nsfw float64, words int) Verdict {
	th := a.thresholds
	if t.Toxic >= th.Toxic || t.Obscene >= th.Obscene || t.Insult >= th.Insult ||
		t.IdentityHate >= th.IdentityHate || t.SevereToxic >= th.SevereToxic || t.Threat >= th.Threat {
		return unsafeVerdict(msgTextUnsafe, CategoryOffensive)
	}
	for _, tier := range th.NSFWTiers {
		if nsfw >= tier.Cutoff && words >= tier.MinWords {
			return unsafeVerdict(msgTextUnsafe, CategorySexual)
		}
	}
	return safeVerdict(msgTextSafe)
}

func (a *Analyzer) record(kind string, v Verdict) Verdict {
	metrics.VerdictsTotal.WithLabelValues(kind, string(v.Category)).Inc()
	return v
}

// toxicityScores holds the fixed labels extracted from the toxicity model.
// Absent labels stay at zero.
type toxicityScores struct {
	Toxic        float64
	Obscene      float64
	Insult       float64
	IdentityHate float64
	SevereToxic  float64
	Threat       float64
}

func extractToxicity(scores []LabelScore) toxicityScores {
	var t toxicityScores
	for _, s := range scores {
		switch strings.ToLower(s.Label) {
		case "toxic":
			t.Toxic = s.Score
		case "obscene":
			t.Obscene = s.Score
		case "insult":
			t.Insult = s.Score
		case "identity_hate":
			t.IdentityHate = s.Score
		case "severe_toxic":
			t.SevereToxic = s.Score
		case "threat":
			t.Threat = s.Score
		}
	}
	return t
}

// extractNSFW returns the first label that reads as an NSFW signal:
// "nsfw", "unsafe", or any label containing "sex". Absent labels score zero.
func extractNSFW(scores []LabelScore) float64 {
	for _, s := range scores {
		label := strings.ToLower(s.Label)
		if label == "nsfw" || label == "unsafe" || strings.Contains(label, "sex") {
			return s.Score
		}
	}
	return 0
}

// wordCount tokenizes on whitespace and common punctuation. It gates the
// weak NSFW tiers, so it must agree with how the classifiers see "words",
// not with the lexicon normalizer.
func wordCount(text string) int {
	return len(strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	}))
}
