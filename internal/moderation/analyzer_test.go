package moderation

import (
	"context"
	"errors"
	"testing"
)

// fakeScorer returns canned scores per model, or an error.
type fakeScorer struct {
	text  map[string][]LabelScore // keyed by model
	image []LabelScore
	err   error

	// errModel fails only the named model when set.
	errModel string
}

func (f *fakeScorer) ScoreText(_ context.Context, model, _ string) ([]LabelScore, error) {
	if f.err != nil && (f.errModel == "" || f.errModel == model) {
		return nil, f.err
	}
	return f.text[model], nil
}

func (f *fakeScorer) ScoreImage(_ context.Context, _ string, _ []byte, _ string) ([]LabelScore, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.image, nil
}

func newTestAnalyzer(s Scorer) *Analyzer {
	return NewAnalyzer(s, DefaultLexicon(), DefaultThresholds(), nil)
}

func scoresBelowAll() map[string][]LabelScore {
	return map[string][]LabelScore{
		ModelToxicity: {
			{"toxic", 0.01}, {"obscene", 0.01}, {"insult", 0.01},
			{"identity_hate", 0.01}, {"severe_toxic", 0.01}, {"threat", 0.01},
		},
		ModelNSFWText: {{"NSFW", 0.01}, {"SFW", 0.99}},
	}
}

func TestAnalyzeText_EmptyIsSafe(t *testing.T) {
	a := newTestAnalyzer(&fakeScorer{err: errors.New("must not be called")})

	for _, input := range []string{"", "   ", "\t\n"} {
		v := a.AnalyzeText(context.Background(), input)
		if !v.Safe {
			t.Errorf("AnalyzeText(%q).Safe = false, want true", input)
		}
		if v.Category != CategoryNormal {
			t.Errorf("AnalyzeText(%q).Category = %s, want Normal", input, v.Category)
		}
	}
}

func TestAnalyzeText_ToxicIsOffensive(t *testing.T) {
	scores := scoresBelowAll()
	scores[ModelToxicity] = []LabelScore{{"toxic", 0.90}}
	a := newTestAnalyzer(&fakeScorer{text: scores})

	v := a.AnalyzeText(context.Background(), "algo muy feo aqui")
	if v.Safe {
		t.Fatal("Safe = true, want false")
	}
	if v.Category != CategoryOffensive {
		t.Errorf("Category = %s, want Offensive", v.Category)
	}
	if v.RiskLevel != "unsafe" {
		t.Errorf("RiskLevel = %q, want unsafe", v.RiskLevel)
	}
}

func TestAnalyzeText_EachToxicityLabelFires(t *testing.T) {
	labels := []string{"toxic", "obscene", "insult", "identity_hate", "severe_toxic", "threat"}
	for _, label := range labels {
		t.Run(label, func(t *testing.T) {
			scores := scoresBelowAll()
			scores[ModelToxicity] = []LabelScore{{label, 0.95}}
			a := newTestAnalyzer(&fakeScorer{text: scores})

			v := a.AnalyzeText(context.Background(), "una frase cualquiera de prueba")
			if v.Safe || v.Category != CategoryOffensive {
				t.Errorf("label %s: got %+v, want unsafe Offensive", label, v)
			}
		})
	}
}

func TestAnalyzeText_NSFWWordCountGates(t *testing.T) {
	tests := []struct {
		name string
		nsfw float64
		text string
		safe bool
	}{
		// 0.40 hits only the weak tier, which needs 5+ words.
		{"weak signal two words", 0.40, "dos palabras", true},
		{"weak signal four words", 0.40, "solo cuatro palabras aqui", true},
		{"weak signal five words", 0.40, "estas son exactamente cinco palabras", false},
		// 0.60 hits the mid tier (4+ words).
		{"mid signal three words", 0.60, "solo tres palabras", true},
		{"mid signal four words", 0.60, "ahora si cuatro palabras", false},
		// 0.85 hits the strong tier (3+ words).
		{"strong signal two words", 0.85, "dos palabras", true},
		{"strong signal three words", 0.85, "ya son tres", false},
		// Punctuation is a word separator for the gate.
		{"punctuated words count", 0.85, "uno,dos,tres", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scores := scoresBelowAll()
			scores[ModelNSFWText] = []LabelScore{{"NSFW", tt.nsfw}}
			a := newTestAnalyzer(&fakeScorer{text: scores})

			v := a.AnalyzeText(context.Background(), tt.text)
			if v.Safe != tt.safe {
				t.Errorf("nsfw=%.2f text=%q: Safe = %v, want %v", tt.nsfw, tt.text, v.Safe, tt.safe)
			}
			if !tt.safe && v.Category != CategorySexual {
				t.Errorf("Category = %s, want Sexual", v.Category)
			}
		})
	}
}

func TestAnalyzeText_OffensiveWinsOverSexual(t *testing.T) {
	scores := scoresBelowAll()
	scores[ModelToxicity] = []LabelScore{{"toxic", 0.90}}
	scores[ModelNSFWText] = []LabelScore{{"NSFW", 0.99}}
	a := newTestAnalyzer(&fakeScorer{text: scores})

	v := a.AnalyzeText(context.Background(), "muchas palabras feas en esta frase larga")
	if v.Category != CategoryOffensive {
		t.Errorf("Category = %s, want Offensive (decision order)", v.Category)
	}
}

func TestAnalyzeText_ClassifierErrorFailsClosed(t *testing.T) {
	tests := []struct {
		name     string
		errModel string
	}{
		{"toxicity model fails", ModelToxicity},
		{"nsfw model fails", ModelNSFWText},
		{"both fail", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAnalyzer(&fakeScorer{
				text:     scoresBelowAll(),
				err:      errors.New("boom"),
				errModel: tt.errModel,
			})

			v := a.AnalyzeText(context.Background(), "texto perfectamente normal")
			if v.Safe {
				t.Fatal("Safe = true on classifier error, fail-closed violated")
			}
			if v.Category != CategoryError {
				t.Errorf("Category = %s, want Error", v.Category)
			}
		})
	}
}

func TestAnalyzeImage_Boundary(t *testing.T) {
	tests := []struct {
		name string
		nsfw float64
		safe bool
	}{
		{"clearly safe", 0.0001, true},
		{"just below cutoff", 0.0099, true},
		{"exactly at cutoff", 0.01, false},
		{"above cutoff", 0.5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAnalyzer(&fakeScorer{
				image: []LabelScore{{"nsfw", tt.nsfw}, {"normal", 1 - tt.nsfw}},
			})

			v := a.AnalyzeImage(context.Background(), []byte{0xff, 0xd8}, "image/jpeg")
			if v.Safe != tt.safe {
				t.Errorf("nsfw=%.4f: Safe = %v, want %v", tt.nsfw, v.Safe, tt.safe)
			}
		})
	}
}

func TestAnalyzeImage_EmptyAndErrors(t *testing.T) {
	a := newTestAnalyzer(&fakeScorer{err: errors.New("boom")})

	if v := a.AnalyzeImage(context.Background(), nil, ""); v.Safe {
		t.Error("empty image: Safe = true, want false")
	}
	if v := a.AnalyzeImage(context.Background(), []byte{1}, "image/png"); v.Safe {
		t.Error("classifier error: Safe = true, fail-closed violated")
	}
}

func TestAnalyzeImage_MissingNSFWLabelIsSafe(t *testing.T) {
	a := newTestAnalyzer(&fakeScorer{image: []LabelScore{{"normal", 0.99}}})
	if v := a.AnalyzeImage(context.Background(), []byte{1}, "image/png"); !v.Safe {
		t.Error("missing nsfw label should default to 0 and pass")
	}
}

func TestTextSafe_LexiconOnly(t *testing.T) {
	// The scorer must never be reached by the lexicon fast path.
	a := newTestAnalyzer(&fakeScorer{err: errors.New("must not be called")})

	tests := []struct {
		input string
		safe  bool
	}{
		{"", true},
		{"   ", true},
		{"Juan Pérez", true},
		{"eres un pendejo", false},
		{"PENDEJO", false},
		{"Analía", true},
		{"a 5", true},
	}

	for _, tt := range tests {
		if got := a.TextSafe(tt.input); got != tt.safe {
			t.Errorf("TextSafe(%q) = %v, want %v", tt.input, got, tt.safe)
		}
	}
}

func TestWordCount(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"uno", 1},
		{"uno dos tres", 3},
		{"uno,dos;tres!", 3},
		{"  spaced   out  ", 2},
	}

	for _, tt := range tests {
		if got := wordCount(tt.input); got != tt.want {
			t.Errorf("wordCount(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}
