package moderation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClassifier_ScoreText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q, want bearer test-key", got)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body["inputs"] != "hola" {
			t.Errorf("inputs = %q, want %q", body["inputs"], "hola")
		}
		// Hosted inference wraps per-input results in an extra array level.
		w.Write([]byte(`[[{"label":"toxic","score":0.9},{"label":"obscene","score":0.1}]]`))
	}))
	defer srv.Close()

	c := NewClassifier(srv.URL, "test-key", time.Second)
	scores, err := c.ScoreText(context.Background(), ModelToxicity, "hola")
	if err != nil {
		t.Fatalf("ScoreText: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("got %d scores, want 2", len(scores))
	}
	if scores[0].Label != "toxic" || scores[0].Score != 0.9 {
		t.Errorf("scores[0] = %+v, want toxic/0.9", scores[0])
	}
}

func TestClassifier_ScoreImage_FlatArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "image/png" {
			t.Errorf("Content-Type = %q, want image/png", ct)
		}
		w.Write([]byte(`[{"label":"nsfw","score":0.02},{"label":"normal","score":0.98}]`))
	}))
	defer srv.Close()

	c := NewClassifier(srv.URL, "", time.Second)
	scores, err := c.ScoreImage(context.Background(), ModelNSFWImage, []byte{0x89}, "image/png")
	if err != nil {
		t.Fatalf("ScoreImage: %v", err)
	}
	if len(scores) != 2 || scores[0].Label != "nsfw" {
		t.Fatalf("scores = %+v, want nsfw first", scores)
	}
}

func TestClassifier_NonSuccessStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"server error", http.StatusInternalServerError},
		{"model loading", http.StatusServiceUnavailable},
		{"bad request", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer srv.Close()

			c := NewClassifier(srv.URL, "", time.Second)
			if _, err := c.ScoreText(context.Background(), ModelToxicity, "hola"); err == nil {
				t.Errorf("status %d: want error, got nil", tt.status)
			}
		})
	}
}

func TestClassifier_MalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "oops"},
		{"object without label", `[{"score":0.5}]`},
		{"wrong shape", `{"label":"toxic"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClassifier(srv.URL, "", time.Second)
			if _, err := c.ScoreText(context.Background(), ModelToxicity, "hola"); err == nil {
				t.Errorf("body %q: want error, got nil", tt.body)
			}
		})
	}
}

func TestClassifier_ContextTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	c := NewClassifier(srv.URL, "", 10*time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := c.ScoreText(ctx, ModelToxicity, "hola"); err == nil {
		t.Fatal("want timeout error, got nil")
	}
}

func TestFlattenScores_DeepNesting(t *testing.T) {
	raw := []byte(`[[[{"label":"a","score":0.1}],[{"label":"b","score":0.2}]],[{"label":"c","score":0.3}]]`)
	scores, err := flattenScores(raw)
	if err != nil {
		t.Fatalf("flattenScores: %v", err)
	}
	want := []LabelScore{{"a", 0.1}, {"b", 0.2}, {"c", 0.3}}
	if len(scores) != len(want) {
		t.Fatalf("got %d scores, want %d", len(scores), len(want))
	}
	for i := range want {
		if scores[i] != want[i] {
			t.Errorf("scores[%d] = %+v, want %+v", i, scores[i], want[i])
		}
	}
}
