package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/latroca/latroca-api/internal/metrics"
)

// Model identifiers on the inference provider.
const (
	ModelToxicity  = "unitary/toxic-bert"
	ModelNSFWText  = "michellejieli/NSFW_text_classifier"
	ModelNSFWImage = "Falconsai/nsfw_image_detection"
)

// DefaultInferenceURL is the base URL for hosted inference model endpoints.
const DefaultInferenceURL = "https://router.huggingface.co/hf-inference"

// DefaultClassifierTimeout bounds a single model call. A stalled remote call
// must not stall the whole moderation request; timeouts surface as classifier
// errors and the analyzer fails closed.
const DefaultClassifierTimeout = 10 * time.Second

// Classifier calls remote text/image classification endpoints and returns
// flattened label/score batches. It holds no per-request state and is safe
// for concurrent use.
type Classifier struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClassifier creates a Classifier for the given inference endpoint.
// An empty baseURL selects DefaultInferenceURL; a zero timeout selects
// DefaultClassifierTimeout.
func NewClassifier(baseURL, apiKey string, timeout time.Duration) *Classifier {
	if baseURL == "" {
		baseURL = DefaultInferenceURL
	}
	if timeout <= 0 {
		timeout = DefaultClassifierTimeout
	}
	return &Classifier{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// ScoreText posts text to the given model and returns its label scores.
func (c *Classifier) ScoreText(ctx context.Context, model, text string) ([]LabelScore, error) {
	body, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return nil, fmt.Errorf("moderation: marshal request: %w", err)
	}
	return c.score(ctx, model, bytes.NewReader(body), "application/json")
}

// ScoreImage posts raw image bytes to the given model and returns its label
// scores.
func (c *Classifier) ScoreImage(ctx context.Context, model string, data []byte, contentType string) ([]LabelScore, error) {
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return c.score(ctx, model, bytes.NewReader(data), contentType)
}

func (c *Classifier) score(ctx context.Context, model string, body io.Reader, contentType string) ([]LabelScore, error) {
	url := c.baseURL + "/models/" + model

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("moderation: build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	metrics.ClassifierLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ClassifierErrors.WithLabelValues("transport").Inc()
		return nil, fmt.Errorf("moderation: call %s: %w", model, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ClassifierErrors.WithLabelValues("transport").Inc()
		return nil, fmt.Errorf("moderation: read %s response: %w", model, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.ClassifierErrors.WithLabelValues("status").Inc()
		snippet := raw
		if len(snippet) > 256 {
			snippet = snippet[:256]
		}
		return nil, fmt.Errorf("moderation: %s returned HTTP %d: %s", model, resp.StatusCode, snippet)
	}

	scores, err := flattenScores(raw)
	if err != nil {
		metrics.ClassifierErrors.WithLabelValues("decode").Inc()
		return nil, fmt.Errorf("moderation: decode %s response: %w", model, err)
	}
	return scores, nil
}

// flattenScores parses a response that is arbitrarily nested arrays of
// {label, score} objects and flattens it into one batch. Inference providers
// wrap results in an extra array level per input, and image models do not,
// so the shape is not fixed.
func flattenScores(raw []byte) ([]LabelScore, error) {
	var out []LabelScore
	if err := flattenInto(json.RawMessage(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func flattenInto(raw json.RawMessage, out *[]LabelScore) error {
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err == nil {
		for _, el := range arr {
			if err := flattenInto(el, out); err != nil {
				return err
			}
		}
		return nil
	}

	var ls LabelScore
	if err := json.Unmarshal(raw, &ls); err != nil {
		return fmt.Errorf("unexpected element %s", Excerpt(string(raw), 64))
	}
	if ls.Label == "" {
		return fmt.Errorf("element missing label: %s", Excerpt(string(raw), 64))
	}
	*out = append(*out, ls)
	return nil
}
