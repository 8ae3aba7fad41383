package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultHuggingFaceURL is the hosted DistilBERT SST-2 sentiment model.
const DefaultHuggingFaceURL = "https://api-inference.huggingface.co/models/distilbert-base-uncased-finetuned-sst-2-english"

// HTTPClassifier calls a Hugging Face style text-classification endpoint.
type HTTPClassifier struct {
	url     string
	apiKey  string
	timeout time.Duration
	client  *http.Client
}

// HTTPOption configures an HTTPClassifier.
type HTTPOption func(*HTTPClassifier)

// WithAPIKey sets the bearer token sent with each request.
func WithAPIKey(key string) HTTPOption {
	return func(c *HTTPClassifier) { c.apiKey = key }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(c *HTTPClassifier) { c.timeout = d }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(c *HTTPClassifier) { c.client = client }
}

// NewHTTPClassifier creates a classifier for the endpoint at url.
func NewHTTPClassifier(url string, opts ...HTTPOption) *HTTPClassifier {
	if url == "" {
		url = DefaultHuggingFaceURL
	}
	c := &HTTPClassifier{
		url:     url,
		timeout: 30 * time.Second,
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPClassifier) Name() string { return ProviderHuggingFace }

type hfRequest struct {
	Inputs string `json:"inputs"`
}

type hfError struct {
	Error string `json:"error"`
}

// Classify posts text and returns the highest scoring label.
func (c *HTTPClassifier) Classify(ctx context.Context, text string) (Classification, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	data, err := json.Marshal(hfRequest{Inputs: text})
	if err != nil {
		return Classification{}, fmt.Errorf("classifier: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(data))
	if err != nil {
		return Classification{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Classification{}, fmt.Errorf("%w: %v", ErrClassifierDown, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Classification{}, fmt.Errorf("classifier: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Classification{}, fmt.Errorf("classifier: HTTP %d: %s", resp.StatusCode, truncate(string(body), 256))
	}
	return parseHFResponse(body)
}

// parseHFResponse accepts both the nested [[{label,score}...]] shape and
// the flat [{label,score}...] shape.
func parseHFResponse(body []byte) (Classification, error) {
	var nested [][]Classification
	if err := json.Unmarshal(body, &nested); err == nil && len(nested) > 0 {
		return best(nested[0])
	}
	var flat []Classification
	if err := json.Unmarshal(body, &flat); err == nil {
		return best(flat)
	}
	var e hfError
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return Classification{}, fmt.Errorf("classifier: %s", e.Error)
	}
	return Classification{}, fmt.Errorf("classifier: unexpected response %s", truncate(string(body), 256))
}

func best(candidates []Classification) (Classification, error) {
	if len(candidates) == 0 {
		return Classification{}, fmt.Errorf("classifier: empty result")
	}
	top := candidates[0]
	for _, c := range candidates[1:] {
		if c.Confidence > top.Confidence {
			top = c
		}
	}
	if strings.TrimSpace(top.Label) == "" {
		return Classification{}, fmt.Errorf("classifier: empty label")
	}
	return top, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
