// Package sentiment scores the sentiment of article titles and summaries
// through a pluggable text classifier.
package sentiment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/seenimoa/newsense/internal/config"
	"github.com/seenimoa/newsense/pkg/models"
)

// Provider names accepted by New.
const (
	ProviderHuggingFace = "huggingface"
	ProviderLexicon     = "lexicon"
)

var (
	// ErrClassifierDown is returned when the classifier endpoint is unreachable.
	ErrClassifierDown = errors.New("sentiment: classifier unreachable")
	// ErrUnknownLabel is returned for classifier labels that carry no polarity.
	ErrUnknownLabel = errors.New("sentiment: unknown label")
	// ErrUnknownProvider is returned by New for unsupported provider names.
	ErrUnknownProvider = errors.New("sentiment: unknown classifier provider")
)

// Classification is the raw output of a classifier: its top label and the
// confidence it assigns to that label.
type Classification struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"score"`
}

// Classifier labels a piece of text.
type Classifier interface {
	Name() string
	Classify(ctx context.Context, text string) (Classification, error)
}

// Positivity converts a classification into a score on the 0 (negative)
// to 1 (positive) scale.
func Positivity(c Classification) (float64, error) {
	conf := clamp01(c.Confidence)
	switch strings.ToUpper(strings.TrimSpace(c.Label)) {
	case "POSITIVE", "POS", "LABEL_1":
		return conf, nil
	case "NEGATIVE", "NEG", "LABEL_0":
		return 1 - conf, nil
	case "NEUTRAL", "NEU":
		return 0.5, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownLabel, c.Label)
	}
}

// ToScore converts a classification into a SentimentScore whose label is
// derived from the positivity score.
func ToScore(c Classification) (models.SentimentScore, error) {
	p, err := Positivity(c)
	if err != nil {
		return models.SentimentScore{}, err
	}
	return models.SentimentScore{Label: models.LabelFor(p), Score: p}, nil
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// New builds the classifier selected by cfg.Provider.
func New(cfg config.ClassifierConfig) (Classifier, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderHuggingFace:
		return NewHTTPClassifier(cfg.URL, WithAPIKey(cfg.APIKey), WithTimeout(cfg.Timeout())), nil
	case ProviderLexicon:
		return NewLexiconClassifier(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}
