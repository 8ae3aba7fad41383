package sentiment

import (
	"context"
	"math"
	"strings"
)

// ------------------------------------------------------------------
// Keyword-based classifier (offline, no model endpoint needed).
// Used when no inference endpoint is configured or reachable.
// ------------------------------------------------------------------

// positive / negative keyword dictionaries (lowercase).
var positiveWords = map[string]float64{
	"surge": 0.7, "rally": 0.6, "soar": 0.7, "jump": 0.5, "gain": 0.4,
	"growth": 0.4, "upgrade": 0.6, "outperform": 0.6, "strong": 0.4,
	"record high": 0.7, "all-time high": 0.7, "beat": 0.5, "beats estimate": 0.6,
	"exceeds": 0.5, "expansion": 0.4, "profit": 0.3, "dividend": 0.4,
	"success": 0.5, "win": 0.4, "award": 0.5, "launch": 0.3, "innovative": 0.5,
	"partnership": 0.4, "breakthrough": 0.6, "optimistic": 0.5, "positive": 0.4,
	"recovery": 0.5, "boost": 0.5, "approval": 0.5, "praised": 0.5,
}

var negativeWords = map[string]float64{
	"crash": 0.8, "plunge": 0.7, "slump": 0.6, "tumble": 0.6, "drop": 0.4,
	"downgrade": 0.6, "underperform": 0.6, "weak": 0.4, "decline": 0.5,
	"loss": 0.4, "selloff": 0.7, "fall": 0.4, "lawsuit": 0.6, "sued": 0.6,
	"fraud": 0.8, "scam": 0.8, "investigation": 0.5, "probe": 0.5,
	"recall": 0.5, "layoff": 0.6, "layoffs": 0.6, "cut": 0.3, "miss": 0.5,
	"warning": 0.5, "concern": 0.3, "fine": 0.4, "penalty": 0.5,
	"bankruptcy": 0.9, "scandal": 0.7, "negative": 0.4, "delay": 0.4,
}

// LexiconClassifier labels text by weighted keyword matches.
type LexiconClassifier struct{}

// NewLexiconClassifier returns the keyword classifier.
func NewLexiconClassifier() *LexiconClassifier { return &LexiconClassifier{} }

func (LexiconClassifier) Name() string { return ProviderLexicon }

// Classify never fails. Text without any keyword is NEUTRAL.
func (LexiconClassifier) Classify(_ context.Context, text string) (Classification, error) {
	net, strength := lexiconScore(text)
	if strength == 0 || net == 0 {
		return Classification{Label: "NEUTRAL", Confidence: 1}, nil
	}
	// Map net polarity to positivity around 0.5, damped by match strength.
	p := 0.5 + 0.5*net*strength
	if p >= 0.5 {
		return Classification{Label: "POSITIVE", Confidence: p}, nil
	}
	return Classification{Label: "NEGATIVE", Confidence: 1 - p}, nil
}

// lexiconScore returns the net polarity in -1..+1 and a strength in 0..0.9
// that grows with the number of matched keywords.
func lexiconScore(text string) (net, strength float64) {
	lower := strings.ToLower(text)

	posScore, negScore := 0.0, 0.0
	matches := 0
	for word, weight := range positiveWords {
		if strings.Contains(lower, word) {
			posScore += weight
			matches++
		}
	}
	for word, weight := range negativeWords {
		if strings.Contains(lower, word) {
			negScore += weight
			matches++
		}
	}

	total := posScore + negScore
	if matches == 0 || total == 0 {
		return 0, 0
	}
	net = (posScore - negScore) / total
	strength = math.Min(float64(matches)*0.2+0.4, 0.9)
	return net, strength
}
