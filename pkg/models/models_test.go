package models

import (
	"encoding/json"
	"strings"
	"testing"
)

// ── Label Tests ──

func TestLabelFor(t *testing.T) {
	tests := []struct {
		score float64
		want  Label
	}{
		{0, Negative},
		{0.2, Negative},
		{0.4, Negative},
		{0.41, Neutral},
		{0.5, Neutral},
		{0.59, Neutral},
		{0.6, Positive},
		{0.99, Positive},
		{1, Positive},
	}
	for _, tt := range tests {
		if got := LabelFor(tt.score); got != tt.want {
			t.Errorf("LabelFor(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestNeutralScore(t *testing.T) {
	s := NeutralScore()
	if s.Label != Neutral || s.Score != 0.5 {
		t.Errorf("NeutralScore() = %+v", s)
	}
	if LabelFor(s.Score) != s.Label {
		t.Error("neutral score must agree with its label")
	}
}

// ── Article Tests ──

func TestArticleJSONShape(t *testing.T) {
	title := SentimentScore{Label: Positive, Score: 0.8}
	a := Article{
		Title:   "Acme soars",
		URL:     "https://example.com/a",
		Authors: []string{},
		Sentiment: &ArticleSentiment{
			Label:          Positive,
			Score:          0.8,
			TitleSentiment: &title,
		},
	}
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("json.Marshal(Article) error: %v", err)
	}
	s := string(data)
	for _, want := range []string{
		`"authors":[]`,
		`"publish_date":null`,
		`"summary_sentiment":null`,
		`"title_sentiment":{"label":"POSITIVE","score":0.8}`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("JSON missing %s: %s", want, s)
		}
	}
}

func TestArticleWithoutSentimentOmitsField(t *testing.T) {
	data, err := json.Marshal(Article{Title: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "sentiment") {
		t.Errorf("unscored article should omit sentiment: %s", data)
	}
}

// ── AggregateAnalysis Tests ──

func TestAggregateAnalysisJSONKeys(t *testing.T) {
	a := AggregateAnalysis{
		Distribution: map[Label]int{Positive: 2, Negative: 1},
		Percentages:  map[Label]float64{Positive: 66.67, Negative: 33.33},
		AverageScore: 0.6,
		OverallTrend: Positive,
	}
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"distribution", "percentages", "average_score", "overall_trend", "summary"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
	if !strings.Contains(string(decoded["distribution"]), `"POSITIVE":2`) {
		t.Errorf("distribution: %s", decoded["distribution"])
	}
}
