// Package analysis aggregates per-article sentiment into a distribution,
// an overall trend and a one-paragraph summary.
package analysis

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/seenimoa/newsense/pkg/models"
)

var (
	// ErrNoArticles is returned when there is nothing to aggregate.
	ErrNoArticles = errors.New("analysis: no articles to analyze")
	// ErrUnscored is returned when an article has no sentiment attached.
	ErrUnscored = errors.New("analysis: article has no sentiment")
)

// LabelCount is a label with its article count.
type LabelCount struct {
	Label models.Label
	Count int
}

// Aggregate computes the sentiment distribution of articles.
func Aggregate(articles []models.Article) (*models.AggregateAnalysis, error) {
	if len(articles) == 0 {
		return nil, ErrNoArticles
	}

	distribution := make(map[models.Label]int)
	var sum float64
	for i, a := range articles {
		if a.Sentiment == nil {
			return nil, fmt.Errorf("%w: index %d (%q)", ErrUnscored, i, a.Title)
		}
		distribution[a.Sentiment.Label]++
		sum += a.Sentiment.Score
	}

	total := float64(len(articles))
	percentages := make(map[models.Label]float64, len(distribution))
	for label, count := range distribution {
		percentages[label] = float64(count) / total * 100
	}

	avg := sum / total
	result := &models.AggregateAnalysis{
		Distribution: distribution,
		Percentages:  percentages,
		AverageScore: avg,
		OverallTrend: models.LabelFor(avg),
	}
	result.Summary = Summarize(Rank(distribution), percentages, avg)
	return result, nil
}

// Rank orders labels by count, highest first. Equal counts are ordered
// alphabetically by label.
func Rank(distribution map[models.Label]int) []LabelCount {
	ranked := make([]LabelCount, 0, len(distribution))
	for label, count := range distribution {
		ranked = append(ranked, LabelCount{Label: label, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Label < ranked[j].Label
	})
	return ranked
}

// Summarize renders the English summary paragraph. Labels are written in
// lower case so the audio term table can substitute them.
func Summarize(ranked []LabelCount, percentages map[models.Label]float64, avg float64) string {
	var b strings.Builder
	if len(ranked) > 0 {
		top := ranked[0].Label
		fmt.Fprintf(&b, "Analysis shows predominantly %s sentiment (%.1f%% of articles). ", strings.ToLower(string(top)), percentages[top])
	}
	if len(ranked) > 1 {
		second := ranked[1].Label
		fmt.Fprintf(&b, "This is followed by %s sentiment (%.1f%% of articles). ", strings.ToLower(string(second)), percentages[second])
	}
	fmt.Fprintf(&b, "The average sentiment score is %.2f, indicating ", avg)
	switch models.LabelFor(avg) {
	case models.Positive:
		b.WriteString("overall positive coverage.")
	case models.Negative:
		b.WriteString("overall negative coverage.")
	default:
		b.WriteString("balanced coverage.")
	}
	return b.String()
}
