package models

// AggregateAnalysis summarises the sentiment of a set of articles.
// Distribution and Percentages only carry labels that occurred.
type AggregateAnalysis struct {
	Distribution map[Label]int     `json:"distribution"`
	Percentages  map[Label]float64 `json:"percentages"`
	AverageScore float64           `json:"average_score"`
	OverallTrend Label             `json:"overall_trend"`
	Summary      string            `json:"summary"`
}
