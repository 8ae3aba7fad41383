package models

// Label is a sentiment class.
type Label string

const (
	Positive Label = "POSITIVE"
	Neutral  Label = "NEUTRAL"
	Negative Label = "NEGATIVE"
)

// Sentiment thresholds. Scores in the open interval between them are neutral.
const (
	PositiveThreshold = 0.6
	NegativeThreshold = 0.4
)

// LabelFor maps a score in [0,1] to a label:
// score >= 0.6 is POSITIVE, score <= 0.4 is NEGATIVE, anything else NEUTRAL.
func LabelFor(score float64) Label {
	switch {
	case score >= PositiveThreshold:
		return Positive
	case score <= NegativeThreshold:
		return Negative
	default:
		return Neutral
	}
}

// SentimentScore is the classification of a single piece of text.
// Score is the positivity of the text, 0 (negative) to 1 (positive).
type SentimentScore struct {
	Label Label   `json:"label"`
	Score float64 `json:"score"`
}

// NeutralScore is returned when text could not be classified.
func NeutralScore() SentimentScore {
	return SentimentScore{Label: Neutral, Score: 0.5}
}

// ArticleSentiment is the combined sentiment of an article's title and summary.
type ArticleSentiment struct {
	Label            Label           `json:"label"`
	Score            float64         `json:"score"`
	TitleSentiment   *SentimentScore `json:"title_sentiment"`
	SummarySentiment *SentimentScore `json:"summary_sentiment"`
}
