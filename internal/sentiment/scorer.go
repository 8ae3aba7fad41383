package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/newsense/internal/logger"
	"github.com/seenimoa/newsense/pkg/models"
)

// MaxInputRunes is the classifier's input limit. Longer text is cut.
const MaxInputRunes = 512

// Title and summary weights of the combined article score.
const (
	TitleWeight   = 0.4
	SummaryWeight = 0.6
)

// Scorer turns classifier output into sentiment scores. It holds no mutable
// state after construction and is safe for concurrent use.
type Scorer struct {
	classifier  Classifier
	concurrency int
	log         *slog.Logger
}

// ScorerOption configures a Scorer.
type ScorerOption func(*Scorer)

// WithScorerLogger sets the logger.
func WithScorerLogger(l *slog.Logger) ScorerOption {
	return func(s *Scorer) { s.log = l }
}

// WithScorerConcurrency sets how many articles ScoreAll classifies at once.
func WithScorerConcurrency(n int) ScorerOption {
	return func(s *Scorer) { s.concurrency = n }
}

// NewScorer creates a scorer around classifier.
func NewScorer(classifier Classifier, opts ...ScorerOption) *Scorer {
	s := &Scorer{classifier: classifier, concurrency: 1}
	for _, opt := range opts {
		opt(s)
	}
	if s.concurrency < 1 {
		s.concurrency = 1
	}
	s.log = logger.OrDefault(s.log)
	return s
}

// ClassifierName reports the backing classifier.
func (s *Scorer) ClassifierName() string { return s.classifier.Name() }

// ScoreText classifies text. Blank text and classifier failures score
// NEUTRAL 0.5.
func (s *Scorer) ScoreText(ctx context.Context, text string) (score models.SentimentScore) {
	if strings.TrimSpace(text) == "" {
		return models.NeutralScore()
	}
	defer func() {
		if p := recover(); p != nil {
			s.log.Error("classifier panicked", "panic", fmt.Sprint(p))
			score = models.NeutralScore()
		}
	}()

	cls, err := s.classifier.Classify(ctx, truncateRunes(text, MaxInputRunes))
	if err != nil {
		s.log.Warn("sentiment classification failed", "classifier", s.classifier.Name(), "error", err)
		return models.NeutralScore()
	}
	score, err = ToScore(cls)
	if err != nil {
		s.log.Warn("sentiment classification unusable", "classifier", s.classifier.Name(), "error", err)
		return models.NeutralScore()
	}
	return score
}

// ScoreArticle scores the title and summary of a and attaches the result.
// Without a summary the article takes the title's sentiment.
func (s *Scorer) ScoreArticle(ctx context.Context, a *models.Article) models.ArticleSentiment {
	title := s.ScoreText(ctx, a.Title)

	result := models.ArticleSentiment{
		Label:          title.Label,
		Score:          title.Score,
		TitleSentiment: &title,
	}
	if strings.TrimSpace(a.Summary) != "" {
		summary := s.ScoreText(ctx, a.Summary)
		combined := TitleWeight*title.Score + SummaryWeight*summary.Score
		result.Label = models.LabelFor(combined)
		result.Score = combined
		result.SummarySentiment = &summary
	}

	a.Sentiment = &result
	return result
}

// ScoreAll scores every article in place.
func (s *Scorer) ScoreAll(ctx context.Context, articles []models.Article) {
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i := range articles {
		i := i
		g.Go(func() error {
			s.ScoreArticle(ctx, &articles[i])
			return nil
		})
	}
	_ = g.Wait()
}

// truncateRunes cuts s to at most n characters.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
