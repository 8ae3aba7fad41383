// Package pipeline runs a company news sentiment analysis end to end:
// feed lookup, article resolution, scoring, aggregation and rendering.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/newsense/internal/analysis"
	"github.com/seenimoa/newsense/internal/logger"
	"github.com/seenimoa/newsense/pkg/models"
)

var (
	// ErrNoArticles means the feed and page lookups produced nothing to analyze.
	ErrNoArticles = errors.New("no articles found")
	// ErrEmptyCompany is returned for a blank company name.
	ErrEmptyCompany = errors.New("company name is required")
)

// Fetcher looks up candidate articles for a company.
type Fetcher interface {
	Fetch(ctx context.Context, company string, limit int) []models.ArticleReference
}

// Resolver turns feed references into articles.
type Resolver interface {
	ResolveAll(ctx context.Context, refs []models.ArticleReference) []models.Article
}

// Scorer attaches sentiment to articles in place.
type Scorer interface {
	ScoreAll(ctx context.Context, articles []models.Article)
}

// ChartRenderer draws the sentiment distribution.
type ChartRenderer interface {
	RenderChart(a *models.AggregateAnalysis) (string, error)
}

// AudioRenderer speaks the summary. An empty path means no audio.
type AudioRenderer interface {
	RenderAudio(ctx context.Context, a *models.AggregateAnalysis) string
}

// Request is one analysis run.
type Request struct {
	Company       string
	GenerateAudio bool
	Limit         int // feed items; <=0 uses the pipeline default
}

// Result is the outcome of a run.
type Result struct {
	Company   string                    `json:"company"`
	Articles  []models.Article          `json:"articles"`
	Analysis  *models.AggregateAnalysis `json:"sentiment_analysis"`
	AudioFile string                    `json:"audio_file"`
	ChartFile string                    `json:"chart_file"`
	Duration  time.Duration             `json:"-"`
}

// Deps are the stages of a Pipeline. Chart and Audio may be nil.
type Deps struct {
	Fetcher  Fetcher
	Resolver Resolver
	Scorer   Scorer
	Chart    ChartRenderer
	Audio    AudioRenderer
}

// Pipeline wires the stages together. It keeps no per-request state and
// may serve concurrent runs.
type Pipeline struct {
	deps    Deps
	limit   int
	log     *slog.Logger
	closers []func() error
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLimit sets the default number of feed items.
func WithLimit(n int) Option {
	return func(p *Pipeline) { p.limit = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// withCloser registers a resource released by Close.
func withCloser(fn func() error) Option {
	return func(p *Pipeline) { p.closers = append(p.closers, fn) }
}

// New creates a pipeline from its stages.
func New(deps Deps, opts ...Option) *Pipeline {
	p := &Pipeline{deps: deps, limit: 10}
	for _, opt := range opts {
		opt(p)
	}
	p.log = logger.OrDefault(p.log)
	return p
}

// Run analyzes the news coverage of req.Company. ErrNoArticles is returned
// when nothing could be collected; every other degradation (missing
// summaries, chart or audio) is absorbed into the result.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	company := strings.TrimSpace(req.Company)
	if company == "" {
		return nil, ErrEmptyCompany
	}
	limit := req.Limit
	if limit <= 0 {
		limit = p.limit
	}
	log := p.log.With("company", company)

	refs := p.deps.Fetcher.Fetch(ctx, company, limit)
	log.Info("feed references collected", "count", len(refs))

	articles := p.deps.Resolver.ResolveAll(ctx, refs)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return nil, ErrNoArticles
	}

	p.deps.Scorer.ScoreAll(ctx, articles)

	agg, err := analysis.Aggregate(articles)
	if errors.Is(err, analysis.ErrNoArticles) {
		return nil, ErrNoArticles
	}
	if err != nil {
		return nil, fmt.Errorf("aggregate sentiment: %w", err)
	}

	result := &Result{
		Company:  company,
		Articles: articles,
		Analysis: agg,
	}
	p.render(ctx, log, result, req.GenerateAudio)

	result.Duration = time.Since(start)
	log.Info("analysis complete",
		"articles", len(articles),
		"trend", agg.OverallTrend,
		"average", agg.AverageScore,
		"duration", result.Duration.Round(time.Millisecond))
	return result, nil
}

// render produces the chart and, if asked, the audio. They do not depend on
// each other and run concurrently.
func (p *Pipeline) render(ctx context.Context, log *slog.Logger, result *Result, audio bool) {
	var g errgroup.Group
	if p.deps.Chart != nil {
		g.Go(func() error {
			path, err := p.deps.Chart.RenderChart(result.Analysis)
			if err != nil {
				log.Warn("chart rendering failed", "error", err)
				return nil
			}
			result.ChartFile = path
			return nil
		})
	}
	if audio && p.deps.Audio != nil {
		g.Go(func() error {
			result.AudioFile = p.deps.Audio.RenderAudio(ctx, result.Analysis)
			return nil
		})
	}
	_ = g.Wait()
}

// Close releases resources held by the stages, such as cache connections.
func (p *Pipeline) Close() error {
	var errs []error
	for _, fn := range p.closers {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
