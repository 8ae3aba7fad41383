package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/seenimoa/newsense/internal/config"
	"github.com/seenimoa/newsense/internal/infra"
	"github.com/seenimoa/newsense/internal/logger"
	"github.com/seenimoa/newsense/internal/news"
	"github.com/seenimoa/newsense/internal/render"
	"github.com/seenimoa/newsense/internal/sentiment"
)

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// NewFromConfig builds the production pipeline described by cfg.
func NewFromConfig(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Pipeline, error) {
	log = logger.OrDefault(log)

	classifier, err := sentiment.New(cfg.Classifier)
	if err != nil {
		return nil, err
	}

	var opts []Option
	store, err := newStore(ctx, cfg.Cache, log)
	if err != nil {
		return nil, err
	}
	if store != nil {
		classifier = sentiment.NewCachedClassifier(classifier, store, log)
		opts = append(opts, withCloser(store.Close))
	}

	deps := Deps{
		Fetcher: news.NewFeedFetcher(cfg.Feed.URLTemplate,
			news.WithFeedTimeout(cfg.Feed.Timeout()),
			news.WithFeedLogger(log)),
		Resolver: news.NewResolver(
			news.WithResolverTimeout(cfg.Article.Timeout()),
			news.WithPacing(cfg.Article.Pacing()),
			news.WithConcurrency(cfg.Article.ConcurrentFetches),
			news.WithSummarySentences(cfg.Article.SummarySentences),
			news.WithResolverLogger(log)),
		Scorer: sentiment.NewScorer(classifier,
			sentiment.WithScorerConcurrency(cfg.Article.ConcurrentFetches),
			sentiment.WithScorerLogger(log)),
		Chart: render.NewChartRenderer(cfg.Output.ChartDir, cfg.Output.ChartFile),
		Audio: render.NewAudioRenderer(cfg.Output.AudioDir, cfg.Speech.Language,
			render.NewGoogleTTS(cfg.Speech.URL, render.WithSpeechTimeout(cfg.Speech.Timeout())),
			log),
	}

	opts = append(opts, WithLimit(cfg.Feed.Limit), WithLogger(log))
	log.Debug("pipeline configured",
		"classifier", classifier.Name(),
		"cache", cfg.Cache.Backend,
		"concurrency", cfg.Article.ConcurrentFetches)
	return New(deps, opts...), nil
}

// newStore opens the classifier cache. An unreachable Redis falls back to
// the in-memory store.
func newStore(ctx context.Context, cfg config.CacheConfig, log *slog.Logger) (infra.Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", CacheNone:
		return nil, nil
	case CacheMemory:
		return infra.NewMemoryStore(cfg.TTL()), nil
	case CacheRedis:
		store, err := infra.NewRedisStore(ctx, cfg.RedisURL, cfg.TTL())
		if err != nil {
			log.Warn("redis cache unavailable, using memory cache", "error", err)
			return infra.NewMemoryStore(cfg.TTL()), nil
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
