package news

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/newsense/internal/logger"
	"github.com/seenimoa/newsense/pkg/models"
)

// Resolver downloads the page behind each feed reference and turns it into
// an Article.
type Resolver struct {
	client      *http.Client
	timeout     time.Duration
	pacing      time.Duration
	concurrency int
	summarizer  *Summarizer
	log         *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithResolverHTTPClient sets a custom HTTP client.
func WithResolverHTTPClient(client *http.Client) ResolverOption {
	return func(r *Resolver) { r.client = client }
}

// WithResolverTimeout sets the per-page download timeout.
func WithResolverTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) { r.timeout = d }
}

// WithPacing sets the delay observed after every download attempt.
func WithPacing(d time.Duration) ResolverOption {
	return func(r *Resolver) { r.pacing = d }
}

// WithConcurrency sets how many pages ResolveAll downloads at once.
func WithConcurrency(n int) ResolverOption {
	return func(r *Resolver) { r.concurrency = n }
}

// WithSummarySentences sets the summary length.
func WithSummarySentences(n int) ResolverOption {
	return func(r *Resolver) { r.summarizer = NewSummarizer(n) }
}

// WithResolverLogger sets the logger.
func WithResolverLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) { r.log = l }
}

// NewResolver creates a resolver with a 20s page timeout, 1s pacing and
// sequential downloads.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		client:      &http.Client{},
		timeout:     20 * time.Second,
		pacing:      time.Second,
		concurrency: 1,
		summarizer:  NewSummarizer(DefaultSummarySentences),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.concurrency < 1 {
		r.concurrency = 1
	}
	r.log = logger.OrDefault(r.log)
	return r
}

// Resolve turns one reference into an Article. When the page cannot be
// downloaded or parsed the article is built from the reference, and the
// reference is dropped (false) if it lacks a title or description.
func (r *Resolver) Resolve(ctx context.Context, ref models.ArticleReference) (art models.Article, ok bool) {
	log := r.log.With("link", ref.Link)
	defer func() {
		if p := recover(); p != nil {
			log.Error("article resolution panicked", "panic", fmt.Sprint(p))
			art, ok = degenerateArticle(ref)
		}
	}()

	page, err := fetchBody(ctx, r.client, ref.Link, r.timeout)
	if err != nil {
		log.Warn("article download failed", "error", err)
		return r.fallback(ref, log)
	}
	r.pace(ctx)

	ex, err := extract(page)
	if err != nil {
		log.Warn("article parse failed", "error", err)
		return r.fallback(ref, log)
	}

	summary, err := r.summarizer.Summarize(ex.Text)
	if err != nil {
		log.Debug("summary unavailable, using feed description", "error", err)
		summary = ""
	}
	return buildArticle(ref, ex, summary), true
}

func (r *Resolver) fallback(ref models.ArticleReference, log *slog.Logger) (models.Article, bool) {
	art, ok := degenerateArticle(ref)
	if !ok {
		log.Info("dropping reference without title or description")
	}
	return art, ok
}

// pace waits the configured delay, returning early if ctx is done.
func (r *Resolver) pace(ctx context.Context) {
	if r.pacing <= 0 {
		return
	}
	t := time.NewTimer(r.pacing)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// ResolveAll resolves refs, keeping their order and dropping misses.
func (r *Resolver) ResolveAll(ctx context.Context, refs []models.ArticleReference) []models.Article {
	results := make([]*models.Article, len(refs))

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if art, ok := r.Resolve(ctx, ref); ok {
				results[i] = &art
			}
			return nil
		})
	}
	_ = g.Wait()

	articles := make([]models.Article, 0, len(refs))
	for _, a := range results {
		if a != nil {
			articles = append(articles, *a)
		}
	}
	r.log.Info("articles resolved", "resolved", len(articles), "references", len(refs))
	return articles
}
