package news

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/newsense/internal/logger"
	"github.com/seenimoa/newsense/pkg/models"
)

// DefaultFeedURL is the Bing News RSS search endpoint. {query} is replaced by
// the percent-encoded company name.
const DefaultFeedURL = "https://www.bing.com/news/search?q={query}&format=rss"

// DefaultFeedLimit is the number of feed items taken when no limit is given.
const DefaultFeedLimit = 10

// FeedFetcher retrieves candidate article references from a news search feed.
type FeedFetcher struct {
	urlTemplate string
	timeout     time.Duration
	client      *http.Client
	log         *slog.Logger
}

// FeedOption configures a FeedFetcher.
type FeedOption func(*FeedFetcher)

// WithFeedHTTPClient sets a custom HTTP client.
func WithFeedHTTPClient(client *http.Client) FeedOption {
	return func(f *FeedFetcher) { f.client = client }
}

// WithFeedTimeout sets the request timeout.
func WithFeedTimeout(d time.Duration) FeedOption {
	return func(f *FeedFetcher) { f.timeout = d }
}

// WithFeedLogger sets the logger.
func WithFeedLogger(l *slog.Logger) FeedOption {
	return func(f *FeedFetcher) { f.log = l }
}

// NewFeedFetcher creates a fetcher for the given URL template. An empty
// template selects DefaultFeedURL.
func NewFeedFetcher(urlTemplate string, opts ...FeedOption) *FeedFetcher {
	if urlTemplate == "" {
		urlTemplate = DefaultFeedURL
	}
	f := &FeedFetcher{
		urlTemplate: urlTemplate,
		timeout:     10 * time.Second,
		client:      &http.Client{},
	}
	for _, opt := range opts {
		opt(f)
	}
	f.log = logger.OrDefault(f.log)
	return f
}

// QueryURL builds the feed URL for a company name.
func (f *FeedFetcher) QueryURL(company string) string {
	// QueryEscape encodes spaces as '+'; the search endpoint expects %20.
	q := strings.ReplaceAll(url.QueryEscape(company), "+", "%20")
	return strings.ReplaceAll(f.urlTemplate, "{query}", q)
}

// Fetch returns at most limit references for company, in feed order.
// Network and parse failures are logged and reported as an empty result.
func (f *FeedFetcher) Fetch(ctx context.Context, company string, limit int) []models.ArticleReference {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	feedURL := f.QueryURL(company)
	log := f.log.With("company", company)

	body, err := fetchBody(ctx, f.client, feedURL, f.timeout)
	if err != nil {
		log.Warn("feed fetch failed", "url", feedURL, "error", err)
		return []models.ArticleReference{}
	}

	// gofeed parsers keep per-document state; one per call keeps requests isolated.
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		log.Warn("feed parse failed", "url", feedURL, "error", err)
		return []models.ArticleReference{}
	}

	items := feed.Items
	if len(items) > limit {
		items = items[:limit]
	}
	log.Info("feed fetched", "items", len(items), "available", len(feed.Items))

	refs := make([]models.ArticleReference, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		refs = append(refs, models.ArticleReference{
			Title:       strings.TrimSpace(item.Title),
			Link:        decodeLink(strings.TrimSpace(item.Link)),
			Description: cleanHTML(item.Description),
		})
	}
	return refs
}

// decodeLink percent-decodes a link. Links that do not decode cleanly are
// returned unchanged.
func decodeLink(link string) string {
	if link == "" {
		return ""
	}
	decoded, err := url.PathUnescape(link)
	if err != nil {
		return link
	}
	return decoded
}
