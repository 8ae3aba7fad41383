package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/seenimoa/newsense/internal/config"
	"github.com/seenimoa/newsense/internal/logger"
	"github.com/seenimoa/newsense/pkg/models"
)

type fakeFetcher struct {
	refs       []models.ArticleReference
	gotLimit   int
	gotCompany string
}

func (f *fakeFetcher) Fetch(_ context.Context, company string, limit int) []models.ArticleReference {
	f.gotCompany, f.gotLimit = company, limit
	return f.refs
}

type passResolver struct{}

func (passResolver) ResolveAll(_ context.Context, refs []models.ArticleReference) []models.Article {
	out := []models.Article{}
	for _, r := range refs {
		if r.Title == "" {
			continue
		}
		out = append(out, models.Article{Title: r.Title, URL: r.Link, Summary: r.Description, Authors: []string{}})
	}
	return out
}

// titleScorer scores an article by the number in its title, "0.9" → 0.9.
type titleScorer struct{}

func (titleScorer) ScoreAll(_ context.Context, articles []models.Article) {
	for i := range articles {
		var v float64
		fmt.Sscanf(articles[i].Title, "%f", &v)
		articles[i].Sentiment = &models.ArticleSentiment{Label: models.LabelFor(v), Score: v}
	}
}

type fakeChart struct {
	calls int32
	err   error
}

func (c *fakeChart) RenderChart(*models.AggregateAnalysis) (string, error) {
	atomic.AddInt32(&c.calls, 1)
	if c.err != nil {
		return "", c.err
	}
	return "chart.svg", nil
}

type fakeAudio struct{ calls int32 }

func (a *fakeAudio) RenderAudio(context.Context, *models.AggregateAnalysis) string {
	atomic.AddInt32(&a.calls, 1)
	return "audio_files/abc.mp3"
}

func refs(titles ...string) []models.ArticleReference {
	out := make([]models.ArticleReference, len(titles))
	for i, t := range titles {
		out[i] = models.ArticleReference{Title: t, Link: "https://example.com/" + t, Description: "d"}
	}
	return out
}

func newTestPipeline(f Fetcher, chart ChartRenderer, audio AudioRenderer) *Pipeline {
	return New(Deps{
		Fetcher:  f,
		Resolver: passResolver{},
		Scorer:   titleScorer{},
		Chart:    chart,
		Audio:    audio,
	}, WithLogger(logger.Discard()))
}

func TestRunProducesResult(t *testing.T) {
	fetcher := &fakeFetcher{refs: refs("0.9", "0.8", "0.1", "0.5")}
	chart, audio := &fakeChart{}, &fakeAudio{}
	p := newTestPipeline(fetcher, chart, audio)

	res, err := p.Run(context.Background(), Request{Company: "  Acme  ", GenerateAudio: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Company != "Acme" || fetcher.gotCompany != "Acme" {
		t.Errorf("company not trimmed: %q / %q", res.Company, fetcher.gotCompany)
	}
	if fetcher.gotLimit != 10 {
		t.Errorf("default limit: got %d, want 10", fetcher.gotLimit)
	}
	if len(res.Articles) != 4 {
		t.Fatalf("got %d articles, want 4", len(res.Articles))
	}
	if res.Analysis.Distribution[models.Positive] != 2 {
		t.Errorf("distribution: %v", res.Analysis.Distribution)
	}
	if res.ChartFile != "chart.svg" || res.AudioFile != "audio_files/abc.mp3" {
		t.Errorf("artifacts: chart=%q audio=%q", res.ChartFile, res.AudioFile)
	}
}

func TestRunWithoutAudio(t *testing.T) {
	audio := &fakeAudio{}
	p := newTestPipeline(&fakeFetcher{refs: refs("0.7")}, &fakeChart{}, audio)

	res, err := p.Run(context.Background(), Request{Company: "Acme", Limit: 3})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.AudioFile != "" || audio.calls != 0 {
		t.Errorf("audio rendered without being asked: %q (%d calls)", res.AudioFile, audio.calls)
	}
}

func TestRunChartFailureIsSilent(t *testing.T) {
	p := newTestPipeline(&fakeFetcher{refs: refs("0.7")}, &fakeChart{err: errors.New("disk full")}, nil)
	res, err := p.Run(context.Background(), Request{Company: "Acme"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.ChartFile != "" {
		t.Errorf("ChartFile: got %q, want empty", res.ChartFile)
	}
}

func TestRunNoArticles(t *testing.T) {
	tests := []struct {
		name string
		refs []models.ArticleReference
	}{
		{"empty feed", nil},
		{"all dropped", []models.ArticleReference{{Link: "x"}, {Link: "y"}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			chart := &fakeChart{}
			p := newTestPipeline(&fakeFetcher{refs: tc.refs}, chart, &fakeAudio{})
			_, err := p.Run(context.Background(), Request{Company: "Acme", GenerateAudio: true})
			if !errors.Is(err, ErrNoArticles) {
				t.Errorf("got %v, want ErrNoArticles", err)
			}
			if chart.calls != 0 {
				t.Error("nothing should be rendered without articles")
			}
		})
	}
}

func TestRunEmptyCompany(t *testing.T) {
	p := newTestPipeline(&fakeFetcher{}, nil, nil)
	if _, err := p.Run(context.Background(), Request{Company: "   "}); !errors.Is(err, ErrEmptyCompany) {
		t.Errorf("got %v, want ErrEmptyCompany", err)
	}
}

func TestNewFromConfigRejectsUnknownBackends(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	bad := *cfg
	bad.Classifier.Provider = "nope"
	if _, err := NewFromConfig(context.Background(), &bad, logger.Discard()); err == nil {
		t.Error("expected error for unknown classifier")
	}
	bad = *cfg
	bad.Cache.Backend = "memcached"
	if _, err := NewFromConfig(context.Background(), &bad, logger.Discard()); err == nil {
		t.Error("expected error for unknown cache backend")
	}
}

// TestNewFromConfigEndToEnd runs the real stages against local servers.
func TestNewFromConfigEndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/rss", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<?xml version="1.0"?><rss version="2.0"><channel><title>t</title>
<item><title>Acme soars</title><link>%[1]s/page</link><description>Acme shares surge</description></item>
<item><title>Acme probe</title><link>%[1]s/gone</link><description>Regulators open fraud probe</description></item>
</channel></rss>`, srv.URL)
	})
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Acme soars on record profit</title></head><body><article>
<p>Acme shares surge after record profit and strong growth.</p></article></body></html>`)
	})
	mux.HandleFunc("/gone", http.NotFound)
	mux.HandleFunc("/tts", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("mp3"))
	})

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	out := t.TempDir()
	cfg.Feed.URLTemplate = srv.URL + "/rss?q={query}"
	cfg.Article.PacingMs = 0
	cfg.Classifier.Provider = "lexicon"
	cfg.Speech.URL = srv.URL + "/tts"
	cfg.Output.ChartDir = out
	cfg.Output.AudioDir = filepath.Join(out, "audio")
	cfg.Cache.Backend = "memory"

	p, err := NewFromConfig(context.Background(), cfg, logger.Discard())
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	defer p.Close()

	res, err := p.Run(context.Background(), Request{Company: "Acme", GenerateAudio: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Articles) != 2 {
		t.Fatalf("got %d articles, want 2", len(res.Articles))
	}
	if res.Articles[0].Title != "Acme soars on record profit" {
		t.Errorf("first article title: %q", res.Articles[0].Title)
	}
	if res.Articles[1].Summary != "Regulators open fraud probe" {
		t.Errorf("degenerate article summary: %q", res.Articles[1].Summary)
	}
	if res.Articles[0].Sentiment.Label != models.Positive || res.Articles[1].Sentiment.Label != models.Negative {
		t.Errorf("labels: %s, %s", res.Articles[0].Sentiment.Label, res.Articles[1].Sentiment.Label)
	}
	if _, err := os.Stat(res.ChartFile); err != nil {
		t.Errorf("chart missing: %v", err)
	}
	if !strings.HasSuffix(res.AudioFile, ".mp3") {
		t.Errorf("audio file: %q", res.AudioFile)
	}
}
