package news

import (
	"bytes"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// extraction is what could be read out of an article page.
type extraction struct {
	Title       string
	Text        string
	PublishDate *time.Time
	Authors     []string
}

// noiseSelectors are removed before any text is read from a page.
const noiseSelectors = "script, style, noscript, nav, footer, aside, header, form, iframe"

// paragraphSelectors are tried in order; the first that yields text wins.
var paragraphSelectors = []string{"article p", "main p", "[itemprop=articleBody] p", "body p"}

var dateMetaSelectors = []string{
	`meta[property="article:published_time"]`,
	`meta[name="article:published_time"]`,
	`meta[itemprop="datePublished"]`,
	`meta[name="pubdate"]`,
	`meta[name="publishdate"]`,
	`meta[name="date"]`,
	`meta[name="DC.date.issued"]`,
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
}

// extract parses an HTML page into its article fields.
func extract(page []byte) (*extraction, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, err
	}

	// Metadata lives in <head>, read it before noise removal.
	ex := &extraction{
		Title:       extractTitle(doc),
		PublishDate: extractPublishDate(doc),
		Authors:     extractAuthors(doc),
	}

	doc.Find(noiseSelectors).Remove()
	ex.Text = extractText(doc)
	return ex, nil
}

func extractTitle(doc *goquery.Document) string {
	if v, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		if t := collapseSpace(v); t != "" {
			return t
		}
	}
	if t := collapseSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	return collapseSpace(doc.Find("h1").First().Text())
}

func extractText(doc *goquery.Document) string {
	for _, sel := range paragraphSelectors {
		var paras []string
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if p := collapseSpace(s.Text()); p != "" {
				paras = append(paras, p)
			}
		})
		if len(paras) > 0 {
			return strings.Join(paras, "\n\n")
		}
	}
	return ""
}

func extractPublishDate(doc *goquery.Document) *time.Time {
	for _, sel := range dateMetaSelectors {
		if v, ok := doc.Find(sel).First().Attr("content"); ok {
			if t := parseDate(v); t != nil {
				return t
			}
		}
	}
	var found *time.Time
	doc.Find("time[datetime]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		v, _ := s.Attr("datetime")
		found = parseDate(v)
		return found == nil
	})
	return found
}

func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func extractAuthors(doc *goquery.Document) []string {
	var candidates []string
	doc.Find(`meta[name="author"], meta[property="article:author"], meta[name="article:author"]`).Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr("content"); ok {
			candidates = append(candidates, strings.Split(v, ",")...)
		}
	})
	doc.Find(`[rel="author"], [itemprop="author"]`).Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr("content"); ok {
			candidates = append(candidates, v)
			return
		}
		if name := s.Find(`[itemprop="name"]`).First(); name.Length() > 0 {
			candidates = append(candidates, name.Text())
			return
		}
		candidates = append(candidates, s.Text())
	})

	seen := make(map[string]bool)
	authors := []string{}
	for _, c := range candidates {
		name := cleanAuthor(c)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		authors = append(authors, name)
	}
	return authors
}

// cleanAuthor normalises a byline. Profile URLs are not names.
func cleanAuthor(s string) string {
	s = collapseSpace(s)
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return ""
	}
	if len(s) > 3 && strings.EqualFold(s[:3], "by ") {
		s = strings.TrimSpace(s[3:])
	}
	if len(s) > 80 {
		return ""
	}
	return s
}
