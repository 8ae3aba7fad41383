package models

import "time"

// ArticleReference is a single candidate item taken from a news search feed.
type ArticleReference struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description"`
}

// Article is a resolved news article. When the page could not be extracted
// the fields are filled from the ArticleReference it came from.
type Article struct {
	Title       string            `json:"title"`
	URL         string            `json:"url"`
	Summary     string            `json:"summary"`
	Content     string            `json:"content"`
	PublishDate *time.Time        `json:"publish_date"`
	Authors     []string          `json:"authors"`
	Sentiment   *ArticleSentiment `json:"sentiment,omitempty"`
}
