package news

import (
	"strings"

	"github.com/seenimoa/newsense/pkg/models"
)

// firstNonEmpty returns the first value that is not blank.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func resolveTitle(extracted string, ref models.ArticleReference) string {
	return firstNonEmpty(extracted, ref.Title)
}

func resolveSummary(extracted string, ref models.ArticleReference) string {
	return firstNonEmpty(extracted, ref.Description)
}

// buildArticle merges a page extraction with its feed reference.
func buildArticle(ref models.ArticleReference, ex *extraction, summary string) models.Article {
	authors := ex.Authors
	if authors == nil {
		authors = []string{}
	}
	return models.Article{
		Title:       resolveTitle(ex.Title, ref),
		URL:         ref.Link,
		Summary:     resolveSummary(summary, ref),
		Content:     ex.Text,
		PublishDate: ex.PublishDate,
		Authors:     authors,
	}
}

// degenerateArticle builds an article from the feed data alone. It reports
// false when the reference lacks a title or a description.
func degenerateArticle(ref models.ArticleReference) (models.Article, bool) {
	if strings.TrimSpace(ref.Title) == "" || strings.TrimSpace(ref.Description) == "" {
		return models.Article{}, false
	}
	return models.Article{
		Title:   ref.Title,
		URL:     ref.Link,
		Summary: ref.Description,
		Content: ref.Description,
		Authors: []string{},
	}, true
}
