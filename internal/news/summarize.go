package news

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/didasy/tldr"
)

// ErrNothingToSummarize is returned when the text has no usable sentences.
var ErrNothingToSummarize = errors.New("news: nothing to summarize")

// DefaultSummarySentences is the summary length used when none is configured.
const DefaultSummarySentences = 5

// Summarizer builds extractive summaries with a LexRank-style sentence
// graph (github.com/didasy/tldr). The selected sentences are returned in
// their original order.
type Summarizer struct {
	sentences int
}

// NewSummarizer returns a summarizer keeping n sentences.
func NewSummarizer(n int) *Summarizer {
	if n <= 0 {
		n = DefaultSummarySentences
	}
	return &Summarizer{sentences: n}
}

// Summarize returns the summary of text. Text of at most n sentences is
// returned whole.
func (s *Summarizer) Summarize(text string) (string, error) {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return "", ErrNothingToSummarize
	}
	if len(sentences) <= s.sentences {
		return strings.Join(sentences, " "), nil
	}

	// A Bag holds per-text state; one per call.
	picked, err := tldr.New().Summarize(strings.Join(sentences, " "), s.sentences)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}

	idx := matchSentences(sentences, picked)
	if len(idx) == 0 {
		return "", ErrNothingToSummarize
	}
	if len(idx) > s.sentences {
		idx = idx[:s.sentences]
	}
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = sentences[j]
	}
	return strings.Join(out, " "), nil
}

// matchSentences maps summary sentences back to positions in sentences,
// ascending and without duplicates.
func matchSentences(sentences, picked []string) []int {
	seen := make(map[int]bool, len(picked))
	var idx []int
	for _, p := range picked {
		p = collapseSpace(p)
		if p == "" {
			continue
		}
		for i, sent := range sentences {
			if seen[i] {
				continue
			}
			if strings.Contains(sent, p) || strings.Contains(p, sent) {
				seen[i] = true
				idx = append(idx, i)
				break
			}
		}
	}
	sort.Ints(idx)
	return idx
}

// splitSentences breaks text at terminal punctuation followed by whitespace.
// Fragments shorter than three words are discarded.
func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder
	runes := []rune(text)
	flush := func() {
		sent := collapseSpace(b.String())
		b.Reset()
		if len(strings.Fields(sent)) >= 3 {
			sentences = append(sentences, sent)
		}
	}
	for i, r := range runes {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
				flush()
			}
		} else if r == '\n' && i+1 < len(runes) && runes[i+1] == '\n' {
			flush()
		}
	}
	flush()
	return sentences
}
