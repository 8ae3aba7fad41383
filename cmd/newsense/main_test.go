package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/seenimoa/newsense/internal/pipeline"
	"github.com/seenimoa/newsense/pkg/models"
)

func TestWriteTableAlignsWideCharacters(t *testing.T) {
	var buf bytes.Buffer
	writeTable(&buf, []string{"Title", "Score"}, [][]string{
		{"Acme", "0.90"},
		{"株価が上昇", "0.75"},
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), buf.String())
	}
	want := runewidth.StringWidth(lines[0])
	for i, l := range lines {
		if got := runewidth.StringWidth(l); got != want {
			t.Errorf("line %d width %d, want %d: %q", i, got, want, l)
		}
	}
	if !strings.HasPrefix(lines[1], "| ---") {
		t.Errorf("separator row: %q", lines[1])
	}
}

func TestWriteReport(t *testing.T) {
	res := &pipeline.Result{
		Company: "Acme",
		Articles: []models.Article{
			{Title: strings.Repeat("long title ", 10), Sentiment: &models.ArticleSentiment{Label: models.Positive, Score: 0.82}},
			{Title: "unscored"},
		},
		Analysis: &models.AggregateAnalysis{
			OverallTrend: models.Positive,
			AverageScore: 0.82,
			Summary:      "Analysis of 2 articles shows 50.0% POSITIVE sentiment.",
		},
		ChartFile: "sentiment_distribution.svg",
		Duration:  1500 * time.Millisecond,
	}

	var buf bytes.Buffer
	writeReport(&buf, res)
	out := buf.String()

	for _, want := range []string{
		"Acme — 2 articles (1.5s)",
		"POSITIVE",
		"0.82",
		"Overall trend:  POSITIVE (average 0.820)",
		"Chart:          sentiment_distribution.svg",
		"…",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Audio:") {
		t.Error("no audio line expected without an audio file")
	}
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)
	if !strings.Contains(buf.String(), "newsense dev") {
		t.Errorf("version output: %q", buf.String())
	}
}
