package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/seenimoa/newsense/internal/pipeline"
)

const maxTitleWidth = 60

// writeReport prints a human-readable analysis: one row per article,
// then the aggregate and artifact locations.
func writeReport(w io.Writer, res *pipeline.Result) {
	fmt.Fprintf(w, "📰 %s — %d articles (%s)\n\n", res.Company, len(res.Articles), res.Duration.Round(time.Millisecond))

	header := []string{"#", "Title", "Sentiment", "Score"}
	rows := make([][]string, 0, len(res.Articles))
	for i, a := range res.Articles {
		label, score := "-", "-"
		if a.Sentiment != nil {
			label = string(a.Sentiment.Label)
			score = fmt.Sprintf("%.2f", a.Sentiment.Score)
		}
		rows = append(rows, []string{
			fmt.Sprint(i + 1),
			runewidth.Truncate(a.Title, maxTitleWidth, "…"),
			label,
			score,
		})
	}
	writeTable(w, header, rows)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Overall trend:  %s (average %.3f)\n", res.Analysis.OverallTrend, res.Analysis.AverageScore)
	fmt.Fprintf(w, "Summary:        %s\n", res.Analysis.Summary)
	if res.ChartFile != "" {
		fmt.Fprintf(w, "Chart:          %s\n", res.ChartFile)
	}
	if res.AudioFile != "" {
		fmt.Fprintf(w, "Audio:          %s\n", res.AudioFile)
	}
}

// writeTable renders a markdown-style table padded by display width, so
// wide characters in titles stay aligned.
func writeTable(w io.Writer, header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if n := runewidth.StringWidth(row[i]); n > widths[i] {
				widths[i] = n
			}
		}
	}

	line := func(cells []string) {
		var sb strings.Builder
		sb.WriteString("|")
		for i, width := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			sb.WriteString(" ")
			sb.WriteString(runewidth.FillRight(cell, width))
			sb.WriteString(" |")
		}
		fmt.Fprintln(w, sb.String())
	}

	line(header)
	sep := make([]string, len(widths))
	for i, width := range widths {
		sep[i] = strings.Repeat("-", width)
	}
	line(sep)
	for _, row := range rows {
		line(row)
	}
}
