// Package render produces the artifacts of an analysis: an SVG pie chart of
// the sentiment distribution and a spoken rendition of the summary.
package render

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/seenimoa/newsense/pkg/models"
)

// DefaultChartFile is the chart filename; each run overwrites it.
const DefaultChartFile = "sentiment_distribution.svg"

// Slice colours.
const (
	ColorPositive = "#2ecc71"
	ColorNegative = "#e74c3c"
	ColorNeutral  = "#f1c40f"
	ColorOther    = "#95a5a6"
)

// LabelColor returns the fill colour of a label's slice.
func LabelColor(label models.Label) string {
	switch label {
	case models.Positive:
		return ColorPositive
	case models.Negative:
		return ColorNegative
	case models.Neutral:
		return ColorNeutral
	default:
		return ColorOther
	}
}

// ChartConfig holds rendering parameters for the pie chart.
type ChartConfig struct {
	Width     int    // SVG width in pixels (default: 600)
	Height    int    // SVG height in pixels (default: 420)
	BgColor   string // background color (default: "#ffffff")
	TextColor string // label color (default: "#333333")
	FontSize  int    // label font size (default: 13)
	Title     string // chart title
}

// DefaultChartConfig returns sensible defaults for chart rendering.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:     600,
		Height:    420,
		BgColor:   "#ffffff",
		TextColor: "#333333",
		FontSize:  13,
		Title:     "Sentiment Distribution Across Articles",
	}
}

// PieSlice is one label of the chart.
type PieSlice struct {
	Label   models.Label
	Count   int
	Percent float64
}

// slices orders the distribution POSITIVE, NEUTRAL, NEGATIVE, then any
// other labels alphabetically. Empty counts are skipped.
func slices(a *models.AggregateAnalysis) []PieSlice {
	rank := map[models.Label]int{models.Positive: 0, models.Neutral: 1, models.Negative: 2}
	out := make([]PieSlice, 0, len(a.Distribution))
	for label, count := range a.Distribution {
		if count <= 0 {
			continue
		}
		out = append(out, PieSlice{Label: label, Count: count, Percent: a.Percentages[label]})
	}
	sort.Slice(out, func(i, j int) bool {
		ri, iok := rank[out[i].Label]
		rj, jok := rank[out[j].Label]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return out[i].Label < out[j].Label
		}
	})
	return out
}

// PieChart renders the distribution of a as an SVG pie chart with one
// slice per label and percentage labels to one decimal.
func PieChart(a *models.AggregateAnalysis, cfg ChartConfig) string {
	if cfg.Width == 0 {
		title := cfg.Title
		cfg = DefaultChartConfig()
		if title != "" {
			cfg.Title = title
		}
	}
	if a == nil || len(slices(a)) == 0 {
		return emptySVG(cfg, "No sentiment data available")
	}
	parts := slices(a)

	total := 0
	for _, s := range parts {
		total += s.Count
	}

	cx := float64(cfg.Width) / 2
	cy := float64(cfg.Height)/2 + 15
	radius := math.Min(float64(cfg.Width), float64(cfg.Height)-60)/2 - 40

	var sb strings.Builder
	sb.WriteString(svgHeader(cfg))
	sb.WriteString(fmt.Sprintf(`<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`,
		cfg.Width, cfg.Height, cfg.BgColor))
	sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="28" font-size="16" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
		cx, cfg.TextColor, escapeXML(cfg.Title)))

	if len(parts) == 1 {
		// A full circle cannot be drawn as a single arc.
		s := parts[0]
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" stroke="#ffffff" stroke-width="2"/>`,
			cx, cy, radius, LabelColor(s.Label)))
		sb.WriteString(sliceLabels(cfg, s, cx, cy+radius*0.1, cx, cy-radius-10))
		sb.WriteString("</svg>")
		return sb.String()
	}

	// Slices run clockwise from 12 o'clock.
	angle := -math.Pi / 2
	for _, s := range parts {
		sweep := 2 * math.Pi * float64(s.Count) / float64(total)
		end := angle + sweep
		x1, y1 := cx+radius*math.Cos(angle), cy+radius*math.Sin(angle)
		x2, y2 := cx+radius*math.Cos(end), cy+radius*math.Sin(end)
		largeArc := 0
		if sweep > math.Pi {
			largeArc = 1
		}
		sb.WriteString(fmt.Sprintf(`<path d="M%.1f,%.1f L%.1f,%.1f A%.1f,%.1f 0 %d,1 %.1f,%.1f Z" fill="%s" stroke="#ffffff" stroke-width="2"/>`,
			cx, cy, x1, y1, radius, radius, largeArc, x2, y2, LabelColor(s.Label)))

		mid := angle + sweep/2
		sb.WriteString(sliceLabels(cfg, s,
			cx+radius*0.6*math.Cos(mid), cy+radius*0.6*math.Sin(mid),
			cx+(radius+22)*math.Cos(mid), cy+(radius+22)*math.Sin(mid)))
		angle = end
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// sliceLabels draws the percentage inside a slice and its label outside.
func sliceLabels(cfg ChartConfig, s PieSlice, px, py, lx, ly float64) string {
	anchor := "middle"
	switch {
	case lx < float64(cfg.Width)/2-5:
		anchor = "end"
	case lx > float64(cfg.Width)/2+5:
		anchor = "start"
	}
	return fmt.Sprintf(`<text x="%.1f" y="%.1f" font-size="%d" fill="#ffffff" font-weight="bold" text-anchor="middle">%.1f%%</text>`,
		px, py+4, cfg.FontSize, s.Percent) +
		fmt.Sprintf(`<text x="%.1f" y="%.1f" font-size="%d" fill="%s" text-anchor="%s">%s</text>`,
			lx, ly+4, cfg.FontSize, cfg.TextColor, anchor, escapeXML(string(s.Label)))
}

// ChartRenderer writes the pie chart to a fixed file.
type ChartRenderer struct {
	dir  string
	file string
	cfg  ChartConfig
}

// NewChartRenderer creates a renderer writing dir/file.
func NewChartRenderer(dir, file string) *ChartRenderer {
	if dir == "" {
		dir = "."
	}
	if file == "" {
		file = DefaultChartFile
	}
	return &ChartRenderer{dir: dir, file: file, cfg: DefaultChartConfig()}
}

// Path is where the chart is written.
func (r *ChartRenderer) Path() string {
	return filepath.Join(r.dir, r.file)
}

// RenderChart writes the chart for a and returns its path.
func (r *ChartRenderer) RenderChart(a *models.AggregateAnalysis) (string, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("create chart dir: %w", err)
	}
	path := r.Path()
	if err := writeFileAtomic(path, []byte(PieChart(a, r.cfg))); err != nil {
		return "", fmt.Errorf("write chart: %w", err)
	}
	return path, nil
}

// writeFileAtomic writes data next to path and renames it into place, so
// readers never see a partial file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ════════════════════════════════════════════════════════════════════
// SVG Helpers
// ════════════════════════════════════════════════════════════════════

func svgHeader(cfg ChartConfig) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height)
}

func emptySVG(cfg ChartConfig, msg string) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><rect width="%d" height="%d" fill="#f5f5f5"/><text x="%d" y="%d" text-anchor="middle" fill="#999" font-size="14">%s</text></svg>`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height, cfg.Width/2, cfg.Height/2, escapeXML(msg))
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}
