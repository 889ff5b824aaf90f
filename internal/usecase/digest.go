package usecase

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"TechNewsAgent/internal/domain"
	"TechNewsAgent/internal/ports"
)

const (
	digestWidth    = 80
	digestTopHigh  = 5
	summaryPreview = 150
	impactPreview  = 100
)

// ConsoleDigest prints run banners and report summaries for a human reader.
type ConsoleDigest struct {
	out io.Writer
}

var _ ports.Digest = (*ConsoleDigest)(nil)

// NewConsoleDigest writes to out, or stdout when out is nil.
func NewConsoleDigest(out io.Writer) *ConsoleDigest {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleDigest{out: out}
}

// Banner announces the start of a run.
func (d *ConsoleDigest) Banner(at time.Time) {
	rule := strings.Repeat("=", digestWidth)
	fmt.Fprintln(d.out, rule)
	fmt.Fprintln(d.out, "TECH NEWS AGENT - DAILY BRIEFING")
	fmt.Fprintf(d.out, "Generated: %s\n", at.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(d.out, rule)
}

// NoArticles reports an empty fetch.
func (d *ConsoleDigest) NoArticles() {
	fmt.Fprintln(d.out, "\nNo articles found. Exiting.")
}

// Saved reports where the report file was written.
func (d *ConsoleDigest) Saved(path string) {
	fmt.Fprintf(d.out, "\nReport saved to: %s\n", path)
}

// Print writes bucket counts and up to five HIGH impact articles.
func (d *ConsoleDigest) Print(report domain.Report) {
	rule := strings.Repeat("=", digestWidth)
	thin := strings.Repeat("-", digestWidth)

	fmt.Fprintf(d.out, "\n%s\n", rule)
	fmt.Fprintln(d.out, "REPORT SUMMARY")
	fmt.Fprintln(d.out, rule)

	fmt.Fprintf(d.out, "\nTotal Articles Processed: %d\n", report.TotalArticles)
	fmt.Fprintf(d.out, "  HIGH Impact: %d\n", report.ImpactBreakdown.High)
	fmt.Fprintf(d.out, "  MEDIUM Impact: %d\n", report.ImpactBreakdown.Medium)
	fmt.Fprintf(d.out, "  LOW Impact: %d\n", report.ImpactBreakdown.Low)

	fmt.Fprintf(d.out, "\n%s\n", thin)
	fmt.Fprintln(d.out, "HIGH IMPACT ARTICLES")
	fmt.Fprintln(d.out, thin)

	high := report.ArticlesByImpact.High
	if len(high) == 0 {
		fmt.Fprintln(d.out, "No high impact articles found.")
	}
	if len(high) > digestTopHigh {
		high = high[:digestTopHigh]
	}
	for i, article := range high {
		fmt.Fprintf(d.out, "\n%d. %s\n", i+1, orDefault(article.Title, "Unknown"))
		fmt.Fprintf(d.out, "   Source: %s\n", orDefault(article.Source, "Unknown"))
		fmt.Fprintf(d.out, "   Summary: %s...\n", truncateRunes(article.Summary, summaryPreview))
		fmt.Fprintf(d.out, "   Impact: %s...\n", truncateRunes(article.ImpactExplanation, impactPreview))
		fmt.Fprintf(d.out, "   URL: %s\n", orDefault(article.URL, "N/A"))
	}

	fmt.Fprintf(d.out, "\n%s\n", rule)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
