package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"TechNewsAgent/internal/domain"
	"TechNewsAgent/internal/ports"
)

const reportPrefix = "tech_news_report_"

// ReportFileSink writes one pretty-printed JSON report per calendar day.
type ReportFileSink struct {
	dir string
}

var _ ports.ReportSink = (*ReportFileSink)(nil)

// NewReportFileSink stores reports under dir, which is created on first save.
func NewReportFileSink(dir string) *ReportFileSink {
	if dir == "" {
		dir = "output"
	}
	return &ReportFileSink{dir: dir}
}

// ReportPath returns the file a report generated on day is written to.
func (s *ReportFileSink) ReportPath(day string) string {
	return filepath.Join(s.dir, reportPrefix+day+".json")
}

// Save serialises the report, overwriting an earlier report from the same day.
func (s *ReportFileSink) Save(ctx context.Context, report domain.Report) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}

	path := s.ReportPath(report.Timestamp.Format("2006-01-02"))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write report %s: %w", path, err)
	}

	return path, nil
}
