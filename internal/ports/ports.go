package ports

import (
	"context"
	"time"

	"TechNewsAgent/internal/domain"
)

// NewsSearcher queries the news provider for a single keyword.
type NewsSearcher interface {
	Search(ctx context.Context, keyword string, from time.Time, limit int) ([]domain.RawArticle, error)
}

// ArticleSource returns every unique article for the configured keywords.
type ArticleSource interface {
	FetchAll(ctx context.Context) ([]domain.RawArticle, error)
}

// CompletionRequest is one chat-style completion call.
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// CompletionClient sends prompts to a language-model provider and returns raw text.
type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Summarizer enriches raw articles, one output per input.
type Summarizer interface {
	Summarize(ctx context.Context, articles []domain.RawArticle) []domain.EnrichedArticle
}

// ReportSink persists a report and returns where it was written.
type ReportSink interface {
	Save(ctx context.Context, report domain.Report) (string, error)
}

// Digest renders run progress and a human-readable summary of a report.
type Digest interface {
	Banner(at time.Time)
	NoArticles()
	Saved(path string)
	Print(report domain.Report)
}

// Scheduler invokes job on every trigger until ctx is done.
type Scheduler interface {
	Run(ctx context.Context, job func(context.Context, time.Time)) error
}
