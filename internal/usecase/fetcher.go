package usecase

import (
	"context"
	"log/slog"
	"time"

	"TechNewsAgent/internal/domain"
	"TechNewsAgent/internal/metrics"
	"TechNewsAgent/internal/ports"
)

// FetcherDeps wires the news provider and fetch settings into the Fetcher.
type FetcherDeps struct {
	Searcher     ports.NewsSearcher
	Keywords     []string
	LookbackDays int
	MaxPerQuery  int
	Metrics      *metrics.Metrics
	Logger       *slog.Logger
	Now          func() time.Time
}

// Fetcher implements ArticleSource by querying every keyword in order and
// merging the results by URL.
type Fetcher struct {
	searcher     ports.NewsSearcher
	keywords     []string
	lookbackDays int
	maxPerQuery  int
	metrics      *metrics.Metrics
	logger       *slog.Logger
	now          func() time.Time
}

var _ ports.ArticleSource = (*Fetcher)(nil)

// NewFetcher constructs the fetch stage.
func NewFetcher(deps FetcherDeps) *Fetcher {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Fetcher{
		searcher:     deps.Searcher,
		keywords:     deps.Keywords,
		lookbackDays: deps.LookbackDays,
		maxPerQuery:  deps.MaxPerQuery,
		metrics:      deps.Metrics,
		logger:       deps.Logger,
		now:          now,
	}
}

// FetchAll queries keywords sequentially. A failing keyword contributes no
// articles. When two keywords return the same URL the later result replaces
// the earlier one in place, so each URL appears once at its first position.
func (f *Fetcher) FetchAll(ctx context.Context) ([]domain.RawArticle, error) {
	if f.searcher == nil {
		return nil, nil
	}

	from := f.now().AddDate(0, 0, -f.lookbackDays)

	var (
		merged     []domain.RawArticle
		position   = map[string]int{}
		duplicates int
	)
	for _, keyword := range f.keywords {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		results, err := f.searcher.Search(ctx, keyword, from, f.maxPerQuery)
		if err != nil {
			f.warn("keyword fetch failed", "keyword", keyword, "error", err)
			f.metrics.KeywordFailed(keyword)
			continue
		}
		f.debug("keyword fetched", "keyword", keyword, "count", len(results))

		for _, article := range results {
			if idx, ok := position[article.URL]; ok {
				merged[idx] = article
				duplicates++
				continue
			}
			position[article.URL] = len(merged)
			merged = append(merged, article)
		}
	}

	f.metrics.ObserveFetch(len(merged), duplicates)
	f.info("fetch complete", "keywords", len(f.keywords), "unique_articles", len(merged), "duplicates", duplicates)
	return merged, nil
}

func (f *Fetcher) debug(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}

func (f *Fetcher) info(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Info(msg, args...)
	}
}

func (f *Fetcher) warn(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Warn(msg, args...)
	}
}
