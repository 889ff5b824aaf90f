package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"TechNewsAgent/internal/domain"
)

type searchCall struct {
	keyword string
	from    time.Time
	limit   int
}

type fakeSearcher struct {
	results map[string][]domain.RawArticle
	errs    map[string]error
	calls   []searchCall
}

func (f *fakeSearcher) Search(_ context.Context, keyword string, from time.Time, limit int) ([]domain.RawArticle, error) {
	f.calls = append(f.calls, searchCall{keyword: keyword, from: from, limit: limit})
	if err := f.errs[keyword]; err != nil {
		return nil, err
	}
	return f.results[keyword], nil
}

var fixedNow = time.Date(2025, time.March, 4, 8, 0, 0, 0, time.UTC)

func TestFetchAllQueriesKeywordsInOrder(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{}
	fetcher := NewFetcher(FetcherDeps{
		Searcher:     searcher,
		Keywords:     []string{"AI", "software", "cloud"},
		LookbackDays: 7,
		MaxPerQuery:  5,
		Now:          func() time.Time { return fixedNow },
	})

	if _, err := fetcher.FetchAll(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if len(searcher.calls) != 3 {
		t.Fatalf("expected 3 queries, got %d", len(searcher.calls))
	}
	wantFrom := time.Date(2025, time.February, 25, 8, 0, 0, 0, time.UTC)
	for i, kw := range []string{"AI", "software", "cloud"} {
		call := searcher.calls[i]
		if call.keyword != kw {
			t.Fatalf("call %d keyword = %s, want %s", i, call.keyword, kw)
		}
		if !call.from.Equal(wantFrom) || call.limit != 5 {
			t.Fatalf("call %d unexpected window %+v", i, call)
		}
	}
}

func TestFetchAllSkipsFailingKeyword(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{
		results: map[string][]domain.RawArticle{
			"AI":    {{Title: "a", URL: "https://a"}},
			"cloud": {{Title: "c", URL: "https://c"}},
		},
		errs: map[string]error{"software": errors.New("connection reset")},
	}
	fetcher := NewFetcher(FetcherDeps{
		Searcher:    searcher,
		Keywords:    []string{"AI", "software", "cloud"},
		MaxPerQuery: 5,
	})

	articles, err := fetcher.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("fetch should not fail on a single keyword: %v", err)
	}
	if len(articles) != 2 || articles[0].URL != "https://a" || articles[1].URL != "https://c" {
		t.Fatalf("unexpected articles %+v", articles)
	}
}

func TestFetchAllDeduplicatesLastWins(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{
		results: map[string][]domain.RawArticle{
			"AI":       {{Title: "first", Source: "Wired", URL: "https://same"}, {Title: "other", URL: "https://other"}},
			"security": {{Title: "second", Source: "Ars", URL: "https://same"}},
		},
	}
	fetcher := NewFetcher(FetcherDeps{
		Searcher:    searcher,
		Keywords:    []string{"AI", "security"},
		MaxPerQuery: 5,
	})

	articles, err := fetcher.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 unique articles, got %d", len(articles))
	}

	var same domain.RawArticle
	for _, a := range articles {
		if a.URL == "https://same" {
			same = a
		}
	}
	if same.Title != "second" || same.Source != "Ars" {
		t.Fatalf("expected the later duplicate to win, got %+v", same)
	}
}

func TestFetchAllAllKeywordsFailing(t *testing.T) {
	t.Parallel()

	boom := errors.New("401")
	searcher := &fakeSearcher{errs: map[string]error{"AI": boom, "cloud": boom}}
	fetcher := NewFetcher(FetcherDeps{Searcher: searcher, Keywords: []string{"AI", "cloud"}, MaxPerQuery: 5})

	articles, err := fetcher.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(articles) != 0 {
		t.Fatalf("expected no articles, got %d", len(articles))
	}
}

func TestFetchAllStopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	searcher := &fakeSearcher{}
	fetcher := NewFetcher(FetcherDeps{Searcher: searcher, Keywords: []string{"AI"}, MaxPerQuery: 5})
	if _, err := fetcher.FetchAll(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
	if len(searcher.calls) != 0 {
		t.Fatalf("no query should be issued after cancellation")
	}
}
