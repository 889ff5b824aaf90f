package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"TechNewsAgent/internal/domain"
	"TechNewsAgent/internal/metrics"
	"TechNewsAgent/internal/ports"
)

const (
	systemInstruction = "You are a tech industry analyst. Always respond with valid JSON."

	promptTemplate = `You are a tech industry analyst. Analyze the following article and provide:
1. A concise 2-3 sentence summary
2. Business impact (HIGH/MEDIUM/LOW) with explanation
3. Key takeaways (2-3 bullet points)

Article Title: %s
Article Content: %s

Respond in JSON format with keys: summary, business_impact, impact_explanation, key_takeaways (array)`

	removedPlaceholder = "[Removed]"

	unavailableSummary  = "Unable to generate summary - content not available"
	unparsedExplanation = "Unable to parse response"
	failedExplanation   = "Processing error"
)

// SummarizerDeps wires a completion client into the Summarizer.
type SummarizerDeps struct {
	Client       ports.CompletionClient
	Model        string
	Temperature  float64
	MaxTokens    int
	ContentLimit int
	Out          io.Writer
	Metrics      *metrics.Metrics
	Logger       *slog.Logger
}

// ModelSummarizer asks the language model for one analysis per article,
// strictly in input order. Failures never stop the batch.
type ModelSummarizer struct {
	client       ports.CompletionClient
	model        string
	temperature  float64
	maxTokens    int
	contentLimit int
	out          io.Writer
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

var _ ports.Summarizer = (*ModelSummarizer)(nil)

// NewSummarizer constructs the summarise stage.
func NewSummarizer(deps SummarizerDeps) *ModelSummarizer {
	out := deps.Out
	if out == nil {
		out = io.Discard
	}
	limit := deps.ContentLimit
	if limit <= 0 {
		limit = 2000
	}
	return &ModelSummarizer{
		client:       deps.Client,
		model:        deps.Model,
		temperature:  deps.Temperature,
		maxTokens:    deps.MaxTokens,
		contentLimit: limit,
		out:          out,
		metrics:      deps.Metrics,
		logger:       deps.Logger,
	}
}

// Summarize returns exactly one enriched article per input article.
func (s *ModelSummarizer) Summarize(ctx context.Context, articles []domain.RawArticle) []domain.EnrichedArticle {
	fmt.Fprintf(s.out, "\nSummarizing %d articles using %s...\n\n", len(articles), s.model)

	enriched := make([]domain.EnrichedArticle, 0, len(articles))
	for i, article := range articles {
		fmt.Fprintf(s.out, "Processing article %d/%d: %s...\n", i+1, len(articles), truncateRunes(article.Title, 60))
		enriched = append(enriched, s.summarizeOne(ctx, article))
	}

	fmt.Fprint(s.out, "\nAll articles summarized\n\n")
	return enriched
}

func (s *ModelSummarizer) summarizeOne(ctx context.Context, article domain.RawArticle) domain.EnrichedArticle {
	if article.Content == "" || article.Content == removedPlaceholder {
		s.metrics.SummaryOutcome(metrics.OutcomeSkipped)
		s.debug("content unavailable", "url", article.URL)
		return domain.EnrichedArticle{
			RawArticle:     article,
			Summary:        unavailableSummary,
			BusinessImpact: domain.ImpactUnavailable,
			KeyTakeaways:   []string{},
		}
	}

	reply, err := s.complete(ctx, article)
	if err != nil {
		return s.failed(article, err)
	}

	parsed := ParseAnalysis(reply)
	switch parsed.Status {
	case ParseNotObject:
		return s.failed(article, parsed.Err())
	case ParseMalformed:
		s.metrics.SummaryOutcome(metrics.OutcomeParseError)
		s.warn("model reply is not valid JSON", "url", article.URL)
		return domain.EnrichedArticle{
			RawArticle:        article,
			Summary:           parsed.Raw,
			BusinessImpact:    domain.ImpactMedium,
			ImpactExplanation: unparsedExplanation,
			KeyTakeaways:      []string{},
		}
	}

	s.metrics.SummaryOutcome(metrics.OutcomeOK)
	return domain.EnrichedArticle{
		RawArticle:        article,
		Summary:           parsed.Analysis.Summary,
		BusinessImpact:    parsed.Analysis.BusinessImpact,
		ImpactExplanation: parsed.Analysis.ImpactExplanation,
		KeyTakeaways:      parsed.Analysis.KeyTakeaways,
	}
}

// failed builds the record for a call that did not yield a usable object.
func (s *ModelSummarizer) failed(article domain.RawArticle, err error) domain.EnrichedArticle {
	s.metrics.SummaryOutcome(metrics.OutcomeRequestError)
	s.logError("summarize article", "url", article.URL, "error", err)
	fmt.Fprintf(s.out, "Error summarizing article: %v\n", err)
	return domain.EnrichedArticle{
		RawArticle:        article,
		Summary:           "Error: " + err.Error(),
		BusinessImpact:    domain.ImpactUnknown,
		ImpactExplanation: failedExplanation,
		KeyTakeaways:      []string{},
	}
}

// complete converts a panicking client into an ordinary request failure.
func (s *ModelSummarizer) complete(ctx context.Context, article domain.RawArticle) (reply string, err error) {
	if s.client == nil {
		return "", fmt.Errorf("completion client is not configured")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()

	return s.client.Complete(ctx, ports.CompletionRequest{
		System:      systemInstruction,
		Prompt:      BuildPrompt(article.Title, truncateRunes(article.Content, s.contentLimit)),
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	})
}

// BuildPrompt renders the analysis instructions for one article.
func BuildPrompt(title, content string) string {
	return fmt.Sprintf(promptTemplate, title, content)
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func (s *ModelSummarizer) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *ModelSummarizer) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func (s *ModelSummarizer) logError(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Error(msg, args...)
	}
}
