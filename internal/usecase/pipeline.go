package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"TechNewsAgent/internal/domain"
	"TechNewsAgent/internal/logging"
	"TechNewsAgent/internal/metrics"
	"TechNewsAgent/internal/ports"
)

const noArticlesMessage = "No articles fetched"

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source     ports.ArticleSource
	Summarizer ports.Summarizer
	Sink       ports.ReportSink
	Digest     ports.Digest
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
	Now        func() time.Time
	NewRunID   func() string
}

// RunOptions selects the optional outputs of a run.
type RunOptions struct {
	Save  bool
	Print bool
}

// Pipeline implements the fetch, summarise and report workflow.
type Pipeline struct {
	source     ports.ArticleSource
	summarizer ports.Summarizer
	sink       ports.ReportSink
	digest     ports.Digest
	metrics    *metrics.Metrics
	logger     *slog.Logger
	now        func() time.Time
	newRunID   func() string
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		source:     deps.Source,
		summarizer: deps.Summarizer,
		sink:       deps.Sink,
		digest:     deps.Digest,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		now:        deps.Now,
		newRunID:   deps.NewRunID,
	}
	if p.logger == nil {
		p.logger = logging.Discard()
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.newRunID == nil {
		p.newRunID = func() string { return uuid.NewString() }
	}
	return p
}

// Run executes one full pipeline pass. It never panics and never returns an
// error: every failure is folded into the returned RunResult.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (result domain.RunResult) {
	runID := p.newRunID()
	logger := p.logger.With("run_id", runID)
	started := p.now()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("run panicked", "panic", r, "stack", string(debug.Stack()))
			result = domain.RunResult{RunID: runID, Status: domain.StatusError, Message: fmt.Sprint(r)}
		}
		p.metrics.ObserveRun(result, started, p.now())
		logger.Info("run finished", "status", result.Status, "duration", p.now().Sub(started).String())
	}()

	logger.Info("run started", "save", opts.Save, "print", opts.Print)
	result, err := p.run(ctx, opts, logger)
	result.RunID = runID
	if err != nil {
		logger.Error("run failed", "error", err)
		return domain.RunResult{RunID: runID, Status: domain.StatusError, Message: err.Error()}
	}
	return result
}

func (p *Pipeline) run(ctx context.Context, opts RunOptions, logger *slog.Logger) (domain.RunResult, error) {
	if p.source == nil || p.summarizer == nil {
		return domain.RunResult{}, fmt.Errorf("pipeline is not configured")
	}

	if p.digest != nil {
		p.digest.Banner(p.now())
	}

	articles, err := p.source.FetchAll(ctx)
	if err != nil {
		return domain.RunResult{}, fmt.Errorf("fetch articles: %w", err)
	}
	if len(articles) == 0 {
		logger.Warn("no articles fetched")
		if p.digest != nil {
			p.digest.NoArticles()
		}
		return domain.RunResult{Status: domain.StatusFailed, Message: noArticlesMessage}, nil
	}

	enriched := p.summarizer.Summarize(ctx, articles)
	report := domain.NewReport(p.now(), enriched)
	logger.Info("report assembled",
		"total", report.TotalArticles,
		"high", report.ImpactBreakdown.High,
		"medium", report.ImpactBreakdown.Medium,
		"low", report.ImpactBreakdown.Low)

	result := domain.RunResult{Status: domain.StatusSuccess, Report: &report}

	if opts.Save && p.sink != nil {
		path, err := p.sink.Save(ctx, report)
		if err != nil {
			return domain.RunResult{}, fmt.Errorf("save report: %w", err)
		}
		result.Path = path
		logger.Info("report saved", "path", path)
		if p.digest != nil {
			p.digest.Saved(path)
		}
	}

	if opts.Print && p.digest != nil {
		p.digest.Print(report)
	}

	return result, nil
}
