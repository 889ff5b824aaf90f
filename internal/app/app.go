package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"TechNewsAgent/internal/config"
	"TechNewsAgent/internal/domain"
	"TechNewsAgent/internal/infrastructure/llm"
	"TechNewsAgent/internal/infrastructure/newsapi"
	"TechNewsAgent/internal/infrastructure/scheduler"
	"TechNewsAgent/internal/infrastructure/storage"
	"TechNewsAgent/internal/logging"
	"TechNewsAgent/internal/metrics"
	"TechNewsAgent/internal/ports"
	"TechNewsAgent/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	metrics  *metrics.Metrics
	pipeline *usecase.Pipeline
	closers  []io.Closer
}

// New validates cfg and builds every adapter. Configuration errors, such as a
// missing credential, are returned before any network call is made.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger, out io.Writer) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	if out == nil {
		out = os.Stdout
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	searcher, err := newsapi.NewClient(cfg.News, nil)
	if err != nil {
		return nil, fmt.Errorf("news client: %w", err)
	}

	completion, closer, err := newCompletionClient(ctx, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("completion client: %w", err)
	}

	a := &Application{
		cfg:     cfg,
		logger:  baseLogger,
		metrics: metrics.New(),
	}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}

	loc := cfg.Scheduler.Location()
	now := func() time.Time { return time.Now().In(loc) }

	fetcher := usecase.NewFetcher(usecase.FetcherDeps{
		Searcher:     searcher,
		Keywords:     cfg.KeywordNames(),
		LookbackDays: cfg.News.LookbackDays,
		MaxPerQuery:  cfg.News.MaxArticlesPerKeyword,
		Metrics:      a.metrics,
		Logger:       baseLogger.With("component", "fetcher"),
		Now:          now,
	})

	summarizer := usecase.NewSummarizer(usecase.SummarizerDeps{
		Client:       completion,
		Model:        cfg.LLM.Model,
		Temperature:  cfg.LLM.Temperature,
		MaxTokens:    cfg.LLM.MaxTokens,
		ContentLimit: cfg.LLM.ContentLimit,
		Out:          out,
		Metrics:      a.metrics,
		Logger:       baseLogger.With("component", "summarizer"),
	})

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Source:     fetcher,
		Summarizer: summarizer,
		Sink:       storage.NewReportFileSink(cfg.Output.Dir),
		Digest:     usecase.NewConsoleDigest(out),
		Metrics:    a.metrics,
		Logger:     baseLogger.With("component", "pipeline"),
		Now:        now,
	})

	return a, nil
}

func newCompletionClient(ctx context.Context, cfg config.LLMConfig) (ports.CompletionClient, io.Closer, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		client, err := llm.NewGeminiClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return client, client, nil
	case config.ProviderOpenAI:
		client, err := llm.NewChatGPTClient(cfg, nil)
		if err != nil {
			return nil, nil, err
		}
		return client, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// RunOnce performs a single pipeline execution.
func (a *Application) RunOnce(ctx context.Context, opts usecase.RunOptions) domain.RunResult {
	return a.pipeline.Run(ctx, opts)
}

// Schedule runs the pipeline on every cron activation until ctx is done. When
// a metrics address is configured, /metrics and /health are served alongside.
func (a *Application) Schedule(ctx context.Context, opts usecase.RunOptions) error {
	driver, err := scheduler.NewCronScheduler(
		a.cfg.Scheduler.CronExpression,
		a.cfg.Scheduler.PollInterval,
		a.cfg.Scheduler.Location(),
		a.logger.With("component", "scheduler"),
	)
	if err != nil {
		return err
	}

	if addr := a.cfg.Metrics.Addr; addr != "" {
		go func() {
			a.logger.Info("metrics server listening", "addr", addr)
			if err := a.metrics.Serve(ctx, addr); err != nil {
				a.logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	return usecase.NewScheduler(driver, a.pipeline, opts, a.logger.With("component", "schedule")).Start(ctx)
}

// Close releases provider clients.
func (a *Application) Close() error {
	var firstErr error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
