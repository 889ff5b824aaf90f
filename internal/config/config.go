package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"TechNewsAgent/internal/domain"
)

const (
	defaultTimezone    = "Local"
	defaultOpenAIModel = "gpt-4"
	defaultGeminiModel = "gemini-1.5-flash"
)

const (
	configPathEnv   = "TECHNEWS_CONFIG"
	newsAPIKeyEnv   = "NEWS_API_KEY"
	openAIAPIKeyEnv = "OPENAI_API_KEY"
	geminiAPIKeyEnv = "GEMINI_API_KEY"
	llmProviderEnv  = "LLM_PROVIDER"
	modelNameEnv    = "MODEL_NAME"
	maxArticlesEnv  = "MAX_ARTICLES_PER_KEYWORD"
	lookbackDaysEnv = "LOOKBACK_DAYS"
	outputDirEnv    = "OUTPUT_DIR"
	scheduleCronEnv = "SCHEDULE_CRON"
	timezoneEnv     = "TIMEZONE"
	metricsAddrEnv  = "METRICS_ADDR"
	logLevelEnv     = "LOG_LEVEL"
)

// Completion providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// ErrMissingCredential is returned when a required API key is absent.
var ErrMissingCredential = errors.New("missing credential")

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig    `yaml:"logging"`
	News      NewsConfig       `yaml:"news"`
	LLM       LLMConfig        `yaml:"llm"`
	Output    OutputConfig     `yaml:"output"`
	Scheduler SchedulerConfig  `yaml:"scheduler"`
	Metrics   MetricsConfig    `yaml:"metrics"`
	Keywords  []domain.Keyword `yaml:"keywords"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// NewsConfig describes the news search provider.
type NewsConfig struct {
	Endpoint              string        `yaml:"endpoint"`
	APIKey                string        `yaml:"apiKey"`
	Language              string        `yaml:"language"`
	SortBy                string        `yaml:"sortBy"`
	LookbackDays          int           `yaml:"lookbackDays"`
	MaxArticlesPerKeyword int           `yaml:"maxArticlesPerKeyword"`
	Timeout               time.Duration `yaml:"timeout"`
}

// LLMConfig defines how to contact the completion provider.
type LLMConfig struct {
	Provider     string  `yaml:"provider"`
	Model        string  `yaml:"model"`
	BaseURL      string  `yaml:"baseUrl"`
	OpenAIAPIKey string  `yaml:"openaiApiKey"`
	GeminiAPIKey string  `yaml:"geminiApiKey"`
	Temperature  float64 `yaml:"temperature"`
	MaxTokens    int     `yaml:"maxTokens"`
	ContentLimit int     `yaml:"contentLimit"`
}

// APIKey returns the credential of the selected provider.
func (l LLMConfig) APIKey() string {
	if l.Provider == ProviderGemini {
		return l.GeminiAPIKey
	}
	return l.OpenAIAPIKey
}

// OutputConfig controls where reports are written.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// SchedulerConfig defines when the pipeline should run.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	PollInterval   time.Duration  `yaml:"pollInterval"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	return time.Local
}

// MetricsConfig enables the Prometheus endpoint in schedule mode.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
// An empty path falls back to TECHNEWS_CONFIG. Keys present in the file or the
// environment replace the defaults, zero values included; range checks are
// left to Validate.
func Load(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			fileCfg := defaultConfig()
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = fileCfg
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	cfg.bindTimezone()

	if cfg.LLM.Model == "" {
		cfg.LLM.Model = defaultOpenAIModel
		if cfg.LLM.Provider == ProviderGemini {
			cfg.LLM.Model = defaultGeminiModel
		}
	}
	if len(cfg.Keywords) == 0 {
		cfg.Keywords = DefaultKeywords()
	}

	return cfg
}

// Validate reports configuration errors that must stop the process before any network call.
func (c Config) Validate() error {
	if strings.TrimSpace(c.News.APIKey) == "" {
		return fmt.Errorf("%s: %w", newsAPIKeyEnv, ErrMissingCredential)
	}
	switch c.LLM.Provider {
	case ProviderOpenAI:
		if strings.TrimSpace(c.LLM.OpenAIAPIKey) == "" {
			return fmt.Errorf("%s: %w", openAIAPIKeyEnv, ErrMissingCredential)
		}
	case ProviderGemini:
		if strings.TrimSpace(c.LLM.GeminiAPIKey) == "" {
			return fmt.Errorf("%s: %w", geminiAPIKeyEnv, ErrMissingCredential)
		}
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	if c.News.MaxArticlesPerKeyword <= 0 {
		return fmt.Errorf("max articles per keyword must be positive, got %d", c.News.MaxArticlesPerKeyword)
	}
	if c.News.LookbackDays < 0 {
		return fmt.Errorf("lookback days cannot be negative, got %d", c.News.LookbackDays)
	}
	if c.LLM.Temperature < 0 {
		return fmt.Errorf("temperature cannot be negative, got %v", c.LLM.Temperature)
	}
	return nil
}

// DefaultKeywords returns the six fixed topics in query order.
func DefaultKeywords() []domain.Keyword {
	return []domain.Keyword{
		{Name: "AI", Description: "Artificial Intelligence, machine learning, neural networks"},
		{Name: "software", Description: "Software development, programming, DevOps"},
		{Name: "cloud", Description: "Cloud computing, AWS, Azure, GCP, Kubernetes"},
		{Name: "infrastructure", Description: "Infrastructure, data centers, on-premises"},
		{Name: "security", Description: "Cybersecurity, data protection, compliance"},
		{Name: "analyst", Description: "Technology analysts, market research, industry insights"},
	}
}

// KeywordNames returns the labels sent to the news provider.
func (c Config) KeywordNames() []string {
	names := make([]string, 0, len(c.Keywords))
	for _, k := range c.Keywords {
		names = append(names, k.Name)
	}
	return names
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(newsAPIKeyEnv); v != "" {
		c.News.APIKey = v
	}
	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.LLM.OpenAIAPIKey = v
	}
	if v := os.Getenv(geminiAPIKeyEnv); v != "" {
		c.LLM.GeminiAPIKey = v
	}
	if v := os.Getenv(llmProviderEnv); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv(modelNameEnv); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv(maxArticlesEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.News.MaxArticlesPerKeyword = n
		} else {
			log.Printf("config: ignoring invalid %s=%q", maxArticlesEnv, v)
		}
	}
	if v := os.Getenv(lookbackDaysEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.News.LookbackDays = n
		} else {
			log.Printf("config: ignoring invalid %s=%q", lookbackDaysEnv, v)
		}
	}
	if v := os.Getenv(outputDirEnv); v != "" {
		c.Output.Dir = v
	}
	if v := os.Getenv(scheduleCronEnv); v != "" {
		c.Scheduler.CronExpression = v
	}
	if v := os.Getenv(timezoneEnv); v != "" {
		c.Scheduler.Timezone = v
	}
	if v := os.Getenv(metricsAddrEnv); v != "" {
		c.Metrics.Addr = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc = time.Local
	}
	c.Scheduler.location = loc
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		News: NewsConfig{
			Endpoint:              "https://newsapi.org/v2/everything",
			Language:              "en",
			SortBy:                "relevancy",
			LookbackDays:          7,
			MaxArticlesPerKeyword: 5,
			Timeout:               30 * time.Second,
		},
		LLM: LLMConfig{
			Provider:     ProviderOpenAI,
			Temperature:  0.7,
			MaxTokens:    500,
			ContentLimit: 2000,
		},
		Output: OutputConfig{Dir: "output"},
		Scheduler: SchedulerConfig{
			CronExpression: "0 8 * * *",
			PollInterval:   60 * time.Second,
		},
		Keywords: DefaultKeywords(),
	}
}
