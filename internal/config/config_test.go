package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var allEnv = []string{
	configPathEnv, newsAPIKeyEnv, openAIAPIKeyEnv, geminiAPIKeyEnv, llmProviderEnv,
	modelNameEnv, maxArticlesEnv, lookbackDaysEnv, outputDirEnv, scheduleCronEnv,
	timezoneEnv, metricsAddrEnv, logLevelEnv,
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allEnv {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load("")

	if cfg.News.MaxArticlesPerKeyword != 5 {
		t.Fatalf("expected 5 articles per keyword, got %d", cfg.News.MaxArticlesPerKeyword)
	}
	if cfg.News.LookbackDays != 7 {
		t.Fatalf("expected lookback 7, got %d", cfg.News.LookbackDays)
	}
	if cfg.News.Timeout != 30*time.Second {
		t.Fatalf("unexpected timeout %s", cfg.News.Timeout)
	}
	if cfg.LLM.Model != "gpt-4" {
		t.Fatalf("unexpected model %s", cfg.LLM.Model)
	}
	if cfg.LLM.Temperature != 0.7 || cfg.LLM.MaxTokens != 500 || cfg.LLM.ContentLimit != 2000 {
		t.Fatalf("unexpected llm defaults: %+v", cfg.LLM)
	}
	if cfg.Output.Dir != "output" {
		t.Fatalf("unexpected output dir %s", cfg.Output.Dir)
	}
	if cfg.Scheduler.CronExpression != "0 8 * * *" || cfg.Scheduler.PollInterval != time.Minute {
		t.Fatalf("unexpected scheduler defaults: %+v", cfg.Scheduler)
	}

	want := []string{"AI", "software", "cloud", "infrastructure", "security", "analyst"}
	got := cfg.KeywordNames()
	if len(got) != len(want) {
		t.Fatalf("expected %d keywords, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("keyword %d: want %s, got %s", i, want[i], got[i])
		}
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(newsAPIKeyEnv, "news-key")
	t.Setenv(openAIAPIKeyEnv, "openai-key")
	t.Setenv(modelNameEnv, "gpt-4o-mini")
	t.Setenv(maxArticlesEnv, "9")
	t.Setenv(timezoneEnv, "UTC")

	cfg := Load("")

	if cfg.News.APIKey != "news-key" || cfg.LLM.APIKey() != "openai-key" {
		t.Fatalf("credentials not applied: %+v %+v", cfg.News, cfg.LLM)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected model %s", cfg.LLM.Model)
	}
	if cfg.News.MaxArticlesPerKeyword != 9 {
		t.Fatalf("unexpected max articles %d", cfg.News.MaxArticlesPerKeyword)
	}
	if cfg.Scheduler.Location() != time.UTC {
		t.Fatalf("unexpected location %v", cfg.Scheduler.Location())
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestLoadInvalidMaxArticlesKeepsDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv(maxArticlesEnv, "lots")

	cfg := Load("")
	if cfg.News.MaxArticlesPerKeyword != 5 {
		t.Fatalf("expected default, got %d", cfg.News.MaxArticlesPerKeyword)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
news:
  apiKey: file-news-key
  lookbackDays: 3
  timeout: 10s
llm:
  provider: gemini
  geminiApiKey: file-gemini-key
keywords:
  - name: chips
    description: Semiconductors
output:
  dir: reports
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := Load(path)

	if cfg.News.APIKey != "file-news-key" || cfg.News.LookbackDays != 3 || cfg.News.Timeout != 10*time.Second {
		t.Fatalf("news config not merged: %+v", cfg.News)
	}
	if cfg.LLM.Provider != ProviderGemini || cfg.LLM.Model != "gemini-1.5-flash" {
		t.Fatalf("llm config not merged: %+v", cfg.LLM)
	}
	if cfg.LLM.APIKey() != "file-gemini-key" {
		t.Fatalf("unexpected gemini key %q", cfg.LLM.APIKey())
	}
	if len(cfg.Keywords) != 1 || cfg.Keywords[0].Name != "chips" {
		t.Fatalf("unexpected keywords %+v", cfg.Keywords)
	}
	if cfg.Output.Dir != "reports" {
		t.Fatalf("unexpected output dir %s", cfg.Output.Dir)
	}
	if cfg.News.MaxArticlesPerKeyword != 5 {
		t.Fatalf("unset field must keep default, got %d", cfg.News.MaxArticlesPerKeyword)
	}
}

func TestValidateMissingCredentials(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	if err := cfg.Validate(); !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected missing news key, got %v", err)
	}

	cfg.News.APIKey = "news"
	if err := cfg.Validate(); !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected missing openai key, got %v", err)
	}

	cfg.LLM.Provider = ProviderGemini
	cfg.LLM.OpenAIAPIKey = "openai"
	if err := cfg.Validate(); !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected missing gemini key, got %v", err)
	}

	cfg.LLM.GeminiAPIKey = "gemini"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.LLM.Provider = "mystery"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected unknown provider error")
	}
}

func TestLoadExampleConfig(t *testing.T) {
	clearEnv(t)

	cfg := Load(filepath.Join("..", "..", "configs", "technews.example.yaml"))

	if got, want := len(cfg.Keywords), len(DefaultKeywords()); got != want {
		t.Fatalf("expected %d keywords, got %d", want, got)
	}
	for i, k := range DefaultKeywords() {
		if cfg.Keywords[i] != k {
			t.Fatalf("keyword %d = %+v, want %+v", i, cfg.Keywords[i], k)
		}
	}
	if cfg.Scheduler.CronExpression != "0 8 * * *" || cfg.Scheduler.PollInterval != time.Minute {
		t.Fatalf("unexpected scheduler config %+v", cfg.Scheduler)
	}
	if cfg.Scheduler.Location() != time.Local {
		t.Fatalf("expected local timezone")
	}
}

func TestLoadExplicitZeroValues(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
news:
  apiKey: k
  lookbackDays: 0
llm:
  provider: OpenAI
  openaiApiKey: o
  temperature: 0
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := Load(path)
	if cfg.News.LookbackDays != 0 {
		t.Fatalf("lookbackDays: 0 from YAML was ignored, got %d", cfg.News.LookbackDays)
	}
	if cfg.LLM.Temperature != 0 {
		t.Fatalf("temperature: 0 from YAML was ignored, got %v", cfg.LLM.Temperature)
	}
	if cfg.LLM.Provider != ProviderOpenAI {
		t.Fatalf("provider not normalised: %q", cfg.LLM.Provider)
	}
	if cfg.LLM.MaxTokens != 500 || cfg.News.MaxArticlesPerKeyword != 5 {
		t.Fatalf("absent keys must keep defaults: %+v %+v", cfg.LLM, cfg.News)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestLoadZeroValuesSameForEnvAndYAML(t *testing.T) {
	clearEnv(t)
	t.Setenv(newsAPIKeyEnv, "k")
	t.Setenv(openAIAPIKeyEnv, "o")
	t.Setenv(lookbackDaysEnv, "0")
	t.Setenv(maxArticlesEnv, "0")

	cfg := Load("")
	if cfg.News.LookbackDays != 0 {
		t.Fatalf("LOOKBACK_DAYS=0 ignored, got %d", cfg.News.LookbackDays)
	}
	if cfg.News.MaxArticlesPerKeyword != 0 {
		t.Fatalf("MAX_ARTICLES_PER_KEYWORD=0 ignored, got %d", cfg.News.MaxArticlesPerKeyword)
	}
	envErr := cfg.Validate()
	if envErr == nil {
		t.Fatal("zero max articles from env must fail validation")
	}

	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := "news:\n  apiKey: k\n  maxArticlesPerKeyword: 0\nllm:\n  openaiApiKey: o\n"
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	yamlErr := Load(path).Validate()
	if yamlErr == nil || yamlErr.Error() != envErr.Error() {
		t.Fatalf("YAML and env must be validated alike: env %v, yaml %v", envErr, yamlErr)
	}
}
