package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Environment string
	HTTPAddr    string

	SlackBotToken      string
	SlackSigningSecret string

	OpenAIAPIKey     string
	OpenAIBaseURL    string
	ChatModel        string
	EmbeddingModel   string
	ModelTimeoutSec  int
	ModelTemperature float64

	ContextLimit        int
	HistoryFetchRetries int

	ImplicitThreatThreshold    float64
	QuoteSimilarityThreshold   float64
	QuoteSuppressionEnabled    bool
	AggressionThreshold        float64
	HarassmentThreshold        float64
	ThreatThreshold            float64
	CoerciveAuthorityThreshold float64
	CondescensionThreshold     float64

	LexiconPath     string
	SummarySchedule string
}

func FromEnv() Config {
	return Config{
		Environment: stringOrDefault("TONESENTRY_ENV", "development"),
		HTTPAddr:    stringOrDefault("TONESENTRY_HTTP_ADDR", ":8080"),

		SlackBotToken:      strings.TrimSpace(os.Getenv("TONESENTRY_SLACK_BOT_TOKEN")),
		SlackSigningSecret: strings.TrimSpace(os.Getenv("TONESENTRY_SLACK_SIGNING_SECRET")),

		OpenAIAPIKey:     strings.TrimSpace(os.Getenv("TONESENTRY_OPENAI_API_KEY")),
		OpenAIBaseURL:    stringOrDefault("TONESENTRY_OPENAI_BASE_URL", "https://api.openai.com/v1"),
		ChatModel:        stringOrDefault("TONESENTRY_CHAT_MODEL", "gpt-4o"),
		EmbeddingModel:   stringOrDefault("TONESENTRY_EMBEDDING_MODEL", "text-embedding-3-small"),
		ModelTimeoutSec:  intOrDefault("TONESENTRY_MODEL_TIMEOUT_SECONDS", 60),
		ModelTemperature: floatOrDefault("TONESENTRY_MODEL_TEMPERATURE", 0.2),

		ContextLimit:        intOrDefault("TONESENTRY_CONTEXT_LIMIT", 20),
		HistoryFetchRetries: intOrDefault("TONESENTRY_HISTORY_FETCH_RETRIES", 3),

		ImplicitThreatThreshold:    floatOrDefault("TONESENTRY_IMPLICIT_THREAT_THRESHOLD", 0.72),
		QuoteSimilarityThreshold:   floatOrDefault("TONESENTRY_QUOTE_SIMILARITY_THRESHOLD", 0.9),
		QuoteSuppressionEnabled:    boolOrDefault("TONESENTRY_QUOTE_SUPPRESSION_ENABLED", false),
		AggressionThreshold:        floatOrDefault("TONESENTRY_AGGRESSION_THRESHOLD", 0.5),
		HarassmentThreshold:        floatOrDefault("TONESENTRY_HARASSMENT_THRESHOLD", 0.5),
		ThreatThreshold:            floatOrDefault("TONESENTRY_THREAT_THRESHOLD", 0.5),
		CoerciveAuthorityThreshold: floatOrDefault("TONESENTRY_COERCIVE_AUTHORITY_THRESHOLD", 0.5),
		CondescensionThreshold:     floatOrDefault("TONESENTRY_CONDESCENSION_THRESHOLD", 0.3),

		LexiconPath:     strings.TrimSpace(os.Getenv("TONESENTRY_LEXICON_PATH")),
		SummarySchedule: stringOrDefault("TONESENTRY_SUMMARY_SCHEDULE", "@weekly"),
	}
}

// Validate rejects configurations that cannot reach the collaborators at all.
// Missing secrets are a startup failure, never a runtime one.
func (c Config) Validate() error {
	var missing []string
	if c.SlackBotToken == "" {
		missing = append(missing, "TONESENTRY_SLACK_BOT_TOKEN")
	}
	if c.SlackSigningSecret == "" {
		missing = append(missing, "TONESENTRY_SLACK_SIGNING_SECRET")
	}
	if c.OpenAIAPIKey == "" {
		missing = append(missing, "TONESENTRY_OPENAI_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

func stringOrDefault(name, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func intOrDefault(name string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return fallback
	}
	return parsed
}

func boolOrDefault(name string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func floatOrDefault(name string, fallback float64) float64 {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
