package config

import (
	"strings"
	"testing"
)

func TestValidateReportsAllMissingSecrets(t *testing.T) {
	err := Config{}.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, name := range []string{
		"TONESENTRY_SLACK_BOT_TOKEN",
		"TONESENTRY_SLACK_SIGNING_SECRET",
		"TONESENTRY_OPENAI_API_KEY",
	} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error should name %s: %v", name, err)
		}
	}
}

func TestValidatePassesWithSecrets(t *testing.T) {
	cfg := Config{
		SlackBotToken:      "xoxb-test",
		SlackSigningSecret: "secret",
		OpenAIAPIKey:       "sk-test",
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()
	if cfg.HTTPAddr == "" {
		t.Fatal("HTTPAddr must default")
	}
	if cfg.ContextLimit != 20 {
		t.Fatalf("ContextLimit = %d, want 20", cfg.ContextLimit)
	}
	if cfg.HistoryFetchRetries != 3 {
		t.Fatalf("HistoryFetchRetries = %d, want 3", cfg.HistoryFetchRetries)
	}
	if cfg.ImplicitThreatThreshold != 0.72 {
		t.Fatalf("ImplicitThreatThreshold = %f, want 0.72", cfg.ImplicitThreatThreshold)
	}
	if cfg.QuoteSimilarityThreshold != 0.9 {
		t.Fatalf("QuoteSimilarityThreshold = %f, want 0.9", cfg.QuoteSimilarityThreshold)
	}
	if cfg.CondescensionThreshold != 0.3 {
		t.Fatalf("CondescensionThreshold = %f, want 0.3", cfg.CondescensionThreshold)
	}
	if cfg.QuoteSuppressionEnabled {
		t.Fatal("quote suppression must default to disabled")
	}
	if cfg.SummarySchedule != "@weekly" {
		t.Fatalf("SummarySchedule = %q", cfg.SummarySchedule)
	}
}

func TestThresholdOverridesFromEnv(t *testing.T) {
	t.Setenv("TONESENTRY_CONDESCENSION_THRESHOLD", "0.45")
	t.Setenv("TONESENTRY_QUOTE_SUPPRESSION_ENABLED", "true")

	cfg := FromEnv()
	if cfg.CondescensionThreshold != 0.45 {
		t.Fatalf("CondescensionThreshold = %f, want 0.45", cfg.CondescensionThreshold)
	}
	if !cfg.QuoteSuppressionEnabled {
		t.Fatal("quote suppression should be enabled")
	}
}
