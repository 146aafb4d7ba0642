package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "LEDGER_BACKEND", "MODEL_NAME", "ADVICE_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.LedgerBackend != "memory" {
		t.Errorf("LedgerBackend = %q, want memory", cfg.LedgerBackend)
	}
	if cfg.ModelName != "gemini-2.5-flash" {
		t.Errorf("ModelName = %q", cfg.ModelName)
	}
	if cfg.AdviceTimeout != 60*time.Second {
		t.Errorf("AdviceTimeout = %v", cfg.AdviceTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LEDGER_BACKEND", "sqlite")
	t.Setenv("MAX_RECOMMEND_TOKENS", "2048")
	t.Setenv("RECOMMEND_TIMEOUT", "45s")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.LedgerBackend != "sqlite" {
		t.Errorf("LedgerBackend = %q", cfg.LedgerBackend)
	}
	if cfg.MaxRecommendTokens != 2048 {
		t.Errorf("MaxRecommendTokens = %d", cfg.MaxRecommendTokens)
	}
	if cfg.RecommendTimeout != 45*time.Second {
		t.Errorf("RecommendTimeout = %v", cfg.RecommendTimeout)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("MAX_ADVICE_TOKENS", "not-a-number")
	t.Setenv("ADVICE_TIMEOUT", "soon")

	cfg := Load()

	if cfg.MaxAdviceTokens != 1024 {
		t.Errorf("MaxAdviceTokens = %d, want fallback 1024", cfg.MaxAdviceTokens)
	}
	if cfg.AdviceTimeout != 60*time.Second {
		t.Errorf("AdviceTimeout = %v, want fallback", cfg.AdviceTimeout)
	}
}
