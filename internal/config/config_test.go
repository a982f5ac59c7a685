// DermaRec - Personalized Skin and Hair Care Recommendation Engine
// Copyright 2026 Lunara Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lunara-health/dermarec

package config

import (
	"strings"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default configuration failed validation: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d", cfg.Server.Port)
	}
	if cfg.Ranking.Mode != "warn" {
		t.Errorf("default ranking mode = %q", cfg.Ranking.Mode)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "port too low",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "server.port",
		},
		{
			name:    "port too high",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "server.port",
		},
		{
			name:    "default k below one",
			mutate:  func(c *Config) { c.Ranking.DefaultK = 0 },
			wantErr: "ranking.default_k",
		},
		{
			name:    "max k below default k",
			mutate:  func(c *Config) { c.Ranking.MaxK = 5; c.Ranking.DefaultK = 10 },
			wantErr: "ranking.max_k",
		},
		{
			name:    "unknown ranking mode",
			mutate:  func(c *Config) { c.Ranking.Mode = "aggressive" },
			wantErr: "ranking.mode",
		},
		{
			name:    "allergen penalty zero",
			mutate:  func(c *Config) { c.Ranking.AllergenPenalty = 0 },
			wantErr: "allergen_penalty",
		},
		{
			name:    "allergen penalty above one",
			mutate:  func(c *Config) { c.Ranking.AllergenPenalty = 1.5 },
			wantErr: "allergen_penalty",
		},
		{
			name: "zero weights",
			mutate: func(c *Config) {
				c.Ranking.WeightSafety = 0
				c.Ranking.WeightQuality = 0
				c.Ranking.WeightFeedback = 0
				c.Ranking.WeightConditionMatch = 0
			},
			wantErr: "weights",
		},
		{
			name:    "bad logging level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "logging.level",
		},
		{
			name:    "bad logging format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
		{
			name:    "negative cache capacity",
			mutate:  func(c *Config) { c.Feedback.CacheCapacity = -1 },
			wantErr: "cache_capacity",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate accepted invalid config")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env  string
		want string
	}{
		{"DERMAREC_SERVER_PORT", "server.port"},
		{"DERMAREC_SERVER_RATE_LIMIT", "server.rate_limit"},
		{"DERMAREC_RULES_PATH", "rules.path"},
		{"DERMAREC_RANKING_DEFAULT_K", "ranking.default_k"},
		{"DERMAREC_RANKING_ALLERGEN_PENALTY", "ranking.allergen_penalty"},
		{"DERMAREC_CATALOG_URL", "catalog.url"},
		{"DERMAREC_FEEDBACK_CACHE_TTL", "feedback.cache_ttl"},
		{"DERMAREC_LOGGING_LEVEL", "logging.level"},
		{"DERMAREC_UNRELATED_SETTING", ""},
	}

	for _, tt := range tests {
		if got := envTransformFunc(tt.env); got != tt.want {
			t.Errorf("envTransformFunc(%s) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("DERMAREC_SERVER_PORT", "9090")
	t.Setenv("DERMAREC_RANKING_MODE", "strict")
	t.Setenv("DERMAREC_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Ranking.Mode != "strict" {
		t.Errorf("Mode = %q, want strict", cfg.Ranking.Mode)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[0] != want[0] || cfg.Server.CORSOrigins[1] != want[1] {
		t.Errorf("CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
	// Untouched settings keep their defaults.
	if cfg.Ranking.DefaultK != 10 {
		t.Errorf("DefaultK = %d, want default 10", cfg.Ranking.DefaultK)
	}
}

func TestLoadRejectsInvalidEnvValue(t *testing.T) {
	t.Setenv("DERMAREC_RANKING_MODE", "aggressive")

	if _, err := Load(); err == nil {
		t.Error("Load accepted invalid ranking mode from environment")
	}
}
