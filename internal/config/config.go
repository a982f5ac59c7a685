// DermaRec - Personalized Skin and Hair Care Recommendation Engine
// Copyright 2026 Lunara Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lunara-health/dermarec

// Package config provides layered configuration loading for DermaRec.
// Settings are resolved with clear precedence: environment variables
// override the YAML config file, which overrides built-in defaults.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the DermaRec service.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Rules    RulesConfig    `koanf:"rules"`
	Ranking  RankingConfig  `koanf:"ranking"`
	Catalog  CatalogConfig  `koanf:"catalog"`
	Feedback FeedbackConfig `koanf:"feedback"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	RateLimit       int           `koanf:"rate_limit"` // Requests per minute per client, 0 disables
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// RulesConfig holds rule document settings.
type RulesConfig struct {
	Path string `koanf:"path"` // Rule document loaded at startup and on reload
}

// RankingConfig holds product ranking settings.
type RankingConfig struct {
	DefaultK             int     `koanf:"default_k"`              // Result count when the request omits k
	MaxK                 int     `koanf:"max_k"`                  // Upper bound on requested k
	Mode                 string  `koanf:"mode"`                   // Allergy handling: "warn" or "strict"
	AllergenPenalty      float64 `koanf:"allergen_penalty"`       // Score multiplier for flagged products in warn mode
	ReviewCountThreshold int     `koanf:"review_count_threshold"` // Reviews needed for the full quality bonus
	WeightSafety         float64 `koanf:"weight_safety"`
	WeightQuality        float64 `koanf:"weight_quality"`
	WeightFeedback       float64 `koanf:"weight_feedback"`
	WeightConditionMatch float64 `koanf:"weight_condition_match"`
}

// CatalogConfig holds upstream product catalog settings.
// When URL is empty the catalog service is disabled and requests
// must carry their own candidate products.
type CatalogConfig struct {
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
}

// FeedbackConfig holds upstream feedback service and cache settings.
type FeedbackConfig struct {
	URL           string        `koanf:"url"`
	Timeout       time.Duration `koanf:"timeout"`
	CacheCapacity int           `koanf:"cache_capacity"`
	CacheTTL      time.Duration `koanf:"cache_ttl"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`  // "debug", "info", "warn", "error"
	Format string `koanf:"format"` // "json" or "console"
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for invalid or inconsistent values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Ranking.DefaultK < 1 {
		return fmt.Errorf("ranking.default_k must be at least 1, got %d", c.Ranking.DefaultK)
	}
	if c.Ranking.MaxK < c.Ranking.DefaultK {
		return fmt.Errorf("ranking.max_k (%d) must not be less than ranking.default_k (%d)",
			c.Ranking.MaxK, c.Ranking.DefaultK)
	}
	if c.Ranking.Mode != "warn" && c.Ranking.Mode != "strict" {
		return fmt.Errorf("ranking.mode must be \"warn\" or \"strict\", got %q", c.Ranking.Mode)
	}
	if c.Ranking.AllergenPenalty <= 0 || c.Ranking.AllergenPenalty > 1 {
		return fmt.Errorf("ranking.allergen_penalty must be in (0, 1], got %v", c.Ranking.AllergenPenalty)
	}
	sum := c.Ranking.WeightSafety + c.Ranking.WeightQuality +
		c.Ranking.WeightFeedback + c.Ranking.WeightConditionMatch
	if sum <= 0 {
		return fmt.Errorf("ranking weights must sum to a positive value, got %v", sum)
	}
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of trace, debug, info, warn, error; got %q", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging.format must be \"json\" or \"console\", got %q", c.Logging.Format)
	}
	if c.Feedback.CacheCapacity < 0 {
		return fmt.Errorf("feedback.cache_capacity must not be negative, got %d", c.Feedback.CacheCapacity)
	}
	return nil
}
