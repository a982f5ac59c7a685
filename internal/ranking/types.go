// DermaRec - Personalized Skin and Hair Care Recommendation Engine
// Copyright 2026 Lunara Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lunara-health/dermarec

// Package ranking filters, scores, and orders candidate products for a user
// profile. All operations are pure computations over inputs supplied by the
// caller; upstream fetching happens before ranking starts.
package ranking

import (
	"fmt"

	"github.com/lunara-health/dermarec/internal/catalog"
	"github.com/lunara-health/dermarec/internal/config"
)

// Mode controls how allergen-flagged candidates are handled.
type Mode string

const (
	// ModeWarn keeps flagged candidates, records their safety issues,
	// and penalizes their score.
	ModeWarn Mode = "warn"

	// ModeStrict removes flagged candidates before scoring.
	ModeStrict Mode = "strict"
)

// ParseMode converts a string to a Mode, defaulting to ModeWarn for empty input.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", string(ModeWarn):
		return ModeWarn, nil
	case string(ModeStrict):
		return ModeStrict, nil
	default:
		return "", fmt.Errorf("unknown allergy mode %q", s)
	}
}

// Profile carries the user attributes that influence filtering and scoring.
type Profile struct {
	UserID     string   `json:"user_id,omitempty"`
	Allergies  []string `json:"allergies,omitempty"`
	SkinType   string   `json:"skin_type,omitempty"`
	Conditions []string `json:"conditions,omitempty"`
}

// SubScores breaks a composite score into its weighted factors,
// each on a 0..100 scale before weighting.
type SubScores struct {
	Safety         float64 `json:"safety"`
	Quality        float64 `json:"quality"`
	Feedback       float64 `json:"feedback"`
	ConditionMatch float64 `json:"condition_match"`
}

// RankedProduct is a scored candidate in the final ordering.
type RankedProduct struct {
	Rank         int             `json:"rank"`
	Product      catalog.Product `json:"product"`
	Score        float64         `json:"score"`
	SubScores    SubScores       `json:"sub_scores"`
	Reasons      []string        `json:"reasons,omitempty"`
	SafetyIssues []string        `json:"safety_issues,omitempty"`
}

// Weights are the relative contributions of each scoring factor.
// They are normalized before use so any positive values work.
type Weights struct {
	Safety         float64
	Quality        float64
	Feedback       float64
	ConditionMatch float64
}

// DefaultWeights returns the production scoring weights.
func DefaultWeights() Weights {
	return Weights{
		Safety:         0.25,
		Quality:        0.30,
		Feedback:       0.20,
		ConditionMatch: 0.25,
	}
}

// Normalize scales the weights so they sum to 1.
// Returns an error if the sum is not positive.
func (w Weights) Normalize() (Weights, error) {
	sum := w.Safety + w.Quality + w.Feedback + w.ConditionMatch
	if sum <= 0 {
		return Weights{}, fmt.Errorf("scoring weights must sum to a positive value, got %v", sum)
	}
	return Weights{
		Safety:         w.Safety / sum,
		Quality:        w.Quality / sum,
		Feedback:       w.Feedback / sum,
		ConditionMatch: w.ConditionMatch / sum,
	}, nil
}

// Config holds ranking behavior settings.
type Config struct {
	DefaultK             int
	MaxK                 int
	Mode                 Mode
	AllergenPenalty      float64
	ReviewCountThreshold int
	Weights              Weights
}

// DefaultConfig returns the production ranking configuration.
func DefaultConfig() Config {
	return Config{
		DefaultK:             10,
		MaxK:                 50,
		Mode:                 ModeWarn,
		AllergenPenalty:      0.9,
		ReviewCountThreshold: 50,
		Weights:              DefaultWeights(),
	}
}

// ConfigFromApp translates the application-level ranking settings.
func ConfigFromApp(rc config.RankingConfig) (Config, error) {
	mode, err := ParseMode(rc.Mode)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		DefaultK:             rc.DefaultK,
		MaxK:                 rc.MaxK,
		Mode:                 mode,
		AllergenPenalty:      rc.AllergenPenalty,
		ReviewCountThreshold: rc.ReviewCountThreshold,
		Weights: Weights{
			Safety:         rc.WeightSafety,
			Quality:        rc.WeightQuality,
			Feedback:       rc.WeightFeedback,
			ConditionMatch: rc.WeightConditionMatch,
		},
	}
	if cfg.DefaultK < 1 {
		cfg.DefaultK = 10
	}
	if cfg.MaxK < cfg.DefaultK {
		cfg.MaxK = cfg.DefaultK
	}
	if cfg.AllergenPenalty <= 0 || cfg.AllergenPenalty > 1 {
		cfg.AllergenPenalty = 0.9
	}
	if cfg.ReviewCountThreshold < 1 {
		cfg.ReviewCountThreshold = 50
	}
	return cfg, nil
}
