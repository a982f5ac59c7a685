// DermaRec - Personalized Skin and Hair Care Recommendation Engine
// Copyright 2026 Lunara Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lunara-health/dermarec

// Package recommend orchestrates the recommendation pipeline: rule
// evaluation, action merging, escalation, candidate ranking, and final
// assembly into a single auditable Recommendation.
package recommend

import (
	"time"

	"github.com/lunara-health/dermarec/internal/catalog"
	"github.com/lunara-health/dermarec/internal/ranking"
	"github.com/lunara-health/dermarec/internal/rules"
)

// Request carries everything needed for one recommendation.
// Candidates and Feedback are optional: when absent they are fetched from
// the configured upstream services, and when those are unavailable the
// engine degrades instead of failing.
type Request struct {
	UserID string     `json:"user_id,omitempty"`
	Case   rules.Case `json:"case"`

	// Candidates, when non-empty, bypasses the catalog resolver.
	Candidates []catalog.Product `json:"candidates,omitempty"`

	// Feedback, when non-nil, bypasses the feedback provider.
	Feedback map[string]catalog.FeedbackStats `json:"feedback,omitempty"`

	// K is the maximum number of ranked products to return.
	// Zero means the configured default.
	K int `json:"k,omitempty" validate:"gte=0"`

	// Mode overrides the configured allergy handling ("warn" or "strict").
	Mode string `json:"mode,omitempty" validate:"omitempty,oneof=warn strict"`

	// Disclaimer is passed through to the output unchanged.
	Disclaimer string `json:"disclaimer,omitempty"`

	RequestID string `json:"request_id,omitempty"`
}

// Metadata describes how a recommendation was produced.
type Metadata struct {
	RequestID        string    `json:"request_id,omitempty"`
	RulesVersion     int64     `json:"rules_version"`
	RulesEvaluated   int       `json:"rules_evaluated"`
	RulesMatched     int       `json:"rules_matched"`
	CatalogDegraded  bool      `json:"catalog_degraded,omitempty"`
	FeedbackDegraded bool      `json:"feedback_degraded,omitempty"`
	LatencyMS        int64     `json:"latency_ms"`
	Timestamp        time.Time `json:"timestamp"`
}

// Recommendation is the complete output handed to the caller.
type Recommendation struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Routines []rules.MergedAction `json:"routines"`
	Diet     []rules.MergedAction `json:"diet"`
	Warnings []rules.MergedAction `json:"warnings"`

	// Escalation is nil when no matched rule carried one.
	Escalation *rules.Advisory `json:"escalation,omitempty"`

	RankedProducts []ranking.RankedProduct `json:"ranked_products"`

	// AppliedRuleIDs is the sorted union of every rule ID referenced
	// anywhere in the actions or escalation.
	AppliedRuleIDs []string `json:"applied_rule_ids"`

	// Disclaimer is the caller-supplied informational notice,
	// passed through unconditionally.
	Disclaimer string `json:"disclaimer,omitempty"`

	Metadata Metadata `json:"metadata"`
}
