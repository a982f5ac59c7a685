// DermaRec - Personalized Skin and Hair Care Recommendation Engine
// Copyright 2026 Lunara Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lunara-health/dermarec

package recommend

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/lunara-health/dermarec/internal/catalog"
	"github.com/lunara-health/dermarec/internal/metrics"
	"github.com/lunara-health/dermarec/internal/ranking"
	"github.com/lunara-health/dermarec/internal/rules"
)

// Engine evaluates recommendation requests against the active rule
// snapshot. It holds no per-request state; a single instance serves
// concurrent requests.
//
// The catalog resolver and feedback provider are optional. When either is
// nil or fails, the engine degrades: an unavailable catalog yields an empty
// ranked list, unavailable feedback falls back to neutral scoring. Neither
// is ever a request error.
type Engine struct {
	store    *rules.Store
	resolver catalog.Resolver
	feedback catalog.FeedbackProvider
	ranker   *ranking.Ranker
	logger   zerolog.Logger
}

// NewEngine creates a recommendation engine.
func NewEngine(store *rules.Store, resolver catalog.Resolver, feedback catalog.FeedbackProvider, ranker *ranking.Ranker, logger zerolog.Logger) *Engine {
	return &Engine{
		store:    store,
		resolver: resolver,
		feedback: feedback,
		ranker:   ranker,
		logger:   logger.With().Str("component", "recommend").Logger(),
	}
}

// Evaluate runs the full pipeline for one request: rule matching, action
// merging, escalation, candidate ranking, and assembly.
//
// Returns rules.ErrNoSnapshot if no rule set has been loaded yet.
func (e *Engine) Evaluate(ctx context.Context, req *Request) (*Recommendation, error) {
	snap := e.store.Current()
	if snap == nil {
		return nil, rules.ErrNoSnapshot
	}

	start := time.Now()

	matched := snap.Evaluate(&req.Case)
	metrics.RecordEvaluation(time.Since(start))
	for _, mr := range matched {
		metrics.RecordRuleOutcome(mr.Rule.ID, "matched")
	}

	draft := rules.Merge(matched)
	advisory := rules.EvaluateEscalation(matched)
	if advisory != nil {
		metrics.RecordEscalation(advisory.Severity.String())
	}

	profile := ranking.Profile{
		UserID:     req.UserID,
		Allergies:  req.Case.Allergies,
		SkinType:   req.Case.SkinType,
		Conditions: req.Case.Conditions,
	}

	mode := e.ranker.Mode()
	if req.Mode != "" {
		if m, err := ranking.ParseMode(req.Mode); err == nil {
			mode = m
		} else {
			e.logger.Warn().Str("mode", req.Mode).Msg("Unknown allergy mode in request, using configured default")
		}
	}

	meta := Metadata{
		RequestID:      req.RequestID,
		RulesVersion:   snap.Version(),
		RulesEvaluated: snap.Len(),
		RulesMatched:   len(matched),
		Timestamp:      time.Now().UTC(),
	}

	// At IMMEDIATE severity the routine, diet, and product sections are
	// suppressed: the only actionable advice is to seek care now.
	immediate := advisory != nil && advisory.Severity == rules.SeverityImmediate

	var ranked []ranking.RankedProduct
	if !immediate {
		candidates := e.resolveCandidates(ctx, req, draft, &meta)
		feedback := e.resolveFeedback(ctx, req, candidates, &meta)
		ranked = e.ranker.Rank(candidates, profile, feedback, req.K, mode)
	} else {
		draft.Routines = nil
		draft.Diet = nil
	}

	meta.LatencyMS = time.Since(start).Milliseconds()

	rec, err := Assemble(draft, advisory, ranked, req.Disclaimer, meta)
	if err != nil {
		e.logger.Error().Err(err).Str("request_id", req.RequestID).Msg("Recommendation assembly failed")
		return nil, err
	}

	e.logger.Info().
		Str("request_id", req.RequestID).
		Int("rules_matched", len(matched)).
		Int("products", len(ranked)).
		Bool("high_priority", advisory != nil && advisory.HighPriority).
		Int64("latency_ms", meta.LatencyMS).
		Msg("Recommendation produced")

	return rec, nil
}

// resolveCandidates returns the candidate products for ranking: the
// request's own candidates when supplied, otherwise a catalog lookup by the
// draft's requested product tags. Catalog failure marks the response
// degraded and yields an empty set.
func (e *Engine) resolveCandidates(ctx context.Context, req *Request, draft *rules.MergedDraft, meta *Metadata) []catalog.Product {
	if len(req.Candidates) > 0 {
		return req.Candidates
	}
	if e.resolver == nil {
		return nil
	}

	candidates, err := e.resolver.Resolve(ctx, draft.Tags())
	if err != nil {
		meta.CatalogDegraded = true
		e.logger.Warn().Err(err).Str("request_id", req.RequestID).Msg("Catalog unavailable, returning empty ranked list")
		return nil
	}
	return candidates
}

// resolveFeedback returns feedback statistics for the candidates: the
// request's own data when supplied, otherwise a provider lookup. Provider
// failure marks the response degraded; scoring then uses neutral feedback.
func (e *Engine) resolveFeedback(ctx context.Context, req *Request, candidates []catalog.Product, meta *Metadata) map[string]catalog.FeedbackStats {
	if req.Feedback != nil {
		return req.Feedback
	}
	if e.feedback == nil || len(candidates) == 0 {
		return nil
	}

	ids := make([]string, 0, len(candidates))
	for _, p := range candidates {
		ids = append(ids, p.ID)
	}

	stats, err := e.feedback.Feedback(ctx, ids)
	if err != nil {
		meta.FeedbackDegraded = true
		e.logger.Warn().Err(err).Str("request_id", req.RequestID).Msg("Feedback unavailable, scoring with neutral defaults")
		return stats
	}
	return stats
}
