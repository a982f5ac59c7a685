// DermaRec - Personalized Skin and Hair Care Recommendation Engine
// Copyright 2026 Lunara Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lunara-health/dermarec

package ranking

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/lunara-health/dermarec/internal/catalog"
	"github.com/lunara-health/dermarec/internal/metrics"
)

// Ranker orchestrates the filter, score, sort, and truncate pipeline.
// It holds no per-request state, so a single instance serves concurrent
// requests without locking.
type Ranker struct {
	cfg    Config
	scorer *scorer
	logger zerolog.Logger
}

// NewRanker creates a Ranker with the given configuration.
func NewRanker(cfg Config, logger zerolog.Logger) (*Ranker, error) {
	sc, err := newScorer(cfg)
	if err != nil {
		return nil, err
	}
	return &Ranker{
		cfg:    cfg,
		scorer: sc,
		logger: logger.With().Str("component", "ranker").Logger(),
	}, nil
}

// Mode returns the configured allergy handling mode.
func (r *Ranker) Mode() Mode {
	return r.cfg.Mode
}

// ClampK resolves a requested result count against the configured bounds:
// non-positive requests fall back to the default, oversized ones are capped.
func (r *Ranker) ClampK(k int) int {
	if k <= 0 {
		return r.cfg.DefaultK
	}
	if k > r.cfg.MaxK {
		return r.cfg.MaxK
	}
	return k
}

// Rank filters the candidates against the profile's allergies, scores the
// survivors, and returns at most k products ordered by descending score.
// Equal scores are broken by ascending product ID so the ordering is
// deterministic across calls. The feedback map may be nil or partial;
// missing products score a neutral feedback factor.
func (r *Ranker) Rank(candidates []catalog.Product, profile Profile, feedback map[string]catalog.FeedbackStats, k int, mode Mode) []RankedProduct {
	start := time.Now()
	k = r.ClampK(k)

	if mode != ModeWarn && mode != ModeStrict {
		mode = r.cfg.Mode
	}

	survivors, issues := FilterCandidates(candidates, profile, mode)

	ranked := make([]RankedProduct, 0, len(survivors))
	for _, p := range survivors {
		var stats *catalog.FeedbackStats
		if fs, ok := feedback[p.ID]; ok {
			stats = &fs
		}

		productIssues := issues[p.ID]
		score, sub, reasons := r.scorer.Score(p, profile, stats, productIssues)

		ranked = append(ranked, RankedProduct{
			Product:      p,
			Score:        score,
			SubScores:    sub,
			Reasons:      reasons,
			SafetyIssues: productIssues,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Product.ID < ranked[j].Product.ID
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	metrics.RecordRanking(time.Since(start), len(survivors))
	r.logger.Debug().
		Int("candidates", len(candidates)).
		Int("survivors", len(survivors)).
		Int("returned", len(ranked)).
		Str("mode", string(mode)).
		Msg("Ranked candidates")

	return ranked
}
