// DermaRec - Personalized Skin and Hair Care Recommendation Engine
// Copyright 2026 Lunara Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lunara-health/dermarec

package ranking

import (
	"fmt"

	"github.com/lunara-health/dermarec/internal/catalog"
)

// Sub-score constants. Each factor is computed on a 0..100 scale and then
// combined with the configured weights.
const (
	safetyBaseSafe     = 100.0
	safetyBaseUnsafe   = 40.0
	safetyMatchBonus   = 10.0
	safetyBonusCap     = 20.0
	safetyAvoidPenalty = 20.0

	conditionPerfect  = 100.0
	conditionPartial  = 60.0 // Lower bound; scales with overlap up to conditionPartialMax
	conditionPartMax  = 90.0
	conditionNoData   = 40.0
	conditionMismatch = 30.0

	feedbackNeutral = 50.0
)

// scorer computes composite scores for candidates against a profile.
type scorer struct {
	weights   Weights
	penalty   float64
	reviewCap int
}

// newScorer normalizes the weights and returns a ready scorer.
func newScorer(cfg Config) (*scorer, error) {
	w, err := cfg.Weights.Normalize()
	if err != nil {
		return nil, err
	}
	return &scorer{
		weights:   w,
		penalty:   cfg.AllergenPenalty,
		reviewCap: cfg.ReviewCountThreshold,
	}, nil
}

// Score computes the composite score, sub-scores, and reasons for one
// candidate. Allergen-flagged candidates (non-empty issues) have the final
// score multiplied by the configured penalty; callers only pass issues in
// warn mode, strict mode removes flagged candidates before scoring.
func (s *scorer) Score(p catalog.Product, profile Profile, stats *catalog.FeedbackStats, issues []string) (float64, SubScores, []string) {
	sub := SubScores{
		Safety:         s.safetyScore(p, profile),
		Quality:        s.qualityScore(p),
		Feedback:       s.feedbackScore(stats),
		ConditionMatch: s.conditionMatchScore(p, profile),
	}

	score := s.weights.Safety*sub.Safety +
		s.weights.Quality*sub.Quality +
		s.weights.Feedback*sub.Feedback +
		s.weights.ConditionMatch*sub.ConditionMatch

	if len(issues) > 0 {
		score *= s.penalty
	}

	score = clamp(score, 0, 100)
	return score, sub, s.reasons(p, profile, sub, stats)
}

// safetyScore starts from a dermatological-safety baseline, rewards
// recommended_for entries matching the user's conditions, and penalizes
// candidates whose avoid_for list overlaps multiple declared conditions.
func (s *scorer) safetyScore(p catalog.Product, profile Profile) float64 {
	score := safetyBaseUnsafe
	if p.DermatologicallySafe {
		score = safetyBaseSafe
	}

	bonus := float64(overlapCount(p.RecommendedFor, profile.Conditions)) * safetyMatchBonus
	if bonus > safetyBonusCap {
		bonus = safetyBonusCap
	}
	score += bonus

	if overlapCount(p.AvoidFor, profile.Conditions) >= 2 {
		score -= safetyAvoidPenalty
	}

	return clamp(score, 0, 100)
}

// qualityScore normalizes the star rating to 0..100 and adds a
// diminishing-returns bonus for review volume: the bonus approaches its cap
// as review_count passes the configured threshold, so a product with 500
// reviews barely outscores one with 100.
func (s *scorer) qualityScore(p catalog.Product) float64 {
	rating := clamp(p.Rating, 0, 5)
	base := rating / 5.0 * 85.0

	reviews := float64(p.ReviewCount)
	bonus := 15.0 * (reviews / (reviews + float64(s.reviewCap)))

	return clamp(base+bonus, 0, 100)
}

// feedbackScore blends average rating and helpful-vote ratio, falling back
// to a neutral midpoint when the product has no feedback data.
func (s *scorer) feedbackScore(stats *catalog.FeedbackStats) float64 {
	if stats == nil || stats.SampleSize == 0 {
		return feedbackNeutral
	}

	rating := clamp(stats.AvgRating, 0, 5) / 5.0 * 100.0
	helpful := clamp(stats.HelpfulRatio, 0, 1) * 100.0

	return clamp(0.7*rating+0.3*helpful, 0, 100)
}

// conditionMatchScore compares the candidate's recommended_for list with the
// profile's conditions: full coverage scores highest, partial overlap scales
// between the partial bounds, and a populated list with zero overlap is an
// active mismatch scored below the no-data case.
func (s *scorer) conditionMatchScore(p catalog.Product, profile Profile) float64 {
	if len(p.RecommendedFor) == 0 {
		return conditionNoData
	}
	if len(profile.Conditions) == 0 {
		return conditionNoData
	}

	overlap := overlapCount(p.RecommendedFor, profile.Conditions)
	if overlap == 0 {
		return conditionMismatch
	}
	if overlap >= len(profile.Conditions) {
		return conditionPerfect
	}

	ratio := float64(overlap) / float64(len(profile.Conditions))
	return conditionPartial + ratio*(conditionPartMax-conditionPartial)
}

// reasons produces the human-readable justifications attached to a ranked
// product. Order is stable: safety, quality, feedback, condition matches.
func (s *scorer) reasons(p catalog.Product, profile Profile, sub SubScores, stats *catalog.FeedbackStats) []string {
	var reasons []string

	if p.DermatologicallySafe {
		reasons = append(reasons, "dermatologically tested")
	}
	if p.Rating >= 4.0 && p.ReviewCount >= s.reviewCap {
		reasons = append(reasons, "highly rated")
	} else if p.Rating >= 4.0 {
		reasons = append(reasons, fmt.Sprintf("rated %.1f of 5", p.Rating))
	}
	if stats != nil && stats.SampleSize > 0 && stats.HelpfulRatio >= 0.7 {
		reasons = append(reasons, "found helpful by users")
	}
	for _, cond := range profile.Conditions {
		if containsFold(p.RecommendedFor, cond) {
			reasons = append(reasons, "matches "+cond+" profile")
		}
	}

	return reasons
}

// overlapCount returns how many entries of b appear in a, case-insensitively.
func overlapCount(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[normalize(v)] = struct{}{}
	}
	count := 0
	for _, v := range b {
		if _, ok := set[normalize(v)]; ok {
			count++
		}
	}
	return count
}

// containsFold reports whether list contains v, case-insensitively.
func containsFold(list []string, v string) bool {
	target := normalize(v)
	for _, item := range list {
		if normalize(item) == target {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
