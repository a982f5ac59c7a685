// DermaRec - Personalized Skin and Hair Care Recommendation Engine
// Copyright 2026 Lunara Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lunara-health/dermarec

package ranking

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/lunara-health/dermarec/internal/catalog"
)

func newTestRanker(t *testing.T, cfg Config) *Ranker {
	t.Helper()
	r, err := NewRanker(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewRanker: %v", err)
	}
	return r
}

func TestRankTruncatesToK(t *testing.T) {
	t.Parallel()
	r := newTestRanker(t, DefaultConfig())

	// Twenty qualifying candidates with distinct ratings so scores differ.
	candidates := make([]catalog.Product, 20)
	for i := range candidates {
		candidates[i] = catalog.Product{
			ID:                   fmt.Sprintf("p%02d", i),
			Name:                 fmt.Sprintf("Product %d", i),
			DermatologicallySafe: i%2 == 0,
			Rating:               float64(i) * 0.25,
			ReviewCount:          i * 20,
		}
	}

	ranked := r.Rank(candidates, Profile{}, nil, 5, ModeWarn)

	if len(ranked) != 5 {
		t.Fatalf("len = %d, want exactly 5", len(ranked))
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Score >= ranked[i-1].Score {
			t.Errorf("scores not strictly descending at %d: %v then %v", i, ranked[i-1].Score, ranked[i].Score)
		}
	}
	for i, rp := range ranked {
		if rp.Rank != i+1 {
			t.Errorf("Rank = %d at position %d", rp.Rank, i)
		}
	}
}

func TestRankTieBreaksByProductID(t *testing.T) {
	t.Parallel()
	r := newTestRanker(t, DefaultConfig())

	// Identical products except for ID produce identical scores.
	candidates := []catalog.Product{
		{ID: "zeta", DermatologicallySafe: true, Rating: 4, ReviewCount: 50},
		{ID: "alpha", DermatologicallySafe: true, Rating: 4, ReviewCount: 50},
		{ID: "mid", DermatologicallySafe: true, Rating: 4, ReviewCount: 50},
	}

	ranked := r.Rank(candidates, Profile{}, nil, 10, ModeWarn)

	gotIDs := make([]string, len(ranked))
	for i, rp := range ranked {
		gotIDs[i] = rp.Product.ID
	}
	if !reflect.DeepEqual(gotIDs, []string{"alpha", "mid", "zeta"}) {
		t.Errorf("tie-break order = %v, want ascending IDs", gotIDs)
	}
}

func TestRankDeterministic(t *testing.T) {
	t.Parallel()
	r := newTestRanker(t, DefaultConfig())

	candidates := []catalog.Product{
		{ID: "a", Rating: 3, DermatologicallySafe: true},
		{ID: "b", Rating: 4.5, ReviewCount: 80},
		{ID: "c", Rating: 4.5, ReviewCount: 80},
	}
	profile := Profile{Conditions: []string{"acne"}}

	first := r.Rank(candidates, profile, nil, 10, ModeWarn)
	second := r.Rank(candidates, profile, nil, 10, ModeWarn)

	if !reflect.DeepEqual(first, second) {
		t.Error("Rank is not deterministic for identical input")
	}
}

func TestRankWarnModeFlagsAndPenalizes(t *testing.T) {
	t.Parallel()
	r := newTestRanker(t, DefaultConfig())

	candidates := []catalog.Product{
		{ID: "flagged", DermatologicallySafe: true, Rating: 4, Ingredients: []string{"fragrance"}},
		{ID: "clean", DermatologicallySafe: true, Rating: 4},
	}
	profile := Profile{Allergies: []string{"fragrance"}}

	ranked := r.Rank(candidates, profile, nil, 10, ModeWarn)

	if len(ranked) != 2 {
		t.Fatalf("warn mode must keep flagged candidates, got %d", len(ranked))
	}
	// The clean product outranks the otherwise identical flagged one.
	if ranked[0].Product.ID != "clean" {
		t.Errorf("top product = %s, want clean", ranked[0].Product.ID)
	}
	var flagged *RankedProduct
	for i := range ranked {
		if ranked[i].Product.ID == "flagged" {
			flagged = &ranked[i]
		}
	}
	if flagged == nil || len(flagged.SafetyIssues) == 0 {
		t.Fatal("flagged candidate must carry safety issues")
	}
}

func TestRankStrictModeDrops(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Mode = ModeStrict
	r := newTestRanker(t, cfg)

	candidates := []catalog.Product{
		{ID: "flagged", Ingredients: []string{"fragrance"}},
		{ID: "clean"},
	}
	profile := Profile{Allergies: []string{"fragrance"}}

	ranked := r.Rank(candidates, profile, nil, 10, ModeStrict)

	if len(ranked) != 1 || ranked[0].Product.ID != "clean" {
		t.Errorf("strict mode result = %v, want only clean", ranked)
	}
}

func TestRankUsesFeedback(t *testing.T) {
	t.Parallel()
	r := newTestRanker(t, DefaultConfig())

	candidates := []catalog.Product{
		{ID: "loved", DermatologicallySafe: true, Rating: 4},
		{ID: "unknown", DermatologicallySafe: true, Rating: 4},
	}
	feedback := map[string]catalog.FeedbackStats{
		"loved": {AvgRating: 5, HelpfulRatio: 0.95, SampleSize: 400},
	}

	ranked := r.Rank(candidates, Profile{}, feedback, 10, ModeWarn)

	if ranked[0].Product.ID != "loved" {
		t.Errorf("top product = %s, want the one with strong feedback", ranked[0].Product.ID)
	}
	if ranked[1].SubScores.Feedback != feedbackNeutral {
		t.Errorf("missing feedback sub-score = %v, want neutral", ranked[1].SubScores.Feedback)
	}
}

func TestClampK(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.DefaultK = 10
	cfg.MaxK = 50
	r := newTestRanker(t, cfg)

	tests := []struct {
		in, want int
	}{
		{0, 10},
		{-3, 10},
		{5, 5},
		{50, 50},
		{500, 50},
	}
	for _, tt := range tests {
		if got := r.ClampK(tt.in); got != tt.want {
			t.Errorf("ClampK(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
