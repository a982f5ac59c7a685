// DermaRec - Personalized Skin and Hair Care Recommendation Engine
// Copyright 2026 Lunara Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lunara-health/dermarec

// Package catalog defines the product catalog and feedback data model and
// the clients that fetch both from upstream services. Both upstreams are
// optional: when unconfigured, requests must carry their own candidates and
// feedback scoring falls back to a neutral value.
package catalog

import "context"

// Product is a catalog entry eligible for ranking.
type Product struct {
	ID                   string   `json:"id" validate:"required"`
	Name                 string   `json:"name" validate:"required"`
	Brand                string   `json:"brand,omitempty"`
	Ingredients          []string `json:"ingredients,omitempty"`
	Tags                 []string `json:"tags,omitempty"`
	DermatologicallySafe bool     `json:"dermatologically_safe"`
	RecommendedFor       []string `json:"recommended_for,omitempty"`
	AvoidFor             []string `json:"avoid_for,omitempty"`
	Rating               float64  `json:"rating" validate:"gte=0,lte=5"`
	ReviewCount          int      `json:"review_count" validate:"gte=0"`
	Price                float64  `json:"price,omitempty"`
}

// FeedbackStats holds aggregated user feedback for a single product.
type FeedbackStats struct {
	AvgRating    float64 `json:"avg_rating"`
	HelpfulRatio float64 `json:"helpful_ratio"`
	SampleSize   int     `json:"sample_size"`
}

// Resolver fetches candidate products matching a set of tags.
type Resolver interface {
	Resolve(ctx context.Context, tags []string) ([]Product, error)
}

// FeedbackProvider fetches feedback statistics for a set of product IDs.
// Products without feedback are simply absent from the returned map.
type FeedbackProvider interface {
	Feedback(ctx context.Context, productIDs []string) (map[string]FeedbackStats, error)
}
