// DermaRec - Personalized Skin and Hair Care Recommendation Engine
// Copyright 2026 Lunara Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lunara-health/dermarec

package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/lunara-health/dermarec/internal/cache"
	"github.com/lunara-health/dermarec/internal/config"
	"github.com/lunara-health/dermarec/internal/metrics"
)

// FeedbackClient fetches aggregated product feedback from the upstream
// feedback service. Results are cached per product in an LRU with TTL, so
// repeated rankings of popular products skip the network entirely.
type FeedbackClient struct {
	baseURL string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[map[string]FeedbackStats]
	cache   *cache.LRU[FeedbackStats]
	logger  zerolog.Logger
}

// NewFeedbackClient creates a feedback client for the configured base URL.
func NewFeedbackClient(cfg config.FeedbackConfig, logger zerolog.Logger) *FeedbackClient {
	c := &FeedbackClient{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
		cache:  cache.NewLRU[FeedbackStats](cfg.CacheCapacity, cfg.CacheTTL),
		logger: logger.With().Str("component", "feedback").Logger(),
	}
	c.cb = newBreaker[map[string]FeedbackStats]("feedback", c.logger)
	return c
}

// Feedback returns feedback statistics for the given product IDs.
// Cached entries are served locally; only the misses are fetched upstream.
// Products the upstream has no data for are absent from the result.
func (c *FeedbackClient) Feedback(ctx context.Context, productIDs []string) (map[string]FeedbackStats, error) {
	result := make(map[string]FeedbackStats, len(productIDs))
	misses := make([]string, 0, len(productIDs))

	for _, id := range productIDs {
		if stats, ok := c.cache.Get(id); ok {
			metrics.FeedbackCacheHits.Inc()
			result[id] = stats
			continue
		}
		metrics.FeedbackCacheMisses.Inc()
		misses = append(misses, id)
	}

	if len(misses) == 0 {
		return result, nil
	}

	fetched, err := c.fetch(ctx, misses)
	if err != nil {
		// Partial data is still useful; the caller decides whether a
		// degraded fetch should fall back to neutral scoring.
		if len(result) > 0 {
			c.logger.Warn().Err(err).Int("cached", len(result)).Msg("Feedback fetch failed, serving cached subset")
			return result, err
		}
		return nil, err
	}

	for id, stats := range fetched {
		c.cache.Add(id, stats)
		result[id] = stats
	}

	return result, nil
}

func (c *FeedbackClient) fetch(ctx context.Context, productIDs []string) (map[string]FeedbackStats, error) {
	start := time.Now()

	stats, err := c.cb.Execute(func() (map[string]FeedbackStats, error) {
		reqBody, err := json.Marshal(struct {
			ProductIDs []string `json:"product_ids"`
		}{ProductIDs: productIDs})
		if err != nil {
			return nil, fmt.Errorf("failed to encode feedback request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/feedback/stats", strings.NewReader(string(reqBody)))
		if err != nil {
			return nil, fmt.Errorf("failed to create feedback request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("feedback request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("feedback service returned status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return nil, fmt.Errorf("failed to read feedback response: %w", err)
		}

		var payload struct {
			Stats map[string]FeedbackStats `json:"stats"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, fmt.Errorf("failed to decode feedback response: %w", err)
		}
		return payload.Stats, nil
	})

	metrics.RecordUpstream("feedback", time.Since(start), err)
	if err != nil {
		c.logger.Warn().Err(err).Int("products", len(productIDs)).Msg("Feedback fetch failed")
		return nil, err
	}

	return stats, nil
}

// CacheStats exposes feedback cache hit/miss counters for diagnostics.
func (c *FeedbackClient) CacheStats() (hits, misses int64) {
	return c.cache.Stats()
}
