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
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/lunara-health/dermarec/internal/config"
	"github.com/lunara-health/dermarec/internal/metrics"
)

// maxResponseBytes caps upstream response bodies to guard against a
// misbehaving service streaming unbounded data.
const maxResponseBytes = 8 << 20 // 8MB

// Client fetches candidate products from the upstream catalog service.
// Calls are wrapped in a circuit breaker so a failing catalog degrades
// recommendations instead of stalling them.
type Client struct {
	baseURL string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[[]Product]
	logger  zerolog.Logger
}

// NewClient creates a catalog client for the configured base URL.
func NewClient(cfg config.CatalogConfig, logger zerolog.Logger) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.With().Str("component", "catalog").Logger(),
	}
	c.cb = newBreaker[[]Product]("catalog", c.logger)
	return c
}

// Resolve fetches catalog products matching any of the given tags.
// An empty tag set returns the full eligible catalog page.
func (c *Client) Resolve(ctx context.Context, tags []string) ([]Product, error) {
	start := time.Now()

	products, err := c.cb.Execute(func() ([]Product, error) {
		endpoint := c.baseURL + "/products"
		if len(tags) > 0 {
			endpoint += "?tags=" + url.QueryEscape(strings.Join(tags, ","))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create catalog request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("catalog request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog response: %w", err)
		}

		var payload struct {
			Products []Product `json:"products"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, fmt.Errorf("failed to decode catalog response: %w", err)
		}
		return payload.Products, nil
	})

	metrics.RecordUpstream("catalog", time.Since(start), err)
	if err != nil {
		c.logger.Warn().Err(err).Strs("tags", tags).Msg("Catalog resolve failed")
		return nil, err
	}

	c.logger.Debug().Int("products", len(products)).Strs("tags", tags).Msg("Catalog resolve succeeded")
	return products, nil
}

// newBreaker builds a circuit breaker tuned for upstream HTTP dependencies:
// it opens after a 60% failure rate with at least 10 requests, and probes
// recovery after 30 seconds.
func newBreaker[T any](name string, logger zerolog.Logger) *gobreaker.CircuitBreaker[T] {
	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state transition")
		},
	})
}
