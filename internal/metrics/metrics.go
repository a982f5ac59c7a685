// DermaRec - Personalized Skin and Hair Care Recommendation Engine
// Copyright 2026 Lunara Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lunara-health/dermarec

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Integration for Production Observability
// This package instruments:
// - Rule evaluation and matching
// - Escalation advisories by severity
// - Allergy filtering and product ranking
// - Rule set reloads
// - API endpoint latency and throughput
// - Upstream catalog/feedback calls and cache efficiency

var (
	// Rule Engine Metrics
	EvaluationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rules_evaluation_duration_seconds",
			Help:    "Duration of a full rule set evaluation against one case",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		},
	)

	RuleMatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rules_matches_total",
			Help: "Total number of rule evaluations by outcome",
		},
		[]string{"rule_id", "outcome"}, // "matched", "unmatched", "contraindicated"
	)

	EscalationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rules_escalations_total",
			Help: "Total number of escalation advisories emitted by severity",
		},
		[]string{"severity"},
	)

	RuleReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rules_reloads_total",
			Help: "Total number of rule set reload attempts",
		},
		[]string{"status"}, // "success", "failure"
	)

	RuleSetSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rules_loaded",
			Help: "Number of rules in the currently active rule set",
		},
	)

	RuleSetVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rules_snapshot_version",
			Help: "Monotonic version of the currently active rule snapshot",
		},
	)

	// Ranking Metrics
	RankingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ranking_duration_seconds",
			Help:    "Duration of candidate scoring and ranking in seconds",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05},
		},
	)

	CandidatesFiltered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_candidates_filtered_total",
			Help: "Total number of candidates removed or flagged by the allergy filter",
		},
		[]string{"mechanism"}, // "ingredient", "tag", "avoid_for"
	)

	CandidatesRanked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ranking_candidates_ranked_total",
			Help: "Total number of candidates scored across all requests",
		},
	)

	// Upstream Catalog/Feedback Metrics
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Total number of upstream catalog and feedback requests",
		},
		[]string{"service", "status"}, // service: "catalog", "feedback"
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Upstream request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service"},
	)

	FeedbackCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feedback_cache_hits_total",
			Help: "Total number of feedback cache hits",
		},
	)

	FeedbackCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feedback_cache_misses_total",
			Help: "Total number of feedback cache misses",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)
)

// RecordEvaluation records a full rule set evaluation.
func RecordEvaluation(duration time.Duration) {
	EvaluationDuration.Observe(duration.Seconds())
}

// RecordRuleOutcome records the outcome of a single rule evaluation.
func RecordRuleOutcome(ruleID, outcome string) {
	RuleMatches.WithLabelValues(ruleID, outcome).Inc()
}

// RecordEscalation records an emitted escalation advisory.
func RecordEscalation(severity string) {
	EscalationsTotal.WithLabelValues(severity).Inc()
}

// RecordReload records a rule set reload attempt and, on success,
// updates the active rule count and snapshot version gauges.
func RecordReload(ruleCount int, version int64, err error) {
	if err != nil {
		RuleReloads.WithLabelValues("failure").Inc()
		return
	}
	RuleReloads.WithLabelValues("success").Inc()
	RuleSetSize.Set(float64(ruleCount))
	RuleSetVersion.Set(float64(version))
}

// RecordRanking records a scoring pass over a candidate set.
func RecordRanking(duration time.Duration, candidates int) {
	RankingDuration.Observe(duration.Seconds())
	CandidatesRanked.Add(float64(candidates))
}

// RecordFiltered records a candidate removed or flagged by the allergy filter.
func RecordFiltered(mechanism string) {
	CandidatesFiltered.WithLabelValues(mechanism).Inc()
}

// RecordUpstream records a call to an upstream catalog or feedback service.
func RecordUpstream(service string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	UpstreamRequests.WithLabelValues(service, status).Inc()
	UpstreamRequestDuration.WithLabelValues(service).Observe(duration.Seconds())
}

// RecordAPIRequest records an API request with its duration.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the active request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
