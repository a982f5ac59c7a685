// DermaRec - Personalized Skin and Hair Care Recommendation Engine
// Copyright 2026 Lunara Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lunara-health/dermarec

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lunara-health/dermarec/internal/config"
)

// NewRouter assembles the chi router with the full middleware stack:
// request IDs, access logging, panic recovery, CORS, rate limiting, and
// Prometheus instrumentation.
func NewRouter(h *Handler, cfg config.ServerConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(accessLog)
	r.Use(recoverer)
	r.Use(corsHandler(cfg.CORSOrigins))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rateLimit(cfg.RateLimit))
		r.Use(prometheusMetrics)

		r.Post("/recommendations", h.Recommend)

		r.Route("/rules", func(r chi.Router) {
			r.Get("/", h.ListRules)
			r.Get("/{ruleID}", h.GetRule)
			r.Post("/reload", h.ReloadRules)
		})

		r.Route("/health", func(r chi.Router) {
			r.Get("/", h.Health)
			r.Get("/live", h.HealthLive)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("Endpoint not found")
	})

	return r
}
