// DermaRec - Personalized Skin and Hair Care Recommendation Engine
// Copyright 2026 Lunara Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lunara-health/dermarec

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/lunara-health/dermarec/internal/logging"
	"github.com/lunara-health/dermarec/internal/metrics"
)

// requestID attaches a request ID to the context and the X-Request-ID
// response header. Incoming X-Request-ID headers are honored so callers can
// correlate across services; otherwise a new ID is generated.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = logging.GenerateRequestID()
		}

		ctx := logging.ContextWithRequestID(r.Context(), id)
		w.Header().Set("X-Request-ID", id)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// accessLog emits one structured log line per request with method, path,
// status, and latency.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logging.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("request_id", logging.RequestIDFromContext(r.Context())).
			Str("remote", r.RemoteAddr).
			Msg("HTTP request")
	})
}

// prometheusMetrics records request counts, durations, and the active
// request gauge. The route pattern, not the raw path, is used as the
// endpoint label to keep cardinality bounded.
func prometheusMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		// The route pattern is resolved after routing; fall back to the
		// raw path when chi has no pattern for this request.
		endpoint := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				endpoint = pattern
			}
		}
		metrics.RecordAPIRequest(r.Method, endpoint, strconv.Itoa(ww.Status()), time.Since(start))
	})
}

// corsHandler builds a CORS middleware for the configured origins.
// An empty origin list disables cross-origin access.
func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

// rateLimit limits requests per client IP per minute. A non-positive limit
// disables limiting.
func rateLimit(requestsPerMinute int) func(http.Handler) http.Handler {
	if requestsPerMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		requestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			NewResponseWriter(w, r).Error(http.StatusTooManyRequests, ErrCodeTooManyRequests, "Rate limit exceeded")
		}),
	)
}

// recoverer converts panics into 500 responses instead of dropped
// connections, logging the panic value with the request ID.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logging.Error().
					Interface("panic", rec).
					Str("request_id", logging.RequestIDFromContext(r.Context())).
					Str("path", r.URL.Path).
					Msg("Panic recovered in HTTP handler")
				NewResponseWriter(w, r).InternalError("Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
