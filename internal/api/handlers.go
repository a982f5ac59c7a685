// DermaRec - Personalized Skin and Hair Care Recommendation Engine
// Copyright 2026 Lunara Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lunara-health/dermarec

package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/lunara-health/dermarec/internal/logging"
	"github.com/lunara-health/dermarec/internal/metrics"
	"github.com/lunara-health/dermarec/internal/recommend"
	"github.com/lunara-health/dermarec/internal/rules"
	"github.com/lunara-health/dermarec/internal/validation"
)

// maxRequestBytes caps request bodies; rule documents and candidate lists
// are the largest expected payloads.
const maxRequestBytes = 4 << 20 // 4MB

// Handler serves the DermaRec HTTP endpoints.
type Handler struct {
	engine *recommend.Engine
	store  *rules.Store
}

// NewHandler creates a Handler backed by the given engine and rule store.
func NewHandler(engine *recommend.Engine, store *rules.Store) *Handler {
	return &Handler{
		engine: engine,
		store:  store,
	}
}

// Recommend handles POST /api/v1/recommendations.
// It validates the request, runs the full evaluation pipeline, and returns
// the assembled recommendation.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req recommend.Request
	if !h.decode(rw, r, &req) {
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationError("Invalid recommendation request", verr.Details())
		return
	}

	if req.RequestID == "" {
		req.RequestID = logging.RequestIDFromContext(r.Context())
	}

	rec, err := h.engine.Evaluate(r.Context(), &req)
	if err != nil {
		if errors.Is(err, rules.ErrNoSnapshot) {
			rw.ServiceUnavailable(ErrCodeRulesNotLoaded, "No rule set has been loaded")
			return
		}
		logging.Error().Err(err).Str("request_id", req.RequestID).Msg("Recommendation evaluation failed")
		rw.InternalError("Recommendation evaluation failed")
		return
	}

	rw.Success(rec)
}

// ReloadRules handles POST /api/v1/rules/reload.
// The body is a complete rule document; loading is all-or-nothing and the
// previous snapshot stays active on failure.
func (h *Handler) ReloadRules(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	doc, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		rw.BadRequest("Failed to read request body")
		return
	}
	if len(doc) == 0 {
		rw.BadRequest("Rule document must not be empty")
		return
	}

	count, err := h.store.Reload(doc)
	snap := h.store.Current()
	var version int64
	if snap != nil {
		version = snap.Version()
	}
	metrics.RecordReload(count, version, err)

	if err != nil {
		var loadErr *rules.LoadError
		if errors.As(err, &loadErr) {
			rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeRuleLoadFailed, loadErr.Error(), map[string]string{
				"rule_id": loadErr.RuleID,
			})
			return
		}
		rw.Error(http.StatusBadRequest, ErrCodeRuleLoadFailed, err.Error())
		return
	}

	rw.Success(map[string]interface{}{
		"loaded":  count,
		"version": version,
	})
}

// ListRules handles GET /api/v1/rules.
// Returns the active snapshot's rules in evaluation order.
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	snap := h.store.Current()
	if snap == nil {
		rw.ServiceUnavailable(ErrCodeRulesNotLoaded, "No rule set has been loaded")
		return
	}

	rw.Success(map[string]interface{}{
		"version":   snap.Version(),
		"loaded_at": snap.LoadedAt(),
		"count":     snap.Len(),
		"rules":     snap.Rules(),
	})
}

// GetRule handles GET /api/v1/rules/{ruleID}.
func (h *Handler) GetRule(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	snap := h.store.Current()
	if snap == nil {
		rw.ServiceUnavailable(ErrCodeRulesNotLoaded, "No rule set has been loaded")
		return
	}

	ruleID := chi.URLParam(r, "ruleID")
	rule, ok := snap.Rule(ruleID)
	if !ok {
		rw.NotFound("Rule not found: " + ruleID)
		return
	}

	rw.Success(rule)
}

// Health handles GET /api/v1/health.
// Reports ready only once a rule snapshot is active.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	snap := h.store.Current()
	status := "ready"
	if snap == nil {
		status = "waiting_for_rules"
	}

	data := map[string]interface{}{
		"status": status,
	}
	if snap != nil {
		data["rules_version"] = snap.Version()
		data["rules_loaded"] = snap.Len()
	}

	rw.Success(data)
}

// HealthLive handles GET /api/v1/health/live.
// Liveness is unconditional: the process is up.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "alive"})
}

// decode reads and unmarshals a JSON request body, writing a 400 on failure.
// Returns false if the response has already been written.
func (h *Handler) decode(rw *ResponseWriter, r *http.Request, v interface{}) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		rw.BadRequest("Failed to read request body")
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		rw.BadRequest("Invalid JSON: " + err.Error())
		return false
	}
	return true
}
