// DermaRec - Personalized Skin and Hair Care Recommendation Engine
// Copyright 2026 Lunara Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lunara-health/dermarec

package rules

import (
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/lunara-health/dermarec/internal/validation"
)

// ErrNoSnapshot is returned when evaluation is attempted before any rule
// document has been loaded.
var ErrNoSnapshot = errors.New("no rule snapshot loaded")

// LoadError reports a rule document that failed validation. The whole load
// is rejected; the previous snapshot stays active.
type LoadError struct {
	// RuleID names the offending rule, or is empty for document-level
	// failures (malformed JSON, duplicate IDs are attributed to the ID).
	RuleID string
	Err    error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.RuleID == "" {
		return fmt.Sprintf("rule document: %v", e.Err)
	}
	return fmt.Sprintf("rule %q: %v", e.RuleID, e.Err)
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error { return e.Err }

// Document is the external rule configuration document.
type Document struct {
	Rules []Rule `json:"rules" validate:"required,min=1,dive"`
}

// Snapshot is an immutable, versioned rule set. Request processing only
// ever reads snapshots; a reload publishes a new one without touching any
// snapshot already handed out.
type Snapshot struct {
	version  int64
	loadedAt time.Time
	rules    []Rule
	byID     map[string]*Rule
}

// Version returns the monotonically increasing snapshot version.
func (s *Snapshot) Version() int64 { return s.version }

// LoadedAt returns when the snapshot was published.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// Len returns the number of rules in the snapshot.
func (s *Snapshot) Len() int { return len(s.rules) }

// Rules returns the snapshot's rules ordered by priority descending, then
// ID ascending. Callers must not mutate the returned slice.
func (s *Snapshot) Rules() []Rule { return s.rules }

// Rule returns a rule by ID.
func (s *Snapshot) Rule(id string) (*Rule, bool) {
	r, ok := s.byID[id]
	return r, ok
}

// Evaluate returns every rule that contributes to the given case: all
// trigger conditions match and no contraindication matches. Results follow
// the snapshot's deterministic rule order.
func (s *Snapshot) Evaluate(c *Case) []MatchedRule {
	matched := make([]MatchedRule, 0)
	for i := range s.rules {
		r := &s.rules[i]

		ok, leaves := Explain(&r.Trigger, c)
		if !ok {
			continue
		}
		if r.Contraindication != nil && Contraindicated(r.Contraindication, c) {
			continue
		}

		matched = append(matched, MatchedRule{Rule: r, MatchedConditions: leaves})
	}
	return matched
}

// Store holds the current rule snapshot and swaps it atomically on reload.
// Reads never block and never observe a partially loaded set.
type Store struct {
	current atomic.Pointer[Snapshot]
	version atomic.Int64
	logger  zerolog.Logger
}

// NewStore creates an empty rule store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewStore(logger zerolog.Logger) *Store {
	return &Store{
		logger: logger.With().Str("component", "rules").Logger(),
	}
}

// Current returns the active snapshot, or nil if none has been loaded.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Load parses, validates, and publishes a rule document. The operation is
// all-or-nothing: any invalid rule rejects the entire document and leaves
// the previous snapshot active. Returns the number of rules loaded.
func (s *Store) Load(doc []byte) (int, error) {
	snapshot, err := s.build(doc)
	if err != nil {
		s.logger.Error().Err(err).Msg("rule document rejected")
		return 0, err
	}

	s.current.Store(snapshot)
	s.logger.Info().
		Int64("version", snapshot.version).
		Int("rules", len(snapshot.rules)).
		Msg("rule snapshot published")

	return len(snapshot.rules), nil
}

// Reload is Load under its operational name; exposed for the admin
// reload trigger.
func (s *Store) Reload(doc []byte) (int, error) {
	return s.Load(doc)
}

// build parses and fully validates a document into a candidate snapshot
// without publishing it.
func (s *Store) build(doc []byte) (*Snapshot, error) {
	var parsed Document
	if err := json.Unmarshal(doc, &parsed); err != nil {
		return nil, &LoadError{Err: fmt.Errorf("parse: %w", err)}
	}
	if len(parsed.Rules) == 0 {
		return nil, &LoadError{Err: errors.New("document contains no rules")}
	}

	byID := make(map[string]*Rule, len(parsed.Rules))
	for i := range parsed.Rules {
		r := &parsed.Rules[i]

		if err := validation.ValidateStruct(r); err != nil {
			return nil, &LoadError{RuleID: r.ID, Err: err}
		}
		if err := r.Validate(); err != nil {
			return nil, &LoadError{RuleID: r.ID, Err: err}
		}
		if _, dup := byID[r.ID]; dup {
			return nil, &LoadError{RuleID: r.ID, Err: errors.New("duplicate rule id")}
		}
		byID[r.ID] = r
	}

	rules := parsed.Rules
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority > rules[j].Priority
		}
		return rules[i].ID < rules[j].ID
	})

	// Rebuild the index after sorting; the slice backing array moved.
	byID = make(map[string]*Rule, len(rules))
	for i := range rules {
		byID[rules[i].ID] = &rules[i]
	}

	return &Snapshot{
		version:  s.version.Add(1),
		loadedAt: time.Now().UTC(),
		rules:    rules,
		byID:     byID,
	}, nil
}
