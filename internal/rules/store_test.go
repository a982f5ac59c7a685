// DermaRec - Personalized Skin and Hair Care Recommendation Engine
// Copyright 2026 Lunara Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lunara-health/dermarec

package rules

import (
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

const validDoc = `{
  "rules": [
    {
      "id": "oily-acne",
      "name": "Oily skin with acne",
      "priority": 10,
      "trigger": {
        "kind": "all",
        "exprs": [
          {"kind": "exact", "field": "skin_type", "value": "oily"},
          {"kind": "exact", "field": "condition", "value": "acne"}
        ]
      },
      "actions": {
        "product_tags": ["oil-free", "non-comedogenic"],
        "diet": ["Reduce dairy intake"]
      }
    },
    {
      "id": "retinoid-pregnancy",
      "name": "Retinoid caution",
      "priority": 20,
      "trigger": {"kind": "exact", "field": "condition", "value": "acne"},
      "contraindication": {"kind": "exact", "field": "pregnancy_status", "value": "true"},
      "actions": {
        "product_tags": ["retinoid"]
      }
    },
    {
      "id": "hair-loss-escalation",
      "name": "Sudden hair loss",
      "priority": 30,
      "trigger": {"kind": "exact", "field": "condition", "value": "sudden_hair_loss"},
      "actions": {},
      "escalation": {
        "severity": "high",
        "condition": "sudden_hair_loss",
        "message": "Sudden hair loss can indicate an underlying condition",
        "next_steps": ["Consult a dermatologist"]
      }
    }
  ]
}`

func newTestStore() *Store {
	return NewStore(zerolog.Nop())
}

func TestStoreLoad(t *testing.T) {
	t.Parallel()

	store := newTestStore()
	count, err := store.Load([]byte(validDoc))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if count != 3 {
		t.Errorf("Load() count = %d, want 3", count)
	}

	snap := store.Current()
	if snap == nil {
		t.Fatal("Current() = nil after load")
	}
	if snap.Version() != 1 {
		t.Errorf("Version() = %d, want 1", snap.Version())
	}

	// Rules ordered by priority descending.
	rules := snap.Rules()
	if rules[0].ID != "hair-loss-escalation" || rules[2].ID != "oily-acne" {
		t.Errorf("unexpected rule order: %s ... %s", rules[0].ID, rules[2].ID)
	}

	if _, ok := snap.Rule("retinoid-pregnancy"); !ok {
		t.Error("Rule() lookup failed for loaded rule")
	}
}

func TestStoreCurrentBeforeLoad(t *testing.T) {
	t.Parallel()

	if snap := newTestStore().Current(); snap != nil {
		t.Errorf("Current() = %+v, want nil before first load", snap)
	}
}

func TestStoreReloadAllOrNothing(t *testing.T) {
	t.Parallel()

	store := newTestStore()
	if _, err := store.Load([]byte(validDoc)); err != nil {
		t.Fatalf("initial load: %v", err)
	}
	before := store.Current()

	badDoc := `{
	  "rules": [
	    {"id": "ok", "name": "Valid", "trigger": {"kind": "exact", "field": "skin_type", "value": "dry"}, "actions": {"diet": ["x"]}},
	    {"id": "broken", "name": "Broken", "trigger": {"kind": "range", "field": "age"}, "actions": {"diet": ["y"]}}
	  ]
	}`

	count, err := store.Reload([]byte(badDoc))
	if err == nil {
		t.Fatal("Reload() succeeded with an invalid rule")
	}
	if count != 0 {
		t.Errorf("Reload() count = %d, want 0 on failure", count)
	}

	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("error type = %T, want *LoadError", err)
	}
	if loadErr.RuleID != "broken" {
		t.Errorf("LoadError.RuleID = %q, want the offending rule", loadErr.RuleID)
	}

	// Previous snapshot must stay active, same version.
	after := store.Current()
	if after != before {
		t.Error("failed reload replaced the active snapshot")
	}
}

func TestStoreReloadBumpsVersion(t *testing.T) {
	t.Parallel()

	store := newTestStore()
	if _, err := store.Load([]byte(validDoc)); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := store.Reload([]byte(validDoc)); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if v := store.Current().Version(); v != 2 {
		t.Errorf("Version() = %d, want 2 after reload", v)
	}
}

func TestStoreLoadRejectsDuplicateIDs(t *testing.T) {
	t.Parallel()

	doc := `{
	  "rules": [
	    {"id": "dup", "name": "One", "trigger": {"kind": "exact", "field": "skin_type", "value": "dry"}, "actions": {"diet": ["a"]}},
	    {"id": "dup", "name": "Two", "trigger": {"kind": "exact", "field": "skin_type", "value": "oily"}, "actions": {"diet": ["b"]}}
	  ]
	}`

	_, err := newTestStore().Load([]byte(doc))
	if err == nil {
		t.Fatal("Load() accepted duplicate rule IDs")
	}
	if !strings.Contains(err.Error(), "dup") {
		t.Errorf("error %q does not name the duplicate rule", err.Error())
	}
}

func TestStoreLoadRejectsMalformedAndEmpty(t *testing.T) {
	t.Parallel()

	store := newTestStore()
	if _, err := store.Load([]byte("{not json")); err == nil {
		t.Error("Load() accepted malformed JSON")
	}
	if _, err := store.Load([]byte(`{"rules": []}`)); err == nil {
		t.Error("Load() accepted an empty rule list")
	}
	if store.Current() != nil {
		t.Error("rejected documents must not publish a snapshot")
	}
}

func TestSnapshotEvaluate(t *testing.T) {
	t.Parallel()

	store := newTestStore()
	if _, err := store.Load([]byte(validDoc)); err != nil {
		t.Fatalf("load: %v", err)
	}
	snap := store.Current()

	tests := []struct {
		name    string
		c       Case
		wantIDs []string
	}{
		{
			name:    "oily skin with acne matches both acne rules",
			c:       Case{SkinType: "oily", Conditions: []string{"acne"}, PregnancyStatus: TriFalse},
			wantIDs: []string{"retinoid-pregnancy", "oily-acne"},
		},
		{
			name:    "pregnancy unknown suppresses the contraindicated rule",
			c:       Case{SkinType: "oily", Conditions: []string{"acne"}},
			wantIDs: []string{"oily-acne"},
		},
		{
			name:    "pregnant suppresses the contraindicated rule",
			c:       Case{SkinType: "oily", Conditions: []string{"acne"}, PregnancyStatus: TriTrue},
			wantIDs: []string{"oily-acne"},
		},
		{
			name:    "no conditions match nothing",
			c:       Case{SkinType: "normal"},
			wantIDs: []string{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			matched := snap.Evaluate(&tt.c)
			gotIDs := make([]string, 0, len(matched))
			for _, m := range matched {
				gotIDs = append(gotIDs, m.Rule.ID)
			}
			if len(gotIDs) != len(tt.wantIDs) {
				t.Fatalf("matched %v, want %v", gotIDs, tt.wantIDs)
			}
			for i := range gotIDs {
				if gotIDs[i] != tt.wantIDs[i] {
					t.Errorf("matched %v, want %v", gotIDs, tt.wantIDs)
					break
				}
			}
		})
	}
}

func TestSnapshotEvaluateRecordsMatchedConditions(t *testing.T) {
	t.Parallel()

	store := newTestStore()
	if _, err := store.Load([]byte(validDoc)); err != nil {
		t.Fatalf("load: %v", err)
	}

	c := Case{SkinType: "oily", Conditions: []string{"acne"}, PregnancyStatus: TriFalse}
	matched := store.Current().Evaluate(&c)

	for _, m := range matched {
		if len(m.MatchedConditions) == 0 {
			t.Errorf("rule %s matched with no recorded conditions", m.Rule.ID)
		}
	}
}
