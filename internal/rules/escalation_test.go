// DermaRec - Personalized Skin and Hair Care Recommendation Engine
// Copyright 2026 Lunara Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lunara-health/dermarec

package rules

import (
	"reflect"
	"testing"
)

func escalatingRule(id string, sev Severity, msg string) *Rule {
	return &Rule{
		ID: id,
		Escalation: &Escalation{
			Severity:  sev,
			Condition: "test-condition",
			Message:   msg,
			NextSteps: []string{"consult a professional"},
		},
	}
}

func TestEvaluateEscalationMonotonicMax(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		matched  []MatchedRule
		wantSev  Severity
		wantHigh bool
	}{
		{
			name: "single caution",
			matched: matchedRules(
				escalatingRule("r1", SeverityCaution, "monitor"),
			),
			wantSev:  SeverityCaution,
			wantHigh: false,
		},
		{
			name: "max wins regardless of order",
			matched: matchedRules(
				escalatingRule("r1", SeverityImmediate, "seek care now"),
				escalatingRule("r2", SeverityCaution, "monitor"),
			),
			wantSev:  SeverityImmediate,
			wantHigh: true,
		},
		{
			name: "later higher severity raises",
			matched: matchedRules(
				escalatingRule("r1", SeverityCaution, "monitor"),
				escalatingRule("r2", SeverityHigh, "see a dermatologist"),
			),
			wantSev:  SeverityHigh,
			wantHigh: true,
		},
		{
			name: "conflicting severities resolve upward",
			matched: matchedRules(
				escalatingRule("r1", SeverityHigh, "see a dermatologist"),
				escalatingRule("r2", SeverityCaution, "monitor"),
				escalatingRule("r3", SeverityHigh, "see a dermatologist"),
			),
			wantSev:  SeverityHigh,
			wantHigh: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			advisory := EvaluateEscalation(tt.matched)
			if advisory == nil {
				t.Fatal("EvaluateEscalation() = nil")
			}
			if advisory.Severity != tt.wantSev {
				t.Errorf("Severity = %v, want %v", advisory.Severity, tt.wantSev)
			}
			if advisory.HighPriority != tt.wantHigh {
				t.Errorf("HighPriority = %v, want %v", advisory.HighPriority, tt.wantHigh)
			}
		})
	}
}

func TestEvaluateEscalationMessageFromHighest(t *testing.T) {
	t.Parallel()

	advisory := EvaluateEscalation(matchedRules(
		escalatingRule("r1", SeverityCaution, "monitor"),
		escalatingRule("r2", SeverityImmediate, "seek care now"),
	))

	if advisory.Message != "seek care now" {
		t.Errorf("Message = %q, want message from the highest severity", advisory.Message)
	}
	if !reflect.DeepEqual(advisory.SourceRules, []string{"r1", "r2"}) {
		t.Errorf("SourceRules = %v, want sorted contributing rules", advisory.SourceRules)
	}
}

func TestEvaluateEscalationNilWithoutEscalations(t *testing.T) {
	t.Parallel()

	matched := matchedRules(
		&Rule{ID: "plain", Actions: Actions{Diet: []string{"tip"}}},
	)
	if advisory := EvaluateEscalation(matched); advisory != nil {
		t.Errorf("EvaluateEscalation() = %+v, want nil", advisory)
	}
	if advisory := EvaluateEscalation(nil); advisory != nil {
		t.Errorf("EvaluateEscalation(nil) = %+v, want nil", advisory)
	}
}

func TestSuddenHairLossEscalatesHigh(t *testing.T) {
	t.Parallel()

	rule := &Rule{
		ID:   "hair-loss-escalation",
		Name: "Sudden hair loss",
		Trigger: Condition{
			Kind: KindExact, Field: FieldCondition, Value: "sudden_hair_loss",
		},
		Escalation: &Escalation{
			Severity:  SeverityHigh,
			Condition: "sudden_hair_loss",
			Message:   "Sudden hair loss can indicate an underlying condition",
			NextSteps: []string{"Consult a dermatologist or trichologist"},
		},
	}
	c := Case{Conditions: []string{"sudden_hair_loss"}}

	if !Matches(&rule.Trigger, &c) {
		t.Fatal("trigger should match sudden_hair_loss")
	}

	advisory := EvaluateEscalation(matchedRules(rule))
	if advisory.Severity < SeverityHigh {
		t.Errorf("Severity = %v, want at least high", advisory.Severity)
	}
	if !advisory.HighPriority {
		t.Error("HighPriority = false, want true")
	}
}

func TestSeverityParseAndOrdering(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"none", "caution", "high", "immediate"} {
		sev, err := ParseSeverity(name)
		if err != nil {
			t.Fatalf("ParseSeverity(%q) error: %v", name, err)
		}
		if sev.String() != name {
			t.Errorf("round trip %q -> %q", name, sev.String())
		}
	}

	if _, err := ParseSeverity("critical"); err == nil {
		t.Error("ParseSeverity should reject unknown names")
	}
	if SeverityCaution.HighPriority() {
		t.Error("caution must not be high priority")
	}
	if !SeverityImmediate.HighPriority() {
		t.Error("immediate must be high priority")
	}
}
