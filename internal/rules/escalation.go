// DermaRec - Personalized Skin and Hair Care Recommendation Engine
// Copyright 2026 Lunara Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lunara-health/dermarec

package rules

import "sort"

// Advisory is the overall escalation result of one evaluation. Severity is
// the maximum over all matched escalation-carrying rules; the message,
// condition, and next steps come from the rules at that maximum.
type Advisory struct {
	Severity  Severity `json:"severity"`
	Condition string   `json:"condition,omitempty"`
	Message   string   `json:"message"`
	NextSteps []string `json:"next_steps,omitempty"`

	// HighPriority is true iff severity is HIGH or IMMEDIATE.
	HighPriority bool `json:"high_priority"`

	// SourceRules lists the escalation-carrying rules that matched,
	// sorted, for the audit trail.
	SourceRules []string `json:"source_rules"`
}

// EvaluateEscalation computes the overall escalation advisory from the
// matched rules. The severity is a monotonic max: processing order cannot
// lower a severity already reached, and when two rules disagree about the
// same condition the higher severity wins. Returns nil when no matched rule
// carries an escalation.
func EvaluateEscalation(matched []MatchedRule) *Advisory {
	var advisory *Advisory

	for _, mr := range matched {
		esc := mr.Rule.Escalation
		if esc == nil {
			continue
		}

		if advisory == nil {
			advisory = &Advisory{Severity: esc.Severity}
		}
		advisory.SourceRules = append(advisory.SourceRules, mr.Rule.ID)

		if esc.Severity > advisory.Severity || advisory.Message == "" {
			if esc.Severity > advisory.Severity {
				advisory.Severity = esc.Severity
			}
			advisory.Condition = esc.Condition
			advisory.Message = esc.Message
			advisory.NextSteps = append([]string(nil), esc.NextSteps...)
		}
	}

	if advisory == nil {
		return nil
	}

	advisory.HighPriority = advisory.Severity.HighPriority()
	sort.Strings(advisory.SourceRules)
	return advisory
}
