// DermaRec - Personalized Skin and Hair Care Recommendation Engine
// Copyright 2026 Lunara Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lunara-health/dermarec

// Package rules implements the rule evaluation core: the versioned rule
// store, condition matching against a Case, deterministic action merging,
// and the monotonic escalation evaluator.
package rules

import "fmt"

// ActionKind discriminates the closed set of rule action types.
type ActionKind int

const (
	// ActionRoutineStep is a care routine instruction for a time of day.
	ActionRoutineStep ActionKind = iota
	// ActionDietTip is a dietary suggestion.
	ActionDietTip
	// ActionProductTag requests candidate products carrying a catalog tag.
	ActionProductTag
	// ActionWarning is a safety warning shown verbatim to the user.
	ActionWarning
)

// String returns a human-readable name for the action kind.
func (k ActionKind) String() string {
	switch k {
	case ActionRoutineStep:
		return "routine_step"
	case ActionDietTip:
		return "diet_tip"
	case ActionProductTag:
		return "product_tag"
	case ActionWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// RoutineStep is a single care routine instruction.
type RoutineStep struct {
	// TimeOfDay is the routine slot (morning, evening, weekly, ...).
	TimeOfDay string `json:"time_of_day" validate:"required"`

	// Instruction is the step text.
	Instruction string `json:"instruction" validate:"required"`
}

// Escalation is the optional medical escalation attached to a rule.
type Escalation struct {
	// Severity is the escalation level this rule asserts when matched.
	Severity Severity `json:"severity"`

	// Condition names the detected condition motivating the escalation.
	Condition string `json:"condition,omitempty"`

	// Message is shown to the user when the escalation applies.
	Message string `json:"message" validate:"required"`

	// NextSteps lists concrete follow-up actions.
	NextSteps []string `json:"next_steps,omitempty"`
}

// Actions is the action set a rule contributes when it matches.
type Actions struct {
	Routines    []RoutineStep `json:"routines,omitempty" validate:"dive"`
	Diet        []string      `json:"diet,omitempty"`
	Warnings    []string      `json:"warnings,omitempty"`
	ProductTags []string      `json:"product_tags,omitempty"`
}

// Empty reports whether the action set contributes nothing.
func (a *Actions) Empty() bool {
	return len(a.Routines) == 0 && len(a.Diet) == 0 &&
		len(a.Warnings) == 0 && len(a.ProductTags) == 0
}

// Rule is a single trigger/contraindication/action/escalation record.
// A rule contributes to a recommendation iff its trigger matches the case
// and its contraindication (if any) does not.
type Rule struct {
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Category string `json:"category,omitempty"`

	// Priority orders rules within a snapshot; higher evaluates first.
	// Evaluation order only affects the ordering of merged actions, never
	// whether a rule contributes.
	Priority int `json:"priority,omitempty"`

	// Trigger must match for the rule to contribute.
	Trigger Condition `json:"trigger"`

	// Contraindication, when present and matched, disqualifies the rule
	// regardless of the trigger.
	Contraindication *Condition `json:"contraindication,omitempty"`

	// Actions are contributed when the rule matches.
	Actions Actions `json:"actions"`

	// Escalation, when present, feeds the escalation evaluator.
	Escalation *Escalation `json:"escalation,omitempty"`
}

// Validate checks the rule for structural correctness beyond struct tags.
func (r *Rule) Validate() error {
	if err := r.Trigger.Validate(); err != nil {
		return fmt.Errorf("trigger: %w", err)
	}
	if r.Contraindication != nil {
		if err := r.Contraindication.Validate(); err != nil {
			return fmt.Errorf("contraindication: %w", err)
		}
	}
	if r.Actions.Empty() && r.Escalation == nil {
		return fmt.Errorf("rule contributes no actions and no escalation")
	}
	return nil
}

// MatchedRule records a rule that contributed to an evaluation, with the
// sub-conditions that matched, for the audit trail.
type MatchedRule struct {
	Rule *Rule

	// MatchedConditions are compact descriptions of the trigger leaves
	// that matched, e.g. "skin_type=oily".
	MatchedConditions []string
}
