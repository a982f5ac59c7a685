// DermaRec - Personalized Skin and Hair Care Recommendation Engine
// Copyright 2026 Lunara Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lunara-health/dermarec

package rules

import (
	"fmt"
)

// ConditionKind discriminates the closed set of condition expression types.
// The matcher switches exhaustively on this kind; adding a new kind is a
// compile-time visible change in every consumer.
type ConditionKind string

const (
	// KindExact matches a case field against a single value.
	KindExact ConditionKind = "exact"
	// KindAnyOf matches a case field against a set of values.
	KindAnyOf ConditionKind = "any_of"
	// KindThreshold matches when a detected condition's confidence meets a minimum.
	KindThreshold ConditionKind = "threshold"
	// KindRange matches a numeric case field against an inclusive range.
	KindRange ConditionKind = "range"
	// KindNot negates a sub-expression.
	KindNot ConditionKind = "not"
	// KindAll matches when every sub-expression matches.
	KindAll ConditionKind = "all"
	// KindAny matches when at least one sub-expression matches.
	KindAny ConditionKind = "any"
)

// Condition is a recursive expression evaluated against a Case. Exactly the
// fields relevant to its Kind are set; Validate enforces that per kind.
type Condition struct {
	Kind ConditionKind `json:"kind"`

	// Field names the case attribute inspected by exact/any_of/range.
	// See case.go for the recognized field names.
	Field string `json:"field,omitempty"`

	// Value is the expected value for exact.
	Value string `json:"value,omitempty"`

	// Values is the accepted value set for any_of.
	Values []string `json:"values,omitempty"`

	// Condition names the detected condition inspected by threshold.
	Condition string `json:"condition,omitempty"`

	// MinConfidence is the inclusive lower bound for threshold.
	MinConfidence float64 `json:"min_confidence,omitempty"`

	// Min and Max are the inclusive bounds for range. A nil bound is open.
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`

	// Expr is the negated sub-expression for not.
	Expr *Condition `json:"expr,omitempty"`

	// Exprs are the sub-expressions for all/any.
	Exprs []Condition `json:"exprs,omitempty"`
}

// Validate checks the expression tree for structural correctness.
func (c *Condition) Validate() error {
	switch c.Kind {
	case KindExact:
		if c.Field == "" {
			return fmt.Errorf("exact condition requires a field")
		}
		if c.Value == "" {
			return fmt.Errorf("exact condition on %q requires a value", c.Field)
		}
	case KindAnyOf:
		if c.Field == "" {
			return fmt.Errorf("any_of condition requires a field")
		}
		if len(c.Values) == 0 {
			return fmt.Errorf("any_of condition on %q requires values", c.Field)
		}
	case KindThreshold:
		if c.Condition == "" {
			return fmt.Errorf("threshold condition requires a condition name")
		}
		if c.MinConfidence < 0 || c.MinConfidence > 1 {
			return fmt.Errorf("threshold on %q: min_confidence must be in [0, 1], got %f", c.Condition, c.MinConfidence)
		}
	case KindRange:
		if c.Field == "" {
			return fmt.Errorf("range condition requires a field")
		}
		if c.Min == nil && c.Max == nil {
			return fmt.Errorf("range condition on %q requires min or max", c.Field)
		}
		if c.Min != nil && c.Max != nil && *c.Min > *c.Max {
			return fmt.Errorf("range condition on %q: min %f exceeds max %f", c.Field, *c.Min, *c.Max)
		}
	case KindNot:
		if c.Expr == nil {
			return fmt.Errorf("not condition requires an expr")
		}
		return c.Expr.Validate()
	case KindAll, KindAny:
		if len(c.Exprs) == 0 {
			return fmt.Errorf("%s condition requires exprs", c.Kind)
		}
		for i := range c.Exprs {
			if err := c.Exprs[i].Validate(); err != nil {
				return fmt.Errorf("%s[%d]: %w", c.Kind, i, err)
			}
		}
	default:
		return fmt.Errorf("unknown condition kind %q", c.Kind)
	}
	return nil
}

// describe returns a compact human-readable form for audit trails.
func (c *Condition) describe() string {
	switch c.Kind {
	case KindExact:
		return fmt.Sprintf("%s=%s", c.Field, c.Value)
	case KindAnyOf:
		return fmt.Sprintf("%s in %v", c.Field, c.Values)
	case KindThreshold:
		return fmt.Sprintf("confidence(%s)>=%.2f", c.Condition, c.MinConfidence)
	case KindRange:
		switch {
		case c.Min != nil && c.Max != nil:
			return fmt.Sprintf("%s in [%g, %g]", c.Field, *c.Min, *c.Max)
		case c.Min != nil:
			return fmt.Sprintf("%s>=%g", c.Field, *c.Min)
		default:
			return fmt.Sprintf("%s<=%g", c.Field, *c.Max)
		}
	case KindNot:
		return "not(" + c.Expr.describe() + ")"
	case KindAll:
		return fmt.Sprintf("all(%d)", len(c.Exprs))
	case KindAny:
		return fmt.Sprintf("any(%d)", len(c.Exprs))
	default:
		return string(c.Kind)
	}
}
