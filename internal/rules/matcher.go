// DermaRec - Personalized Skin and Hair Care Recommendation Engine
// Copyright 2026 Lunara Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lunara-health/dermarec

package rules

// truth is the tri-valued result of evaluating a condition leaf. The third
// value exists only for the pregnancy-unknown case: a leaf testing pregnancy
// status against an unknown status is neither true nor false, and the
// surrounding boolean operators propagate that uncertainty so Negation
// cannot launder it into a definite answer.
type truth int

const (
	truthFalse truth = iota
	truthTrue
	truthUnknown
)

// not returns the tri-valued negation. Unknown stays unknown.
func (t truth) not() truth {
	switch t {
	case truthTrue:
		return truthFalse
	case truthFalse:
		return truthTrue
	default:
		return truthUnknown
	}
}

// Matches evaluates a trigger expression against a case. Missing case
// fields never match: a rule whose trigger inspects an absent attribute
// simply fails to match. Uncertainty (pregnancy unknown) also does not
// match a trigger; only contraindications fail safe.
func Matches(expr *Condition, c *Case) bool {
	return evaluate(expr, c) == truthTrue
}

// Contraindicated evaluates a contraindication expression against a case.
// Unlike triggers, an uncertain result counts as matched: when pregnancy
// status is unknown, any contraindication testing pregnancy applies.
// Escalate, never assume safety, when uncertain.
func Contraindicated(expr *Condition, c *Case) bool {
	return evaluate(expr, c) != truthFalse
}

// Explain evaluates a trigger like Matches and additionally collects the
// descriptions of the leaf conditions that matched, for the audit trail.
func Explain(expr *Condition, c *Case) (bool, []string) {
	var matched []string
	t := explain(expr, c, &matched)
	if t != truthTrue {
		return false, nil
	}
	return true, matched
}

// evaluate walks the expression tree with exhaustive structural matching
// over the closed condition union.
func evaluate(expr *Condition, c *Case) truth {
	switch expr.Kind {
	case KindExact:
		return evalExact(expr, c)

	case KindAnyOf:
		return evalAnyOf(expr, c)

	case KindThreshold:
		// A detected condition with no recorded confidence does not
		// match; confidence is never assumed.
		if v, ok := c.Confidence[expr.Condition]; ok && v >= expr.MinConfidence {
			return truthTrue
		}
		return truthFalse

	case KindRange:
		if v, ok := c.numericField(expr.Field); ok && inRange(v, expr.Min, expr.Max) {
			return truthTrue
		}
		return truthFalse

	case KindNot:
		return evaluate(expr.Expr, c).not()

	case KindAll:
		result := truthTrue
		for i := range expr.Exprs {
			switch evaluate(&expr.Exprs[i], c) {
			case truthFalse:
				return truthFalse
			case truthUnknown:
				result = truthUnknown
			}
		}
		return result

	case KindAny:
		result := truthFalse
		for i := range expr.Exprs {
			switch evaluate(&expr.Exprs[i], c) {
			case truthTrue:
				return truthTrue
			case truthUnknown:
				result = truthUnknown
			}
		}
		return result

	default:
		// Unknown kinds are rejected at load time; an unvalidated
		// expression reaching here must not match anything.
		return truthFalse
	}
}

// evalExact evaluates an exact leaf, including condition-set membership and
// the pregnancy tri-state.
func evalExact(expr *Condition, c *Case) truth {
	if expr.Field == FieldCondition {
		if c.HasCondition(expr.Value) {
			return truthTrue
		}
		return truthFalse
	}
	if pregnancyField(expr.Field) && pregnancyUnknown(c) {
		return truthUnknown
	}
	if v, ok := c.stringField(expr.Field); ok && v == expr.Value {
		return truthTrue
	}
	return truthFalse
}

// evalAnyOf evaluates an any_of leaf.
func evalAnyOf(expr *Condition, c *Case) truth {
	if expr.Field == FieldCondition {
		for _, want := range expr.Values {
			if c.HasCondition(want) {
				return truthTrue
			}
		}
		return truthFalse
	}
	if pregnancyField(expr.Field) && pregnancyUnknown(c) {
		return truthUnknown
	}
	v, ok := c.stringField(expr.Field)
	if !ok {
		return truthFalse
	}
	for _, want := range expr.Values {
		if v == want {
			return truthTrue
		}
	}
	return truthFalse
}

// explain mirrors evaluate but records descriptions of matching leaves.
func explain(expr *Condition, c *Case, matched *[]string) truth {
	switch expr.Kind {
	case KindNot:
		t := evaluate(expr.Expr, c).not()
		if t == truthTrue {
			*matched = append(*matched, expr.describe())
		}
		return t
	case KindAll:
		result := truthTrue
		for i := range expr.Exprs {
			switch explain(&expr.Exprs[i], c, matched) {
			case truthFalse:
				return truthFalse
			case truthUnknown:
				result = truthUnknown
			}
		}
		return result
	case KindAny:
		result := truthFalse
		for i := range expr.Exprs {
			switch explain(&expr.Exprs[i], c, matched) {
			case truthTrue:
				result = truthTrue
			case truthUnknown:
				if result == truthFalse {
					result = truthUnknown
				}
			}
		}
		return result
	default:
		t := evaluate(expr, c)
		if t == truthTrue {
			*matched = append(*matched, expr.describe())
		}
		return t
	}
}

// pregnancyUnknown reports whether the case's pregnancy status is absent
// or explicitly unknown.
func pregnancyUnknown(c *Case) bool {
	return c.PregnancyStatus == "" || c.PregnancyStatus == TriUnknown
}

// inRange checks v against optional inclusive bounds.
func inRange(v float64, min, max *float64) bool {
	if min != nil && v < *min {
		return false
	}
	if max != nil && v > *max {
		return false
	}
	return true
}
