// DermaRec - Personalized Skin and Hair Care Recommendation Engine
// Copyright 2026 Lunara Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lunara-health/dermarec

package rules

import "strings"

// TriState represents an attribute that may be affirmatively true, false,
// or simply not known. The zero value is unknown.
type TriState string

const (
	// TriUnknown means the attribute was not reported.
	TriUnknown TriState = "unknown"
	// TriTrue means the attribute is affirmatively true.
	TriTrue TriState = "true"
	// TriFalse means the attribute is affirmatively false.
	TriFalse TriState = "false"
)

// Recognized field names for exact/any_of/range conditions.
const (
	// FieldSkinType is the string skin type (oily, dry, combination, ...).
	FieldSkinType = "skin_type"
	// FieldHairType is the string hair type (straight, curly, coily, ...).
	FieldHairType = "hair_type"
	// FieldCondition tests membership in the detected-condition set.
	FieldCondition = "condition"
	// FieldGender is the reported gender.
	FieldGender = "gender"
	// FieldPregnancy is the tri-state pregnancy status.
	FieldPregnancy = "pregnancy_status"
	// FieldSensitivity is the reported skin sensitivity level.
	FieldSensitivity = "skin_sensitivity"
	// FieldAge is the numeric age, usable in range conditions.
	FieldAge = "age"
)

// confidencePrefix addresses per-condition confidence in range conditions,
// e.g. field "confidence.acne".
const confidencePrefix = "confidence."

// Case is the structured input describing a user's detected conditions and
// safety-relevant attributes. It is produced by an upstream analysis service
// and treated as read-only here. Absent fields are zero values; the matcher
// treats them as non-matching rather than erroring.
type Case struct {
	SkinType        string             `json:"skin_type,omitempty"`
	HairType        string             `json:"hair_type,omitempty"`
	Conditions      []string           `json:"conditions,omitempty"`
	Confidence      map[string]float64 `json:"confidence,omitempty"`
	Age             *int               `json:"age,omitempty"`
	Gender          string             `json:"gender,omitempty"`
	PregnancyStatus TriState           `json:"pregnancy_status,omitempty" validate:"omitempty,oneof=true false unknown"`
	Allergies       []string           `json:"allergies,omitempty"`
	SkinSensitivity string             `json:"skin_sensitivity,omitempty"`
}

// HasCondition reports whether the named condition was detected.
func (c *Case) HasCondition(name string) bool {
	for _, cond := range c.Conditions {
		if cond == name {
			return true
		}
	}
	return false
}

// stringField returns the value of a string-valued case field.
// The second return is false when the field is absent from the case.
func (c *Case) stringField(field string) (string, bool) {
	switch field {
	case FieldSkinType:
		return c.SkinType, c.SkinType != ""
	case FieldHairType:
		return c.HairType, c.HairType != ""
	case FieldGender:
		return c.Gender, c.Gender != ""
	case FieldPregnancy:
		if c.PregnancyStatus == "" || c.PregnancyStatus == TriUnknown {
			return "", false
		}
		return string(c.PregnancyStatus), true
	case FieldSensitivity:
		return c.SkinSensitivity, c.SkinSensitivity != ""
	default:
		return "", false
	}
}

// numericField returns the value of a numeric case field, including the
// confidence.<condition> pseudo-fields.
func (c *Case) numericField(field string) (float64, bool) {
	if field == FieldAge {
		if c.Age == nil {
			return 0, false
		}
		return float64(*c.Age), true
	}
	if name, ok := strings.CutPrefix(field, confidencePrefix); ok {
		v, present := c.Confidence[name]
		return v, present
	}
	return 0, false
}

// pregnancyField reports whether the condition field tests pregnancy status.
func pregnancyField(field string) bool {
	return field == FieldPregnancy
}
