// DermaRec - Personalized Skin and Hair Care Recommendation Engine
// Copyright 2026 Lunara Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lunara-health/dermarec

package rules

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Severity is the escalation severity of a matched rule or of an overall
// evaluation. Severities are totally ordered; the evaluator only ever moves
// upward (monotonic max), never down.
type Severity int

const (
	// SeverityNone indicates no medical escalation.
	SeverityNone Severity = iota
	// SeverityCaution indicates the user should monitor the condition.
	SeverityCaution
	// SeverityHigh indicates a professional consultation is advised.
	SeverityHigh
	// SeverityImmediate indicates the user should seek care now.
	SeverityImmediate
)

// String returns the wire name for the severity.
func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "none"
	case SeverityCaution:
		return "caution"
	case SeverityHigh:
		return "high"
	case SeverityImmediate:
		return "immediate"
	default:
		return "unknown"
	}
}

// HighPriority reports whether the severity requires priority handling.
func (s Severity) HighPriority() bool {
	return s >= SeverityHigh
}

// ParseSeverity converts a wire name into a Severity.
func ParseSeverity(name string) (Severity, error) {
	switch name {
	case "none":
		return SeverityNone, nil
	case "caution":
		return SeverityCaution, nil
	case "high":
		return SeverityHigh, nil
	case "immediate":
		return SeverityImmediate, nil
	default:
		return SeverityNone, fmt.Errorf("unknown severity %q", name)
	}
}

// MarshalJSON encodes the severity as its wire name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a severity from its wire name.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseSeverity(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
