// DermaRec - Personalized Skin and Hair Care Recommendation Engine
// Copyright 2026 Lunara Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lunara-health/dermarec

package validation

import (
	"strings"
	"testing"
)

type sampleRequest struct {
	Name     string `validate:"required"`
	Severity string `validate:"omitempty,severity_name"`
	Status   string `validate:"omitempty,tri_state"`
	Count    int    `validate:"gte=0"`
}

func TestValidateStructPasses(t *testing.T) {
	t.Parallel()

	if err := ValidateStruct(&sampleRequest{Name: "ok", Severity: "high", Status: "unknown"}); err != nil {
		t.Errorf("valid struct rejected: %v", err)
	}
}

func TestValidateStructCollectsAllFailures(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&sampleRequest{Severity: "extreme", Status: "maybe", Count: -1})
	if err == nil {
		t.Fatal("invalid struct passed validation")
	}

	if got := len(err.Errors()); got != 4 {
		t.Errorf("error count = %d, want 4: %v", got, err)
	}

	msg := err.Error()
	for _, want := range []string{
		"Name is required",
		"Severity must be one of: none, caution, high, immediate",
		"Status must be one of: true, false, unknown",
		"Count must be greater than or equal to 0",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}

func TestDetailsShape(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&sampleRequest{})
	if err == nil {
		t.Fatal("empty struct passed validation")
	}

	details := err.Details()
	if len(details) != 1 {
		t.Fatalf("details = %v", details)
	}
	d := details[0]
	if d["field"] != "Name" || d["tag"] != "required" || d["message"] == "" {
		t.Errorf("detail = %v", d)
	}
}

func TestSeverityNameValidator(t *testing.T) {
	t.Parallel()

	for _, valid := range []string{"none", "caution", "high", "immediate"} {
		if err := ValidateStruct(&sampleRequest{Name: "x", Severity: valid}); err != nil {
			t.Errorf("severity %q rejected: %v", valid, err)
		}
	}
	if err := ValidateStruct(&sampleRequest{Name: "x", Severity: "critical"}); err == nil {
		t.Error("severity \"critical\" accepted")
	}
}
