// DermaRec - Personalized Skin and Hair Care Recommendation Engine
// Copyright 2026 Lunara Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lunara-health/dermarec

// Package validation provides struct validation using go-playground/validator
// v10 through a thread-safe singleton instance, with custom validators for
// DermaRec's domain values (severity names, tri-state attributes) and error
// translation into the API error format.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// singleton validator instance
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// severityNames are the accepted escalation severity wire names.
var severityNames = map[string]struct{}{
	"none": {}, "caution": {}, "high": {}, "immediate": {},
}

// triStateNames are the accepted tri-state attribute wire names.
var triStateNames = map[string]struct{}{
	"true": {}, "false": {}, "unknown": {},
}

// FieldError represents a single field validation failure.
type FieldError struct {
	field   string
	tag     string
	param   string
	message string
}

// Field returns the struct field name that failed validation.
func (e *FieldError) Field() string { return e.field }

// Tag returns the validation tag that failed.
func (e *FieldError) Tag() string { return e.tag }

// Error returns a human-readable error message.
func (e *FieldError) Error() string { return e.message }

// RequestValidationError is a collection of field validation failures.
type RequestValidationError struct {
	errors []FieldError
}

// Errors returns the individual field errors.
func (ve *RequestValidationError) Errors() []FieldError { return ve.errors }

// Error implements the error interface with a combined message.
func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(ve.errors))
	for i, err := range ve.errors {
		messages[i] = err.message
	}
	return strings.Join(messages, "; ")
}

// Details returns a structured form suitable for API error payloads.
func (ve *RequestValidationError) Details() []map[string]string {
	details := make([]map[string]string, len(ve.errors))
	for i, err := range ve.errors {
		details[i] = map[string]string{
			"field":   err.field,
			"tag":     err.tag,
			"message": err.message,
		}
	}
	return details
}

// GetValidator returns the singleton validator instance, initializing it
// with DermaRec's custom validators on first use.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// severity_name: escalation severity wire names.
		_ = validate.RegisterValidation("severity_name", func(fl validator.FieldLevel) bool {
			_, ok := severityNames[fl.Field().String()]
			return ok
		})

		// tri_state: pregnancy-style tri-valued attributes.
		_ = validate.RegisterValidation("tri_state", func(fl validator.FieldLevel) bool {
			_, ok := triStateNames[fl.Field().String()]
			return ok
		})
	})

	return validate
}

// ValidateStruct validates a struct using the singleton validator.
// Returns nil on success, or *RequestValidationError describing every
// failing field.
func ValidateStruct(s interface{}) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &RequestValidationError{
			errors: []FieldError{{field: "unknown", tag: "unknown", message: err.Error()}},
		}
	}

	fieldErrors := make([]FieldError, len(validationErrs))
	for i, fieldErr := range validationErrs {
		fieldErrors[i] = FieldError{
			field:   fieldErr.Field(),
			tag:     fieldErr.Tag(),
			param:   fieldErr.Param(),
			message: translateError(fieldErr),
		}
	}

	return &RequestValidationError{errors: fieldErrors}
}

// errorMessageTemplates maps validation tags to plain message templates.
var errorMessageTemplates = map[string]string{
	"required":      "%s is required",
	"severity_name": "%s must be one of: none, caution, high, immediate",
	"tri_state":     "%s must be one of: true, false, unknown",
}

// errorMessageWithParam maps validation tags to templates including the
// tag parameter.
var errorMessageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"min":   "%s must be at least %s",
	"max":   "%s must be at most %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
}

// translateError converts a validator.FieldError to a human-readable message.
func translateError(fe validator.FieldError) string {
	field := fe.Field()
	tag := fe.Tag()

	if template, ok := errorMessageTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}
	if template, ok := errorMessageWithParam[tag]; ok {
		return fmt.Sprintf(template, field, fe.Param())
	}
	return fmt.Sprintf("%s failed validation on %s", field, tag)
}
