package validator

import (
	"errors"
	"sort"
	"strings"
)

// InputKey is the field name used for failures that concern the whole payload.
const InputKey = "input"

// ErrMalformedInput is matched by a ValidationError whose payload is not
// JSON at all.
var ErrMalformedInput = errors.New("input is not valid JSON")

// ValidationError carries one message per offending field, keyed by the
// field's wire name.
type ValidationError struct {
	Fields map[string]string
	cause  error
}

// Field builds a ValidationError for a single field.
func Field(name, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{name: message}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Unwrap returns ErrMalformedInput for unparsable payloads and nil otherwise.
func (e *ValidationError) Unwrap() error {
	return e.cause
}

// add records message for field unless the field already has one.
func (e *ValidationError) add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

func (e *ValidationError) empty() bool {
	return len(e.Fields) == 0
}
