package services

import (
	"fmt"
	"strings"
)

// ValidationError is returned when input is missing, malformed or out of range.
// The action is blocked and can be retried after correcting the input.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Message
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// NotFoundError is returned when a table lookup misses.
type NotFoundError struct {
	What string `json:"what"`
	Key  string `json:"key"`
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.What, e.Key)
}

// SchemaMismatchError is returned when a sampling plan row does not carry the
// same AQL level set as the rest of the table.
type SchemaMismatchError struct {
	SampleLetter string    `json:"sample_letter"`
	Expected     []float64 `json:"expected"`
	Got          []float64 `json:"got"`
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("sampling plan %s has AQL levels [%s], expected [%s]",
		e.SampleLetter, joinLevels(e.Got), joinLevels(e.Expected))
}

func joinLevels(levels []float64) string {
	parts := make([]string, len(levels))
	for i, l := range levels {
		parts[i] = FormatAQLLevel(l)
	}
	return strings.Join(parts, ", ")
}
