package api

import (
	"fmt"
	"strings"
)

// Validation error types reported in FieldError.Type
const (
	TypeMissing     = "missing"
	TypeStringType  = "string_type"
	TypeValueError  = "value_error"
	TypeJSONInvalid = "json_invalid"
	TypeModelType   = "model_attributes_type"
)

const (
	DetailInternalError    = "Internal Server Error"
	DetailNotFound         = "Not Found"
	DetailMethodNotAllowed = "Method Not Allowed"
)

// ErrorResponse is the envelope for every non-2xx response.
// Detail is a string, or a []FieldError for validation failures.
type ErrorResponse struct {
	Detail any `json:"detail"`
}

// FieldError describes one violated field. Loc is the path to the field
// starting with "body".
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ValidationError carries every violation found in one request body
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", strings.Join(fe.Loc, "."), fe.Msg))
	}
	return "validation error: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(fe FieldError) {
	e.Errors = append(e.Errors, fe)
}

func (e *ValidationError) has(field string) bool {
	for _, fe := range e.Errors {
		if len(fe.Loc) > 1 && fe.Loc[1] == field {
			return true
		}
	}
	return false
}
