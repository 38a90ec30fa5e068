// Package apierror defines the error envelope every 4xx/5xx response uses.
// Funneling errors through here keeps client payloads uniform and keeps
// internals (SQL errors, stack traces) out of them.
package apierror

// APIError carries a single human-readable message.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError carries per-field failures from request validation, keyed
// by struct field name with the failed tag as the value.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation error", Fields: fields}
}
