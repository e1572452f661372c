// Package apierror defines the error envelopes the API returns to clients.
// Every 4xx/5xx body goes through these types so responses stay uniform and
// internal detail (SQL errors, stack traces) never reaches the browser.
package apierror

// APIError is the single-message error envelope.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError carries per-field messages for form/binding failures.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}

// NotFound builds the standard envelope for missing resources.
func NotFound(recurso string) *APIError {
	return &APIError{Detail: recurso + " no encontrado"}
}
