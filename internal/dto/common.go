package dto

// ErrorResponse is the uniform error body returned by all handlers.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
