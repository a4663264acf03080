package models

// Error codes surfaced in API responses and mapped to client sentinels.
const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeForbidden          = "FORBIDDEN"
	CodeDuplicateUsername  = "DUPLICATE_USERNAME"
	CodeNotFound           = "NOT_FOUND"
)

// ErrorResponse is the JSON body written for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// HealthCheckResponse is the JSON body for the healthcheck endpoint
type HealthCheckResponse struct {
	Alive bool `json:"alive"`
}
