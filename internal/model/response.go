package model

// ErrorKey is the key used in single-message error bodies.
const ErrorKey = "error"

// ErrorBody builds the {"error": message} response shape.
func ErrorBody(message string) map[string]string {
	return map[string]string{ErrorKey: message}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Status string `json:"status"`
}
