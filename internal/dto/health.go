package dto

// HealthResponse is the body of a successful GET /health. Failures are
// rendered as middleware.ErrorResponse.
type HealthResponse struct {
	Status string `json:"status"`
}

const HealthStatusOK = "ok"
