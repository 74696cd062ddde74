package handlers

import (
	"context"
	"net/http"
)

// Readiness is the bootstrap contract handlers depend on.
type Readiness interface {
	// EnsureReady blocks until initialization completed, or returns the
	// attempt's failure.
	EnsureReady(ctx context.Context) error
	// Ready reports the current state without performing I/O.
	Ready() bool
}

type HealthResponse struct {
	Status        string `json:"status"`
	DBInitialized bool   `json:"dbInitialized"`
}

// Health answers liveness with the current bootstrap state. It must respond
// even mid-outage, so it never calls EnsureReady and touches no I/O.
func Health(boot Readiness) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{
			Status:        "ok",
			DBInitialized: boot.Ready(),
		})
	}
}
