package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"altcad-web/internal/messaging"
)

// Health returns basic health check
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
	})
}

// dependencyStatus is one dependency's slice of the readiness report.
type dependencyStatus struct {
	Status    string `json:"status"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Ready reports readiness: the server can serve pages only when the database
// and the message broker are reachable. The auth service is deliberately not
// checked; its failures surface per-request as form errors.
func Ready(db *sql.DB, rmq *messaging.RabbitMQ) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := map[string]dependencyStatus{
			"database": checkDatabase(ctx, db),
			"rabbitmq": checkRabbitMQ(rmq),
		}

		status := "ready"
		code := http.StatusOK
		for _, check := range checks {
			if check.Status != "up" {
				status = "not_ready"
				code = http.StatusServiceUnavailable
				break
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"checks":    checks,
		})
	}
}

func checkDatabase(ctx context.Context, db *sql.DB) dependencyStatus {
	start := time.Now()
	if err := db.PingContext(ctx); err != nil {
		return dependencyStatus{
			Status:    "down",
			LatencyMs: time.Since(start).Milliseconds(),
			Error:     err.Error(),
		}
	}
	return dependencyStatus{
		Status:    "up",
		LatencyMs: time.Since(start).Milliseconds(),
	}
}

func checkRabbitMQ(rmq *messaging.RabbitMQ) dependencyStatus {
	if rmq.IsClosed() {
		return dependencyStatus{
			Status: "down",
			Error:  "connection closed",
		}
	}
	return dependencyStatus{Status: "up"}
}
