package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/willpowerfitness/coach-api/internal/config"
	"github.com/willpowerfitness/coach-api/internal/infra/queue"
)

type HealthHandler struct {
	DB     *sql.DB
	Broker *queue.RabbitMQ
	Config *config.Config
}

func NewHealthHandler(db *sql.DB, broker *queue.RabbitMQ, cfg *config.Config) *HealthHandler {
	return &HealthHandler{DB: db, Broker: broker, Config: cfg}
}

// Handle reports overall status plus one entry per dependency, so a
// probe can tell a dead database from a missing API key.
func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	deps := map[string]string{
		"database": "OK",
		"rabbitmq": "OK",
		"stripe":   "configured",
		"groq":     "configured",
		"openai":   "configured",
		"printful": "configured",
		"mail":     "configured",
	}
	status := "OK"
	code := http.StatusOK

	if err := h.DB.PingContext(ctx); err != nil {
		deps["database"] = "DOWN: " + err.Error()
		status = "DEGRADED"
		code = http.StatusServiceUnavailable
	}
	if h.Broker == nil || h.Broker.Conn.IsClosed() {
		deps["rabbitmq"] = "DOWN"
		status = "DEGRADED"
		code = http.StatusServiceUnavailable
	}
	if h.Config.GroqAPIKey == "" {
		deps["groq"] = "not configured"
	}
	if h.Config.OpenAIAPIKey == "" {
		deps["openai"] = "not configured"
	}
	if !h.Config.PrintfulConfigured() {
		deps["printful"] = "not configured"
	}
	if !h.Config.MailConfigured() {
		deps["mail"] = "not configured"
	}

	writeJSON(w, code, map[string]any{
		"status":       status,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"dependencies": deps,
	})
}
