package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/hongminglow/minibank/internal/http/respond"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler returns uptime and basic status.
type HealthHandler struct {
	startedAt time.Time
	store     Pinger
	log       logrus.FieldLogger
}

// NewHealthHandler creates a health endpoint handler.
func NewHealthHandler(startedAt time.Time, store Pinger, log logrus.FieldLogger) *HealthHandler {
	return &HealthHandler{startedAt: startedAt, store: store, log: log}
}

// Register wires the handler into the router.
func (h *HealthHandler) Register(r *mux.Router) {
	r.HandleFunc("/health", h.handle).Methods(http.MethodGet)
}

func (h *HealthHandler) handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, storage, code := "ok", "up", http.StatusOK
	if err := h.store.Ping(ctx); err != nil {
		h.log.WithError(err).Warn("health: store ping failed")
		status, storage, code = "degraded", "down", http.StatusServiceUnavailable
	}
	body := map[string]string{
		"status":  status,
		"storage": storage,
		"uptime":  time.Since(h.startedAt).Truncate(time.Second).String(),
	}
	if code != http.StatusOK {
		respond.Write(w, code, respond.Envelope{Data: body, Error: "Storage unavailable"})
		return
	}
	respond.JSON(w, code, "Service is healthy", body)
}
