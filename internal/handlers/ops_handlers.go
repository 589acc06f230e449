package handlers

import (
	"context"
	"net/http"

	"github.com/aspet/simple-bank/models"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// LedgerStats is what the ops endpoints need from storage.
type LedgerStats interface {
	Ping(ctx context.Context) error
	Summary(ctx context.Context) (models.LedgerSummary, error)
}

type OpsHandler struct {
	stats  LedgerStats
	logger *zap.Logger
}

func NewOpsHandler(stats LedgerStats, logger *zap.Logger) *OpsHandler {
	return &OpsHandler{stats: stats, logger: logger}
}

func (h *OpsHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *OpsHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.stats.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *OpsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	summary, err := h.stats.Summary(r.Context())
	if err != nil {
		h.logger.Error("ledger summary failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
