package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"pox-exporter/logger"
)

const healthBody = `{"status": "ok"}`

// Scraper produces one metrics document per call.
type Scraper interface {
	Scrape(ctx context.Context) string
}

// Handler contains the HTTP handlers for the exporter endpoints
type Handler struct {
	Exporter Scraper
}

// NewHandler creates and returns a new Handler instance
func NewHandler(e Scraper) *Handler {
	return &Handler{Exporter: e}
}

// Metrics queries the upstreams and returns the exposition document
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	body := h.Exporter.Scrape(r.Context())

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		logger.Logger.Debug("Failed to write metrics response", zap.Error(err))
	}
}

// Health answers liveness probes without touching any upstream
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(healthBody))
}

// NotFound is served for every other path and method, with an empty body
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
}
