package routers

import (
	"net/http"

	"pox-exporter/handlers"

	"github.com/gorilla/mux"
)

// RegisterRoutes sets up all the HTTP routes for the exporter
func RegisterRoutes(r *mux.Router, h *handlers.Handler) {

	// Unclean paths such as //metrics are 404s, not redirects
	r.SkipClean(true)

	// Fetches the node and indexer on every scrape
	r.HandleFunc("/metrics", h.Metrics).Methods("GET")

	// Static liveness payload
	r.HandleFunc("/health", h.Health).Methods("GET")

	// Wrong method on a known path is a plain 404 as well
	r.NotFoundHandler = http.HandlerFunc(h.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(h.NotFound)
}
