package monitoring

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type HealthServer struct {
	monitor *Monitor
	port    string
}

func NewHealthServer(monitor *Monitor, port string) *HealthServer {
	if port == "" {
		port = "8080"
	}
	return &HealthServer{
		monitor: monitor,
		port:    port,
	}
}

// Routes mounts /health and /status on r, so the popup server can expose them too.
func (h *HealthServer) Routes(r chi.Router) {
	r.Get("/health", h.healthHandler)
	r.Get("/status", h.statusHandler)
}

// Handler returns a router serving only the health endpoints.
func (h *HealthServer) Handler() http.Handler {
	r := chi.NewRouter()
	h.Routes(r)
	return r
}

// Start serves the health endpoints in the background. The returned server can be
// shut down by the caller.
func (h *HealthServer) Start() *http.Server {
	srv := &http.Server{
		Addr:    ":" + h.port,
		Handler: h.Handler(),
	}

	log.Printf("Health check server starting on port %s", h.port)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Health server error: %v", err)
		}
	}()
	return srv
}

func (h *HealthServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	if h.monitor.IsHealthy() {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK - %s", h.monitor.GetStatusSummary())
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintf(w, "Service unhealthy - %s", h.monitor.GetStatusSummary())
	}
}

func (h *HealthServer) statusHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "%s", h.monitor.GetStatusSummary())
}
