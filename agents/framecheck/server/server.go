// Package server exposes the popup controller over HTTP: the popup page itself and a
// JSON action endpoint a browser extension can drive.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"time"

	"framecheck/agents/framecheck"
	"framecheck/shared/format"
	"framecheck/shared/monitoring"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	addr    string
	popup   *framecheck.Popup
	router  chi.Router
	origins map[string]bool
}

func New(addr string, popup *framecheck.Popup, monitor *monitoring.Monitor) *Server {
	s := &Server{
		addr:    addr,
		popup:   popup,
		origins: ownOrigins(addr),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Route("/api", func(r chi.Router) {
		r.Use(s.sameOrigin)
		r.Use(requireJSON)
		r.Get("/view", s.handleView)
		r.Post("/actions/{action}", s.handleAction)
	})
	monitoring.NewHealthServer(monitor, "").Routes(r)

	s.router = r
	return s
}

// AllowOrigins adds origins, such as a browser extension's, that may call the API.
func (s *Server) AllowOrigins(origins ...string) {
	for _, o := range origins {
		s.origins[o] = true
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Popup server listening on http://%s", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("popup server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down popup server: %w", err)
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	v, err := s.popup.Dispatch(r.Context(), framecheck.Command{
		Action: framecheck.ActionInit,
		URL:    r.URL.Query().Get("url"),
	})
	if err != nil {
		log.Printf("Failed to render popup: %v", err)
		http.Error(w, "failed to load popup state", http.StatusInternalServerError)
		return
	}

	data := pageData{
		View:       v,
		ResultHTML: template.HTML(format.Sanitize(v.ResultHTML)),
		Modes:      modeOptions,
		Languages:  languageOptions,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := popupPage.Execute(w, data); err != nil {
		log.Printf("Failed to execute popup template: %v", err)
	}
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, framecheck.Command{
		Action: framecheck.ActionInit,
		URL:    r.URL.Query().Get("url"),
	})
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var cmd framecheck.Command
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid command body: %v", err))
			return
		}
	}
	cmd.Action = framecheck.Action(chi.URLParam(r, "action"))
	s.dispatch(w, r, cmd)
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, cmd framecheck.Command) {
	v, err := s.popup.Dispatch(r.Context(), cmd)
	if errors.Is(err, framecheck.ErrUnknownAction) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		log.Printf("Action %s failed: %v", cmd.Action, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	v.ResultHTML = format.Sanitize(v.ResultHTML)
	writeJSON(w, http.StatusOK, v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
