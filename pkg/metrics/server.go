package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes a Registry's metrics over HTTP, for the (optional)
// long-running mode where zstream processes files from a watched
// directory instead of exiting after one file.
type Server struct {
	httpServer *http.Server
}

// NewServer builds a metrics HTTP server bound to addr, serving r at
// path (conventionally "/metrics") and a trivial "/healthz" alongside
// it.
func NewServer(addr, path string, r *Registry) *Server {
	router := mux.NewRouter()
	router.Handle(path, promhttp.HandlerFor(r.GetRegistry(), promhttp.HandlerOpts{}))
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// ListenAndServe runs the metrics server until it errors or is shut
// down, mirroring the standard library's own ListenAndServe contract.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the metrics server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
