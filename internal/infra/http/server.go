package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	srv *http.Server
}

func New(addr string, exposeMetrics bool, api API, log *slog.Logger) *Server {
	return &Server{srv: &http.Server{Addr: addr, Handler: NewHandler(api, exposeMetrics, log)}}
}

// NewHandler builds the mux. api may be nil, in which case only the health
// and metrics endpoints are served.
func NewHandler(api API, exposeMetrics bool, log *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if exposeMetrics {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	if api != nil {
		h := &handlers{api: api, log: log}
		mux.HandleFunc("GET /v1/status", h.status)
		mux.HandleFunc("GET /v1/subscriptions/{owner}", h.subscription)
		mux.HandleFunc("GET /v1/subscriptions/{owner}/users", h.users)
		mux.HandleFunc("GET /v1/balances/{owner}/{id}", h.balance)
		mux.HandleFunc("GET /v1/metadata/{id}", h.metadata)
		mux.HandleFunc("GET /v1/events", h.events)
	}

	return mux
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
