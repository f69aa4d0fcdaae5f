package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"docask/internal/handlers"
)

// Server wraps the HTTP listener and routes.
type Server struct {
	httpServer *http.Server
	logger     arbor.ILogger
}

// New builds the server with its routes.
func New(host string, port int, upload *handlers.UploadHandler, ask *handlers.AskHandler, logger arbor.ILogger) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/upload", upload.HandleUpload)
	mux.HandleFunc("/ask", ask.HandleAsk)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Start blocks serving HTTP until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("HTTP server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
