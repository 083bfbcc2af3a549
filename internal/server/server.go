// internal/server/server.go
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gurkanbulca/todoapp/internal/middleware"
	"github.com/gurkanbulca/todoapp/internal/service"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services are the use cases the HTTP API exposes.
type Services struct {
	Accounts    *service.AccountService
	Todos       *service.TodoService
	Tags        *service.TagService
	Attachments *service.AttachmentService
	Contact     *service.ContactService
}

type Options struct {
	Addr          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	MaxUploadSize int64
}

// Server is the JSON HTTP API.
type Server struct {
	services Services
	db       Pinger
	logger   *log.Logger
	opts     Options
	handler  http.Handler
	server   *http.Server
}

func New(services Services, db Pinger, logger *log.Logger, opts Options) *Server {
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = 10 << 20
	}

	s := &Server{
		services: services,
		db:       db,
		logger:   logger.With("component", "http"),
		opts:     opts,
	}

	authn := middleware.NewAuthenticator(services.Accounts, s.logger)
	mux := http.NewServeMux()
	s.routes(mux, authn)

	s.handler = middleware.ExtractClientInfo(
		middleware.AccessLog(s.logger)(
			middleware.Recover(s.logger)(
				corsMiddleware(mux))))

	s.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.handler,
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      opts.WriteTimeout,
	}
	return s
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves in the background; a serve failure is sent on errChan.
func (s *Server) Start(errChan chan<- error) {
	go func() {
		s.logger.Info("HTTP server listening", "addr", s.opts.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server: %w", err)
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
