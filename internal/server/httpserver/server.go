package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/foteam/sessionstore/internal/infra/tlscert"
	"github.com/foteam/sessionstore/internal/server/config"
	"github.com/foteam/sessionstore/internal/telemetry/logger"
)

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	certFile   string
	keyFile    string

	mu    sync.Mutex
	certs *tlscert.Reloader
}

// New creates a new HTTP server from the http section of the config.
func New(cfg config.HTTPConfig, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		certFile: cfg.TLSCertFile,
		keyFile:  cfg.TLSKeyFile,
	}
}

// Serve accepts connections on ln until Shutdown. TLS is used when a
// certificate pair is configured; the pair is reloaded when its files
// change. http.ErrServerClosed is not reported.
func (s *Server) Serve(ln net.Listener) error {
	var err error
	if s.certFile != "" {
		certs, lerr := tlscert.New(s.certFile, s.keyFile, tlscert.WithLogger(logger.Default()))
		if lerr != nil {
			return lerr
		}
		certs.StartAsync()
		s.mu.Lock()
		s.certs = certs
		s.mu.Unlock()

		s.httpServer.TLSConfig = certs.TLSConfig()
		err = s.httpServer.ServeTLS(ln, "", "")
	} else {
		err = s.httpServer.Serve(ln)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// ListenAndServe listens on the configured address and serves.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.certs != nil {
		s.certs.Stop()
	}
	s.mu.Unlock()
	return s.httpServer.Shutdown(ctx)
}
