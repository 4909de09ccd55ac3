// Package agent implements the long-running OMA-DM agent process: an HTTP
// listener that receives Package 0 server-initiated triggers and drives a
// session to completion against the account's configured address.
//
// This is a supplemented feature, not part of the session core: the core
// never defines a transport binding, and a real deployment would likely
// receive Package 0 over WAP Push or SMS rather than plain HTTP. This
// listener exists to demonstrate driving SessionStartOnAlert end to end
// from an external caller the core has no knowledge of.
package agent

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/oma-dm/goclient/internal/dmconfig"
	"github.com/oma-dm/goclient/internal/logger"
)

// Config controls the trigger listener's HTTP server.
type Config struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = 8290
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 15 * time.Second
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
}

// Server is the Package 0 trigger listener.
//
// The server exposes a single POST endpoint that accepts a raw Package 0
// payload, starts a session against the server/session IDs it carries,
// and drives the conversation to completion in the background.
type Server struct {
	server       *http.Server
	config       Config
	shutdownOnce sync.Once
}

// NewServer creates a new trigger-listener HTTP server. The server is
// created in a stopped state; call Start to begin serving requests.
func NewServer(config Config, dmCfg *dmconfig.Config) *Server {
	config.applyDefaults()

	trigger := NewTriggerHandler(dmCfg)
	router := NewRouter(trigger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	return &Server{server: httpServer, config: config}
}

// Start starts the HTTP server and blocks until ctx is canceled or the
// server fails. On cancellation it shuts the server down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		logger.Info("agent trigger listener starting", "port", s.config.Port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			select {
			case errChan <- err:
			default:
			}
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("agent trigger listener shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("trigger listener failed: %w", err)
	}
}

// Stop gracefully shuts down the server. Safe to call more than once.
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("trigger listener shutdown error: %w", err)
			logger.Error("agent trigger listener shutdown error", "error", err)
		} else {
			logger.Info("agent trigger listener stopped gracefully")
		}
	})
	return shutdownErr
}

// Port returns the TCP port the server listens on.
func (s *Server) Port() int {
	return s.config.Port
}
