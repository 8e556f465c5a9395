// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package server hosts the daemon's HTTP endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/luxfi/log"
	"github.com/luxfi/metric"
)

const (
	baseURL              = "/ext"
	maxConcurrentStreams = 64

	// HTTPHeaderServer names the daemon serving a response.
	HTTPHeaderServer = "Elastic-Server"
)

var ErrInvalidRoute = errors.New("invalid route")

type HTTPConfig struct {
	ReadTimeout       time.Duration `json:"readTimeout"`
	ReadHeaderTimeout time.Duration `json:"readHeaderTimeout"`
	WriteTimeout      time.Duration `json:"writeTimeout"`
	IdleTimeout       time.Duration `json:"idleTimeout"`
}

type Config struct {
	HTTPConfig

	AllowedOrigins  []string      `json:"allowedOrigins"`
	ShutdownTimeout time.Duration `json:"shutdownTimeout"`
	// ServerName is attached to every response.
	ServerName string `json:"serverName"`
}

// Server routes API requests to the handlers added to it.
type Server struct {
	log             log.Logger
	clock           clockwork.Clock
	shutdownTimeout time.Duration
	metrics         *serverMetrics
	router          *mux.Router
	handler         http.Handler
	srv             *http.Server
	listener        net.Listener
}

// New returns a server that will serve on listener once dispatched. Request
// metrics are registered in registry.
func New(
	logger log.Logger,
	listener net.Listener,
	config Config,
	registry metric.Registry,
	clock clockwork.Clock,
) *Server {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	router := mux.NewRouter()
	handler := wrapHandler(router, config.ServerName, config.AllowedOrigins)
	httpServer := &http.Server{
		Handler: h2c.NewHandler(
			handler,
			&http2.Server{
				MaxConcurrentStreams: maxConcurrentStreams,
			}),
		ReadTimeout:       config.ReadTimeout,
		ReadHeaderTimeout: config.ReadHeaderTimeout,
		WriteTimeout:      config.WriteTimeout,
		IdleTimeout:       config.IdleTimeout,
	}

	logger.Info("API created",
		log.String("allowedOrigins", strings.Join(config.AllowedOrigins, ",")),
	)
	return &Server{
		log:             logger,
		clock:           clock,
		shutdownTimeout: config.ShutdownTimeout,
		metrics:         newMetrics(registry, clock),
		router:          router,
		handler:         handler,
		srv:             httpServer,
		listener:        listener,
	}
}

// AddRoute serves handler at /ext/<base><endpoint>. Requests are counted
// under base.
func (s *Server) AddRoute(handler http.Handler, base, endpoint string) error {
	if base == "" || strings.Contains(base, "/") {
		return fmt.Errorf("%w: base %q", ErrInvalidRoute, base)
	}
	if endpoint != "" && !strings.HasPrefix(endpoint, "/") {
		return fmt.Errorf("%w: endpoint %q", ErrInvalidRoute, endpoint)
	}

	url := fmt.Sprintf("%s/%s%s", baseURL, base, endpoint)
	s.log.Info("adding route",
		log.String("url", url),
	)
	s.router.Handle(url, s.metrics.wrapHandler(base, handler))
	return nil
}

// Handle serves handler at path without request metrics.
func (s *Server) Handle(path string, handler http.Handler) error {
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("%w: path %q", ErrInvalidRoute, path)
	}
	s.log.Info("adding route",
		log.String("url", path),
	)
	s.router.Handle(path, handler)
	return nil
}

// Handler returns the root handler including the CORS and header wrappers.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Dispatch serves until the server is shut down.
func (s *Server) Dispatch() error {
	err := s.srv.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests and waits for in-flight requests until
// the shutdown timeout elapses.
func (s *Server) Shutdown() error {
	ctx, cancel := clockwork.WithTimeout(context.Background(), s.clock, s.shutdownTimeout)
	err := s.srv.Shutdown(ctx)
	cancel()

	// If shutdown times out, make sure the server is still shutdown.
	_ = s.srv.Close()
	return err
}

func wrapHandler(
	handler http.Handler,
	serverName string,
	allowedOrigins []string,
) http.Handler {
	h := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
	}).Handler(handler)
	if serverName == "" {
		return h
	}
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(HTTPHeaderServer, serverName)
			h.ServeHTTP(w, r)
		},
	)
}
