/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"vertex-bank-go/internal/auth"
	"vertex-bank-go/internal/ledger"
	"vertex-bank-go/internal/metrics"
	"vertex-bank-go/internal/models"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"
)

const DefaultAPIPrefix = "/api/v1"

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the services the HTTP surface dispatches to.
type Deps struct {
	Store     Pinger
	Directory *ledger.Directory
	Engine    *ledger.Engine
	Auth      *auth.Service
	Metrics   metrics.Recorder
	Gatherer  prometheus.Gatherer
}

type Server struct {
	cfg     models.ServerConfig
	deps    Deps
	router  *mux.Router
	handler http.Handler
	http    *http.Server
}

func New(cfg models.ServerConfig, deps Deps) *Server {
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = DefaultAPIPrefix
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NoOpRecorder{}
	}

	s := &Server{cfg: cfg, deps: deps}
	s.router = s.routes()
	s.handler = s.router
	if len(cfg.AllowedOrigins) > 0 {
		// Outside the router so preflight requests never reach method matching.
		s.handler = corsMiddleware(cfg.AllowedOrigins, s.router)
	}
	s.http = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Router exposes the handler tree, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.handler
}

// Run listens on the configured address and serves until ctx is cancelled,
// then drains in-flight requests within the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("unable to listen on %s: %w", s.cfg.Address, err)
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.cfg.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, s.cfg.MaxConnections)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zap.L().Info("HTTP server listening",
			zap.String("address", ln.Addr().String()),
			zap.String("api_prefix", s.cfg.APIPrefix),
			zap.Int("max_connections", s.cfg.MaxConnections))
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		zap.L().Info("Shutting down HTTP server")
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		zap.L().Info("HTTP server stopped gracefully")
		return nil
	})
	return g.Wait()
}
