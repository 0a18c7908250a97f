// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package api serves the REST query and transaction submission surface
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"connectrpc.com/connect"
	"connectrpc.com/grpchealth"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// HealthServiceName is reported as serving by the gRPC health endpoint
const HealthServiceName = "gavel.v1.GovernanceService"

type ApiConfig struct {
	ListenAddress string
	// EnableSubmit exposes POST /api/v0/tx. The caller field of a submitted
	// transaction is trusted as-is, so only enable it for trusted clients
	EnableSubmit bool
}

// Api is the REST API server.
type Api struct {
	config     ApiConfig
	logger     *slog.Logger
	node       ApiNode
	httpServer *http.Server
	listenAddr net.Addr
	mu         sync.Mutex
}

// New creates a new API server instance.
func New(
	cfg ApiConfig,
	node ApiNode,
	logger *slog.Logger,
) *Api {
	if logger == nil {
		logger = slog.New(
			slog.NewJSONHandler(io.Discard, nil),
		)
	}
	logger = logger.With("component", "api")
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = ":3000"
	}
	return &Api{
		config: cfg,
		logger: logger,
		node:   node,
	}
}

// Handler returns the HTTP handler serving every route
func (a *Api) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", a.handleRoot)
	mux.HandleFunc("GET /health", a.handleHealth)
	mux.HandleFunc("GET /api/v0/params", a.handleParams)
	mux.HandleFunc("GET /api/v0/proposals", a.handleProposals)
	mux.HandleFunc("GET /api/v0/proposals/{id}", a.handleProposal)
	mux.HandleFunc(
		"GET /api/v0/proposals/{id}/votes/{voter}",
		a.handleVote,
	)
	mux.HandleFunc("GET /api/v0/accounts/{address}", a.handleAccount)
	mux.HandleFunc(
		"GET /api/v0/treasury/proposals/{id}",
		a.handleTreasuryProposal,
	)
	mux.HandleFunc(
		"GET /api/v0/treasury/balances/{asset}",
		a.handleTreasuryBalance,
	)
	mux.HandleFunc("GET /api/v0/events", a.handleEvents)
	mux.HandleFunc("POST /api/v0/tx", a.handleSubmit)
	mux.Handle(
		grpchealth.NewHandler(
			grpchealth.NewStaticChecker(HealthServiceName),
			connect.WithCompressMinBytes(1024),
		),
	)
	// Use h2c so that gRPC health checks work without TLS
	return h2c.NewHandler(mux, &http2.Server{})
}

// Start starts the HTTP server in a background goroutine.
func (a *Api) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.httpServer != nil {
		a.mu.Unlock()
		return errors.New("server already started")
	}
	server := &http.Server{
		Addr:              a.config.ListenAddress,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 60 * time.Second,
	}
	// Bind first so that port conflicts are reported to the caller
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		a.mu.Unlock()
		return fmt.Errorf("failed to listen for API server: %w", err)
	}
	a.httpServer = server
	a.listenAddr = ln.Addr()
	a.mu.Unlock()
	go func() {
		if err := server.Serve(ln); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			a.logger.Error(
				"API server error",
				"error", err,
			)
		}
	}()
	a.logger.Info("API listener started on " + ln.Addr().String())
	if a.config.EnableSubmit && !isLoopback(ln.Addr()) {
		a.logger.Warn(
			"transaction submission is enabled on a non-loopback address",
			"address", ln.Addr().String(),
		)
	}

	// Monitor context for cancellation
	go func() {
		<-ctx.Done()
		//nolint:contextcheck
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			30*time.Second,
		)
		defer cancel()
		//nolint:contextcheck
		if err := a.Stop(shutdownCtx); err != nil {
			a.logger.Error(
				"failed to shutdown API server on context cancellation",
				"error", err,
			)
		}
	}()
	return nil
}

// Addr returns the address the server is listening on, or nil when stopped
func (a *Api) Addr() net.Addr {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.listenAddr
}

// Stop gracefully shuts down the HTTP server.
func (a *Api) Stop(ctx context.Context) error {
	a.mu.Lock()
	srv := a.httpServer
	a.httpServer = nil
	a.listenAddr = nil
	a.mu.Unlock()
	if srv == nil {
		return nil
	}
	a.logger.Debug("shutting down API server")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown API server: %w", err)
	}
	return nil
}

func isLoopback(addr net.Addr) bool {
	tcpAddr, ok := addr.(*net.TCPAddr)
	return ok && tcpAddr.IP.IsLoopback()
}
