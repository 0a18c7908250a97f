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

package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/blinklabs-io/gavel"
	"github.com/blinklabs-io/gavel/internal/config"
)

// Options converts the loaded configuration into node options
func Options(
	cfg *config.Config,
	logger *slog.Logger,
	registry prometheus.Registerer,
) ([]gavel.ConfigOptionFunc, error) {
	params, err := cfg.Governance.Params()
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := time.ParseDuration(cfg.ShutdownTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}
	opts := []gavel.ConfigOptionFunc{
		gavel.WithLogger(logger),
		gavel.WithDatabasePath(cfg.DatabasePath),
		gavel.WithOwner(cfg.Owner),
		gavel.WithAdministrators(cfg.Administrators...),
		gavel.WithGovernanceParams(params),
		gavel.WithShutdownTimeout(shutdownTimeout),
		gavel.WithPrometheusRegistry(registry),
		gavel.WithTracing(cfg.Tracing),
		gavel.WithTracingStdout(cfg.TracingStdout),
	}
	if cfg.ApiPort > 0 {
		opts = append(
			opts,
			gavel.WithApiListenAddress(
				net.JoinHostPort(cfg.BindAddr, strconv.FormatUint(uint64(cfg.ApiPort), 10)),
			),
			gavel.WithApiSubmit(cfg.ApiSubmit),
		)
	}
	if cfg.GenesisFile != "" {
		genesis, err := gavel.LoadGenesisFile(cfg.GenesisFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, gavel.WithGenesis(genesis))
	}
	return opts, nil
}

// Run starts a node from the configuration and blocks until SIGINT or SIGTERM
func Run(cfg *config.Config, logger *slog.Logger) error {
	signalCtx, signalCtxStop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer signalCtxStop()
	return RunContext(signalCtx, cfg, logger, prometheus.DefaultRegisterer)
}

// RunContext starts a node along with its metrics listener and blocks until
// the context is done or the node stops
func RunContext(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	registry prometheus.Registerer,
) error {
	logger.Debug(fmt.Sprintf("config: %+v", cfg), "component", "node")
	opts, err := Options(cfg, logger, registry)
	if err != nil {
		return err
	}
	n, err := gavel.New(gavel.NewConfig(opts...))
	if err != nil {
		return err
	}
	shutdownTimeout, _ := time.ParseDuration(cfg.ShutdownTimeout)

	// Metrics listener
	var metricsServer *http.Server
	if cfg.MetricsPort > 0 {
		gatherer := prometheus.DefaultGatherer
		if g, ok := registry.(prometheus.Gatherer); ok {
			gatherer = g
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
		metricsAddr := net.JoinHostPort(
			cfg.BindAddr,
			strconv.FormatUint(uint64(cfg.MetricsPort), 10),
		)
		metricsServer = &http.Server{
			Addr:              metricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 60 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		}
		ln, err := net.Listen("tcp", metricsAddr)
		if err != nil {
			return fmt.Errorf("failed to start metrics listener: %w", err)
		}
		logger.Info(
			"serving prometheus metrics on "+ln.Addr().String(),
			"component", "node",
		)
		go func() {
			if err := metricsServer.Serve(ln); err != nil &&
				!errors.Is(err, http.ErrServerClosed) {
				logger.Error(
					fmt.Sprintf("metrics listener failed: %s", err),
					"component", "node",
				)
			}
		}()
	}
	shutdownMetrics := func() {
		if metricsServer == nil {
			return
		}
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			shutdownTimeout,
		)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", "error", err)
		}
	}
	defer shutdownMetrics()

	// Run node until the context is done
	if err := n.Run(ctx); err != nil {
		logger.Error("shutdown errors occurred", "error", err)
		return err
	}
	logger.Info("shutdown complete")
	return nil
}
