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

package gavel

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/blinklabs-io/gavel/governance"
	"github.com/blinklabs-io/gavel/host"
	"github.com/blinklabs-io/gavel/types"
)

// Default component addresses
var (
	DefaultLedgerAddress   = types.MustParseAddress("0x0000000000000000000000000000000000001001")
	DefaultTreasuryAddress = types.MustParseAddress("0x0000000000000000000000000000000000001002")
	DefaultEngineAddress   = types.MustParseAddress("0x0000000000000000000000000000000000001003")
)

// DefaultGovernanceParams are used when no parameters are configured
var DefaultGovernanceParams = governance.Params{
	ProposalThreshold: 1,
	Quorum:            20,
	VotingPeriod:      72 * time.Hour,
}

type Config struct {
	promRegistry     prometheus.Registerer
	logger           *slog.Logger
	clock            host.Clock
	genesis          Genesis
	dataDir          string
	apiListenAddress string
	apiSubmit        bool
	administrators   []types.Address
	params           governance.Params
	shutdownTimeout  time.Duration
	owner            types.Address
	ledgerAddress    types.Address
	treasuryAddress  types.Address
	engineAddress    types.Address
	tracing          bool
	tracingStdout    bool
}

func (n *Node) configValidate() error {
	c := &n.config
	if c.owner.IsZero() {
		return errors.New("an owner address must be configured")
	}
	if c.params.VotingPeriod <= 0 {
		return fmt.Errorf(
			"voting period must be positive, got %s",
			c.params.VotingPeriod,
		)
	}
	addrs := map[types.Address]string{}
	for name, addr := range map[string]types.Address{
		"ledger":   c.ledgerAddress,
		"treasury": c.treasuryAddress,
		"engine":   c.engineAddress,
	} {
		if addr.IsZero() {
			return fmt.Errorf("%s address must not be the null address", name)
		}
		if other, ok := addrs[addr]; ok {
			return fmt.Errorf(
				"%s and %s addresses must differ: %s",
				other,
				name,
				addr,
			)
		}
		addrs[addr] = name
	}
	return c.genesis.validate(c.ledgerAddress)
}

type ConfigOptionFunc func(*Config)

// NewConfig creates a new gavel config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger:          slog.New(slog.NewJSONHandler(io.Discard, nil)),
		clock:           host.SystemClock{},
		params:          DefaultGovernanceParams,
		ledgerAddress:   DefaultLedgerAddress,
		treasuryAddress: DefaultTreasuryAddress,
		engineAddress:   DefaultEngineAddress,
	}
	// Apply options
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithDatabasePath specifies the persistent data directory to use. The default is to store everything in memory
func WithDatabasePath(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithLogger specifies the logger to use. This defaults to discarding log output
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithPrometheusRegistry specifies a prometheus.Registerer instance to add metrics to. In most cases, prometheus.DefaultRegistry would be
// a good choice to get metrics working
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithTracing enables tracing. By default, spans are submitted to a HTTP(s) endpoint using OTLP. This can be configured
// using the OTEL_EXPORTER_OTLP_* env vars documented in the README for [go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp]
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout enables tracing output to stdout. This also requires tracing to enabled separately. This is mostly useful for debugging
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}

// WithClock specifies the time source for calls. Scenarios and tests use a host.ManualClock
func WithClock(clock host.Clock) ConfigOptionFunc {
	return func(c *Config) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithGovernanceParams specifies the initial proposal threshold, quorum and voting period
func WithGovernanceParams(params governance.Params) ConfigOptionFunc {
	return func(c *Config) {
		c.params = params
	}
}

// WithOwner specifies the owner of the administrator role set
func WithOwner(owner types.Address) ConfigOptionFunc {
	return func(c *Config) {
		c.owner = owner
	}
}

// WithAdministrators specifies the initial administrators in addition to the owner
func WithAdministrators(admins ...types.Address) ConfigOptionFunc {
	return func(c *Config) {
		c.administrators = admins
	}
}

// WithLedgerAddress specifies the address of the governance token ledger
func WithLedgerAddress(addr types.Address) ConfigOptionFunc {
	return func(c *Config) {
		c.ledgerAddress = addr
	}
}

// WithTreasuryAddress specifies the custody address of the treasury
func WithTreasuryAddress(addr types.Address) ConfigOptionFunc {
	return func(c *Config) {
		c.treasuryAddress = addr
	}
}

// WithEngineAddress specifies the identity the governance engine uses when calling the treasury
func WithEngineAddress(addr types.Address) ConfigOptionFunc {
	return func(c *Config) {
		c.engineAddress = addr
	}
}

// WithGenesis specifies the initial balances and treasury funding applied to an empty node
func WithGenesis(genesis Genesis) ConfigOptionFunc {
	return func(c *Config) {
		c.genesis = genesis
	}
}

// WithApiListenAddress specifies the listen address for the REST API. An empty value disables it
func WithApiListenAddress(addr string) ConfigOptionFunc {
	return func(c *Config) {
		c.apiListenAddress = addr
	}
}

// WithApiSubmit enables transaction submission through the REST API. It is
// disabled by default because submitted transactions name their own caller
func WithApiSubmit(enabled bool) ConfigOptionFunc {
	return func(c *Config) {
		c.apiSubmit = enabled
	}
}

// WithShutdownTimeout specifies the timeout for graceful shutdown. The default is 30 seconds
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}
