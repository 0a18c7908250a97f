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

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/blinklabs-io/gavel/governance"
	"github.com/blinklabs-io/gavel/types"
)

type ctxKey string

const configContextKey ctxKey = "gavel.config"

const (
	DefaultShutdownTimeout = "30s"
	DefaultVotingPeriod    = "72h"
)

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

type tempConfig struct {
	Config *yaml.Node `yaml:"config,omitempty"`
}

// GovernanceConfig holds the parameters applied to new proposals
type GovernanceConfig struct {
	ProposalThreshold uint64 `yaml:"proposalThreshold" split_words:"true"`
	Quorum            uint64 `yaml:"quorum"`
	VotingPeriod      string `yaml:"votingPeriod"      split_words:"true"`
}

// Params converts the configured values into governance parameters
func (g GovernanceConfig) Params() (governance.Params, error) {
	votingPeriod, err := time.ParseDuration(g.VotingPeriod)
	if err != nil {
		return governance.Params{}, fmt.Errorf("invalid voting period: %w", err)
	}
	if votingPeriod <= 0 {
		return governance.Params{}, errors.New("voting period must be positive")
	}
	return governance.Params{
		ProposalThreshold: g.ProposalThreshold,
		Quorum:            g.Quorum,
		VotingPeriod:      votingPeriod,
	}, nil
}

type Config struct {
	DatabasePath    string           `yaml:"databasePath"    split_words:"true"`
	BindAddr        string           `yaml:"bindAddr"        split_words:"true"`
	ShutdownTimeout string           `yaml:"shutdownTimeout" split_words:"true"`
	GenesisFile     string           `yaml:"genesisFile"     split_words:"true"`
	Owner           types.Address    `yaml:"owner"`
	Administrators  []types.Address  `yaml:"administrators"`
	Governance      GovernanceConfig `yaml:"governance"`
	ApiPort         uint             `yaml:"apiPort"         split_words:"true"`
	ApiSubmit       bool             `yaml:"apiSubmit"       split_words:"true"`
	MetricsPort     uint             `yaml:"metricsPort"     split_words:"true"`
	Tracing         bool             `yaml:"tracing"`
	TracingStdout   bool             `yaml:"tracingStdout"   split_words:"true"`
}

func defaultConfig() *Config {
	return &Config{
		DatabasePath:    ".gavel",
		BindAddr:        "127.0.0.1",
		ShutdownTimeout: DefaultShutdownTimeout,
		ApiPort:         3000,
		MetricsPort:     12798,
		Governance: GovernanceConfig{
			ProposalThreshold: 1,
			Quorum:            20,
			VotingPeriod:      DefaultVotingPeriod,
		},
	}
}

var globalConfig = defaultConfig()

func LoadConfig(configFile string) (*Config, error) {
	// Load config file as YAML if provided
	if configFile == "" {
		// Check for config file in this path: ~/.gavel/gavel.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".gavel", "gavel.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}

		// Try to check for /etc/gavel/gavel.yaml if still not found
		if configFile == "" {
			systemPath := "/etc/gavel/gavel.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}

	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		var tempCfg tempConfig
		if err := yaml.Unmarshal(buf, &tempCfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
		if tempCfg.Config != nil {
			// Overlay config section onto existing defaults
			if err := tempCfg.Config.Decode(globalConfig); err != nil {
				return nil, fmt.Errorf("error parsing config section: %w", err)
			}
		} else if err := yaml.Unmarshal(buf, globalConfig); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	// Process environment variables
	if err := envconfig.Process("gavel", globalConfig); err != nil {
		return nil, fmt.Errorf("error processing environment: %+w", err)
	}
	if err := globalConfig.validate(); err != nil {
		return nil, err
	}
	return globalConfig, nil
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown timeout: %w", err)
	}
	if _, err := c.Governance.Params(); err != nil {
		return err
	}
	return nil
}

func GetConfig() *Config {
	return globalConfig
}
