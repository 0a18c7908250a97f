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

package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/blinklabs-io/gavel"
	"github.com/blinklabs-io/gavel/internal/config"
	"github.com/blinklabs-io/gavel/internal/node"
)

var errNoConfig = errors.New("no config found in context")

// checkGenesis parses the genesis file up front so that a bad file is
// reported before any storage is opened
func checkGenesis(cfg *config.Config) error {
	if cfg.GenesisFile == "" {
		return nil
	}
	_, err := gavel.LoadGenesisFile(cfg.GenesisFile)
	return err
}

func serveCommand() *cobra.Command {
	var apiPort uint
	var databasePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run as a node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				return errNoConfig
			}
			if cmd.Flags().Changed("api-port") {
				cfg.ApiPort = apiPort
			}
			if cmd.Flags().Changed("database-path") {
				cfg.DatabasePath = databasePath
			}
			if err := checkGenesis(cfg); err != nil {
				return err
			}
			logger, err := commonRun()
			if err != nil {
				return err
			}
			return node.Run(cfg, logger)
		},
	}
	cmd.Flags().
		UintVar(&apiPort, "api-port", 0, "override the API port (0 disables the API)")
	cmd.Flags().
		StringVar(&databasePath, "database-path", "", "override the database directory")
	return cmd
}
