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
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/blinklabs-io/gavel/internal/config"
	"github.com/blinklabs-io/gavel/internal/version"
)

const programName = "gavel"

var (
	debugLogging bool
	configFile   string
)

// newLogger builds the process logger. Debug logging also records the
// source location of each entry
func newLogger(w io.Writer, debug bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if debug {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// commonRun sets up logging and GOMAXPROCS for commands that do real work
func commonRun() (*slog.Logger, error) {
	logger := newLogger(os.Stdout, debugLogging)
	slog.SetDefault(logger)
	_, err := maxprocs.Set(
		maxprocs.Logger(func(format string, v ...any) {
			logger.Info(fmt.Sprintf(format, v...), "component", programName)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("set GOMAXPROCS: %w", err)
	}
	logger.Info(
		"version: "+version.GetVersionString(),
		"component", programName,
	)
	return logger, nil
}

// loadCommandConfig loads node configuration into the command context unless
// the command opts out with the "config: none" annotation
func loadCommandConfig(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations["config"] == "none" {
		return nil
	}
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cmd.SetContext(config.WithContext(cmd.Context(), cfg))
	return nil
}

func rootCommand() *cobra.Command {
	serveCmd := serveCommand()
	rootCmd := &cobra.Command{
		Use:               programName,
		Short:             "DAO governance node",
		SilenceUsage:      true,
		PersistentPreRunE: loadCommandConfig,
		// Without a subcommand the node is served
		RunE: serveCmd.RunE,
	}
	rootCmd.PersistentFlags().
		BoolVarP(&debugLogging, "debug", "D", false, "enable debug logging")
	rootCmd.PersistentFlags().
		StringVar(&configFile, "config", "", "path to config file")
	rootCmd.AddCommand(
		serveCmd,
		scenarioCommand(),
		versionCommand(),
	)
	return rootCmd
}

func main() {
	// cobra has already printed the error
	if err := rootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
