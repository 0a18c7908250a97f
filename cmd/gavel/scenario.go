// Copyright 2026 Blink Labs Software
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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blinklabs-io/gavel/scenario"
)

var errScenarioFailed = errors.New("scenario expectations not met")

func scenarioCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "scenario <file>...",
		Short:        "Run scripted governance scenarios against an in-memory node",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		Annotations:  map[string]string{"config": "none"},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := commonRun()
			if err != nil {
				return err
			}
			failed := false
			for _, file := range args {
				s, err := scenario.Load(file)
				if err != nil {
					return err
				}
				result, err := scenario.Run(cmd.Context(), s, logger)
				if err != nil {
					return fmt.Errorf("scenario %s: %w", file, err)
				}
				out := cmd.OutOrStdout()
				for _, step := range result.Steps {
					status := "PASS"
					if !step.Passed {
						status = "FAIL"
					}
					fmt.Fprintf(
						out,
						"%s %s step %d at %s: %s -> %s\n",
						status,
						file,
						step.Index,
						step.At,
						step.Type,
						step.Outcome,
					)
				}
				for _, failure := range result.Failures {
					fmt.Fprintf(out, "FAIL %s: %s\n", file, failure)
				}
				if !result.Passed() {
					failed = true
				}
			}
			if failed {
				return errScenarioFailed
			}
			return nil
		},
	}
	return cmd
}
