// Copyright 2025 The DQF Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DataBridgeTech/dqfcore"
)

var runFlags struct {
	rulesFile string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute a data quality run",
	Long: `Execute every validation set of the rules file against the configured
tabular engine and write the JSON report.

The command exits non-zero when a stop-policy rule fails; the report is
still written before the run aborts.

Examples:
  # Run with default config and rules
  dqf run

  # Run a specific rules file
  dqf run --rules checks/orders.yaml`,
	RunE: runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.rulesFile, "rules", "r", "rules.yaml", "rules file path")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := dqfcore.LoadPipelineConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load pipeline config: %w", err)
	}

	rulesCfg, err := dqfcore.LoadRulesFileConfig(runFlags.rulesFile)
	if err != nil {
		return fmt.Errorf("failed to load rules file: %w", err)
	}

	logger := newLogger(cfg)

	session, err := openSession(cfg, logger)
	if err != nil {
		return err
	}

	runner := dqfcore.NewRunner(session, cfg, logger)
	if _, err := runner.Run(context.Background(), rulesCfg); err != nil {
		return err
	}

	return nil
}
