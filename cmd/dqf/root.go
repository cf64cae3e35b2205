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
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/DataBridgeTech/dqfcore"
	"github.com/DataBridgeTech/dqfcore/dqf"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "dqf",
	Short: "dqf - declarative data quality runs against tabular engines",
	Long: `dqf evaluates declarative data quality rules against datasets held in an
external tabular engine (ClickHouse, PostgreSQL, MySQL), routes failing rows
to quarantine storage, and writes a JSON report per run.`,
	Version: dqf.Version,
}

// Execute runs the root command. A critical rule failure surfaces as a
// non-zero exit code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "pipeline config file path")
}

func newLogger(cfg *dqfcore.PipelineConfig) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})).With("pipeline", cfg.PipelineName)
}

func openSession(cfg *dqfcore.PipelineConfig, logger *slog.Logger) (dqfcore.TabularSession, error) {
	session, err := dqf.NewTabularSession(&cfg.DataSource, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open tabular session: %w", err)
	}
	return session, nil
}
