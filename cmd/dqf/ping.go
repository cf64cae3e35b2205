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

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Verify connectivity to the configured tabular engine",
	RunE:  pingEngine,
}

func init() {
	rootCmd.AddCommand(pingCmd)
}

func pingEngine(cmd *cobra.Command, args []string) error {
	cfg, err := dqfcore.LoadPipelineConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load pipeline config: %w", err)
	}

	session, err := openSession(cfg, newLogger(cfg))
	if err != nil {
		return err
	}

	version, err := session.Ping(context.Background())
	if err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	fmt.Printf("%s: %s\n", cfg.DataSource.Type, version)
	return nil
}
