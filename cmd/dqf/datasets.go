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

var datasetsFlags struct {
	filter string
}

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List datasets visible in the configured tabular engine",
	RunE:  listDatasets,
}

func init() {
	rootCmd.AddCommand(datasetsCmd)

	datasetsCmd.Flags().StringVarP(&datasetsFlags.filter, "filter", "f", "", "substring filter on schema or dataset name")
}

func listDatasets(cmd *cobra.Command, args []string) error {
	cfg, err := dqfcore.LoadPipelineConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load pipeline config: %w", err)
	}

	session, err := openSession(cfg, newLogger(cfg))
	if err != nil {
		return err
	}

	datasets, err := session.ListDatasets(context.Background(), datasetsFlags.filter)
	if err != nil {
		return fmt.Errorf("failed to list datasets: %w", err)
	}

	for _, dataset := range datasets {
		fmt.Println(dataset)
	}

	return nil
}
