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

package dqfcore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// RunResultEntry is one recorded rule outcome. Only scalar metrics are kept;
// failing-row subsets live in quarantine storage, never in the report.
type RunResultEntry struct {
	DatasetName string                 `json:"dataset_name"`
	Rule        Rule                   `json:"rule"`
	Status      ValidationStatus       `json:"status"`
	Metrics     map[string]interface{} `json:"metrics"`
}

type ReportSummary struct {
	TotalRules int `json:"total_rules"`
	Passed     int `json:"passed"`
	Failed     int `json:"failed"`
}

// Report is the write-once artifact of one run.
type Report struct {
	RunID              string           `json:"run_id"`
	ExecutionTimestamp string           `json:"execution_timestamp"`
	Summary            ReportSummary    `json:"summary"`
	Details            []RunResultEntry `json:"details"`
}

// ReportAggregator accumulates rule outcomes in declared order. It is
// append-only and written to by a single caller; Record has no failure mode.
type ReportAggregator struct {
	entries []RunResultEntry
}

func NewReportAggregator() *ReportAggregator {
	return &ReportAggregator{}
}

func (a *ReportAggregator) Record(datasetName string, rule Rule, outcome *ValidationOutcome) {
	a.entries = append(a.entries, RunResultEntry{
		DatasetName: datasetName,
		Rule:        rule,
		Status:      outcome.Status,
		Metrics:     outcome.Metrics,
	})
}

// Finalize computes the summary counts over everything recorded so far.
// passed + failed always equals total_rules equals len(details).
func (a *ReportAggregator) Finalize() *Report {
	summary := ReportSummary{TotalRules: len(a.entries)}
	for _, entry := range a.entries {
		if entry.Status == StatusPass {
			summary.Passed++
		} else {
			summary.Failed++
		}
	}

	return &Report{
		RunID:              uuid.NewString(),
		ExecutionTimestamp: time.Now().Format(time.RFC3339),
		Summary:            summary,
		Details:            append([]RunResultEntry(nil), a.entries...),
	}
}

// WriteReportFile serializes report as indented JSON under reportRoot and
// returns the written file path. The file name carries the run timestamp.
func WriteReportFile(report *Report, reportRoot string) (string, error) {
	if err := os.MkdirAll(reportRoot, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory %s: %w", reportRoot, err)
	}

	fileName := fmt.Sprintf("dq_report_%s.json", time.Now().Format("20060102_150405"))
	filePath := filepath.Join(reportRoot, fileName)

	data, err := json.MarshalIndent(report, "", "    ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize report: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report file %s: %w", filePath, err)
	}

	return filePath, nil
}
