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
	"os"
	"strings"
	"testing"
)

func TestReportAggregator_SummaryInvariant(t *testing.T) {
	aggregator := NewReportAggregator()

	aggregator.Record("Orders", Rule{Type: RuleIsNotNull, Column: "id"},
		&ValidationOutcome{Status: StatusPass, Metrics: map[string]interface{}{"null_count": int64(0)}})
	aggregator.Record("Orders", Rule{Type: RuleIsUnique, Column: "id"},
		&ValidationOutcome{Status: StatusFail, Metrics: map[string]interface{}{"duplicate_count": int64(2)}})
	aggregator.Record("Clients", Rule{Type: RuleMatchesRegex, Column: "email"},
		&ValidationOutcome{Status: StatusFail, Metrics: map[string]interface{}{"mismatch_count": int64(1)}})

	report := aggregator.Finalize()

	if report.Summary.TotalRules != 3 {
		t.Errorf("total_rules = %d, expected 3", report.Summary.TotalRules)
	}
	if report.Summary.Passed+report.Summary.Failed != report.Summary.TotalRules {
		t.Errorf("summary does not add up: %+v", report.Summary)
	}
	if len(report.Details) != report.Summary.TotalRules {
		t.Errorf("details length %d != total_rules %d", len(report.Details), report.Summary.TotalRules)
	}
	if report.RunID == "" {
		t.Error("run_id must not be empty")
	}
	if report.ExecutionTimestamp == "" {
		t.Error("execution_timestamp must not be empty")
	}

	// recording order is preserved
	expected := []string{"Orders", "Orders", "Clients"}
	for i, entry := range report.Details {
		if entry.DatasetName != expected[i] {
			t.Errorf("details[%d].dataset_name = %s, expected %s", i, entry.DatasetName, expected[i])
		}
	}
}

func TestReportAggregator_EmptyRun(t *testing.T) {
	report := NewReportAggregator().Finalize()

	if report.Summary.TotalRules != 0 || report.Summary.Passed != 0 || report.Summary.Failed != 0 {
		t.Errorf("expected zeroed summary, got %+v", report.Summary)
	}
	if report.RunID == "" {
		t.Error("run_id must not be empty even on an empty run")
	}
}

func TestWriteReportFile(t *testing.T) {
	aggregator := NewReportAggregator()
	aggregator.Record("Orders", Rule{Type: RuleIsNotNull, Column: "id"},
		&ValidationOutcome{Status: StatusPass, Metrics: map[string]interface{}{"null_count": int64(0)}})
	report := aggregator.Finalize()

	dir := t.TempDir()
	filePath, err := WriteReportFile(report, dir)
	if err != nil {
		t.Fatalf("WriteReportFile() unexpected error: %v", err)
	}

	base := strings.TrimPrefix(filePath, dir+"/")
	if !strings.HasPrefix(base, "dq_report_") || !strings.HasSuffix(base, ".json") {
		t.Errorf("unexpected report file name: %s", base)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("failed to read written report: %v", err)
	}

	var parsed Report
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("written report is not valid JSON: %v", err)
	}
	if parsed.RunID != report.RunID {
		t.Errorf("run_id round trip mismatch: %s != %s", parsed.RunID, report.RunID)
	}
	if len(parsed.Details) != 1 || parsed.Details[0].Rule.Type != RuleIsNotNull {
		t.Errorf("unexpected details after round trip: %+v", parsed.Details)
	}
}

func TestWriteReportFile_CreatesReportDirectory(t *testing.T) {
	report := NewReportAggregator().Finalize()

	dir := t.TempDir() + "/nested/reports"
	if _, err := WriteReportFile(report, dir); err != nil {
		t.Fatalf("WriteReportFile() unexpected error: %v", err)
	}

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("report directory was not created: %v", err)
	}
}
