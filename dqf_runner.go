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
	"context"
	"fmt"
	"io"
	"log/slog"
)

// CriticalRuleFailure signals that a stop-policy rule failed. It aborts the
// entire run, not just the current validation set: stop encodes "this data
// cannot be trusted downstream". The report is still finalized and written
// before the error propagates.
type CriticalRuleFailure struct {
	DatasetName string
	RuleType    RuleType
	Column      string
}

func (e *CriticalRuleFailure) Error() string {
	return fmt.Sprintf("critical rule '%s' failed for column '%s' in dataset '%s'",
		e.RuleType, e.Column, e.DatasetName)
}

// Runner drives a run: validation sets and their rules strictly in declared
// order, one logical thread of control. All row scanning is delegated to the
// TabularSession.
type Runner struct {
	session    TabularSession
	quarantine *QuarantineRouter
	reportPath string
	logger     *slog.Logger
}

func NewRunner(session TabularSession, cfg *PipelineConfig, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Runner{
		session:    session,
		quarantine: NewQuarantineRouter(session, cfg.Paths.QuarantinePath, cfg.QuarantineFormat, logger),
		reportPath: cfg.Paths.ReportPath,
		logger:     logger,
	}
}

// Run evaluates every validation set in rulesCfg and writes the JSON report.
// A dataset that fails to load only skips its own set; a failed stop-policy
// rule halts everything and comes back as a *CriticalRuleFailure after the
// report is written. The returned report is non-nil in both cases.
func (r *Runner) Run(ctx context.Context, rulesCfg *RulesFileConfig) (*Report, error) {
	r.logger.Info("starting data quality run", "validation_sets", len(rulesCfg.ValidationSets))

	aggregator := NewReportAggregator()
	var halt *CriticalRuleFailure

setLoop:
	for i := range rulesCfg.ValidationSets {
		vs := &rulesCfg.ValidationSets[i]
		r.logger.Info("processing dataset", "dataset", vs.DatasetName, "rules", len(vs.Rules))

		ds, err := r.session.Load(ctx, vs.Source)
		if err != nil {
			// one unavailable source must not abort the whole run
			r.logger.Error("failed to load dataset, skipping validation set",
				"dataset", vs.DatasetName,
				"location", vs.Source.Location,
				"error", err)
			continue
		}

		for j := range vs.Rules {
			halt = r.runRule(ctx, aggregator, ds, vs.DatasetName, &vs.Rules[j])
			if halt != nil {
				break setLoop
			}
		}
	}

	report := aggregator.Finalize()
	reportFile, err := WriteReportFile(report, r.reportPath)
	if err != nil {
		return report, fmt.Errorf("failed to write report: %w", err)
	}

	r.logger.Info("report saved",
		"path", reportFile,
		"total_rules", report.Summary.TotalRules,
		"passed", report.Summary.Passed,
		"failed", report.Summary.Failed)

	if halt != nil {
		r.logger.Error("run stopped by critical rule failure",
			"dataset", halt.DatasetName,
			"rule_type", halt.RuleType,
			"column", halt.Column)
		return report, halt
	}

	r.logger.Info("data quality run completed")
	return report, nil
}

// runRule evaluates one rule, records its outcome, and applies the fail
// policy. It returns non-nil only when the rule failed under the stop
// policy; the outcome is recorded before the halt takes effect.
func (r *Runner) runRule(ctx context.Context, aggregator *ReportAggregator, ds DatasetHandle, datasetName string, rule *Rule) *CriticalRuleFailure {
	r.logger.Info("executing rule",
		"dataset", datasetName,
		"rule_type", rule.Type,
		"column", rule.Column)

	outcome, err := EvaluateRule(ctx, ds, rule)
	if err != nil {
		// configuration defect: surfaced loudly, remaining rules still run
		r.logger.Error("rule evaluation failed",
			"dataset", datasetName,
			"rule_type", rule.Type,
			"column", rule.Column,
			"error", err)
		return nil
	}

	aggregator.Record(datasetName, *rule, outcome)

	if outcome.Status != StatusFail {
		return nil
	}

	r.logger.Warn("rule failed",
		"dataset", datasetName,
		"rule_type", rule.Type,
		"column", rule.Column,
		"metrics", outcome.Metrics)

	if rule.Quarantine && outcome.FailingRows != nil {
		if _, qErr := r.quarantine.Persist(ctx, outcome.FailingRows, datasetName, rule); qErr != nil {
			r.logger.Error("failed to quarantine failing rows",
				"dataset", datasetName,
				"rule_type", rule.Type,
				"error", qErr)
		}
	}

	if rule.FailPolicy() == OnFailStop {
		return &CriticalRuleFailure{
			DatasetName: datasetName,
			RuleType:    rule.Type,
			Column:      rule.Column,
		}
	}

	return nil
}
