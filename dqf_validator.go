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
)

// ValidationStatus is the verdict of one rule evaluation.
type ValidationStatus string

const (
	StatusPass ValidationStatus = "PASS"
	StatusFail ValidationStatus = "FAIL"
)

// ValidationOutcome is the result of evaluating one rule against one
// dataset. The status is a pure function of the captured metrics and the
// rule parameters.
type ValidationOutcome struct {
	Status  ValidationStatus
	Metrics map[string]interface{}

	// FailingRows holds the row subset that violated the rule. Nil for
	// aggregate checks and for passing row-level checks.
	FailingRows DatasetHandle
}

// UnknownRuleTypeError reports a rule_type outside the closed catalog. It is
// a configuration defect, not a data defect.
type UnknownRuleTypeError struct {
	RuleType RuleType
}

func (e *UnknownRuleTypeError) Error() string {
	return fmt.Sprintf("unknown rule_type: %s", e.RuleType)
}

// EvaluateRule dispatches rule to its check and runs it against ds. The
// switch is exhaustive over the rule catalog; anything else surfaces as
// *UnknownRuleTypeError.
func EvaluateRule(ctx context.Context, ds DatasetHandle, rule *Rule) (*ValidationOutcome, error) {
	switch rule.Type {
	case RuleIsNotNull:
		return validateNotNull(ctx, ds, rule)
	case RuleIsUnique:
		return validateIsUnique(ctx, ds, rule)
	case RuleHasAcceptedValues:
		return validateAcceptedValues(ctx, ds, rule)
	case RuleIsInRange:
		return validateInRange(ctx, ds, rule)
	case RuleMatchesRegex:
		return validateRegex(ctx, ds, rule)
	case RuleNullPercentageIsLessThan:
		return validateNullPercentage(ctx, ds, rule)
	case RuleMeanIsBetween:
		return validateMeanBetween(ctx, ds, rule)
	default:
		return nil, &UnknownRuleTypeError{RuleType: rule.Type}
	}
}

func requireColumn(rule *Rule) error {
	if rule.Column == "" {
		return fmt.Errorf("%s rule requires a column", rule.Type)
	}
	return nil
}

func statusFromViolations(violations int64) ValidationStatus {
	if violations == 0 {
		return StatusPass
	}
	return StatusFail
}

func validateNotNull(ctx context.Context, ds DatasetHandle, rule *Rule) (*ValidationOutcome, error) {
	if err := requireColumn(rule); err != nil {
		return nil, err
	}

	failing, err := ds.Filter(ctx, IsNull(rule.Column))
	if err != nil {
		return nil, fmt.Errorf("failed to filter null rows for column %s: %w", rule.Column, err)
	}

	nullCount, err := failing.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count null rows for column %s: %w", rule.Column, err)
	}

	return &ValidationOutcome{
		Status:      statusFromViolations(nullCount),
		Metrics:     map[string]interface{}{"null_count": nullCount},
		FailingRows: failing,
	}, nil
}

// validateIsUnique counts rows whose value occurs more than once. Repeated
// NULLs are not treated as duplicates.
func validateIsUnique(ctx context.Context, ds DatasetHandle, rule *Rule) (*ValidationOutcome, error) {
	if err := requireColumn(rule); err != nil {
		return nil, err
	}

	groups, err := ds.GroupCount(ctx, rule.Column)
	if err != nil {
		return nil, fmt.Errorf("failed to group values of column %s: %w", rule.Column, err)
	}

	var duplicatedValues []string
	var duplicateCount int64
	for _, group := range groups {
		if group.Count > 1 && group.Value != nil {
			duplicatedValues = append(duplicatedValues, *group.Value)
			duplicateCount += group.Count
		}
	}

	var failing DatasetHandle
	if len(duplicatedValues) > 0 {
		failing, err = ds.Filter(ctx, In(rule.Column, duplicatedValues))
		if err != nil {
			return nil, fmt.Errorf("failed to filter duplicated rows for column %s: %w", rule.Column, err)
		}
	}

	return &ValidationOutcome{
		Status:      statusFromViolations(duplicateCount),
		Metrics:     map[string]interface{}{"duplicate_count": duplicateCount},
		FailingRows: failing,
	}, nil
}

func validateAcceptedValues(ctx context.Context, ds DatasetHandle, rule *Rule) (*ValidationOutcome, error) {
	if err := requireColumn(rule); err != nil {
		return nil, err
	}
	if len(rule.Params.Values) == 0 {
		return nil, fmt.Errorf("%s rule requires params.values", rule.Type)
	}

	failing, err := ds.Filter(ctx, NotIn(rule.Column, rule.Params.Values))
	if err != nil {
		return nil, fmt.Errorf("failed to filter invalid values for column %s: %w", rule.Column, err)
	}

	invalidCount, err := failing.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count invalid values for column %s: %w", rule.Column, err)
	}

	return &ValidationOutcome{
		Status: statusFromViolations(invalidCount),
		Metrics: map[string]interface{}{
			"accepted_list": []string(rule.Params.Values),
			"invalid_count": invalidCount,
		},
		FailingRows: failing,
	}, nil
}

func validateInRange(ctx context.Context, ds DatasetHandle, rule *Rule) (*ValidationOutcome, error) {
	if err := requireColumn(rule); err != nil {
		return nil, err
	}
	if rule.Params.Min == nil || rule.Params.Max == nil {
		return nil, fmt.Errorf("%s rule requires params.min and params.max", rule.Type)
	}

	failing, err := ds.Filter(ctx, OutsideRange(rule.Column, *rule.Params.Min, *rule.Params.Max))
	if err != nil {
		return nil, fmt.Errorf("failed to filter out-of-range rows for column %s: %w", rule.Column, err)
	}

	outOfRangeCount, err := failing.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count out-of-range rows for column %s: %w", rule.Column, err)
	}

	return &ValidationOutcome{
		Status: statusFromViolations(outOfRangeCount),
		Metrics: map[string]interface{}{
			"min_range":          *rule.Params.Min,
			"max_range":          *rule.Params.Max,
			"out_of_range_count": outOfRangeCount,
		},
		FailingRows: failing,
	}, nil
}

// validateRegex checks unanchored substring matching; see Predicate for the
// pinned semantics. NULL values are not counted as mismatches.
func validateRegex(ctx context.Context, ds DatasetHandle, rule *Rule) (*ValidationOutcome, error) {
	if err := requireColumn(rule); err != nil {
		return nil, err
	}
	if rule.Params.Pattern == "" {
		return nil, fmt.Errorf("%s rule requires params.pattern", rule.Type)
	}

	failing, err := ds.Filter(ctx, NotMatches(rule.Column, rule.Params.Pattern))
	if err != nil {
		return nil, fmt.Errorf("failed to filter mismatching rows for column %s: %w", rule.Column, err)
	}

	mismatchCount, err := failing.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count mismatching rows for column %s: %w", rule.Column, err)
	}

	return &ValidationOutcome{
		Status: statusFromViolations(mismatchCount),
		Metrics: map[string]interface{}{
			"regex_pattern":  rule.Params.Pattern,
			"mismatch_count": mismatchCount,
		},
		FailingRows: failing,
	}, nil
}

// validateNullPercentage is an aggregate check and produces no failing rows.
// An empty dataset yields percentage 0 and passes regardless of threshold.
func validateNullPercentage(ctx context.Context, ds DatasetHandle, rule *Rule) (*ValidationOutcome, error) {
	if err := requireColumn(rule); err != nil {
		return nil, err
	}
	if rule.Params.Threshold == nil {
		return nil, fmt.Errorf("%s rule requires params.threshold", rule.Type)
	}
	threshold := *rule.Params.Threshold

	totalRows, err := ds.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count rows: %w", err)
	}

	nulls, err := ds.Filter(ctx, IsNull(rule.Column))
	if err != nil {
		return nil, fmt.Errorf("failed to filter null rows for column %s: %w", rule.Column, err)
	}
	nullCount, err := nulls.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count null rows for column %s: %w", rule.Column, err)
	}

	var nullPercentage float64
	if totalRows > 0 {
		nullPercentage = float64(nullCount) / float64(totalRows) * 100
	}

	status := StatusFail
	if nullPercentage < threshold {
		status = StatusPass
	}

	return &ValidationOutcome{
		Status: status,
		Metrics: map[string]interface{}{
			"total_rows":      totalRows,
			"null_count":      nullCount,
			"null_percentage": fmt.Sprintf("%.2f%%", nullPercentage),
			"threshold":       fmt.Sprintf("< %g%%", threshold),
		},
	}, nil
}

// validateMeanBetween is an aggregate check and produces no failing rows. An
// undefined mean (no non-NULL values) fails regardless of the bounds.
func validateMeanBetween(ctx context.Context, ds DatasetHandle, rule *Rule) (*ValidationOutcome, error) {
	if err := requireColumn(rule); err != nil {
		return nil, err
	}
	if rule.Params.Min == nil || rule.Params.Max == nil {
		return nil, fmt.Errorf("%s rule requires params.min and params.max", rule.Type)
	}

	mean, err := ds.Mean(ctx, rule.Column)
	if err != nil {
		return nil, fmt.Errorf("failed to compute mean of column %s: %w", rule.Column, err)
	}

	status := StatusFail
	meanValue := "N/A"
	if mean != nil {
		meanValue = fmt.Sprintf("%.2f", *mean)
		if *mean >= *rule.Params.Min && *mean <= *rule.Params.Max {
			status = StatusPass
		}
	}

	return &ValidationOutcome{
		Status: status,
		Metrics: map[string]interface{}{
			"mean_value":   meanValue,
			"min_expected": *rule.Params.Min,
			"max_expected": *rule.Params.Max,
		},
	}, nil
}
