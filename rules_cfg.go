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
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// RuleType is the declared type of a data quality rule. The catalog is
// closed; dispatch happens in EvaluateRule.
type RuleType string

const (
	RuleIsNotNull                RuleType = "is_not_null"
	RuleIsUnique                 RuleType = "is_unique"
	RuleHasAcceptedValues        RuleType = "has_accepted_values"
	RuleIsInRange                RuleType = "is_in_range"
	RuleMatchesRegex             RuleType = "matches_regex"
	RuleNullPercentageIsLessThan RuleType = "null_percentage_is_less_than"
	RuleMeanIsBetween            RuleType = "mean_is_between"
)

type OnFailPolicy string

const (
	OnFailWarn OnFailPolicy = "warn"
	OnFailStop OnFailPolicy = "stop"
)

func (p *OnFailPolicy) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}

	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(OnFailWarn):
		*p = OnFailWarn
	case string(OnFailStop):
		*p = OnFailStop
	default:
		return fmt.Errorf("unknown on_fail policy: %s", raw)
	}

	return nil
}

// RulesFileConfig is the root of the rules document: the ordered validation
// sets of one run.
type RulesFileConfig struct {
	Version        string          `yaml:"version"`
	ValidationSets []ValidationSet `yaml:"validation_sets"`
}

// ValidationSet binds one dataset to the ordered rules evaluated against it.
type ValidationSet struct {
	DatasetName string           `yaml:"dataset_name"`
	Source      SourceDescriptor `yaml:"source"`
	Rules       []Rule           `yaml:"rules"`
}

// Rule is one declarative data quality check. Immutable once loaded.
type Rule struct {
	Type       RuleType     `yaml:"rule_type" json:"rule_type"`
	Column     string       `yaml:"column,omitempty" json:"column,omitempty"`
	Params     RuleParams   `yaml:"params,omitempty" json:"params,omitempty"`
	OnFail     OnFailPolicy `yaml:"on_fail,omitempty" json:"on_fail,omitempty"`
	Quarantine bool         `yaml:"quarantine,omitempty" json:"quarantine,omitempty"`
}

// FailPolicy returns the effective on_fail policy, defaulting to warn.
func (r *Rule) FailPolicy() OnFailPolicy {
	if r.OnFail == "" {
		return OnFailWarn
	}
	return r.OnFail
}

// RuleParams carries the per-type rule parameters. Which fields are required
// depends on the rule type and is enforced at evaluation time.
type RuleParams struct {
	Threshold *float64   `yaml:"threshold,omitempty" json:"threshold,omitempty"`
	Min       *float64   `yaml:"min,omitempty" json:"min,omitempty"`
	Max       *float64   `yaml:"max,omitempty" json:"max,omitempty"`
	Values    StringList `yaml:"values,omitempty" json:"values,omitempty"`
	Pattern   string     `yaml:"pattern,omitempty" json:"pattern,omitempty"`
}

// StringList keeps accepted values as their literal YAML scalar text, so the
// comparison against column values stays exact-match and case-sensitive even
// when the document declares numbers or booleans.
type StringList []string

func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("values must be a list")
	}

	values := make([]string, 0, len(node.Content))
	for _, item := range node.Content {
		if item.Kind != yaml.ScalarNode {
			return fmt.Errorf("values list items must be scalars")
		}
		values = append(values, item.Value)
	}

	*l = values
	return nil
}

// Validate rejects structurally broken rules documents. Per-rule parameter
// problems are reported at evaluation time instead, so one misconfigured
// rule does not block the rest of the run.
func (c *RulesFileConfig) Validate() error {
	if len(c.ValidationSets) == 0 {
		return fmt.Errorf("rules file declares no validation_sets")
	}

	for i, vs := range c.ValidationSets {
		if vs.DatasetName == "" {
			return fmt.Errorf("validation_sets[%d]: dataset_name is required", i)
		}
		if vs.Source.Location == "" {
			return fmt.Errorf("validation_sets[%d] (%s): source.location is required", i, vs.DatasetName)
		}
		if len(vs.Rules) == 0 {
			return fmt.Errorf("validation_sets[%d] (%s): declares no rules", i, vs.DatasetName)
		}
		for j, rule := range vs.Rules {
			if rule.Type == "" {
				return fmt.Errorf("validation_sets[%d] (%s): rules[%d] is missing rule_type", i, vs.DatasetName, j)
			}
		}
	}

	return nil
}

func LoadRulesFileConfig(fileName string) (*RulesFileConfig, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var cfg RulesFileConfig
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", fileName, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
