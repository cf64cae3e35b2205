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

package engines

import (
	"testing"

	"github.com/DataBridgeTech/dqfcore"
)

func TestMysqlPredicateClause(t *testing.T) {
	tests := []struct {
		name     string
		pred     dqfcore.Predicate
		expected string
	}{
		{
			name:     "is null",
			pred:     dqfcore.IsNull("customer_id"),
			expected: "`customer_id` IS NULL",
		},
		{
			name:     "in list",
			pred:     dqfcore.In("state", []string{"SP", "RJ"}),
			expected: "CAST(`state` AS CHAR) IN ('SP', 'RJ')",
		},
		{
			name:     "not in list",
			pred:     dqfcore.NotIn("state", []string{"SP"}),
			expected: "CAST(`state` AS CHAR) NOT IN ('SP')",
		},
		{
			name:     "outside range",
			pred:     dqfcore.OutsideRange("amount", 10, 30.5),
			expected: "(`amount` < 10 OR `amount` > 30.5)",
		},
		{
			name:     "not matches escapes backslashes",
			pred:     dqfcore.NotMatches("code", `^\d+$`),
			expected: "NOT (CAST(`code` AS CHAR) REGEXP '^\\\\d+$')",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause, err := mysqlPredicateClause(tt.pred)
			if err != nil {
				t.Fatalf("mysqlPredicateClause() unexpected error: %v", err)
			}
			if clause != tt.expected {
				t.Errorf("clause = %s, expected %s", clause, tt.expected)
			}
		})
	}
}

func TestMysqlPredicateClause_Errors(t *testing.T) {
	tests := []struct {
		name string
		pred dqfcore.Predicate
	}{
		{"in without values", dqfcore.In("state", nil)},
		{"not_in without values", dqfcore.NotIn("state", nil)},
		{"not_matches without pattern", dqfcore.NotMatches("code", "")},
		{"unsupported op", dqfcore.Predicate{Op: "between", Column: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := mysqlPredicateClause(tt.pred); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestMysqlDataset_SelectQuery(t *testing.T) {
	ds := &mysqlDataset{table: "raw.orders"}

	if got := ds.selectQuery("COUNT(*)"); got != "SELECT COUNT(*) FROM raw.orders" {
		t.Errorf("unfiltered query = %s", got)
	}

	ds.filters = []string{"`customer_id` IS NULL", "`amount` > 0"}
	expected := "SELECT * FROM raw.orders WHERE `customer_id` IS NULL AND `amount` > 0"
	if got := ds.selectQuery("*"); got != expected {
		t.Errorf("filtered query = %s, expected %s", got, expected)
	}
}
