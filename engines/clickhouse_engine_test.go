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

func TestClickhousePredicateClause(t *testing.T) {
	tests := []struct {
		name     string
		pred     dqfcore.Predicate
		expected string
	}{
		{
			name:     "is null",
			pred:     dqfcore.IsNull("customer_id"),
			expected: "isNull(customer_id)",
		},
		{
			name:     "in list",
			pred:     dqfcore.In("state", []string{"SP", "RJ"}),
			expected: "CAST(state, 'Nullable(String)') in ('SP', 'RJ')",
		},
		{
			name:     "not in list",
			pred:     dqfcore.NotIn("state", []string{"SP"}),
			expected: "CAST(state, 'Nullable(String)') not in ('SP')",
		},
		{
			name:     "in list quotes embedded quotes",
			pred:     dqfcore.In("name", []string{"O'Brien"}),
			expected: "CAST(name, 'Nullable(String)') in ('O''Brien')",
		},
		{
			name:     "outside range",
			pred:     dqfcore.OutsideRange("amount", 10, 30.5),
			expected: "(amount < 10 or amount > 30.5)",
		},
		{
			name:     "not matches escapes backslashes",
			pred:     dqfcore.NotMatches("code", `^\d+$`),
			expected: `not match(CAST(code, 'Nullable(String)'), '^\\d+$')`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause, err := clickhousePredicateClause(tt.pred)
			if err != nil {
				t.Fatalf("clickhousePredicateClause() unexpected error: %v", err)
			}
			if clause != tt.expected {
				t.Errorf("clause = %s, expected %s", clause, tt.expected)
			}
		})
	}
}

func TestClickhousePredicateClause_Errors(t *testing.T) {
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
			if _, err := clickhousePredicateClause(tt.pred); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestClickhouseDataset_SelectQuery(t *testing.T) {
	ds := &clickhouseDataset{table: "raw.orders"}

	if got := ds.selectQuery("count()"); got != "select count() from raw.orders" {
		t.Errorf("unfiltered query = %s", got)
	}

	filtered := ds.withFilter("isNull(customer_id)").withFilter("amount > 0")
	expected := "select * from raw.orders where isNull(customer_id) and amount > 0"
	if got := filtered.selectQuery("*"); got != expected {
		t.Errorf("filtered query = %s, expected %s", got, expected)
	}

	// the source handle is never mutated
	if len(ds.filters) != 0 {
		t.Errorf("withFilter must not mutate the receiver, filters = %v", ds.filters)
	}
}
