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

import "context"

// DataSourceType represents the type of the backing tabular engine.
type DataSourceType string

const (
	DataSourceTypeClickhouse DataSourceType = "clickhouse"
	DataSourceTypePostgresql DataSourceType = "postgresql"
	DataSourceTypeMysql      DataSourceType = "mysql"
)

// ConnectionConfig holds the connection settings for a tabular engine.
type ConnectionConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// DataSource describes the tabular engine a pipeline runs against.
type DataSource struct {
	Type          DataSourceType   `yaml:"type"`
	Configuration ConnectionConfig `yaml:"connection"`
}

// SourceDescriptor identifies one dataset inside the engine. Location is
// engine-specific: a (qualified) table name for SQL engines. Format is kept
// for engines that distinguish physical layouts and may be empty.
type SourceDescriptor struct {
	Location string `yaml:"location" json:"location"`
	Format   string `yaml:"format,omitempty" json:"format,omitempty"`
}

// PredicateOp enumerates the closed filter algebra validators operate with.
type PredicateOp string

const (
	PredIsNull       PredicateOp = "is_null"
	PredIn           PredicateOp = "in"
	PredNotIn        PredicateOp = "not_in"
	PredOutsideRange PredicateOp = "outside_range"
	PredNotMatches   PredicateOp = "not_matches"
)

// Predicate selects the row subset violating (or satisfying) one rule.
// Engines render it into dialect SQL.
//
// NULL semantics follow SQL three-valued logic: only PredIsNull selects NULL
// rows; In/NotIn/OutsideRange/NotMatches never match a NULL value.
// PredNotMatches uses the engine's native regex operator with unanchored
// substring semantics: a value mismatches only when no substring of it
// matches Pattern. Anchor the pattern explicitly for full-string matching.
type Predicate struct {
	Op      PredicateOp
	Column  string
	Values  []string
	Min     float64
	Max     float64
	Pattern string
}

func IsNull(column string) Predicate {
	return Predicate{Op: PredIsNull, Column: column}
}

func In(column string, values []string) Predicate {
	return Predicate{Op: PredIn, Column: column, Values: values}
}

func NotIn(column string, values []string) Predicate {
	return Predicate{Op: PredNotIn, Column: column, Values: values}
}

func OutsideRange(column string, min float64, max float64) Predicate {
	return Predicate{Op: PredOutsideRange, Column: column, Min: min, Max: max}
}

func NotMatches(column string, pattern string) Predicate {
	return Predicate{Op: PredNotMatches, Column: column, Pattern: pattern}
}

// ValueCount is one group produced by DatasetHandle.GroupCount. Value is nil
// when the group key is NULL.
type ValueCount struct {
	Value *string
	Count int64
}

// DatasetHandle is an opaque, read-only reference to a loaded tabular
// collection of named columns. All row scanning happens inside the engine;
// every call blocks until the underlying scan completes.
type DatasetHandle interface {
	// Filter returns a new handle restricted to rows matching pred. The
	// receiver is never mutated.
	Filter(ctx context.Context, pred Predicate) (DatasetHandle, error)

	// Count returns the number of rows visible through the handle.
	Count(ctx context.Context) (int64, error)

	// GroupCount returns the distinct values of column with their number of
	// occurrences, NULL included.
	GroupCount(ctx context.Context, column string) ([]ValueCount, error)

	// Mean returns the arithmetic mean of column over non-NULL values, or
	// nil when the mean is undefined (no non-NULL values).
	Mean(ctx context.Context, column string) (*float64, error)
}

// TabularSession is the gateway to the external tabular engine that owns all
// row and column scanning.
type TabularSession interface {
	// Load resolves source into a DatasetHandle, failing when the dataset
	// does not exist or is not reachable.
	Load(ctx context.Context, source SourceDescriptor) (DatasetHandle, error)

	// Write durably persists the rows behind handle at location with
	// overwrite semantics. SQL engines interpret location as a table
	// identifier and may ignore format.
	Write(ctx context.Context, handle DatasetHandle, location string, format string) error

	// Ping verifies connectivity and returns an engine version string.
	Ping(ctx context.Context) (string, error)

	// ListDatasets returns the datasets visible in the engine, optionally
	// narrowed by a substring filter.
	ListDatasets(ctx context.Context, filter string) ([]string, error)
}
