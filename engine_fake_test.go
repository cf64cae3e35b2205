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
	"regexp"
	"sort"
	"strconv"
)

// memDataset is an in-memory DatasetHandle used across the package tests.
// Columns hold string pointers; nil means NULL. Predicate semantics mirror
// the SQL engines: only IsNull matches NULL values, and NotMatches uses
// unanchored substring regex matching.
type memDataset struct {
	columns map[string][]*string
	size    int
}

func newMemDataset(columns map[string][]*string) *memDataset {
	size := 0
	for _, values := range columns {
		size = len(values)
		break
	}
	return &memDataset{columns: columns, size: size}
}

func (d *memDataset) Filter(ctx context.Context, pred Predicate) (DatasetHandle, error) {
	values, ok := d.columns[pred.Column]
	if !ok {
		return nil, fmt.Errorf("unknown column: %s", pred.Column)
	}

	out := make(map[string][]*string, len(d.columns))
	kept := 0
	for i := 0; i < d.size; i++ {
		match, err := matchPredicate(pred, values[i])
		if err != nil {
			return nil, err
		}
		if !match {
			continue
		}
		for name, column := range d.columns {
			out[name] = append(out[name], column[i])
		}
		kept++
	}

	return &memDataset{columns: out, size: kept}, nil
}

func matchPredicate(pred Predicate, value *string) (bool, error) {
	switch pred.Op {
	case PredIsNull:
		return value == nil, nil

	case PredIn:
		if value == nil {
			return false, nil
		}
		return containsString(pred.Values, *value), nil

	case PredNotIn:
		if value == nil {
			return false, nil
		}
		return !containsString(pred.Values, *value), nil

	case PredOutsideRange:
		if value == nil {
			return false, nil
		}
		v, err := strconv.ParseFloat(*value, 64)
		if err != nil {
			return false, err
		}
		return v < pred.Min || v > pred.Max, nil

	case PredNotMatches:
		if value == nil {
			return false, nil
		}
		matched, err := regexp.MatchString(pred.Pattern, *value)
		if err != nil {
			return false, err
		}
		return !matched, nil

	default:
		return false, fmt.Errorf("unsupported predicate op: %s", pred.Op)
	}
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func (d *memDataset) Count(ctx context.Context) (int64, error) {
	return int64(d.size), nil
}

func (d *memDataset) GroupCount(ctx context.Context, column string) ([]ValueCount, error) {
	values, ok := d.columns[column]
	if !ok {
		return nil, fmt.Errorf("unknown column: %s", column)
	}

	counts := make(map[string]int64)
	var nullCount int64
	var order []string
	for _, value := range values {
		if value == nil {
			nullCount++
			continue
		}
		if _, seen := counts[*value]; !seen {
			order = append(order, *value)
		}
		counts[*value]++
	}

	var groups []ValueCount
	for _, value := range order {
		v := value
		groups = append(groups, ValueCount{Value: &v, Count: counts[value]})
	}
	if nullCount > 0 {
		groups = append(groups, ValueCount{Count: nullCount})
	}

	return groups, nil
}

func (d *memDataset) Mean(ctx context.Context, column string) (*float64, error) {
	values, ok := d.columns[column]
	if !ok {
		return nil, fmt.Errorf("unknown column: %s", column)
	}

	var sum float64
	var count int64
	for _, value := range values {
		if value == nil {
			continue
		}
		v, err := strconv.ParseFloat(*value, 64)
		if err != nil {
			return nil, err
		}
		sum += v
		count++
	}

	if count == 0 {
		return nil, nil
	}

	mean := sum / float64(count)
	return &mean, nil
}

type memWrite struct {
	location string
	format   string
	rows     int64
}

// memSession is an in-memory TabularSession. Load resolves the descriptor
// location against a fixed dataset map; Write records what would have been
// persisted.
type memSession struct {
	datasets map[string]*memDataset
	writes   []memWrite
	writeErr error
}

func (s *memSession) Load(ctx context.Context, source SourceDescriptor) (DatasetHandle, error) {
	ds, ok := s.datasets[source.Location]
	if !ok {
		return nil, fmt.Errorf("dataset not found: %s", source.Location)
	}
	return ds, nil
}

func (s *memSession) Write(ctx context.Context, handle DatasetHandle, location string, format string) error {
	if s.writeErr != nil {
		return s.writeErr
	}

	ds, ok := handle.(*memDataset)
	if !ok {
		return fmt.Errorf("dataset handle was not produced by this session")
	}

	s.writes = append(s.writes, memWrite{location: location, format: format, rows: int64(ds.size)})
	return nil
}

func (s *memSession) Ping(ctx context.Context) (string, error) {
	return "mem", nil
}

func (s *memSession) ListDatasets(ctx context.Context, filter string) ([]string, error) {
	var names []string
	for name := range s.datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// column builds a []*string column; nil items become NULL, ints are
// stringified.
func column(items ...interface{}) []*string {
	out := make([]*string, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case nil:
			// NULL
		case string:
			s := v
			out[i] = &s
		case int:
			s := strconv.Itoa(v)
			out[i] = &s
		default:
			panic(fmt.Sprintf("unsupported column item type %T", item))
		}
	}
	return out
}

func floatPtr(v float64) *float64 {
	return &v
}
