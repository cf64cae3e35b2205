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
	"path"
	"strings"
)

// QuarantineRouter persists the row subsets that caused rules to fail.
// Quarantine is best-effort auditing: callers treat persist failures as
// non-fatal.
type QuarantineRouter struct {
	session  TabularSession
	basePath string
	format   string
	logger   *slog.Logger
}

func NewQuarantineRouter(session TabularSession, basePath string, format string, logger *slog.Logger) *QuarantineRouter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &QuarantineRouter{
		session:  session,
		basePath: basePath,
		format:   format,
		logger:   logger,
	}
}

// Persist writes the failing rows of (datasetName, rule) and returns the
// output location. The location is deterministic for a given dataset name,
// rule type and column, so repeated runs overwrite the same quarantine set
// instead of accumulating duplicates.
func (q *QuarantineRouter) Persist(ctx context.Context, failing DatasetHandle, datasetName string, rule *Rule) (string, error) {
	column := rule.Column
	if column == "" {
		column = "no_column"
	}
	column = strings.ReplaceAll(column, " ", "_")

	location := path.Join(q.basePath, datasetName, fmt.Sprintf("%s_%s", rule.Type, column))

	rows, err := failing.Count(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to count failing rows for quarantine at %s: %w", location, err)
	}

	q.logger.Info("routing failing rows to quarantine",
		"dataset", datasetName,
		"rule_type", rule.Type,
		"rows", rows,
		"location", location)

	if err := q.session.Write(ctx, failing, location, q.format); err != nil {
		return "", fmt.Errorf("failed to persist quarantine set at %s: %w", location, err)
	}

	return location, nil
}
