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
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/DataBridgeTech/dqfcore"
)

type ClickhouseTabularSession struct {
	cnn    driver.Conn
	logger *slog.Logger
}

func NewClickhouseTabularSession(cnn driver.Conn, logger *slog.Logger) dqfcore.TabularSession {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &ClickhouseTabularSession{
		cnn:    cnn,
		logger: logger,
	}
}

func (s *ClickhouseTabularSession) Load(ctx context.Context, source dqfcore.SourceDescriptor) (dqfcore.DatasetHandle, error) {
	if source.Location == "" {
		return nil, fmt.Errorf("source descriptor requires a location")
	}

	ds := &clickhouseDataset{session: s, table: source.Location}

	// probe the table so an unknown or unreachable source fails at load time
	if _, err := ds.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to load dataset %s: %w", source.Location, err)
	}

	return ds, nil
}

func (s *ClickhouseTabularSession) Write(ctx context.Context, handle dqfcore.DatasetHandle, location string, format string) error {
	ds, ok := handle.(*clickhouseDataset)
	if !ok {
		return fmt.Errorf("dataset handle was not produced by this session")
	}

	// format is meaningless for a table-backed quarantine store
	_ = format

	target := sanitizeIdentifier(location)
	query := fmt.Sprintf("create or replace table %s engine = MergeTree order by tuple() as %s",
		target, ds.selectQuery("*"))

	s.logger.Debug("writing quarantine table",
		"table", target,
		"query", query)

	return s.cnn.Exec(ctx, query)
}

func (s *ClickhouseTabularSession) Ping(ctx context.Context) (string, error) {
	serverVersion, err := s.cnn.ServerVersion()
	if err != nil {
		return "", err
	}

	return serverVersion.String(), nil
}

func (s *ClickhouseTabularSession) ListDatasets(ctx context.Context, filter string) ([]string, error) {
	query := `
        select database, name
        from system.tables
        where
            database not in ('system', 'INFORMATION_SCHEMA', 'information_schema')
			and not startsWith(name, '.')
			and is_temporary = 0`

	if filter != "" {
		filter = fmt.Sprintf("%%%s%%", strings.TrimSpace(filter))
		query += fmt.Sprintf(` and (database like '%s' or name like '%s')`, filter, filter)
	}
	query += ` order by database, name;`

	rows, err := s.cnn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query system.tables: %w", err)
	}
	defer rows.Close()

	var datasets []string
	for rows.Next() {
		var databaseName, tableName string
		if err := rows.Scan(&databaseName, &tableName); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		datasets = append(datasets, fmt.Sprintf("%s.%s", databaseName, tableName))
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error occurred during row iteration: %w", err)
	}

	return datasets, nil
}

// clickhouseDataset is an immutable view over a table plus conjunctive
// filters.
type clickhouseDataset struct {
	session *ClickhouseTabularSession
	table   string
	filters []string
}

func (d *clickhouseDataset) selectQuery(projection string) string {
	query := fmt.Sprintf("select %s from %s", projection, d.table)
	if len(d.filters) > 0 {
		query += " where " + strings.Join(d.filters, " and ")
	}
	return query
}

func (d *clickhouseDataset) withFilter(clause string) *clickhouseDataset {
	filters := make([]string, 0, len(d.filters)+1)
	filters = append(filters, d.filters...)
	filters = append(filters, clause)

	return &clickhouseDataset{
		session: d.session,
		table:   d.table,
		filters: filters,
	}
}

func (d *clickhouseDataset) Filter(ctx context.Context, pred dqfcore.Predicate) (dqfcore.DatasetHandle, error) {
	clause, err := clickhousePredicateClause(pred)
	if err != nil {
		return nil, err
	}

	return d.withFilter(clause), nil
}

func (d *clickhouseDataset) Count(ctx context.Context) (int64, error) {
	var count uint64
	if err := d.session.cnn.QueryRow(ctx, d.selectQuery("count()")).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", d.table, err)
	}

	return int64(count), nil
}

func (d *clickhouseDataset) GroupCount(ctx context.Context, column string) ([]dqfcore.ValueCount, error) {
	projection := fmt.Sprintf("CAST(%s, 'Nullable(String)') as grp, count()", column)
	query := d.selectQuery(projection) + " group by grp"

	rows, err := d.session.cnn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to group values of %s in %s: %w", column, d.table, err)
	}
	defer rows.Close()

	var groups []dqfcore.ValueCount
	for rows.Next() {
		var value *string
		var count uint64
		if err := rows.Scan(&value, &count); err != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", err)
		}
		groups = append(groups, dqfcore.ValueCount{Value: value, Count: int64(count)})
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error occurred during row iteration: %w", err)
	}

	return groups, nil
}

func (d *clickhouseDataset) Mean(ctx context.Context, column string) (*float64, error) {
	var mean sql.NullFloat64
	if err := d.session.cnn.QueryRow(ctx, d.selectQuery(fmt.Sprintf("avg(%s)", column))).Scan(&mean); err != nil {
		return nil, fmt.Errorf("failed to compute mean of %s in %s: %w", column, d.table, err)
	}

	// avg over zero rows comes back as NaN
	if !mean.Valid || math.IsNaN(mean.Float64) {
		return nil, nil
	}

	return &mean.Float64, nil
}

// clickhousePredicateClause renders a predicate into a ClickHouse boolean
// expression. Values and patterns compare against the column cast to
// Nullable(String), so the predicates stay type-agnostic. match() is RE2
// with unanchored substring semantics.
func clickhousePredicateClause(pred dqfcore.Predicate) (string, error) {
	castColumn := fmt.Sprintf("CAST(%s, 'Nullable(String)')", pred.Column)

	switch pred.Op {
	case dqfcore.PredIsNull:
		return fmt.Sprintf("isNull(%s)", pred.Column), nil

	case dqfcore.PredIn:
		if len(pred.Values) == 0 {
			return "", fmt.Errorf("in predicate requires values")
		}
		return fmt.Sprintf("%s in (%s)", castColumn, clickhouseStringList(pred.Values)), nil

	case dqfcore.PredNotIn:
		if len(pred.Values) == 0 {
			return "", fmt.Errorf("not_in predicate requires values")
		}
		return fmt.Sprintf("%s not in (%s)", castColumn, clickhouseStringList(pred.Values)), nil

	case dqfcore.PredOutsideRange:
		return fmt.Sprintf("(%s < %s or %s > %s)",
			pred.Column, formatNumber(pred.Min), pred.Column, formatNumber(pred.Max)), nil

	case dqfcore.PredNotMatches:
		if pred.Pattern == "" {
			return "", fmt.Errorf("not_matches predicate requires a pattern")
		}
		return fmt.Sprintf("not match(%s, %s)",
			castColumn, quoteStringLiteral(escapeBackslashes(pred.Pattern))), nil

	default:
		return "", fmt.Errorf("unsupported predicate op: %s", pred.Op)
	}
}

func clickhouseStringList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = quoteStringLiteral(escapeBackslashes(v))
	}
	return strings.Join(quoted, ", ")
}
