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
	"strings"

	"github.com/DataBridgeTech/dqfcore"
)

type MysqlTabularSession struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewMysqlTabularSession(db *sql.DB, logger *slog.Logger) dqfcore.TabularSession {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &MysqlTabularSession{
		db:     db,
		logger: logger,
	}
}

func (s *MysqlTabularSession) Load(ctx context.Context, source dqfcore.SourceDescriptor) (dqfcore.DatasetHandle, error) {
	if source.Location == "" {
		return nil, fmt.Errorf("source descriptor requires a location")
	}

	ds := &mysqlDataset{session: s, table: source.Location}

	if _, err := ds.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to load dataset %s: %w", source.Location, err)
	}

	return ds, nil
}

func (s *MysqlTabularSession) Write(ctx context.Context, handle dqfcore.DatasetHandle, location string, format string) error {
	ds, ok := handle.(*mysqlDataset)
	if !ok {
		return fmt.Errorf("dataset handle was not produced by this session")
	}

	_ = format

	target := sanitizeIdentifier(location)

	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", target)); err != nil {
		return fmt.Errorf("failed to drop previous quarantine table %s: %w", target, err)
	}

	query := fmt.Sprintf("CREATE TABLE %s AS %s", target, ds.selectQuery("*"))
	s.logger.Debug("writing quarantine table",
		"table", target,
		"query", query)

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create quarantine table %s: %w", target, err)
	}

	return nil
}

func (s *MysqlTabularSession) Ping(ctx context.Context) (string, error) {
	if err := s.db.PingContext(ctx); err != nil {
		return "", err
	}
	return "OK", nil
}

func (s *MysqlTabularSession) ListDatasets(ctx context.Context, filter string) ([]string, error) {
	query := `
		SELECT table_schema, table_name
		FROM information_schema.tables
		WHERE table_schema NOT IN ('mysql', 'information_schema', 'performance_schema', 'sys')
	`

	var args []interface{}
	if filter != "" {
		query += " AND (table_schema LIKE ? OR table_name LIKE ?)"
		args = append(args, fmt.Sprintf("%%%s%%", filter), fmt.Sprintf("%%%s%%", filter))
	}
	query += " ORDER BY table_schema, table_name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query information_schema.tables: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Warn("failed to close rows", "error", err)
		}
	}()

	var datasets []string
	for rows.Next() {
		var schemaName, tableName string
		if err := rows.Scan(&schemaName, &tableName); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		datasets = append(datasets, fmt.Sprintf("%s.%s", schemaName, tableName))
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error occurred during row iteration: %w", err)
	}

	return datasets, nil
}

type mysqlDataset struct {
	session *MysqlTabularSession
	table   string
	filters []string
}

func (d *mysqlDataset) selectQuery(projection string) string {
	query := fmt.Sprintf("SELECT %s FROM %s", projection, d.table)
	if len(d.filters) > 0 {
		query += " WHERE " + strings.Join(d.filters, " AND ")
	}
	return query
}

func (d *mysqlDataset) Filter(ctx context.Context, pred dqfcore.Predicate) (dqfcore.DatasetHandle, error) {
	clause, err := mysqlPredicateClause(pred)
	if err != nil {
		return nil, err
	}

	filters := make([]string, 0, len(d.filters)+1)
	filters = append(filters, d.filters...)
	filters = append(filters, clause)

	return &mysqlDataset{
		session: d.session,
		table:   d.table,
		filters: filters,
	}, nil
}

func (d *mysqlDataset) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := d.session.db.QueryRowContext(ctx, d.selectQuery("COUNT(*)")).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", d.table, err)
	}

	return count, nil
}

func (d *mysqlDataset) GroupCount(ctx context.Context, column string) ([]dqfcore.ValueCount, error) {
	projection := fmt.Sprintf("CAST(`%s` AS CHAR), COUNT(*)", column)
	query := d.selectQuery(projection) + " GROUP BY 1"

	rows, err := d.session.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to group values of %s in %s: %w", column, d.table, err)
	}
	defer rows.Close()

	var groups []dqfcore.ValueCount
	for rows.Next() {
		var value sql.NullString
		var count int64
		if err := rows.Scan(&value, &count); err != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", err)
		}

		group := dqfcore.ValueCount{Count: count}
		if value.Valid {
			group.Value = &value.String
		}
		groups = append(groups, group)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error occurred during row iteration: %w", err)
	}

	return groups, nil
}

func (d *mysqlDataset) Mean(ctx context.Context, column string) (*float64, error) {
	var mean sql.NullFloat64
	query := d.selectQuery(fmt.Sprintf("AVG(`%s`)", column))
	if err := d.session.db.QueryRowContext(ctx, query).Scan(&mean); err != nil {
		return nil, fmt.Errorf("failed to compute mean of %s in %s: %w", column, d.table, err)
	}

	if !mean.Valid {
		return nil, nil
	}

	return &mean.Float64, nil
}

// mysqlPredicateClause renders a predicate into a MySQL boolean expression.
// Values compare against the column cast to CHAR. REGEXP is unanchored
// substring matching.
func mysqlPredicateClause(pred dqfcore.Predicate) (string, error) {
	column := fmt.Sprintf("`%s`", pred.Column)
	castColumn := fmt.Sprintf("CAST(%s AS CHAR)", column)

	switch pred.Op {
	case dqfcore.PredIsNull:
		return fmt.Sprintf("%s IS NULL", column), nil

	case dqfcore.PredIn:
		if len(pred.Values) == 0 {
			return "", fmt.Errorf("in predicate requires values")
		}
		return fmt.Sprintf("%s IN (%s)", castColumn, mysqlStringList(pred.Values)), nil

	case dqfcore.PredNotIn:
		if len(pred.Values) == 0 {
			return "", fmt.Errorf("not_in predicate requires values")
		}
		return fmt.Sprintf("%s NOT IN (%s)", castColumn, mysqlStringList(pred.Values)), nil

	case dqfcore.PredOutsideRange:
		return fmt.Sprintf("(%s < %s OR %s > %s)",
			column, formatNumber(pred.Min), column, formatNumber(pred.Max)), nil

	case dqfcore.PredNotMatches:
		if pred.Pattern == "" {
			return "", fmt.Errorf("not_matches predicate requires a pattern")
		}
		return fmt.Sprintf("NOT (%s REGEXP %s)",
			castColumn, quoteStringLiteral(escapeBackslashes(pred.Pattern))), nil

	default:
		return "", fmt.Errorf("unsupported predicate op: %s", pred.Op)
	}
}

func mysqlStringList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = quoteStringLiteral(escapeBackslashes(v))
	}
	return strings.Join(quoted, ", ")
}
