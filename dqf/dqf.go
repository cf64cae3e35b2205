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

package dqf

import (
	"fmt"
	"log/slog"

	"github.com/DataBridgeTech/dqfcore"
	"github.com/DataBridgeTech/dqfcore/cnn"
	"github.com/DataBridgeTech/dqfcore/engines"
)

const (
	Version = "v0.1.0"
)

func GetDqfCoreLibVersion() string {
	return Version
}

// NewTabularSession opens a session against the configured tabular engine.
func NewTabularSession(dataSource *dqfcore.DataSource, logger *slog.Logger) (dqfcore.TabularSession, error) {
	switch dataSource.Type {
	case dqfcore.DataSourceTypeClickhouse:
		connection, err := cnn.NewClickhouseConnection(dataSource.Configuration)
		if err != nil {
			return nil, fmt.Errorf("failed to create clickhouse connection: %w", err)
		}
		return engines.NewClickhouseTabularSession(connection, logger), nil
	case dqfcore.DataSourceTypePostgresql:
		connection, err := cnn.NewPostgresqlConnection(dataSource.Configuration)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgresql connection: %w", err)
		}
		return engines.NewPostgresqlTabularSession(connection, logger), nil
	case dqfcore.DataSourceTypeMysql:
		connection, err := cnn.NewMysqlConnection(dataSource.Configuration)
		if err != nil {
			return nil, fmt.Errorf("failed to create mysql connection: %w", err)
		}
		return engines.NewMysqlTabularSession(connection, logger), nil
	default:
		return nil, fmt.Errorf("unsupported data source type: %s", dataSource.Type)
	}
}
