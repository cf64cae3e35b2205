package cnn

import (
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/DataBridgeTech/dqfcore"
)

func NewClickhouseConnection(connectionCfg dqfcore.ConnectionConfig) (driver.Conn, error) {
	cnn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", connectionCfg.Host, connectionCfg.Port)},
		Auth: clickhouse.Auth{
			Database: connectionCfg.Database,
			Username: connectionCfg.Username,
			Password: connectionCfg.Password,
		},
		MaxOpenConns: 32,
		MaxIdleConns: 32,
	})
	return cnn, err
}
