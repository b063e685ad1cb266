package infra

import (
	"context"
	"fmt"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
)

const DEFAULT_MAX_CONNECTIONS = 20

type PgConfig struct {
	ConnectionString   string
	Database           string
	Hostname           string
	Password           string
	Port               string
	User               string
	MaxPoolConnections int
	SslMode            string
}

func (config PgConfig) GetConnectionString() string {
	if config.ConnectionString != "" {
		return config.ConnectionString
	}

	if config.SslMode == "" {
		config.SslMode = "prefer"
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s database=%s sslmode=%s",
		config.Hostname, config.Port, config.User, config.Password, config.Database, config.SslMode)
}

func NewPostgresConnectionPool(ctx context.Context, connectionString string, maxConnections int) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(connectionString)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	cfg.ConnConfig.Tracer = otelpgx.NewTracer()
	if maxConnections <= 0 {
		maxConnections = DEFAULT_MAX_CONNECTIONS
	}
	cfg.MaxConns = int32(maxConnections)

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	return pool, nil
}
