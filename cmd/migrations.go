package cmd

import (
	"context"
	"fmt"

	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"

	"github.com/peerhaven/audit-backend/infra"
	"github.com/peerhaven/audit-backend/repositories"
	"github.com/peerhaven/audit-backend/utils"
)

func RunMigrations() error {
	pgConfig := infra.PgConfig{
		ConnectionString: utils.GetEnv("PG_CONNECTION_STRING", ""),
		Database:         "audit",
		Hostname:         utils.GetEnv("PG_HOSTNAME", ""),
		Password:         utils.GetEnv("PG_PASSWORD", ""),
		Port:             utils.GetEnv("PG_PORT", "5432"),
		User:             utils.GetEnv("PG_USER", ""),
		SslMode:          utils.GetEnv("PG_SSL_MODE", "prefer"),
	}

	logger := utils.NewLogger(utils.GetEnv("LOGGING_FORMAT", "text"))
	ctx := utils.StoreLoggerInContext(context.Background(), logger)

	migrater := repositories.NewMigrater(pgConfig.GetConnectionString())
	if err := migrater.Run(ctx); err != nil {
		logger.ErrorContext(ctx, fmt.Sprintf("error running migrations: %v", err))
		return err
	}

	// the task queue keeps its own schema
	pool, err := infra.NewPostgresConnectionPool(ctx, pgConfig.GetConnectionString(), 2)
	if err != nil {
		return err
	}
	defer pool.Close()

	riverMigrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return err
	}
	if _, err := riverMigrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		logger.ErrorContext(ctx, fmt.Sprintf("error running task queue migrations: %v", err))
		return err
	}

	return nil
}
