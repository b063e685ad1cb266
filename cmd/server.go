package cmd

import (
	"context"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/getsentry/sentry-go"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"

	"github.com/peerhaven/audit-backend/api"
	"github.com/peerhaven/audit-backend/infra"
	"github.com/peerhaven/audit-backend/repositories"
	"github.com/peerhaven/audit-backend/usecases"
	"github.com/peerhaven/audit-backend/utils"
)

func RunServer() error {
	apiConfig := api.Configuration{
		Env:                 utils.GetEnv("ENV", "development"),
		AppName:             "audit-backend",
		Port:                utils.GetRequiredEnv[string]("PORT"),
		RequestLoggingLevel: utils.GetEnv("REQUEST_LOGGING_LEVEL", "all"),
		DefaultTimeout:      time.Duration(utils.GetEnv("DEFAULT_TIMEOUT_SECOND", 5)) * time.Second,
	}
	pgConfig := infra.PgConfig{
		ConnectionString:   utils.GetEnv("PG_CONNECTION_STRING", ""),
		Database:           "audit",
		Hostname:           utils.GetEnv("PG_HOSTNAME", ""),
		Password:           utils.GetEnv("PG_PASSWORD", ""),
		Port:               utils.GetEnv("PG_PORT", "5432"),
		User:               utils.GetEnv("PG_USER", ""),
		MaxPoolConnections: utils.GetEnv("PG_MAX_POOL_SIZE", infra.DEFAULT_MAX_CONNECTIONS),
		SslMode:            utils.GetEnv("PG_SSL_MODE", "prefer"),
	}
	serverConfig := struct {
		loggingFormat        string
		sentryDsn            string
		integrityWebhookUrl  string
		jobFailureWebhookUrl string
		verificationChunk    int
	}{
		loggingFormat:        utils.GetEnv("LOGGING_FORMAT", "text"),
		sentryDsn:            utils.GetEnv("SENTRY_DSN", ""),
		integrityWebhookUrl:  utils.GetEnv("INTEGRITY_ALERT_WEBHOOK_URL", ""),
		jobFailureWebhookUrl: utils.GetEnv("JOB_FAILURE_ALERT_WEBHOOK_URL", ""),
		verificationChunk:    utils.GetEnv("VERIFICATION_CHUNK_SIZE", 1000),
	}

	logger := utils.NewLogger(serverConfig.loggingFormat)
	ctx := utils.StoreLoggerInContext(context.Background(), logger)

	infra.SetupSentry(serverConfig.sentryDsn, apiConfig.Env)
	defer sentry.Flush(3 * time.Second)

	pool, err := infra.NewPostgresConnectionPool(ctx, pgConfig.GetConnectionString(),
		pgConfig.MaxPoolConnections)
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}

	// insert-only river client, so POST /integrity/checks can enqueue runs
	// picked up by the worker process
	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{})
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}

	repos := repositories.NewRepositories(
		pool,
		repositories.WithRiverClient(riverClient),
		repositories.WithAlertWebhooks(serverConfig.integrityWebhookUrl, serverConfig.jobFailureWebhookUrl),
	)

	uc := usecases.NewUsecases(repos, usecases.Configuration{
		VerificationChunkSize: serverConfig.verificationChunk,
	})

	router := api.InitRouterMiddlewares(ctx, apiConfig)
	server := api.NewServer(router, apiConfig, uc)

	notify, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.InfoContext(ctx, "starting server", slog.String("port", apiConfig.Port))
		err := server.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			utils.LogAndReportSentryError(ctx, errors.Wrap(err, "Error while serving the app"))
		}
		logger.InfoContext(ctx, "server returned")
	}()

	<-notify.Done()
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		utils.LogAndReportSentryError(ctx, errors.Wrap(err, "Error while shutting down the server"))
		return err
	}

	return nil
}
