package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/getsentry/sentry-go"
	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivertype"

	"github.com/peerhaven/audit-backend/infra"
	"github.com/peerhaven/audit-backend/jobs"
	"github.com/peerhaven/audit-backend/repositories"
	"github.com/peerhaven/audit-backend/usecases"
	"github.com/peerhaven/audit-backend/usecases/worker_jobs"
	"github.com/peerhaven/audit-backend/utils"
)

func RunTaskQueue() error {
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
	integrityConfig := worker_jobs.IntegrityCheckConfig{
		MaxAttempts:    utils.GetEnv("INTEGRITY_CHECK_MAX_ATTEMPTS", worker_jobs.DefaultIntegrityCheckMaxAttempts),
		RetryBackoff:   utils.GetEnv("INTEGRITY_CHECK_RETRY_BACKOFF", worker_jobs.DefaultIntegrityCheckRetryBackoff),
		AttemptTimeout: utils.GetEnv("INTEGRITY_CHECK_ATTEMPT_TIMEOUT", worker_jobs.DefaultIntegrityCheckAttemptTimeout),
		Interval:       utils.GetEnv("INTEGRITY_CHECK_INTERVAL", worker_jobs.DefaultIntegrityCheckInterval),
		Limit:          utils.GetEnv("INTEGRITY_CHECK_LIMIT", 0),
	}
	workerConfig := struct {
		env                  string
		loggingFormat        string
		sentryDsn            string
		integrityWebhookUrl  string
		jobFailureWebhookUrl string
		verificationChunk    int
	}{
		env:                  utils.GetEnv("ENV", "development"),
		loggingFormat:        utils.GetEnv("LOGGING_FORMAT", "text"),
		sentryDsn:            utils.GetEnv("SENTRY_DSN", ""),
		integrityWebhookUrl:  utils.GetEnv("INTEGRITY_ALERT_WEBHOOK_URL", ""),
		jobFailureWebhookUrl: utils.GetEnv("JOB_FAILURE_ALERT_WEBHOOK_URL", ""),
		verificationChunk:    utils.GetEnv("VERIFICATION_CHUNK_SIZE", 1000),
	}

	logger := utils.NewLogger(workerConfig.loggingFormat)
	ctx := utils.StoreLoggerInContext(context.Background(), logger)

	infra.SetupSentry(workerConfig.sentryDsn, workerConfig.env)
	defer sentry.Flush(3 * time.Second)

	pool, err := infra.NewPostgresConnectionPool(ctx, pgConfig.GetConnectionString(),
		pgConfig.MaxPoolConnections)
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}

	workers := river.NewWorkers()
	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		FetchPollInterval: 1 * time.Second,
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 1},
		},
		// Must be larger than the per-attempt timeout, or stuck jobs would be
		// rescued while still running.
		RescueStuckJobsAfter: 2 * integrityConfig.AttemptTimeout,
		WorkerMiddleware: []rivertype.WorkerMiddleware{
			jobs.NewSentryMiddleware(),
			jobs.NewLoggerMiddleware(logger),
			jobs.NewRecovererMiddleware(),
		},
		Workers: workers,
		PeriodicJobs: []*river.PeriodicJob{
			worker_jobs.NewIntegrityCheckPeriodicJob(integrityConfig),
		},
	})
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}

	repos := repositories.NewRepositories(
		pool,
		repositories.WithRiverClient(riverClient),
		repositories.WithAlertWebhooks(workerConfig.integrityWebhookUrl, workerConfig.jobFailureWebhookUrl),
	)

	uc := usecases.NewUsecases(repos, usecases.Configuration{
		VerificationChunkSize:     workerConfig.verificationChunk,
		IntegrityCheckMaxAttempts: integrityConfig.MaxAttempts,
	})

	integrityUsecase := uc.NewIntegrityUsecase()
	river.AddWorker(workers, worker_jobs.NewIntegrityCheckWorker(
		&integrityUsecase,
		repos.AlertRepository,
		integrityConfig,
	))

	if err := riverClient.Start(ctx); err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}

	sigintOrTerm := make(chan os.Signal, 1)
	signal.Notify(sigintOrTerm, syscall.SIGINT, syscall.SIGTERM)

	go cleanStop(ctx, sigintOrTerm, riverClient)

	<-riverClient.Stopped()
	logger.InfoContext(ctx, "River client stopped")

	return nil
}

// cleanStop waits for SIGINT/SIGTERM and tries a soft stop first, giving the
// running verification pass a chance to finish. A second signal, or a soft
// stop timeout, escalates to a hard stop that cancels active jobs.
func cleanStop(ctx context.Context, sigintOrTerm chan os.Signal, riverClient *river.Client[pgx.Tx]) {
	logger := utils.LoggerFromContext(ctx)
	<-sigintOrTerm
	logger.InfoContext(ctx, "Received SIGINT/SIGTERM; initiating soft stop (try to wait for jobs to finish)")

	softStopCtx, softStopCtxCancel := context.WithTimeout(ctx, 10*time.Second)
	defer softStopCtxCancel()

	go func() {
		select {
		case <-sigintOrTerm:
			logger.InfoContext(ctx, "Received SIGINT/SIGTERM again; initiating hard stop (cancel everything)")
			softStopCtxCancel()
		case <-softStopCtx.Done():
			logger.InfoContext(ctx, "Soft stop timeout; initiating hard stop (cancel everything)")
		}
	}()

	err := riverClient.Stop(softStopCtx)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		logger.ErrorContext(ctx, "Soft stop failed", "error", err)
		panic(err)
	}
	if err == nil {
		logger.InfoContext(ctx, "Soft stop succeeded")
		return
	}

	hardStopCtx, hardStopCtxCancel := context.WithTimeout(ctx, 10*time.Second)
	defer hardStopCtxCancel()

	err = riverClient.StopAndCancel(hardStopCtx)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		logger.InfoContext(ctx, "Hard stop timeout; ignoring stop procedure and exiting unsafely")
	} else if err != nil {
		panic(err)
	}
}
