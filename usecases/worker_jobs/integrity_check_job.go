package worker_jobs

import (
	"context"
	"time"

	"github.com/riverqueue/river"

	"github.com/peerhaven/audit-backend/models"
	"github.com/peerhaven/audit-backend/utils"
)

const (
	// Defaults for the verification job budget. These are configuration, not
	// policy: every value can be overridden through the environment at the
	// cmd boundary.
	DefaultIntegrityCheckMaxAttempts    = 3
	DefaultIntegrityCheckRetryBackoff   = 60 * time.Second
	DefaultIntegrityCheckAttemptTimeout = 300 * time.Second
	DefaultIntegrityCheckInterval       = 1 * time.Hour
)

type IntegrityCheckConfig struct {
	MaxAttempts    int
	RetryBackoff   time.Duration
	AttemptTimeout time.Duration
	Interval       time.Duration
	// Limit caps periodic runs to the most recent N entries; 0 runs a full
	// scan every time.
	Limit int
}

func NewIntegrityCheckConfig() IntegrityCheckConfig {
	return IntegrityCheckConfig{
		MaxAttempts:    DefaultIntegrityCheckMaxAttempts,
		RetryBackoff:   DefaultIntegrityCheckRetryBackoff,
		AttemptTimeout: DefaultIntegrityCheckAttemptTimeout,
		Interval:       DefaultIntegrityCheckInterval,
	}
}

type chainVerifier interface {
	VerifyAndStoreReport(ctx context.Context, limit int) (models.VerificationReport, error)
}

type alertSender interface {
	SendIntegrityAlert(ctx context.Context, alert models.IntegrityAlert) error
	SendJobFailureAlert(ctx context.Context, alert models.JobFailureAlert) error
}

// IntegrityCheckWorker runs one verification pass per job attempt.
//
// Two failure modes must never be confused: a report with violations is a
// successful run whose payload says the ledger is broken (integrity alert,
// job completes), while an operational error (store unreachable, decode
// failure) means verification could not run at all (retried up to the attempt
// budget, then a job-failure alert).
type IntegrityCheckWorker struct {
	river.WorkerDefaults[models.IntegrityCheckArgs]

	verifier chainVerifier
	alerts   alertSender
	config   IntegrityCheckConfig
}

func NewIntegrityCheckWorker(
	verifier chainVerifier,
	alerts alertSender,
	config IntegrityCheckConfig,
) *IntegrityCheckWorker {
	return &IntegrityCheckWorker{
		verifier: verifier,
		alerts:   alerts,
		config:   config,
	}
}

// Timeout is the hard cancellation boundary of one attempt: an attempt that
// exceeds it counts as failed and is retried per the attempt budget, not left
// running.
func (w *IntegrityCheckWorker) Timeout(job *river.Job[models.IntegrityCheckArgs]) time.Duration {
	return w.config.AttemptTimeout
}

func (w *IntegrityCheckWorker) NextRetry(job *river.Job[models.IntegrityCheckArgs]) time.Time {
	return time.Now().Add(w.config.RetryBackoff)
}

func (w *IntegrityCheckWorker) Work(ctx context.Context, job *river.Job[models.IntegrityCheckArgs]) error {
	logger := utils.LoggerFromContext(ctx)

	report, err := w.verifier.VerifyAndStoreReport(ctx, job.Args.Limit)
	if err != nil {
		if job.Attempt >= job.MaxAttempts {
			alert := models.JobFailureAlert{
				ErrorMessage: err.Error(),
				Attempts:     job.Attempt,
				MaxAttempts:  job.MaxAttempts,
				QueueName:    job.Queue,
			}
			if alertErr := w.alerts.SendJobFailureAlert(ctx, alert); alertErr != nil {
				logger.ErrorContext(ctx, "could not send job failure alert", "error", alertErr)
			}
		}
		return err
	}

	if !report.Passed {
		logger.WarnContext(ctx, "audit chain integrity violations found",
			"total_checked", report.TotalChecked,
			"violations_found", report.ViolationsFound,
			"integrity_score", report.IntegrityScore,
			"last_verified_hash", report.LastVerifiedHash,
		)
		// failing to alert fails the attempt: a violation must never be
		// silently dropped, and re-running verification is safe
		return w.alerts.SendIntegrityAlert(ctx, models.IntegrityAlert{
			TotalChecked:     report.TotalChecked,
			ViolationsFound:  report.ViolationsFound,
			IntegrityScore:   report.IntegrityScore,
			LastVerifiedHash: report.LastVerifiedHash,
			CheckedAt:        report.CheckedAt,
		})
	}

	logger.InfoContext(ctx, "audit chain verification passed",
		"total_checked", report.TotalChecked,
		"duration_ms", report.DurationMs,
	)
	return nil
}

func NewIntegrityCheckPeriodicJob(config IntegrityCheckConfig) *river.PeriodicJob {
	return river.NewPeriodicJob(
		river.PeriodicInterval(config.Interval),
		func() (river.JobArgs, *river.InsertOpts) {
			return models.IntegrityCheckArgs{
					Limit: config.Limit,
				}, &river.InsertOpts{
					MaxAttempts: config.MaxAttempts,
					UniqueOpts: river.UniqueOpts{
						ByPeriod: config.Interval,
					},
				}
		},
		&river.PeriodicJobOpts{RunOnStart: true},
	)
}
