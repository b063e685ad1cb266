package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"

	"github.com/peerhaven/audit-backend/utils"
)

const (
	sentryErrorGroupingTime = 30 * time.Second
	sdkIdentifier           = "sentry.go.river.audit"
)

// Logger middleware

type LoggerMiddleware struct {
	river.WorkerMiddlewareDefaults

	l              *slog.Logger
	errorCount     map[string]int
	errorCountLock *sync.Mutex
}

func (m *LoggerMiddleware) Work(ctx context.Context, job *rivertype.JobRow, doInner func(context.Context) error) error {
	logger := m.l.With(
		"job_id", job.ID,
		"job_kind", job.Kind,
		"job_attempt", job.Attempt,
		"last_attempted_at", job.AttemptedAt,
		"created_at", job.CreatedAt,
		"queue", job.Queue,
	)
	start := time.Now()
	logger.InfoContext(ctx, fmt.Sprintf("Starting %s job n°%d - attempt %d", job.Kind, job.ID, job.Attempt))

	ctx = utils.StoreLoggerInContext(ctx, logger)
	err := doInner(ctx)
	if err != nil {
		logger.ErrorContext(ctx, fmt.Sprintf("%s job n°%d failed after %s", job.Kind, job.ID, time.Since(start)))
		m.aggregateAndLogError(ctx, job, err)
		return err
	}

	logger.InfoContext(ctx, fmt.Sprintf("%s job n°%d succeeded after %s", job.Kind, job.ID, time.Since(start)))
	return nil
}

// aggregateAndLogError debounces identical errors for sentryErrorGroupingTime
// so a retry storm reports once, not once per attempt.
func (m *LoggerMiddleware) aggregateAndLogError(ctx context.Context, job *rivertype.JobRow, err error) {
	m.errorCountLock.Lock()
	defer m.errorCountLock.Unlock()

	errorKey := fmt.Sprintf("%s:%s", job.Kind, err.Error())
	m.errorCount[errorKey]++

	if m.errorCount[errorKey] == 1 {
		go func() {
			time.Sleep(sentryErrorGroupingTime)
			m.errorCountLock.Lock()
			defer m.errorCountLock.Unlock()

			delete(m.errorCount, errorKey)

			utils.LogAndReportSentryError(ctx, err)
		}()
	}
}

func NewLoggerMiddleware(l *slog.Logger) *LoggerMiddleware {
	return &LoggerMiddleware{l: l, errorCount: make(map[string]int), errorCountLock: &sync.Mutex{}}
}

// Recoverer middleware

type RecovererMiddleware struct {
	river.WorkerMiddlewareDefaults
}

func (m *RecovererMiddleware) Work(ctx context.Context, job *rivertype.JobRow, doInner func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return doInner(ctx)
}

func NewRecovererMiddleware() *RecovererMiddleware {
	return &RecovererMiddleware{}
}

// Sentry middleware

type SentryMiddleware struct {
	river.WorkerMiddlewareDefaults
}

func (m *SentryMiddleware) Work(ctx context.Context, job *rivertype.JobRow, doInner func(context.Context) error) error {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
		ctx = sentry.SetHubOnContext(ctx, hub)
	}

	if client := hub.Client(); client != nil {
		client.SetSDKIdentifier(sdkIdentifier)
	}

	options := []sentry.SpanOption{
		sentry.WithOpName("river.task"),
		sentry.WithTransactionSource(sentry.SourceTask),
	}

	scope := hub.PushScope()
	scope.SetTag("job_id", strconv.FormatInt(job.ID, 10))
	scope.SetTag("job_kind", job.Kind)
	scope.SetTag("job_attempt", strconv.Itoa(job.Attempt))
	scope.SetTag("queue", job.Queue)
	var args map[string]any
	if err := json.Unmarshal(job.EncodedArgs, &args); err != nil {
		scope.SetTag("payload", "error decoding payload")
	} else {
		scope.SetExtra("payload", args)
	}

	transaction := sentry.StartTransaction(ctx,
		fmt.Sprintf("river task %s", job.Kind),
		options...,
	)

	return doInner(transaction.Context())
}

func NewSentryMiddleware() *SentryMiddleware {
	return &SentryMiddleware{}
}
