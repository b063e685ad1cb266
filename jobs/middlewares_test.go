package jobs

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/assert"

	"github.com/peerhaven/audit-backend/utils"
)

// The worker middlewares must carry river's middleware marker, or the river
// client refuses them at construction.
var (
	_ rivertype.WorkerMiddleware = &LoggerMiddleware{}
	_ rivertype.WorkerMiddleware = &RecovererMiddleware{}
	_ rivertype.WorkerMiddleware = &SentryMiddleware{}
)

func testJobRow() *rivertype.JobRow {
	return &rivertype.JobRow{
		ID:          1,
		Kind:        "integrity_check",
		Attempt:     1,
		Queue:       "default",
		CreatedAt:   time.Date(2026, 8, 10, 15, 0, 0, 0, time.UTC),
		EncodedArgs: []byte(`{"limit":0}`),
	}
}

func TestLoggerMiddleware(t *testing.T) {
	t.Run("stores the job logger in context and passes the result through", func(t *testing.T) {
		var buf bytes.Buffer
		middleware := NewLoggerMiddleware(slog.New(slog.NewTextHandler(&buf, nil)))

		var innerLogger *slog.Logger
		err := middleware.Work(context.Background(), testJobRow(), func(ctx context.Context) error {
			innerLogger = utils.LoggerFromContext(ctx)
			return nil
		})

		assert.NoError(t, err)
		assert.NotNil(t, innerLogger)
		assert.Contains(t, buf.String(), "job_kind=integrity_check")
	})

	t.Run("returns the job error unchanged", func(t *testing.T) {
		var buf bytes.Buffer
		middleware := NewLoggerMiddleware(slog.New(slog.NewTextHandler(&buf, nil)))

		jobErr := errors.New("store unreachable")
		err := middleware.Work(context.Background(), testJobRow(), func(ctx context.Context) error {
			return jobErr
		})

		assert.ErrorIs(t, err, jobErr)
		assert.Contains(t, buf.String(), "failed")
	})
}

func TestRecovererMiddleware(t *testing.T) {
	t.Run("turns a panic into an error", func(t *testing.T) {
		middleware := NewRecovererMiddleware()

		err := middleware.Work(context.Background(), testJobRow(), func(ctx context.Context) error {
			panic("boom")
		})

		assert.ErrorContains(t, err, "panic: boom")
	})

	t.Run("passes a clean run through", func(t *testing.T) {
		middleware := NewRecovererMiddleware()

		err := middleware.Work(context.Background(), testJobRow(), func(ctx context.Context) error {
			return nil
		})

		assert.NoError(t, err)
	})
}
