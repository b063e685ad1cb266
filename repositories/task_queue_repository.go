package repositories

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"

	"github.com/peerhaven/audit-backend/models"
	"github.com/peerhaven/audit-backend/utils"
)

type TaskQueueRepository interface {
	EnqueueIntegrityCheckTask(ctx context.Context, limit int, maxAttempts int) error
}

type riverRepository struct {
	client *river.Client[pgx.Tx]
}

func NewTaskQueueRepository(client *river.Client[pgx.Tx]) TaskQueueRepository {
	return riverRepository{client: client}
}

func (r riverRepository) EnqueueIntegrityCheckTask(ctx context.Context, limit int, maxAttempts int) error {
	res, err := r.client.Insert(ctx, models.IntegrityCheckArgs{
		Limit: limit,
	}, &river.InsertOpts{
		MaxAttempts: maxAttempts,
		UniqueOpts: river.UniqueOpts{
			ByArgs:  true,
			ByState: []rivertype.JobState{rivertype.JobStateAvailable, rivertype.JobStateRunning, rivertype.JobStateRetryable, rivertype.JobStateScheduled},
		},
	})
	if err != nil {
		return errors.Wrap(err, "could not enqueue integrity check task")
	}
	if res.UniqueSkippedAsDuplicate {
		utils.LoggerFromContext(ctx).DebugContext(ctx,
			"integrity check task skipped as duplicate", "limit", limit)
	}
	return nil
}
