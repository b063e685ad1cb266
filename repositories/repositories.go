package repositories

import (
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
)

type Repositories struct {
	ExecutorGetter      ExecutorGetter
	AuditDbRepository   *AuditDbRepository
	AlertRepository     *WebhookAlertRepository
	TaskQueueRepository TaskQueueRepository
}

type Option func(*options)

type options struct {
	riverClient          *river.Client[pgx.Tx]
	integrityWebhookUrl  string
	jobFailureWebhookUrl string
}

func WithRiverClient(client *river.Client[pgx.Tx]) Option {
	return func(o *options) {
		o.riverClient = client
	}
}

func WithAlertWebhooks(integrityWebhookUrl, jobFailureWebhookUrl string) Option {
	return func(o *options) {
		o.integrityWebhookUrl = integrityWebhookUrl
		o.jobFailureWebhookUrl = jobFailureWebhookUrl
	}
}

func NewRepositories(pool *pgxpool.Pool, opts ...Option) Repositories {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	repositories := Repositories{
		ExecutorGetter:    NewExecutorGetter(pool),
		AuditDbRepository: NewAuditDbRepository(),
		AlertRepository:   NewWebhookAlertRepository(o.integrityWebhookUrl, o.jobFailureWebhookUrl),
	}
	if o.riverClient != nil {
		repositories.TaskQueueRepository = NewTaskQueueRepository(o.riverClient)
	}
	return repositories
}
