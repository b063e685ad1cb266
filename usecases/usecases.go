package usecases

import (
	"github.com/peerhaven/audit-backend/repositories"
	"github.com/peerhaven/audit-backend/repositories/clock"
	"github.com/peerhaven/audit-backend/usecases/executor_factory"
)

type Configuration struct {
	// VerificationChunkSize bounds how many entries a verification pass loads
	// per query.
	VerificationChunkSize int
	// IntegrityCheckMaxAttempts is the attempt budget of the verification job.
	IntegrityCheckMaxAttempts int
}

type Usecases struct {
	Repositories repositories.Repositories
	Config       Configuration
	Clock        clock.Clock
}

func NewUsecases(repositories repositories.Repositories, config Configuration) Usecases {
	if config.VerificationChunkSize <= 0 {
		config.VerificationChunkSize = 1000
	}
	if config.IntegrityCheckMaxAttempts <= 0 {
		config.IntegrityCheckMaxAttempts = 3
	}
	return Usecases{
		Repositories: repositories,
		Config:       config,
		Clock:        clock.New(),
	}
}

func (usecases Usecases) NewExecutorFactory() executor_factory.DbExecutorFactory {
	return executor_factory.NewDbExecutorFactory(usecases.Repositories.ExecutorGetter)
}

func (usecases Usecases) NewLedgerUsecase() LedgerUsecase {
	return LedgerUsecase{
		executorFactory:    usecases.NewExecutorFactory(),
		transactionFactory: usecases.NewExecutorFactory(),
		repository:         usecases.Repositories.AuditDbRepository,
		clock:              usecases.Clock,
	}
}

func (usecases Usecases) NewIntegrityUsecase() IntegrityUsecase {
	return IntegrityUsecase{
		executorFactory:    usecases.NewExecutorFactory(),
		transactionFactory: usecases.NewExecutorFactory(),
		ledgerRepository:   usecases.Repositories.AuditDbRepository,
		checkRepository:    usecases.Repositories.AuditDbRepository,
		taskQueue:          usecases.Repositories.TaskQueueRepository,
		clock:              usecases.Clock,
		chunkSize:          usecases.Config.VerificationChunkSize,
		maxAttempts:        usecases.Config.IntegrityCheckMaxAttempts,
	}
}
