package executor_factory

import (
	"context"

	"github.com/pashagolub/pgxmock/v4"

	"github.com/peerhaven/audit-backend/repositories"
)

type ExecutorFactoryStub struct {
	Mock pgxmock.PgxPoolIface
}

func NewExecutorFactoryStub() ExecutorFactoryStub {
	pool, _ := pgxmock.NewPool()

	return ExecutorFactoryStub{
		Mock: pool,
	}
}

type PgExecutorStub struct {
	pgxmock.PgxPoolIface
}

func (stub ExecutorFactoryStub) NewExecutor() repositories.Executor {
	return PgExecutorStub{
		stub.Mock,
	}
}

// TransactionFactoryStub runs the callback without a real transaction, for
// usecase tests where the repository is mocked anyway.
type TransactionFactoryStub struct {
	Tx repositories.Transaction
}

func (stub TransactionFactoryStub) Transaction(
	ctx context.Context,
	fn func(tx repositories.Transaction) error,
) error {
	return fn(stub.Tx)
}
