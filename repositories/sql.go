package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/peerhaven/audit-backend/models"
)

func NewQueryBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func ExecBuilder(ctx context.Context, exec Executor, query squirrel.Sqlizer) (pgconn.CommandTag, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return pgconn.CommandTag{}, errors.Wrap(err, "can't build sql query")
	}
	return exec.Exec(ctx, sql, args...)
}

// SqlToListOfModels executes the query and adapts every row into a model.
func SqlToListOfModels[DBModel, Model any](
	ctx context.Context,
	exec Executor,
	query squirrel.Sqlizer,
	adapter func(dbModel DBModel) (Model, error),
) ([]Model, error) {
	dbModels, err := queryDbModels[DBModel](ctx, exec, query)
	if err != nil {
		return nil, err
	}

	out := make([]Model, len(dbModels))
	for i, dbModel := range dbModels {
		if out[i], err = adapter(dbModel); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// SqlToOptionalModel is like SqlToModel but returns nil when the query yields
// no row.
func SqlToOptionalModel[DBModel, Model any](
	ctx context.Context,
	exec Executor,
	query squirrel.Sqlizer,
	adapter func(dbModel DBModel) (Model, error),
) (*Model, error) {
	dbModels, err := queryDbModels[DBModel](ctx, exec, query)
	if err != nil {
		return nil, err
	}
	if len(dbModels) == 0 {
		return nil, nil
	}

	model, err := adapter(dbModels[0])
	if err != nil {
		return nil, err
	}
	return &model, nil
}

// SqlToModel executes the query and adapts the single returned row, or
// returns a NotFoundError.
func SqlToModel[DBModel, Model any](
	ctx context.Context,
	exec Executor,
	query squirrel.Sqlizer,
	adapter func(dbModel DBModel) (Model, error),
) (Model, error) {
	var zero Model

	model, err := SqlToOptionalModel(ctx, exec, query, adapter)
	if err != nil {
		return zero, err
	}
	if model == nil {
		return zero, errors.WithDetail(models.NotFoundError, "no row found for query")
	}
	return *model, nil
}

func queryDbModels[DBModel any](ctx context.Context, exec Executor, query squirrel.Sqlizer) ([]DBModel, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "can't build sql query")
	}

	rows, err := exec.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(err, "error executing sql query")
	}

	dbModels, err := pgx.CollectRows(rows, pgx.RowToStructByName[DBModel])
	if err != nil {
		var dbModel DBModel
		return nil, errors.Wrapf(err, "error scanning rows to struct %T", dbModel)
	}
	return dbModels, nil
}
