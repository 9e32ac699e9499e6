package postgres

import (
	"context"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"job-autopilot/internal/domain/ports/repository"
)

// pickRow routes a single-row query through the right executor: the passed
// transaction when there is one, the pool otherwise.
func pickRow(ctx context.Context, pool *pgxpool.Pool, tx repository.Tx, sql string, args ...interface{}) (pgx.Row, error) {
	exec, err := getExecutor(pool, tx)
	if err != nil {
		return nil, err
	}
	return exec.QueryRow(ctx, sql, args...), nil
}

func pickRows(ctx context.Context, pool *pgxpool.Pool, tx repository.Tx, sql string, args ...interface{}) (pgx.Rows, error) {
	exec, err := getExecutor(pool, tx)
	if err != nil {
		return nil, err
	}
	return exec.Query(ctx, sql, args...)
}

func execSQL(ctx context.Context, pool *pgxpool.Pool, tx repository.Tx, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	exec, err := getExecutor(pool, tx)
	if err != nil {
		return nil, err
	}
	return exec.Exec(ctx, sql, args...)
}
