package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	wrap "github.com/Temutjin2k/campus-ride/pkg/logger/wrapper"
	"github.com/Temutjin2k/campus-ride/pkg/metrics"
	"github.com/Temutjin2k/campus-ride/pkg/trm"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Querier interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
}

// TxorDB returns the transaction carried by ctx, or the pool.
func TxorDB(ctx context.Context, db *pgxpool.Pool) Querier {
	if tx, ok := trm.TxFromContext(ctx); ok {
		return tx
	}
	return db
}

// dbError wraps a driver error with the operation name and the storage error class.
func dbError(ctx context.Context, op string, err error) error {
	ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
	return wrap.Error(ctx, fmt.Errorf("%s: %w: %w", op, types.ErrDatabaseFailed, err))
}

// observe records the duration and outcome of op. Use with defer and a named error result.
func observe(op string, start time.Time, errp *error) {
	var err error
	if errp != nil {
		err = *errp
	}
	metrics.RecordDatabaseQuery(metrics.ServiceLabel(), op, err, time.Since(start))
}
