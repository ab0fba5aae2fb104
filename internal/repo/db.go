package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/mrdaeback/voice-order/internal/agent/model"
	errx "github.com/mrdaeback/voice-order/internal/core/error"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// txStarter is satisfied by *pgxpool.Pool.
type txStarter interface {
	querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// inTx runs fn in one transaction. Any error rolls everything back.
func inTx(ctx context.Context, db txStarter, fn func(tx pgx.Tx) error) error {
	return errx.WrapPostgres(pgx.BeginFunc(ctx, db, fn))
}

// toNumeric converts won into the NUMERIC parameter form.
func toNumeric(m model.Money) decimal.Decimal {
	return decimal.NewFromInt(int64(m))
}

// fromNumeric rounds a NUMERIC column to whole won.
func fromNumeric(n pgtype.Numeric) (model.Money, error) {
	if !n.Valid {
		return 0, nil
	}
	v, err := n.Value()
	if err != nil {
		return 0, fmt.Errorf("numeric value: %w", err)
	}
	s, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("numeric value: unexpected %T", v)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("numeric value %q: %w", s, err)
	}
	return model.Money(d.Round(0).IntPart()), nil
}

func parseID(kind, id string) (uuid.UUID, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, errx.BadRequest(fmt.Errorf("%s id %q: %w", kind, id, err), "")
	}
	return u, nil
}
