package repo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mrdaeback/voice-order/internal/agent/model"
	errx "github.com/mrdaeback/voice-order/internal/core/error"
)

// PostgresCatalog reads the active catalog.
type PostgresCatalog struct {
	db querier
}

func NewPostgresCatalog(db querier) *PostgresCatalog {
	return &PostgresCatalog{db: db}
}

func (c *PostgresCatalog) ListActiveDinners(ctx context.Context) ([]model.Dinner, error) {
	rows, err := c.db.Query(ctx, `
		SELECT id, name, description, base_price, is_active
		FROM dinners
		WHERE is_active
		ORDER BY base_price, name`)
	if err != nil {
		return nil, errx.WrapPostgres(err)
	}
	return collect(rows, func(row pgx.CollectableRow) (model.Dinner, error) {
		var (
			d     model.Dinner
			price pgtype.Numeric
		)
		if err := row.Scan(&d.ID, &d.Name, &d.Description, &price, &d.Active); err != nil {
			return d, err
		}
		var err error
		d.BasePrice, err = fromNumeric(price)
		return d, err
	})
}

func (c *PostgresCatalog) ListActiveStyles(ctx context.Context) ([]model.ServingStyle, error) {
	rows, err := c.db.Query(ctx, `
		SELECT id, name, description, extra_price, is_active
		FROM serving_styles
		WHERE is_active
		ORDER BY extra_price, name`)
	if err != nil {
		return nil, errx.WrapPostgres(err)
	}
	return collect(rows, func(row pgx.CollectableRow) (model.ServingStyle, error) {
		var (
			s     model.ServingStyle
			price pgtype.Numeric
		)
		if err := row.Scan(&s.ID, &s.Name, &s.Description, &price, &s.Active); err != nil {
			return s, err
		}
		var err error
		s.ExtraPrice, err = fromNumeric(price)
		return s, err
	})
}

func (c *PostgresCatalog) ListMenuItems(ctx context.Context) ([]model.MenuItem, error) {
	rows, err := c.db.Query(ctx, `SELECT id, name, unit_price FROM menu_items ORDER BY name`)
	if err != nil {
		return nil, errx.WrapPostgres(err)
	}
	return collect(rows, func(row pgx.CollectableRow) (model.MenuItem, error) {
		var (
			m     model.MenuItem
			price pgtype.Numeric
		)
		if err := row.Scan(&m.ID, &m.Name, &price); err != nil {
			return m, err
		}
		var err error
		m.UnitPrice, err = fromNumeric(price)
		return m, err
	})
}

func collect[T any](rows pgx.Rows, fn pgx.RowToFunc[T]) ([]T, error) {
	out, err := pgx.CollectRows(rows, fn)
	if err != nil {
		return nil, errx.WrapPostgres(err)
	}
	return out, nil
}
