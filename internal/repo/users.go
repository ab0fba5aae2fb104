package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	errx "github.com/mrdaeback/voice-order/internal/core/error"
)

// Users is the user directory.
type Users struct {
	db querier
}

func NewUsers(db querier) *Users {
	return &Users{db: db}
}

// SavedAddresses returns the user's delivery addresses in display order.
// An unknown user is an authorization failure.
func (u *Users) SavedAddresses(ctx context.Context, userID string) ([]string, error) {
	id, err := parseID("user", userID)
	if err != nil {
		return nil, errx.Unauthorized(errx.ErrUserNotFound)
	}

	var addresses []string
	err = u.db.QueryRow(ctx, `SELECT addresses FROM users WHERE id = $1`, id).Scan(&addresses)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errx.Unauthorized(errx.ErrUserNotFound)
	}
	if err != nil {
		return nil, errx.WrapPostgres(err)
	}
	return addresses, nil
}
