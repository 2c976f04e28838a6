package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Spok95/subpass/internal/domain/address"
	"github.com/Spok95/subpass/internal/infra/db"
)

const uniqueViolation = "23505"

type Repo struct {
	db db.Querier
}

func NewRepo(q db.Querier) *Repo { return &Repo{db: q} }

// GetByTelegramID returns nil, nil when the user is unknown.
func (r *Repo) GetByTelegramID(ctx context.Context, tgID int64) (*User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, telegram_id, username, address, created_at, updated_at
		FROM users WHERE telegram_id = $1
	`, tgID)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

// UpsertFromTelegram refreshes the profile without touching a linked address.
func (r *Repo) UpsertFromTelegram(ctx context.Context, tg Telegram) (*User, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (telegram_id, username)
		VALUES ($1, $2)
		ON CONFLICT (telegram_id)
		DO UPDATE SET username = EXCLUDED.username, updated_at = now()
		RETURNING id, telegram_id, username, address, created_at, updated_at
	`, tg.ID, tg.Username)
	return scanUser(row)
}

func (r *Repo) SetAddress(ctx context.Context, tgID int64, a address.Address) (*User, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE users SET address = $2, updated_at = now()
		WHERE telegram_id = $1
		RETURNING id, telegram_id, username, address, created_at, updated_at
	`, tgID, a.String())
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return nil, ErrAddressTaken
	}
	return u, err
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var addr string
	if err := row.Scan(&u.ID, &u.TelegramID, &u.Username, &addr, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Address = address.Address(addr)
	return &u, nil
}
