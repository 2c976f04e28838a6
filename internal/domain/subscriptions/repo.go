package subscriptions

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/Spok95/subpass/internal/domain/address"
	"github.com/Spok95/subpass/internal/infra/db"
)

type Repo struct{ db db.Querier }

func NewRepo(q db.Querier) *Repo { return &Repo{db: q} }

func (r *Repo) Get(ctx context.Context, owner address.Address) (Subscription, error) {
	row := r.db.QueryRow(ctx, `
		SELECT class_id, seat_limit, expires_at
		FROM subscriptions WHERE owner = $1
	`, owner.String())

	s := Empty(owner)
	var classID int64
	if err := row.Scan(&classID, &s.SeatLimit, &s.ExpiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Empty(owner), nil
		}
		return Subscription{}, err
	}
	s.ClassID = uint64(classID)
	return s, nil
}

func (r *Repo) Save(ctx context.Context, s Subscription) error {
	if !s.Active() {
		return r.Reset(ctx, s.Owner)
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO subscriptions (owner, class_id, seat_limit, expires_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (owner) DO UPDATE SET
			class_id   = EXCLUDED.class_id,
			seat_limit = EXCLUDED.seat_limit,
			expires_at = EXCLUDED.expires_at,
			updated_at = now()
	`, s.Owner.String(), int64(s.ClassID), s.SeatLimit, s.ExpiresAt)
	return err
}

func (r *Repo) Reset(ctx context.Context, owner address.Address) error {
	_, err := r.db.Exec(ctx, `DELETE FROM subscriptions WHERE owner = $1`, owner.String())
	return err
}

func (r *Repo) List(ctx context.Context) ([]Subscription, error) {
	rows, err := r.db.Query(ctx, `
		SELECT owner, class_id, seat_limit, expires_at
		FROM subscriptions
		ORDER BY owner
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Subscription
	for rows.Next() {
		var (
			s       Subscription
			owner   string
			classID int64
		)
		if err := rows.Scan(&owner, &classID, &s.SeatLimit, &s.ExpiresAt); err != nil {
			return nil, err
		}
		s.Owner = address.Address(owner)
		s.ClassID = uint64(classID)
		out = append(out, s)
	}
	return out, rows.Err()
}
