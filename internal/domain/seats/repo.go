package seats

import (
	"context"

	"github.com/Spok95/subpass/internal/domain/address"
	"github.com/Spok95/subpass/internal/infra/db"
)

type Repo struct{ db db.Querier }

func NewRepo(q db.Querier) *Repo { return &Repo{db: q} }

func (r *Repo) List(ctx context.Context, owner address.Address) ([]address.Address, error) {
	rows, err := r.db.Query(ctx, `
		SELECT user_addr FROM seat_grants
		WHERE owner = $1
		ORDER BY id
	`, owner.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []address.Address{}
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		out = append(out, address.Address(a))
	}
	return out, rows.Err()
}

func (r *Repo) Add(ctx context.Context, owner, user address.Address) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO seat_grants (owner, user_addr) VALUES ($1,$2)
		ON CONFLICT (owner, user_addr) DO NOTHING
	`, owner.String(), user.String())
	return err
}

func (r *Repo) Clear(ctx context.Context, owner address.Address) error {
	_, err := r.db.Exec(ctx, `DELETE FROM seat_grants WHERE owner = $1`, owner.String())
	return err
}
