package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/Spok95/subpass/internal/domain/address"
	domainErr "github.com/Spok95/subpass/internal/domain/errors"
	"github.com/Spok95/subpass/internal/infra/db"
)

type Repo struct{ db db.Querier }

func NewRepo(q db.Querier) *Repo { return &Repo{db: q} }

func (r *Repo) BalanceOf(ctx context.Context, holder address.Address, id uint64) (uint64, error) {
	var qty int64
	err := r.db.QueryRow(ctx, `
		SELECT qty FROM balances WHERE holder = $1 AND token_id = $2
	`, holder.String(), int64(id)).Scan(&qty)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return uint64(qty), err
}

// Credit fails with ErrInvalidQuantity rather than letting the BIGINT wrap.
func (r *Repo) Credit(ctx context.Context, holder address.Address, id, qty uint64) (uint64, error) {
	if qty > MaxQuantity {
		return 0, domainErr.ErrInvalidQuantity
	}
	var bal int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO balances (holder, token_id, qty)
		VALUES ($1,$2,$3)
		ON CONFLICT (holder, token_id)
		DO UPDATE SET qty = balances.qty + EXCLUDED.qty
		WHERE balances.qty <= $4 - EXCLUDED.qty
		RETURNING qty
	`, holder.String(), int64(id), int64(qty), int64(MaxQuantity)).Scan(&bal)
	if errors.Is(err, pgx.ErrNoRows) {
		// the conflict row would overflow
		return 0, domainErr.ErrInvalidQuantity
	}
	return uint64(bal), err
}

func (r *Repo) Debit(ctx context.Context, holder address.Address, id, qty uint64) (uint64, error) {
	if qty > MaxQuantity {
		return 0, domainErr.ErrInvalidQuantity
	}
	var bal int64
	err := r.db.QueryRow(ctx, `
		UPDATE balances SET qty = qty - $3
		WHERE holder = $1 AND token_id = $2 AND qty >= $3
		RETURNING qty
	`, holder.String(), int64(id), int64(qty)).Scan(&bal)
	if errors.Is(err, pgx.ErrNoRows) {
		// no row or not enough on it
		return 0, domainErr.ErrInsufficientBalance
	}
	if err != nil {
		return 0, err
	}
	if bal == 0 {
		if _, err := r.db.Exec(ctx,
			`DELETE FROM balances WHERE holder = $1 AND token_id = $2 AND qty = 0`,
			holder.String(), int64(id),
		); err != nil {
			return 0, err
		}
	}
	return uint64(bal), nil
}

func (r *Repo) IsApprovedForAll(ctx context.Context, holder, operator address.Address) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM operator_approvals WHERE holder = $1 AND operator = $2)
	`, holder.String(), operator.String()).Scan(&ok)
	return ok, err
}

func (r *Repo) SetApprovalForAll(ctx context.Context, holder, operator address.Address, approved bool) error {
	if !approved {
		_, err := r.db.Exec(ctx,
			`DELETE FROM operator_approvals WHERE holder = $1 AND operator = $2`,
			holder.String(), operator.String())
		return err
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO operator_approvals (holder, operator) VALUES ($1,$2)
		ON CONFLICT DO NOTHING
	`, holder.String(), operator.String())
	return err
}
