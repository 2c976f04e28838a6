package state

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Spok95/subpass/internal/domain/events"
	"github.com/Spok95/subpass/internal/domain/ledger"
	"github.com/Spok95/subpass/internal/domain/seats"
	"github.com/Spok95/subpass/internal/domain/settings"
	"github.com/Spok95/subpass/internal/domain/subscriptions"
	"github.com/Spok95/subpass/internal/infra/db"
)

// lockKey serialises every mutating transaction.
const lockKey int64 = 0x73756270617373 // "subpass"

type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres { return &Postgres{pool: pool} }

func pgStores(q db.Querier) Stores {
	return Stores{
		Subscriptions: subscriptions.NewRepo(q),
		Seats:         seats.NewRepo(q),
		Balances:      ledger.NewRepo(q),
		Settings:      settings.NewRepo(q),
		Events:        events.NewRepo(q),
	}
}

func (p *Postgres) RunInTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error {
	return p.inTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, lockKey); err != nil {
			return fmt.Errorf("lock: %w", err)
		}
		return fn(ctx, pgStores(tx))
	})
}

func (p *Postgres) View(ctx context.Context, fn func(ctx context.Context, s Stores) error) error {
	return p.inTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly}, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, pgStores(tx))
	})
}

func (p *Postgres) inTx(ctx context.Context, opts pgx.TxOptions, fn func(ctx context.Context, tx pgx.Tx) error) error {
	tx, err := p.pool.BeginTx(ctx, opts)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
