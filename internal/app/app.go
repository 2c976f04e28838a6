// Package app assembles the stores and the lifecycle controller from
// configuration. Both binaries share it.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Spok95/subpass/internal/bot"
	"github.com/Spok95/subpass/internal/config"
	"github.com/Spok95/subpass/internal/dialog"
	"github.com/Spok95/subpass/internal/domain/settings"
	"github.com/Spok95/subpass/internal/domain/users"
	"github.com/Spok95/subpass/internal/infra/db"
	"github.com/Spok95/subpass/internal/lifecycle"
	"github.com/Spok95/subpass/internal/state"
	"github.com/Spok95/subpass/migrations"
)

type Env struct {
	Controller *lifecycle.Controller
	Users      bot.UserStore
	Dialogs    bot.StateStore
	pool       *pgxpool.Pool
}

// Open builds the environment for cfg.Store.Driver. With the postgres
// driver pending migrations are applied first when migrate is set.
func Open(ctx context.Context, cfg config.Config, log *slog.Logger, migrate bool, opts ...lifecycle.Option) (*Env, error) {
	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, err
	}
	opts = append([]lifecycle.Option{
		lifecycle.WithDurationUnit(cfg.Lifecycle.DurationUnit),
		lifecycle.WithLogger(log),
	}, opts...)

	switch cfg.Store.Driver {
	case config.DriverPostgres:
		if migrate {
			if err := migrations.Up(cfg.Postgres.DSN); err != nil {
				return nil, fmt.Errorf("migrations: %w", err)
			}
			log.Info("migrations applied")
		}
		pool, err := db.Connect(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		if _, err := settings.Bootstrap(ctx, settings.NewRepo(pool), cfg.Owner(), cfg.Lifecycle.MetadataURI); err != nil {
			pool.Close()
			return nil, fmt.Errorf("bootstrap settings: %w", err)
		}
		log.Info("db connected")
		return &Env{
			Controller: lifecycle.New(state.NewPostgres(pool), catalog, opts...),
			Users:      users.NewRepo(pool),
			Dialogs:    dialog.NewRepo(pool),
			pool:       pool,
		}, nil

	default:
		runner := state.NewMemory(settings.Settings{Owner: cfg.Owner(), URI: cfg.Lifecycle.MetadataURI})
		log.Warn("using in-memory store, state is lost on exit")
		return &Env{
			Controller: lifecycle.New(runner, catalog, opts...),
			Users:      users.NewMemory(),
			Dialogs:    dialog.NewMemory(),
		}, nil
	}
}

func (e *Env) Close() {
	if e.pool != nil {
		e.pool.Close()
	}
}
