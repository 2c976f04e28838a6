// Package state bundles the keyed stores and runs operations against them
// as all-or-nothing units of work.
package state

import (
	"context"

	"github.com/Spok95/subpass/internal/domain/events"
	"github.com/Spok95/subpass/internal/domain/ledger"
	"github.com/Spok95/subpass/internal/domain/seats"
	"github.com/Spok95/subpass/internal/domain/settings"
	"github.com/Spok95/subpass/internal/domain/subscriptions"
)

// Stores are the handles one operation works with.
type Stores struct {
	Subscriptions subscriptions.Store
	Seats         seats.Store
	Balances      ledger.Store
	Settings      settings.Store
	Events        events.Store
}

type Runner interface {
	// RunInTx runs fn serialised against every other RunInTx call. Writes
	// become visible only if fn returns nil.
	RunInTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
	// View runs a read-only fn against committed state.
	View(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}
