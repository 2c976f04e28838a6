package state

import (
	"context"
	"sync"

	"github.com/Spok95/subpass/internal/domain/events"
	"github.com/Spok95/subpass/internal/domain/ledger"
	"github.com/Spok95/subpass/internal/domain/seats"
	"github.com/Spok95/subpass/internal/domain/settings"
	"github.com/Spok95/subpass/internal/domain/subscriptions"
)

type memStores struct {
	subs     *subscriptions.Memory
	seats    *seats.Memory
	balances *ledger.Memory
	settings *settings.Memory
	events   *events.Memory
}

func (m memStores) clone() memStores {
	return memStores{
		subs:     m.subs.Clone(),
		seats:    m.seats.Clone(),
		balances: m.balances.Clone(),
		settings: m.settings.Clone(),
		events:   m.events.Clone(),
	}
}

func (m memStores) stores() Stores {
	return Stores{
		Subscriptions: m.subs,
		Seats:         m.seats,
		Balances:      m.balances,
		Settings:      m.settings,
		Events:        m.events,
	}
}

// Memory keeps all state in process. Each transaction works on a copy that
// replaces the committed state only on success.
type Memory struct {
	mu        sync.RWMutex
	committed memStores
}

func NewMemory(initial settings.Settings) *Memory {
	return &Memory{committed: memStores{
		subs:     subscriptions.NewMemory(),
		seats:    seats.NewMemory(),
		balances: ledger.NewMemory(),
		settings: settings.NewMemory(initial),
		events:   events.NewMemory(),
	}}
}

func (m *Memory) RunInTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	work := m.committed.clone()
	if err := fn(ctx, work.stores()); err != nil {
		return err
	}
	m.committed = work
	return nil
}

func (m *Memory) View(ctx context.Context, fn func(ctx context.Context, s Stores) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fn(ctx, m.committed.stores())
}
