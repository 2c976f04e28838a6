// Package lifecycle implements subscription purchase, seat grants and the
// migration of subscription state when tokens change hands.
//
// Every mutating method runs as one unit of work: a failed precondition
// anywhere, including inside the migration hook, discards every write the
// call made.
package lifecycle

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/Spok95/subpass/internal/domain/access"
	"github.com/Spok95/subpass/internal/domain/address"
	"github.com/Spok95/subpass/internal/domain/classes"
	domainErr "github.com/Spok95/subpass/internal/domain/errors"
	"github.com/Spok95/subpass/internal/domain/events"
	"github.com/Spok95/subpass/internal/domain/ledger"
	"github.com/Spok95/subpass/internal/state"
)

// DefaultDurationUnit is the length of one duration unit: a week.
const DefaultDurationUnit = 7 * 24 * time.Hour

// Observer is told about every finished mutating operation.
type Observer interface {
	Committed(op string, evs []events.Event)
	Failed(op string, err error)
}

type Option func(*Controller)

func WithClock(now func() time.Time) Option { return func(c *Controller) { c.now = now } }

func WithDurationUnit(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.unit = d
		}
	}
}

func WithLogger(log *slog.Logger) Option { return func(c *Controller) { c.log = log } }

func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observers = append(c.observers, o) }
}

type Controller struct {
	runner    state.Runner
	catalog   classes.Catalog
	unit      time.Duration
	now       func() time.Time
	log       *slog.Logger
	observers []Observer
}

func New(runner state.Runner, catalog classes.Catalog, opts ...Option) *Controller {
	c := &Controller{
		runner:  runner,
		catalog: catalog,
		unit:    DefaultDurationUnit,
		now:     time.Now,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Catalog() classes.Catalog { return c.catalog }

type stores = state.Stores

// txn carries the per-call handles. now is read once per operation.
type txn struct {
	c       *Controller
	st      state.Stores
	pause   access.PauseGate
	priv    access.PrivilegeGate
	gate    *access.Gate
	ledger  *ledger.Ledger
	now     time.Time
	emitted []events.Event
}

func (c *Controller) begin(st state.Stores) *txn {
	gate := access.NewGate(st.Settings)
	t := &txn{c: c, st: st, pause: gate, priv: gate, gate: gate, now: c.now()}
	t.ledger = ledger.New(st.Balances, t.onBalanceChanged)
	return t
}

func (t *txn) emit(ctx context.Context, p events.Payload) error {
	ev, err := t.st.Events.Append(ctx, events.New(t.now, p))
	if err != nil {
		return err
	}
	t.emitted = append(t.emitted, ev)
	return nil
}

func (t *txn) expiry(units uint64) int64 {
	return t.now.Add(time.Duration(units) * t.c.unit).Unix()
}

func (c *Controller) mutate(ctx context.Context, op string, fn func(ctx context.Context, t *txn) error) error {
	var committed []events.Event
	err := c.runner.RunInTx(ctx, func(ctx context.Context, st state.Stores) error {
		t := c.begin(st)
		if err := fn(ctx, t); err != nil {
			return err
		}
		committed = t.emitted
		return nil
	})
	if err != nil {
		if _, ok := domainErr.As(err); ok {
			c.log.Info("operation rejected", "op", op, "reason", domainErr.Reason(err))
		} else {
			c.log.Error("operation failed", "op", op, "err", err)
		}
		for _, o := range c.observers {
			o.Failed(op, err)
		}
		return domainErr.Wrap(op, err)
	}
	c.log.Debug("operation committed", "op", op, "events", len(committed))
	for _, o := range c.observers {
		o.Committed(op, committed)
	}
	return nil
}

func (c *Controller) view(ctx context.Context, fn func(ctx context.Context, st state.Stores) error) error {
	return c.runner.View(ctx, fn)
}

func requireAddress(a address.Address) error {
	if a.IsZero() {
		return domainErr.ErrInvalidAddress
	}
	return nil
}
