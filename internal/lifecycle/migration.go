package lifecycle

import (
	"context"

	domainErr "github.com/Spok95/subpass/internal/domain/errors"
	"github.com/Spok95/subpass/internal/domain/events"
	"github.com/Spok95/subpass/internal/domain/ledger"
	"github.com/Spok95/subpass/internal/domain/subscriptions"
)

// onBalanceChanged is the only place subscription state follows tokens.
// The ledger calls it after every move, inside the same unit of work.
//
// A sender whose balance of the class drops to zero loses its record and
// all grants. A receiver getting its first unit of the class gets a fresh
// record with the class's canonical seat limit and no grants; a receiver
// already subscribed to another class is refused. The sender is cleared
// before the receiver is populated.
func (t *txn) onBalanceChanged(ctx context.Context, ch ledger.Change) error {
	if err := t.pause.RequireUnpaused(ctx); err != nil {
		return err
	}
	if ch.From != ch.To {
		if err := t.releaseSender(ctx, ch); err != nil {
			return err
		}
		if err := t.populateReceiver(ctx, ch); err != nil {
			return err
		}
	}
	return t.emit(ctx, events.TokenTransferred{
		From:     ch.From,
		To:       ch.To,
		TokenID:  ch.ID,
		Quantity: ch.Quantity,
	})
}

func (t *txn) releaseSender(ctx context.Context, ch ledger.Change) error {
	if ch.From.IsZero() || ch.FromBalance != 0 {
		return nil
	}
	if err := t.st.Subscriptions.Reset(ctx, ch.From); err != nil {
		return err
	}
	return t.st.Seats.Clear(ctx, ch.From)
}

func (t *txn) populateReceiver(ctx context.Context, ch ledger.Change) error {
	if ch.To.IsZero() || ch.ToPrevious() != 0 {
		return nil
	}
	cur, err := t.st.Subscriptions.Get(ctx, ch.To)
	if err != nil {
		return err
	}
	if cur.Active() {
		if cur.ClassID != ch.ID {
			return domainErr.ErrReceiverAlreadySubscribed
		}
		// set up by Subscribe right before its mint
		return nil
	}
	class, err := t.c.catalog.Lookup(ch.ID)
	if err != nil {
		return err
	}
	if err := t.st.Seats.Clear(ctx, ch.To); err != nil {
		return err
	}
	return t.st.Subscriptions.Save(ctx, subscriptions.Subscription{
		ClassID:   class.ID,
		SeatLimit: class.SeatLimit,
		Owner:     ch.To,
		ExpiresAt: t.expiry(class.DefaultDuration()),
	})
}
