package lifecycle

import (
	"context"

	"github.com/Spok95/subpass/internal/domain/address"
	domainErr "github.com/Spok95/subpass/internal/domain/errors"
	"github.com/Spok95/subpass/internal/domain/events"
	"github.com/Spok95/subpass/internal/domain/subscriptions"
)

// Subscribe buys classID for duration units and mints one token of the
// class to caller.
func (c *Controller) Subscribe(ctx context.Context, caller address.Address, classID, duration uint64) (subscriptions.Subscription, error) {
	var sub subscriptions.Subscription
	err := c.mutate(ctx, "subscribe", func(ctx context.Context, t *txn) error {
		if err := t.pause.RequireUnpaused(ctx); err != nil {
			return err
		}
		if err := requireAddress(caller); err != nil {
			return err
		}
		class, err := c.catalog.Lookup(classID)
		if err != nil {
			return err
		}
		if !class.Permits(duration) {
			return domainErr.ErrInvalidDuration
		}
		cur, err := t.st.Subscriptions.Get(ctx, caller)
		if err != nil {
			return err
		}
		if cur.Active() {
			return domainErr.ErrAlreadySubscribed
		}

		sub = subscriptions.Subscription{
			ClassID:   class.ID,
			SeatLimit: class.SeatLimit,
			Owner:     caller,
			ExpiresAt: t.expiry(duration),
		}
		if err := t.st.Subscriptions.Save(ctx, sub); err != nil {
			return err
		}
		if err := t.ledger.Mint(ctx, caller, caller, class.ID, 1); err != nil {
			return err
		}
		return t.emit(ctx, events.SubscriptionPurchased{
			Owner:    caller,
			TokenID:  class.ID,
			ClassID:  class.ID,
			Duration: duration,
		})
	})
	if err != nil {
		return subscriptions.Subscription{}, err
	}
	return sub, nil
}

// SubscriptionsToUser returns owner's record, empty when there is none.
func (c *Controller) SubscriptionsToUser(ctx context.Context, owner address.Address) (subscriptions.Subscription, error) {
	var sub subscriptions.Subscription
	err := c.view(ctx, func(ctx context.Context, st stores) error {
		var err error
		sub, err = st.Subscriptions.Get(ctx, owner)
		return err
	})
	return sub, err
}

// ListSubscriptions returns every active record.
func (c *Controller) ListSubscriptions(ctx context.Context) ([]subscriptions.Subscription, error) {
	var out []subscriptions.Subscription
	err := c.view(ctx, func(ctx context.Context, st stores) error {
		var err error
		out, err = st.Subscriptions.List(ctx)
		return err
	})
	return out, err
}
