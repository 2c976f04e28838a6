package lifecycle

import (
	"context"
	"slices"

	"github.com/Spok95/subpass/internal/domain/address"
	domainErr "github.com/Spok95/subpass/internal/domain/errors"
	"github.com/Spok95/subpass/internal/domain/events"
)

// AddUserToAllowedList lets target use caller's subscription. The owner
// holds one seat implicitly, so at most SeatLimit-1 addresses are granted.
func (c *Controller) AddUserToAllowedList(ctx context.Context, caller, target address.Address) error {
	return c.mutate(ctx, "addUserToAllowedList", func(ctx context.Context, t *txn) error {
		if err := t.pause.RequireUnpaused(ctx); err != nil {
			return err
		}
		if err := requireAddress(target); err != nil {
			return err
		}
		sub, err := t.st.Subscriptions.Get(ctx, caller)
		if err != nil {
			return err
		}
		if !sub.Active() {
			return domainErr.ErrNotSubscribed
		}
		grants, err := t.st.Seats.List(ctx, caller)
		if err != nil {
			return err
		}
		// the owner's implicit seat is already taken
		if target == caller || len(grants) >= sub.SeatLimit-1 {
			return domainErr.ErrSeatLimitReached
		}
		if slices.Contains(grants, target) {
			return domainErr.ErrDuplicateGrant
		}
		if err := t.st.Seats.Add(ctx, caller, target); err != nil {
			return err
		}
		return t.emit(ctx, events.UserAddedToAllowedList{Owner: caller, ClassID: sub.ClassID, User: target})
	})
}

// GetUsersAllowed returns owner's grants in insertion order.
func (c *Controller) GetUsersAllowed(ctx context.Context, owner address.Address) ([]address.Address, error) {
	var out []address.Address
	err := c.view(ctx, func(ctx context.Context, st stores) error {
		var err error
		out, err = st.Seats.List(ctx, owner)
		return err
	})
	return out, err
}
