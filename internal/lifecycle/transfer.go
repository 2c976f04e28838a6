package lifecycle

import (
	"context"

	"github.com/Spok95/subpass/internal/domain/address"
	"github.com/Spok95/subpass/internal/domain/events"
)

// Transfer moves qty units of token id from from to to. operator must be
// from or approved by from.
func (c *Controller) Transfer(ctx context.Context, operator, from, to address.Address, id, qty uint64) error {
	return c.mutate(ctx, "transfer", func(ctx context.Context, t *txn) error {
		if err := t.pause.RequireUnpaused(ctx); err != nil {
			return err
		}
		return t.ledger.Transfer(ctx, operator, from, to, id, qty)
	})
}

// TransferBatch moves several token ids in one all-or-nothing call.
func (c *Controller) TransferBatch(ctx context.Context, operator, from, to address.Address, ids, qtys []uint64) error {
	return c.mutate(ctx, "transferBatch", func(ctx context.Context, t *txn) error {
		if err := t.pause.RequireUnpaused(ctx); err != nil {
			return err
		}
		return t.ledger.TransferBatch(ctx, operator, from, to, ids, qtys)
	})
}

func (c *Controller) SetApprovalForAll(ctx context.Context, holder, operator address.Address, approved bool) error {
	return c.mutate(ctx, "setApprovalForAll", func(ctx context.Context, t *txn) error {
		if err := requireAddress(operator); err != nil {
			return err
		}
		if err := t.ledger.SetApprovalForAll(ctx, holder, operator, approved); err != nil {
			return err
		}
		return t.emit(ctx, events.ApprovalForAll{Holder: holder, Operator: operator, Approved: approved})
	})
}

func (c *Controller) BalanceOf(ctx context.Context, holder address.Address, id uint64) (uint64, error) {
	var bal uint64
	err := c.view(ctx, func(ctx context.Context, st stores) error {
		var err error
		bal, err = st.Balances.BalanceOf(ctx, holder, id)
		return err
	})
	return bal, err
}

func (c *Controller) IsApprovedForAll(ctx context.Context, holder, operator address.Address) (bool, error) {
	var ok bool
	err := c.view(ctx, func(ctx context.Context, st stores) error {
		var err error
		ok, err = st.Balances.IsApprovedForAll(ctx, holder, operator)
		return err
	})
	return ok, err
}
