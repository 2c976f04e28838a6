// Package ledger is the semi-fungible token ledger. It moves balances and
// reports every move to a single OnBalanceChanged callback, which runs
// before the operation returns and can veto it by returning an error.
// Callers run the ledger inside a transaction so a veto discards the move.
package ledger

import (
	"context"
	"math"

	"github.com/Spok95/subpass/internal/domain/address"
	domainErr "github.com/Spok95/subpass/internal/domain/errors"
)

// MaxQuantity bounds any single amount and any balance, matching the BIGINT
// balance column.
const MaxQuantity uint64 = math.MaxInt64

func checkQuantity(qty uint64) error {
	if qty == 0 || qty > MaxQuantity {
		return domainErr.ErrInvalidQuantity
	}
	return nil
}

// Change describes one completed balance move. Balances are post-move.
type Change struct {
	Operator    address.Address
	From        address.Address // address.Zero for mints
	To          address.Address
	ID          uint64
	Quantity    uint64
	FromBalance uint64
	ToBalance   uint64
}

// Minted reports whether the change created new units.
func (c Change) Minted() bool { return c.From.IsZero() }

// ToPrevious is the receiver's balance before the move.
func (c Change) ToPrevious() uint64 { return c.ToBalance - c.Quantity }

type OnBalanceChanged func(ctx context.Context, ch Change) error

type Ledger struct {
	store Store
	hook  OnBalanceChanged
}

func New(store Store, hook OnBalanceChanged) *Ledger {
	return &Ledger{store: store, hook: hook}
}

func (l *Ledger) BalanceOf(ctx context.Context, holder address.Address, id uint64) (uint64, error) {
	return l.store.BalanceOf(ctx, holder, id)
}

func (l *Ledger) IsApprovedForAll(ctx context.Context, holder, operator address.Address) (bool, error) {
	return l.store.IsApprovedForAll(ctx, holder, operator)
}

func (l *Ledger) SetApprovalForAll(ctx context.Context, holder, operator address.Address, approved bool) error {
	if holder == operator {
		return domainErr.ErrSelfApproval
	}
	return l.store.SetApprovalForAll(ctx, holder, operator, approved)
}

// Mint creates qty units of id for to.
func (l *Ledger) Mint(ctx context.Context, operator, to address.Address, id, qty uint64) error {
	if to.IsZero() {
		return domainErr.ErrZeroAddressRecipient
	}
	if err := checkQuantity(qty); err != nil {
		return err
	}
	bal, err := l.store.Credit(ctx, to, id, qty)
	if err != nil {
		return err
	}
	return l.notify(ctx, Change{Operator: operator, From: address.Zero, To: to, ID: id, Quantity: qty, ToBalance: bal})
}

// Authorize checks that operator may move from's tokens to to.
func (l *Ledger) Authorize(ctx context.Context, operator, from, to address.Address) error {
	if operator != from {
		ok, err := l.store.IsApprovedForAll(ctx, from, operator)
		if err != nil {
			return err
		}
		if !ok {
			return domainErr.ErrNotOwnerOrApproved
		}
	}
	if to.IsZero() {
		return domainErr.ErrZeroAddressRecipient
	}
	return nil
}

// Transfer moves qty units of id from from to to on behalf of operator.
func (l *Ledger) Transfer(ctx context.Context, operator, from, to address.Address, id, qty uint64) error {
	if err := l.Authorize(ctx, operator, from, to); err != nil {
		return err
	}
	return l.move(ctx, operator, from, to, id, qty)
}

// TransferBatch moves several ids at once. Each move reaches the callback
// separately, in order.
func (l *Ledger) TransferBatch(ctx context.Context, operator, from, to address.Address, ids, qtys []uint64) error {
	if len(ids) != len(qtys) {
		return domainErr.ErrLengthMismatch
	}
	if err := l.Authorize(ctx, operator, from, to); err != nil {
		return err
	}
	for i := range ids {
		if err := l.move(ctx, operator, from, to, ids[i], qtys[i]); err != nil {
			return err
		}
	}
	return nil
}

func (l *Ledger) move(ctx context.Context, operator, from, to address.Address, id, qty uint64) error {
	if err := checkQuantity(qty); err != nil {
		return err
	}
	fromBal, err := l.store.Debit(ctx, from, id, qty)
	if err != nil {
		return err
	}
	toBal, err := l.store.Credit(ctx, to, id, qty)
	if err != nil {
		return err
	}
	return l.notify(ctx, Change{
		Operator:    operator,
		From:        from,
		To:          to,
		ID:          id,
		Quantity:    qty,
		FromBalance: fromBal,
		ToBalance:   toBal,
	})
}

func (l *Ledger) notify(ctx context.Context, ch Change) error {
	if l.hook == nil {
		return nil
	}
	return l.hook(ctx, ch)
}
