package ledger

import (
	"context"

	"github.com/Spok95/subpass/internal/domain/address"
	domainErr "github.com/Spok95/subpass/internal/domain/errors"
)

// Store keeps token balances (holder x token id -> qty) and operator approvals.
type Store interface {
	BalanceOf(ctx context.Context, holder address.Address, id uint64) (uint64, error)
	// Credit adds qty and returns the new balance.
	Credit(ctx context.Context, holder address.Address, id, qty uint64) (uint64, error)
	// Debit subtracts qty and returns the new balance, or ErrInsufficientBalance.
	Debit(ctx context.Context, holder address.Address, id, qty uint64) (uint64, error)
	IsApprovedForAll(ctx context.Context, holder, operator address.Address) (bool, error)
	SetApprovalForAll(ctx context.Context, holder, operator address.Address, approved bool) error
}

type balanceKey struct {
	holder address.Address
	id     uint64
}

type approvalKey struct {
	holder, operator address.Address
}

type Memory struct {
	balances  map[balanceKey]uint64
	approvals map[approvalKey]struct{}
}

func NewMemory() *Memory {
	return &Memory{
		balances:  make(map[balanceKey]uint64),
		approvals: make(map[approvalKey]struct{}),
	}
}

func (m *Memory) BalanceOf(_ context.Context, holder address.Address, id uint64) (uint64, error) {
	return m.balances[balanceKey{holder, id}], nil
}

func (m *Memory) Credit(_ context.Context, holder address.Address, id, qty uint64) (uint64, error) {
	k := balanceKey{holder, id}
	if qty > MaxQuantity || m.balances[k] > MaxQuantity-qty {
		return 0, domainErr.ErrInvalidQuantity
	}
	m.balances[k] += qty
	return m.balances[k], nil
}

func (m *Memory) Debit(_ context.Context, holder address.Address, id, qty uint64) (uint64, error) {
	k := balanceKey{holder, id}
	if m.balances[k] < qty {
		return 0, domainErr.ErrInsufficientBalance
	}
	m.balances[k] -= qty
	if m.balances[k] == 0 {
		delete(m.balances, k)
		return 0, nil
	}
	return m.balances[k], nil
}

func (m *Memory) IsApprovedForAll(_ context.Context, holder, operator address.Address) (bool, error) {
	_, ok := m.approvals[approvalKey{holder, operator}]
	return ok, nil
}

func (m *Memory) SetApprovalForAll(_ context.Context, holder, operator address.Address, approved bool) error {
	k := approvalKey{holder, operator}
	if approved {
		m.approvals[k] = struct{}{}
	} else {
		delete(m.approvals, k)
	}
	return nil
}

func (m *Memory) Clone() *Memory {
	c := NewMemory()
	for k, v := range m.balances {
		c.balances[k] = v
	}
	for k := range m.approvals {
		c.approvals[k] = struct{}{}
	}
	return c
}
