package ledger

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/subpass/internal/domain/address"
	domainErr "github.com/Spok95/subpass/internal/domain/errors"
)

var (
	alice = address.MustParse("0x1111111111111111111111111111111111111111")
	bob   = address.MustParse("0x2222222222222222222222222222222222222222")
	carol = address.MustParse("0x3333333333333333333333333333333333333333")
)

type recorder struct {
	changes []Change
	err     error
}

func (r *recorder) hook(_ context.Context, ch Change) error {
	r.changes = append(r.changes, ch)
	return r.err
}

func TestMintNotifiesWithZeroOrigin(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	l := New(NewMemory(), rec.hook)

	require.NoError(t, l.Mint(ctx, alice, alice, 2, 1))

	bal, err := l.BalanceOf(ctx, alice, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), bal)

	require.Len(t, rec.changes, 1)
	ch := rec.changes[0]
	assert.True(t, ch.Minted())
	assert.Equal(t, uint64(0), ch.ToPrevious())
	assert.Equal(t, uint64(1), ch.ToBalance)
}

func TestMintRejects(t *testing.T) {
	ctx := context.Background()
	l := New(NewMemory(), nil)
	assert.ErrorIs(t, l.Mint(ctx, alice, address.Zero, 1, 1), domainErr.ErrZeroAddressRecipient)
	assert.ErrorIs(t, l.Mint(ctx, alice, alice, 1, 0), domainErr.ErrInvalidQuantity)
}

func TestTransferReportsPostBalances(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	l := New(NewMemory(), rec.hook)
	require.NoError(t, l.Mint(ctx, alice, alice, 3, 2))

	require.NoError(t, l.Transfer(ctx, alice, alice, bob, 3, 1))

	ch := rec.changes[1]
	assert.Equal(t, alice, ch.From)
	assert.Equal(t, bob, ch.To)
	assert.Equal(t, uint64(1), ch.FromBalance)
	assert.Equal(t, uint64(1), ch.ToBalance)
	assert.Equal(t, uint64(0), ch.ToPrevious())
	assert.False(t, ch.Minted())
}

func TestTransferFailures(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	l := New(NewMemory(), rec.hook)
	require.NoError(t, l.Mint(ctx, alice, alice, 1, 1))
	rec.changes = nil

	assert.ErrorIs(t, l.Transfer(ctx, bob, alice, carol, 1, 1), domainErr.ErrNotOwnerOrApproved)
	assert.ErrorIs(t, l.Transfer(ctx, alice, alice, address.Zero, 1, 1), domainErr.ErrZeroAddressRecipient)
	assert.ErrorIs(t, l.Transfer(ctx, alice, alice, bob, 1, 2), domainErr.ErrInsufficientBalance)
	assert.ErrorIs(t, l.Transfer(ctx, alice, alice, bob, 2, 1), domainErr.ErrInsufficientBalance)
	assert.ErrorIs(t, l.Transfer(ctx, alice, alice, bob, 1, 0), domainErr.ErrInvalidQuantity)

	assert.Empty(t, rec.changes, "rejected transfers never reach the callback")
}

func TestOperatorApproval(t *testing.T) {
	ctx := context.Background()
	l := New(NewMemory(), nil)
	require.NoError(t, l.Mint(ctx, alice, alice, 1, 1))

	assert.ErrorIs(t, l.SetApprovalForAll(ctx, alice, alice, true), domainErr.ErrSelfApproval)
	require.NoError(t, l.SetApprovalForAll(ctx, alice, bob, true))

	ok, err := l.IsApprovedForAll(ctx, alice, bob)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, l.Transfer(ctx, bob, alice, carol, 1, 1))
	bal, err := l.BalanceOf(ctx, carol, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), bal)

	require.NoError(t, l.SetApprovalForAll(ctx, alice, bob, false))
	ok, err = l.IsApprovedForAll(ctx, alice, bob)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTransferBatch(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	l := New(NewMemory(), rec.hook)
	require.NoError(t, l.Mint(ctx, alice, alice, 1, 1))
	require.NoError(t, l.Mint(ctx, alice, alice, 2, 1))
	rec.changes = nil

	assert.ErrorIs(t, l.TransferBatch(ctx, alice, alice, bob, []uint64{1}, []uint64{1, 1}), domainErr.ErrLengthMismatch)

	require.NoError(t, l.TransferBatch(ctx, alice, alice, bob, []uint64{1, 2}, []uint64{1, 1}))
	require.Len(t, rec.changes, 2)
	assert.Equal(t, uint64(1), rec.changes[0].ID)
	assert.Equal(t, uint64(2), rec.changes[1].ID)
}

func TestHookErrorIsReturned(t *testing.T) {
	ctx := context.Background()
	veto := errors.New("veto")
	rec := &recorder{err: veto}
	l := New(NewMemory(), rec.hook)

	assert.ErrorIs(t, l.Mint(ctx, alice, alice, 1, 1), veto)
}

func TestMemoryCloneIsIndependent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_, err := m.Credit(ctx, alice, 1, 5)
	require.NoError(t, err)
	require.NoError(t, m.SetApprovalForAll(ctx, alice, bob, true))

	c := m.Clone()
	_, err = c.Debit(ctx, alice, 1, 5)
	require.NoError(t, err)
	require.NoError(t, c.SetApprovalForAll(ctx, alice, bob, false))

	bal, _ := m.BalanceOf(ctx, alice, 1)
	assert.Equal(t, uint64(5), bal)
	ok, _ := m.IsApprovedForAll(ctx, alice, bob)
	assert.True(t, ok)
}

func TestQuantitiesAboveBigintRejected(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	l := New(NewMemory(), rec.hook)
	require.NoError(t, l.Mint(ctx, alice, alice, 2, 2))
	require.NoError(t, l.Mint(ctx, bob, bob, 2, 1))
	rec.changes = nil

	assert.ErrorIs(t, l.Mint(ctx, alice, alice, 2, math.MaxUint64), domainErr.ErrInvalidQuantity)
	assert.ErrorIs(t, l.Transfer(ctx, alice, alice, bob, 2, math.MaxUint64), domainErr.ErrInvalidQuantity)
	assert.ErrorIs(t, l.Transfer(ctx, alice, alice, bob, 2, MaxQuantity+1), domainErr.ErrInvalidQuantity)
	assert.ErrorIs(t, l.TransferBatch(ctx, alice, alice, bob, []uint64{2}, []uint64{math.MaxUint64}), domainErr.ErrInvalidQuantity)
	assert.Empty(t, rec.changes)

	for holder, want := range map[address.Address]uint64{alice: 2, bob: 1} {
		bal, err := l.BalanceOf(ctx, holder, 2)
		require.NoError(t, err)
		assert.Equal(t, want, bal)
	}
}

func TestMemoryCreditRefusesOverflow(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_, err := m.Credit(ctx, alice, 1, MaxQuantity)
	require.NoError(t, err)

	_, err = m.Credit(ctx, alice, 1, 1)
	assert.ErrorIs(t, err, domainErr.ErrInvalidQuantity)
	bal, _ := m.BalanceOf(ctx, alice, 1)
	assert.Equal(t, MaxQuantity, bal)
}
