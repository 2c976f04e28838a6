package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/subpass/internal/domain/address"
)

func TestMemoryUpsertKeepsAddress(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	u, err := m.GetByTelegramID(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, u)
	assert.False(t, u.Linked())

	u, err = m.UpsertFromTelegram(ctx, Telegram{ID: 42, Username: "alice"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)

	a := address.MustParse("0x70997970c51812dc3a010c7d01b50e0d17dc79c8")
	_, err = m.SetAddress(ctx, 42, a)
	require.NoError(t, err)

	u, err = m.UpsertFromTelegram(ctx, Telegram{ID: 42, Username: "alice_new"})
	require.NoError(t, err)
	assert.Equal(t, "alice_new", u.Username)
	assert.Equal(t, a, u.Address)
	assert.True(t, u.Linked())
}

func TestMemorySetAddressUnknownUser(t *testing.T) {
	_, err := NewMemory().SetAddress(context.Background(), 7, address.Zero)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemorySetAddressTakenByAnotherAccount(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	a := address.MustParse("0x70997970c51812dc3a010c7d01b50e0d17dc79c8")

	for _, id := range []int64{1, 2} {
		_, err := m.UpsertFromTelegram(ctx, Telegram{ID: id})
		require.NoError(t, err)
	}
	_, err := m.SetAddress(ctx, 1, a)
	require.NoError(t, err)

	_, err = m.SetAddress(ctx, 2, a)
	assert.ErrorIs(t, err, ErrAddressTaken)

	// relinking the same account is fine
	_, err = m.SetAddress(ctx, 1, a)
	assert.NoError(t, err)
}
