package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Spok95/subpass/internal/domain/address"
	"github.com/Spok95/subpass/internal/domain/classes"
	"github.com/Spok95/subpass/internal/domain/subscriptions"
)

var (
	alice = address.MustParse("0x70997970c51812dc3a010c7d01b50e0d17dc79c8")
	bob   = address.MustParse("0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc")
	carol = address.MustParse("0x90f79bf6eb2c4f870365e785982e1f101e93b906")
)

type sourceStub struct {
	subs  []subscriptions.Subscription
	users map[address.Address][]address.Address
}

func (s sourceStub) ListSubscriptions(context.Context) ([]subscriptions.Subscription, error) {
	return s.subs, nil
}

func (s sourceStub) GetUsersAllowed(_ context.Context, owner address.Address) ([]address.Address, error) {
	return s.users[owner], nil
}

func (sourceStub) Catalog() classes.Catalog { return classes.Default() }

func TestWorkbook(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	src := sourceStub{
		subs: []subscriptions.Subscription{
			{ClassID: classes.Standard, SeatLimit: 4, Owner: alice, ExpiresAt: now.Add(48 * time.Hour).Unix()},
			{ClassID: classes.Basic, SeatLimit: 1, Owner: carol, ExpiresAt: now.Add(-time.Hour).Unix()},
			subscriptions.Empty(bob),
		},
		users: map[address.Address][]address.Address{alice: {bob, carol}},
	}

	data, err := Workbook(context.Background(), src, now)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(SubscriptionsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"owner", "class_id", "class", "seat_limit", "seats_used", "expires_at", "expired"}, rows[0])
	assert.Equal(t, alice.String(), rows[1][0])
	assert.Equal(t, "Standard", rows[1][2])
	assert.Equal(t, "2", rows[1][4])
	assert.Equal(t, "FALSE", rows[1][6])
	assert.Equal(t, "TRUE", rows[2][6])

	seats, err := f.GetRows(SeatsSheet)
	require.NoError(t, err)
	require.Len(t, seats, 3)
	assert.Equal(t, bob.String(), seats[1][2])
	assert.Equal(t, carol.String(), seats[2][2])
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "subscriptions_20260501_093000.xlsx",
		FileName(time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)))
}
