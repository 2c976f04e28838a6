package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/Spok95/subpass/internal/domain/address"
	domainErr "github.com/Spok95/subpass/internal/domain/errors"
	"github.com/Spok95/subpass/internal/domain/events"
)

var (
	alice = address.MustParse("0x70997970c51812dc3a010c7d01b50e0d17dc79c8")
	bob   = address.MustParse("0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc")
)

func TestCommittedCountsEvents(t *testing.T) {
	m := New(prometheus.NewRegistry())
	at := time.Now()

	m.Committed("subscribe", []events.Event{
		events.New(at, events.TokenTransferred{From: address.Zero, To: alice, TokenID: 2, Quantity: 1}),
		events.New(at, events.SubscriptionPurchased{Owner: alice, TokenID: 2, ClassID: 2, Duration: 26}),
	})
	m.Committed("addUserToAllowedList", []events.Event{
		events.New(at, events.UserAddedToAllowedList{Owner: alice, ClassID: 2, User: bob}),
	})
	m.Committed("transfer", []events.Event{
		events.New(at, events.TokenTransferred{From: alice, To: bob, TokenID: 2, Quantity: 1}),
		events.New(at, events.TokenTransferred{From: bob, To: bob, TokenID: 2, Quantity: 1}),
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Purchases.WithLabelValues("2")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SeatGrants.WithLabelValues("2")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Transfers))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Migrations))
}

func TestPauseGauge(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Committed("pause", []events.Event{events.New(time.Now(), events.Paused{Account: alice})})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Paused))

	m.Committed("unpause", []events.Event{events.New(time.Now(), events.Unpaused{Account: alice})})
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Paused))

	m.SetPaused(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Paused))
}

func TestFailedLabelsReason(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Failed("subscribe", domainErr.Wrap("subscribe", domainErr.ErrAlreadySubscribed))
	m.Failed("subscribe", assert.AnError)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Failures.WithLabelValues("subscribe", "AlreadySubscribed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Failures.WithLabelValues("subscribe", "Internal")))
}

func TestSubscriptionCounts(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.SetSubscriptionCounts(3, 1)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.ByState.WithLabelValues("active")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ByState.WithLabelValues("expired")))
}
