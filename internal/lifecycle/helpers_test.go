package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Spok95/subpass/internal/domain/address"
	"github.com/Spok95/subpass/internal/domain/classes"
	"github.com/Spok95/subpass/internal/domain/events"
	"github.com/Spok95/subpass/internal/domain/settings"
	"github.com/Spok95/subpass/internal/state"
)

var (
	owner = address.MustParse("0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266")
	addr1 = address.MustParse("0x70997970c51812dc3a010c7d01b50e0d17dc79c8")
	addr2 = address.MustParse("0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc")
	addr3 = address.MustParse("0x90f79bf6eb2c4f870365e785982e1f101e93b906")
	addr4 = address.MustParse("0x15d34aaf54267db7d7c367839aaf71a00a2c6a65")

	everyone = []address.Address{owner, addr1, addr2, addr3, addr4}

	epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
)

type fixture struct {
	ctl    *Controller
	runner *state.Memory
	clock  time.Time
	obs    *observerStub
}

type observerStub struct {
	committed []string
	failed    []string
}

func (o *observerStub) Committed(op string, _ []events.Event) { o.committed = append(o.committed, op) }
func (o *observerStub) Failed(op string, _ error)             { o.failed = append(o.failed, op) }

// newFixture deploys with owner as the privileged account.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		runner: state.NewMemory(settings.Settings{Owner: owner, URI: "https://ipfs.example/{id}.json"}),
		clock:  epoch,
		obs:    &observerStub{},
	}
	f.ctl = New(f.runner, classes.Default(),
		WithClock(func() time.Time { return f.clock }),
		WithObserver(f.obs),
	)
	return f
}

func (f *fixture) events(t *testing.T) []events.Event {
	t.Helper()
	evs, err := f.ctl.Events(context.Background(), 0, 0)
	require.NoError(t, err)
	return evs
}

func (f *fixture) balance(t *testing.T, a address.Address, id uint64) uint64 {
	t.Helper()
	bal, err := f.ctl.BalanceOf(context.Background(), a, id)
	require.NoError(t, err)
	return bal
}

// checkInvariants asserts I1-I4 for every known address.
func (f *fixture) checkInvariants(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	cat := classes.Default()
	for _, a := range everyone {
		sub, err := f.ctl.SubscriptionsToUser(ctx, a)
		require.NoError(t, err)
		grants, err := f.ctl.GetUsersAllowed(ctx, a)
		require.NoError(t, err)

		require.Equal(t, sub.ClassID == classes.None, sub.ExpiresAt == 0, "I4 for %s", a)
		if !sub.Active() {
			require.Empty(t, grants, "I3 for %s", a)
			continue
		}
		class, err := cat.Lookup(sub.ClassID)
		require.NoError(t, err)
		require.LessOrEqual(t, len(grants), class.SeatLimit-1, "I2 for %s", a)
		require.Positive(t, f.balance(t, a, sub.ClassID), "subscribed %s holds its token", a)
	}
}
