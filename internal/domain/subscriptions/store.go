package subscriptions

import (
	"context"
	"sort"

	"github.com/Spok95/subpass/internal/domain/address"
)

// Store is the Subscription Store: one record per address.
type Store interface {
	// Get returns Empty(owner) when owner has no record.
	Get(ctx context.Context, owner address.Address) (Subscription, error)
	Save(ctx context.Context, s Subscription) error
	Reset(ctx context.Context, owner address.Address) error
	// List returns active records ordered by owner.
	List(ctx context.Context) ([]Subscription, error)
}

type Memory struct {
	m map[address.Address]Subscription
}

func NewMemory() *Memory {
	return &Memory{m: make(map[address.Address]Subscription)}
}

func (s *Memory) Get(_ context.Context, owner address.Address) (Subscription, error) {
	if sub, ok := s.m[owner]; ok {
		return sub, nil
	}
	return Empty(owner), nil
}

func (s *Memory) Save(_ context.Context, sub Subscription) error {
	if !sub.Active() {
		delete(s.m, sub.Owner)
		return nil
	}
	s.m[sub.Owner] = sub
	return nil
}

func (s *Memory) Reset(_ context.Context, owner address.Address) error {
	delete(s.m, owner)
	return nil
}

func (s *Memory) List(_ context.Context) ([]Subscription, error) {
	out := make([]Subscription, 0, len(s.m))
	for _, sub := range s.m {
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Owner < out[j].Owner })
	return out, nil
}

// Clone returns an independent copy, used for transactional snapshots.
func (s *Memory) Clone() *Memory {
	c := NewMemory()
	for k, v := range s.m {
		c.m[k] = v
	}
	return c
}
