// Package seats is the Seat Registry: per-owner, insertion-ordered sets of
// addresses allowed to use the owner's subscription.
package seats

import (
	"context"
	"slices"

	"github.com/Spok95/subpass/internal/domain/address"
)

type Store interface {
	// List returns the grants of owner in insertion order, never nil.
	List(ctx context.Context, owner address.Address) ([]address.Address, error)
	Add(ctx context.Context, owner, user address.Address) error
	Clear(ctx context.Context, owner address.Address) error
}

type Memory struct {
	m map[address.Address][]address.Address
}

func NewMemory() *Memory {
	return &Memory{m: make(map[address.Address][]address.Address)}
}

func (s *Memory) List(_ context.Context, owner address.Address) ([]address.Address, error) {
	out := slices.Clone(s.m[owner])
	if out == nil {
		out = []address.Address{}
	}
	return out, nil
}

func (s *Memory) Add(_ context.Context, owner, user address.Address) error {
	if slices.Contains(s.m[owner], user) {
		return nil
	}
	s.m[owner] = append(s.m[owner], user)
	return nil
}

func (s *Memory) Clear(_ context.Context, owner address.Address) error {
	delete(s.m, owner)
	return nil
}

func (s *Memory) Clone() *Memory {
	c := NewMemory()
	for k, v := range s.m {
		c.m[k] = slices.Clone(v)
	}
	return c
}
