// Package access implements the privilege and pause gates on top of the
// settings store.
package access

import (
	"context"

	"github.com/Spok95/subpass/internal/domain/address"
	domainErr "github.com/Spok95/subpass/internal/domain/errors"
	"github.com/Spok95/subpass/internal/domain/settings"
)

type PrivilegeGate interface {
	RequireOwner(ctx context.Context, caller address.Address) error
}

type PauseGate interface {
	RequireUnpaused(ctx context.Context) error
}

type Gate struct {
	store settings.Store
}

func NewGate(store settings.Store) *Gate { return &Gate{store: store} }

func (g *Gate) RequireOwner(ctx context.Context, caller address.Address) error {
	s, err := g.store.Load(ctx)
	if err != nil {
		return err
	}
	if s.Owner.IsZero() || s.Owner != caller {
		return domainErr.ErrNotPrivileged
	}
	return nil
}

func (g *Gate) RequireUnpaused(ctx context.Context) error {
	s, err := g.store.Load(ctx)
	if err != nil {
		return err
	}
	if s.Paused {
		return domainErr.ErrPaused
	}
	return nil
}

// SetPaused flips the pause flag. Pausing twice fails with ErrPaused and
// unpausing an unpaused service with ErrNotPaused.
func (g *Gate) SetPaused(ctx context.Context, paused bool) error {
	s, err := g.store.Load(ctx)
	if err != nil {
		return err
	}
	switch {
	case paused && s.Paused:
		return domainErr.ErrPaused
	case !paused && !s.Paused:
		return domainErr.ErrNotPaused
	}
	s.Paused = paused
	return g.store.Save(ctx, s)
}
