package lifecycle

import (
	"context"
	"fmt"
	"strings"

	"github.com/Spok95/subpass/internal/domain/address"
	domainErr "github.com/Spok95/subpass/internal/domain/errors"
	"github.com/Spok95/subpass/internal/domain/events"
	"github.com/Spok95/subpass/internal/domain/settings"
)

func (c *Controller) Pause(ctx context.Context, caller address.Address) error {
	return c.mutate(ctx, "pause", func(ctx context.Context, t *txn) error {
		if err := t.priv.RequireOwner(ctx, caller); err != nil {
			return err
		}
		if err := t.gate.SetPaused(ctx, true); err != nil {
			return err
		}
		return t.emit(ctx, events.Paused{Account: caller})
	})
}

func (c *Controller) Unpause(ctx context.Context, caller address.Address) error {
	return c.mutate(ctx, "unpause", func(ctx context.Context, t *txn) error {
		if err := t.priv.RequireOwner(ctx, caller); err != nil {
			return err
		}
		if err := t.gate.SetPaused(ctx, false); err != nil {
			return err
		}
		return t.emit(ctx, events.Unpaused{Account: caller})
	})
}

// SetURI replaces the metadata URI template. It stays usable while paused.
func (c *Controller) SetURI(ctx context.Context, caller address.Address, uri string) error {
	return c.mutate(ctx, "setURI", func(ctx context.Context, t *txn) error {
		if err := t.priv.RequireOwner(ctx, caller); err != nil {
			return err
		}
		s, err := t.st.Settings.Load(ctx)
		if err != nil {
			return err
		}
		s.URI = uri
		return t.st.Settings.Save(ctx, s)
	})
}

func (c *Controller) TransferOwnership(ctx context.Context, caller, newOwner address.Address) error {
	return c.mutate(ctx, "transferOwnership", func(ctx context.Context, t *txn) error {
		if err := t.priv.RequireOwner(ctx, caller); err != nil {
			return err
		}
		if newOwner.IsZero() {
			return domainErr.ErrZeroAddressRecipient
		}
		s, err := t.st.Settings.Load(ctx)
		if err != nil {
			return err
		}
		prev := s.Owner
		s.Owner = newOwner
		if err := t.st.Settings.Save(ctx, s); err != nil {
			return err
		}
		return t.emit(ctx, events.OwnershipTransferred{Previous: prev, New: newOwner})
	})
}

func (c *Controller) Settings(ctx context.Context) (settings.Settings, error) {
	var s settings.Settings
	err := c.view(ctx, func(ctx context.Context, st stores) error {
		var err error
		s, err = st.Settings.Load(ctx)
		return err
	})
	return s, err
}

func (c *Controller) Paused(ctx context.Context) (bool, error) {
	s, err := c.Settings(ctx)
	return s.Paused, err
}

// URI returns the raw template; clients substitute {id} themselves.
func (c *Controller) URI(ctx context.Context, _ uint64) (string, error) {
	s, err := c.Settings(ctx)
	return s.URI, err
}

// ResolvedURI returns the template with {id} replaced by the zero-padded
// 64-digit lowercase hex token id.
func (c *Controller) ResolvedURI(ctx context.Context, id uint64) (string, error) {
	tmpl, err := c.URI(ctx, id)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(tmpl, "{id}", fmt.Sprintf("%064x", id)), nil
}

// Events returns up to limit log entries after sequence number after.
func (c *Controller) Events(ctx context.Context, after int64, limit int) ([]events.Event, error) {
	var out []events.Event
	err := c.view(ctx, func(ctx context.Context, st stores) error {
		var err error
		out, err = st.Events.List(ctx, after, limit)
		return err
	})
	return out, err
}
