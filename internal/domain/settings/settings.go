// Package settings stores the service-wide singleton: the privileged owner,
// the pause flag and the metadata URI template.
package settings

import (
	"context"

	"github.com/Spok95/subpass/internal/domain/address"
	"github.com/Spok95/subpass/internal/infra/db"
)

type Settings struct {
	Owner  address.Address
	Paused bool
	URI    string
}

type Store interface {
	Load(ctx context.Context) (Settings, error)
	Save(ctx context.Context, s Settings) error
}

type Memory struct{ s Settings }

func NewMemory(initial Settings) *Memory { return &Memory{s: initial} }

func (m *Memory) Load(context.Context) (Settings, error) { return m.s, nil }

func (m *Memory) Save(_ context.Context, s Settings) error {
	m.s = s
	return nil
}

func (m *Memory) Clone() *Memory { return &Memory{s: m.s} }

type Repo struct{ db db.Querier }

func NewRepo(q db.Querier) *Repo { return &Repo{db: q} }

func (r *Repo) Load(ctx context.Context) (Settings, error) {
	var (
		s     Settings
		owner string
	)
	err := r.db.QueryRow(ctx, `SELECT owner, paused, uri FROM settings WHERE id = 1`).
		Scan(&owner, &s.Paused, &s.URI)
	s.Owner = address.Address(owner)
	return s, err
}

func (r *Repo) Save(ctx context.Context, s Settings) error {
	_, err := r.db.Exec(ctx, `
		UPDATE settings SET owner = $1, paused = $2, uri = $3 WHERE id = 1
	`, s.Owner.String(), s.Paused, s.URI)
	return err
}

// Bootstrap fills in the owner and URI on a fresh database. Values already
// stored win over configuration.
func Bootstrap(ctx context.Context, st Store, owner address.Address, uri string) (Settings, error) {
	s, err := st.Load(ctx)
	if err != nil {
		return s, err
	}
	changed := false
	if s.Owner == "" && owner != "" {
		s.Owner, changed = owner, true
	}
	if s.URI == "" && uri != "" {
		s.URI, changed = uri, true
	}
	if changed {
		err = st.Save(ctx, s)
	}
	return s, err
}
