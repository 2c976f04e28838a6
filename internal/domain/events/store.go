package events

import (
	"context"
	"encoding/json"

	"github.com/Spok95/subpass/internal/infra/db"
)

type Store interface {
	// Append assigns the next sequence number and returns the stored event.
	Append(ctx context.Context, ev Event) (Event, error)
	// List returns up to limit events with Seq > after, oldest first.
	List(ctx context.Context, after int64, limit int) ([]Event, error)
}

type Memory struct {
	log []Event
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Append(_ context.Context, ev Event) (Event, error) {
	ev.Seq = int64(len(m.log)) + 1
	m.log = append(m.log, ev)
	return ev, nil
}

func (m *Memory) List(_ context.Context, after int64, limit int) ([]Event, error) {
	out := []Event{}
	for _, ev := range m.log {
		if ev.Seq <= after {
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, ev)
	}
	return out, nil
}

// Clone shares the backing array, spare capacity included. The clone's
// appends land past len(m.log), where m never reads, so discarding the clone
// is the rollback. Only one clone of a given log may be appended to at a time.
func (m *Memory) Clone() *Memory {
	return &Memory{log: m.log}
}

type Repo struct{ db db.Querier }

func NewRepo(q db.Querier) *Repo { return &Repo{db: q} }

func (r *Repo) Append(ctx context.Context, ev Event) (Event, error) {
	raw, err := json.Marshal(ev.Payload)
	if err != nil {
		return ev, err
	}
	err = r.db.QueryRow(ctx, `
		INSERT INTO events (id, name, payload, created_at)
		VALUES ($1,$2,$3,$4)
		RETURNING seq
	`, ev.ID, string(ev.Name), raw, ev.At).Scan(&ev.Seq)
	return ev, err
}

func (r *Repo) List(ctx context.Context, after int64, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx, `
		SELECT seq, id, name, payload, created_at
		FROM events
		WHERE seq > $1
		ORDER BY seq
		LIMIT $2
	`, after, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var (
			ev   Event
			name string
			raw  []byte
		)
		if err := rows.Scan(&ev.Seq, &ev.ID, &name, &raw, &ev.At); err != nil {
			return nil, err
		}
		ev.Name = Name(name)
		if ev.Payload, err = Decode(ev.Name, raw); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
