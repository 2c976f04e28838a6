package users

import (
	"context"
	"sync"
	"time"

	"github.com/Spok95/subpass/internal/domain/address"
)

// Memory keeps users in a map; used with the memory store driver.
type Memory struct {
	mu     sync.Mutex
	byTG   map[int64]User
	nextID int64
	now    func() time.Time
}

func NewMemory() *Memory {
	return &Memory{byTG: map[int64]User{}, now: time.Now}
}

func (m *Memory) GetByTelegramID(_ context.Context, tgID int64) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byTG[tgID]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *Memory) UpsertFromTelegram(_ context.Context, tg Telegram) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	u, ok := m.byTG[tg.ID]
	if !ok {
		m.nextID++
		u = User{ID: m.nextID, TelegramID: tg.ID, CreatedAt: now}
	}
	u.Username = tg.Username
	u.UpdatedAt = now
	m.byTG[tg.ID] = u
	return &u, nil
}

func (m *Memory) SetAddress(_ context.Context, tgID int64, a address.Address) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byTG[tgID]
	if !ok {
		return nil, ErrNotFound
	}
	for id, other := range m.byTG {
		if id != tgID && !a.IsZero() && other.Address == a {
			return nil, ErrAddressTaken
		}
	}
	u.Address = a
	u.UpdatedAt = m.now()
	m.byTG[tgID] = u
	return &u, nil
}
