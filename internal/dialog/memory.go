package dialog

import (
	"context"
	"maps"
	"sync"
)

type Memory struct {
	mu    sync.Mutex
	items map[int64]Item
}

func NewMemory() *Memory { return &Memory{items: map[int64]Item{}} }

func (m *Memory) Get(_ context.Context, chatID int64) (*Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[chatID]
	if !ok {
		return idle(chatID), nil
	}
	it.Payload = maps.Clone(it.Payload)
	return &it, nil
}

func (m *Memory) Set(_ context.Context, chatID int64, state State, payload Payload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if payload == nil {
		payload = Payload{}
	}
	m.items[chatID] = Item{ChatID: chatID, State: state, Payload: maps.Clone(payload)}
	return nil
}

func (m *Memory) Reset(_ context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, chatID)
	return nil
}
