package kv

import (
	"context"
	"sync"
)

// Memory keeps everything in process memory. Data is lost on restart.
// Safe for concurrent use.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
	sets map[string]map[string]struct{}
}

func NewMemory() *Memory {
	return &Memory{
		data: make(map[string][]byte),
		sets: make(map[string]map[string]struct{}),
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	delete(m.sets, key)
	return nil
}

func (m *Memory) SAdd(_ context.Context, set, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sets[set]; !ok {
		m.sets[set] = make(map[string]struct{})
	}
	m.sets[set][member] = struct{}{}
	return nil
}

func (m *Memory) SRem(_ context.Context, set, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if members, ok := m.sets[set]; ok {
		delete(members, member)
	}
	return nil
}

func (m *Memory) SMembers(_ context.Context, set string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	members := make([]string, 0, len(m.sets[set]))
	for member := range m.sets[set] {
		members = append(members, member)
	}
	return members, nil
}
