package cache

import (
	"context"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process Store. Expired entries are dropped on read and by Sweep.
type Memory struct {
	entries *xsync.Map[string, entry]
	now     func() time.Time
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		entries: xsync.NewMap[string, entry](),
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	e, ok := m.entries.Load(key)
	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(e.expiresAt) {
		m.entries.Delete(key)
		return nil, false, nil
	}
	return e.value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.entries.Store(key, entry{value: value, expiresAt: m.now().Add(ttl)})
	return nil
}

// Sweep removes expired entries and returns how many were dropped.
func (m *Memory) Sweep() int {
	now := m.now()
	dropped := 0
	m.entries.Range(func(key string, e entry) bool {
		if !now.Before(e.expiresAt) {
			m.entries.Delete(key)
			dropped++
		}
		return true
	})
	return dropped
}

// Len counts entries, expired ones included until swept.
func (m *Memory) Len() int {
	return m.entries.Size()
}

func (m *Memory) Close() error {
	m.entries.Clear()
	return nil
}
