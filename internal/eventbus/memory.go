package eventbus

import (
	"context"
	"strings"
	"sync"
)

// MemoryBus is the in-process Bus. It backs single-instance deployments and
// tests; handlers run synchronously on the signaling goroutine.
type MemoryBus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*memorySub
}

type memorySub struct {
	prefix   string
	handler  Handler
	lastSeen map[string]string
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		subs: make(map[int]*memorySub),
	}
}

func (b *MemoryBus) Signal(ctx context.Context, key string) error {
	value := freshValue()

	b.mu.Lock()
	matched := make([]*memorySub, 0, len(b.subs))
	for _, sub := range b.subs {
		if strings.HasPrefix(key, sub.prefix) && sub.lastSeen[key] != value {
			sub.lastSeen[key] = value
			matched = append(matched, sub)
		}
	}
	b.mu.Unlock()

	for _, sub := range matched {
		sub.handler(key, value)
	}
	return nil
}

func (b *MemoryBus) Subscribe(ctx context.Context, prefix string, h Handler) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subs[id] = &memorySub{
		prefix:   prefix,
		handler:  h,
		lastSeen: make(map[string]string),
	}

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}, nil
}
