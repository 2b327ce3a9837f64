package events

import (
	"context"
	"sync"
)

// LocalBus delivers changes to subscribers in the same process. A slow
// subscriber misses changes rather than blocking publishers; one missed
// notification is harmless since every stats push is a full recount.
type LocalBus struct {
	mu   sync.Mutex
	subs map[chan Change]struct{}
}

func NewLocalBus() *LocalBus {
	return &LocalBus{subs: map[chan Change]struct{}{}}
}

func (b *LocalBus) Publish(ctx context.Context, change Change) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- change:
		default:
		}
	}
	return nil
}

func (b *LocalBus) Subscribe(ctx context.Context) (<-chan Change, error) {
	ch := make(chan Change, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, ch)
		close(ch)
		b.mu.Unlock()
	}()
	return ch, nil
}

// Subscribers returns the number of open subscriptions.
func (b *LocalBus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
