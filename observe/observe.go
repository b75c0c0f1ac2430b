// Package observe exposes a store's state to consumer code through a
// snapshot-read plus subscribe contract and derived read-only views,
// independent of any particular rendering layer.
package observe

import (
	"context"
	"sync"

	authmaster "github.com/yaghobieh/auth-master"
)

// Binding wraps a store for observation. It never mutates the store.
type Binding struct {
	store *authmaster.Store
}

// Bind creates a Binding over the store.
func Bind(store *authmaster.Store) *Binding {
	return &Binding{store: store}
}

// Snapshot returns the current session state.
func (b *Binding) Snapshot() authmaster.Session {
	return b.store.State()
}

// Subscribe registers a listener invoked synchronously after every state
// change and returns its unsubscribe function.
func (b *Binding) Subscribe(listener func()) func() {
	return b.store.Subscribe(listener)
}

// Watch delivers a session snapshot on a channel after every state
// change. The channel is buffered; snapshots are dropped rather than
// blocking the store's notification pass when the consumer lags. The
// subscription ends and the channel closes when ctx is cancelled.
func (b *Binding) Watch(ctx context.Context, buffer int) <-chan authmaster.Session {
	if buffer < 1 {
		buffer = 1
	}
	w := &watcher{ch: make(chan authmaster.Session, buffer)}
	unsubscribe := b.store.Subscribe(func() {
		w.send(b.store.State())
	})

	if ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			unsubscribe()
			w.close()
		}()
	}

	return w.ch
}

// watcher guards the channel so a notification racing the context
// cancellation cannot send on a closed channel.
type watcher struct {
	mu     sync.Mutex
	ch     chan authmaster.Session
	closed bool
}

func (w *watcher) send(s authmaster.Session) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	select {
	case w.ch <- s:
	default:
	}
}

func (w *watcher) close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	close(w.ch)
}
