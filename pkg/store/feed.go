package store

import "sync"

// Feed is a latest-value channel implementing Subscription. Producers call
// Push; a pending value that was not read yet is replaced.
type Feed struct {
	mu      sync.Mutex
	ch      chan Versioned
	done    chan struct{}
	closed  bool
	onClose func()
}

func NewFeed(onClose func()) *Feed {
	return &Feed{
		ch:      make(chan Versioned, 1),
		done:    make(chan struct{}),
		onClose: onClose,
	}
}

func (f *Feed) Push(v Versioned) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	select {
	case <-f.ch:
	default:
	}
	f.ch <- v
}

func (f *Feed) Updates() <-chan Versioned {
	return f.ch
}

// Done is closed once the feed is closed; producer goroutines select on it.
func (f *Feed) Done() <-chan struct{} {
	return f.done
}

func (f *Feed) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	close(f.done)
	close(f.ch)
	f.mu.Unlock()

	if f.onClose != nil {
		f.onClose()
	}
}
