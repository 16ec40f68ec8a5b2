package notify

import (
	"context"
	"sync"
)

type localSub struct {
	ch chan *Event
}

// localNotifier is an in-process fan-out used when no Redis address is
// configured. Slow subscribers drop events rather than blocking the
// publisher.
type localNotifier struct {
	mu      sync.RWMutex
	subs    []*localSub
	bufSize int
}

func newLocalNotifier(bufSize int) *localNotifier {
	if bufSize <= 0 {
		bufSize = 256
	}
	return &localNotifier{bufSize: bufSize}
}

func (n *localNotifier) Publish(_ context.Context, ev *Event) error {
	n.mu.RLock()
	subs := n.subs
	n.mu.RUnlock()
	for _, s := range subs {
		select {
		case s.ch <- ev:
		default:
			// Drop when the subscriber buffer is full.
		}
	}
	return nil
}

func (n *localNotifier) Subscribe(_ context.Context) (<-chan *Event, func(), error) {
	sub := &localSub{ch: make(chan *Event, n.bufSize)}
	n.mu.Lock()
	n.subs = append(n.subs, sub)
	n.mu.Unlock()

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		for i, s := range n.subs {
			if s == sub {
				n.subs = append(n.subs[:i], n.subs[i+1:]...)
				break
			}
		}
		close(sub.ch)
	}
	return sub.ch, cancel, nil
}
