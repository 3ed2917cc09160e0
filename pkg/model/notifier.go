package model

import (
	"sync"

	"trackcore/pkg/domain"
)

// Event reports that one property of a model changed.
type Event struct {
	Entity   domain.EntityType
	ID       domain.Identity
	Property domain.Property
}

// Listener receives change events. Listeners run synchronously on the
// goroutine that committed the change and may mutate the model again; the
// resulting events are queued behind the ones being delivered.
type Listener func(Event)

// notifier delivers events in emission order. Events emitted while a
// delivery is running are appended to the queue and delivered by the
// goroutine already draining it.
type notifier struct {
	mu        sync.Mutex
	nextID    uint64
	listeners map[uint64]Listener
	order     []uint64
	queue     []Event
	draining  bool
}

func (n *notifier) subscribe(l Listener) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.listeners == nil {
		n.listeners = make(map[uint64]Listener)
	}
	n.nextID++
	id := n.nextID
	n.listeners[id] = l
	n.order = append(n.order, id)
	var once sync.Once
	return func() {
		once.Do(func() { n.unsubscribe(id) })
	}
}

func (n *notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.listeners, id)
	for i, v := range n.order {
		if v == id {
			n.order = append(n.order[:i:i], n.order[i+1:]...)
			break
		}
	}
}

func (n *notifier) snapshot() []Listener {
	out := make([]Listener, 0, len(n.order))
	for _, id := range n.order {
		out = append(out, n.listeners[id])
	}
	return out
}

func (n *notifier) emit(events ...Event) {
	if len(events) == 0 {
		return
	}
	n.mu.Lock()
	n.queue = append(n.queue, events...)
	if n.draining {
		n.mu.Unlock()
		return
	}
	n.draining = true
	n.mu.Unlock()
	n.drain()
}

func (n *notifier) drain() {
	finished := false
	defer func() {
		// A panicking listener abandons the rest of the queue.
		if !finished {
			n.mu.Lock()
			n.draining = false
			n.queue = nil
			n.mu.Unlock()
		}
	}()
	for {
		n.mu.Lock()
		if len(n.queue) == 0 {
			n.draining = false
			n.mu.Unlock()
			finished = true
			return
		}
		ev := n.queue[0]
		n.queue = n.queue[1:]
		listeners := n.snapshot()
		n.mu.Unlock()
		for _, l := range listeners {
			l(ev)
		}
	}
}
