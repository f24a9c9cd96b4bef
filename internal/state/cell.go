package state

import "sync"

// Cell is an observable state cell. Reads always see the latest value;
// subscribers receive the current value immediately and then every update,
// latest-wins (a slow subscriber skips intermediate values, never blocks the
// writer).
type Cell[T any] struct {
	mu    sync.Mutex
	value T
	subs  map[uint64]chan T
	next  uint64
}

func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{
		value: initial,
		subs:  make(map[uint64]chan T),
	}
}

func (c *Cell[T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

func (c *Cell[T]) Set(value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.value = value
	for _, ch := range c.subs {
		select {
		case ch <- value:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- value
		}
	}
}

// Subscribe registers an observer. The returned channel carries the current
// value first. The cancel func releases the observer; the channel is closed.
func (c *Cell[T]) Subscribe() (<-chan T, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.next
	c.next++

	ch := make(chan T, 1)
	ch <- c.value
	c.subs[id] = ch

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}
