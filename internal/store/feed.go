package store

import "context"

// Feed returns a subscription whose snapshots are supplied by the caller
// instead of a live collection. Used by in-process sources and test fixtures.
// The returned push and fail funcs must not be called after the context is
// cancelled.
func Feed[T any](ctx context.Context) (*Subscription[T], func(T), func(error)) {
	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription[T]{
		updates: make(chan T, 1),
		errs:    make(chan error, 1),
		cancel:  cancel,
	}

	go func() {
		<-ctx.Done()
		close(sub.updates)
		close(sub.errs)
	}()

	return sub, sub.emit, sub.fail
}
