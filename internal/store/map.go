package store

import "context"

// MapSubscription derives a subscription by transforming every snapshot of
// the source. Closing the derived subscription closes the source as well.
func MapSubscription[T, U any](ctx context.Context, src *Subscription[T], f func(T) U) *Subscription[U] {
	ctx, cancel := context.WithCancel(ctx)
	dst := &Subscription[U]{
		updates: make(chan U, 1),
		errs:    make(chan error, 1),
		cancel: func() {
			cancel()
			src.Close()
		},
	}

	go func() {
		defer close(dst.updates)
		defer close(dst.errs)

		updates, errs := src.updates, src.errs
		for {
			select {
			case <-ctx.Done():
				src.Close()
				return
			case v, ok := <-updates:
				if !ok {
					return
				}
				dst.emit(f(v))
			case err, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				if err != nil {
					dst.fail(err)
					return
				}
			}
		}
	}()

	return dst
}
