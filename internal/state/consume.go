package state

import "gatherly/internal/store"

// consume pumps a façade subscription into holder callbacks. onValue runs on
// every snapshot; onErr runs at most once, after which the subscription is
// finished. The pump exits when the subscription closes.
func consume[T any](sub *store.Subscription[T], onValue func(T), onErr func(error)) {
	go func() {
		updates, errs := sub.Updates(), sub.Errs()
		for {
			select {
			case v, ok := <-updates:
				if !ok {
					return
				}
				onValue(v)
			case err, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				if err != nil {
					onErr(err)
					return
				}
			}
		}
	}()
}

func errMessage(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}
