package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Subscription delivers a fresh snapshot of the watched data every time the
// underlying collection changes. Delivery is latest-wins: a slow consumer sees
// the newest snapshot, never a backlog. Close (or cancelling the context the
// subscription was opened with) releases the change stream.
type Subscription[T any] struct {
	updates chan T
	errs    chan error
	cancel  context.CancelFunc
}

// Updates returns the snapshot channel. It is closed when the subscription ends.
func (s *Subscription[T]) Updates() <-chan T {
	return s.updates
}

// Errs delivers at most one terminal error before the subscription ends.
func (s *Subscription[T]) Errs() <-chan error {
	return s.errs
}

// Close releases the underlying change stream and closes the channels.
func (s *Subscription[T]) Close() {
	s.cancel()
}

// emit replaces any undelivered snapshot with the newest one.
func (s *Subscription[T]) emit(v T) {
	for {
		select {
		case s.updates <- v:
			return
		default:
			select {
			case <-s.updates:
			default:
			}
		}
	}
}

func (s *Subscription[T]) fail(err error) {
	select {
	case s.errs <- err:
	default:
	}
}

// changeStream is the slice of mongo.ChangeStream the snapshot loop uses.
type changeStream interface {
	Next(ctx context.Context) bool
	Close(ctx context.Context) error
	Err() error
}

type streamOpener func(ctx context.Context) (changeStream, error)

// watch runs the snapshot loop: one initial fetch, then a re-fetch on every
// change event matching the pipeline.
func watch[T any](ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline, fetch func(context.Context) (T, error)) *Subscription[T] {
	open := func(ctx context.Context) (changeStream, error) {
		opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
		return coll.Watch(ctx, pipeline, opts)
	}
	return watchWith(ctx, open, fetch)
}

// watchWith opens the change stream before the initial fetch. A write landing
// between the two shows up as a change event and triggers a re-fetch; the
// reverse order would lose it and serve the stale snapshot indefinitely.
func watchWith[T any](ctx context.Context, open streamOpener, fetch func(context.Context) (T, error)) *Subscription[T] {
	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription[T]{
		updates: make(chan T, 1),
		errs:    make(chan error, 1),
		cancel:  cancel,
	}

	go func() {
		defer close(sub.updates)
		defer close(sub.errs)

		stream, err := open(ctx)
		if err != nil {
			sub.fail(err)
			return
		}
		defer stream.Close(context.Background())

		snapshot, err := fetch(ctx)
		if err != nil {
			sub.fail(err)
			return
		}
		sub.emit(snapshot)

		for stream.Next(ctx) {
			snapshot, err := fetch(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				sub.fail(err)
				return
			}
			sub.emit(snapshot)
		}

		if err := stream.Err(); err != nil && !errors.Is(err, context.Canceled) {
			sub.fail(err)
		}
	}()

	return sub
}

// WatchOne observes a single document by id. A missing document is delivered
// as a nil pointer, mirroring an empty snapshot rather than an error.
func WatchOne[T any](ctx context.Context, r *Repository[T], id string) *Subscription[*T] {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"documentKey._id": id}}},
	}
	return watch(ctx, r.collection, pipeline, func(ctx context.Context) (*T, error) {
		doc, err := r.FindByID(ctx, id)
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return doc, err
	})
}

// WatchQuery observes the result set of a filter, re-running the query on
// every change to the collection.
func WatchQuery[T any](ctx context.Context, r *Repository[T], filter bson.M, sort bson.D) *Subscription[[]T] {
	return watch(ctx, r.collection, mongo.Pipeline{}, func(ctx context.Context) ([]T, error) {
		return r.FindAll(ctx, filter, sort)
	})
}

// WatchCount observes the number of documents matching a filter.
func WatchCount[T any](ctx context.Context, r *Repository[T], filter bson.M) *Subscription[int64] {
	return watch(ctx, r.collection, mongo.Pipeline{}, func(ctx context.Context) (int64, error) {
		return r.Count(ctx, filter)
	})
}
