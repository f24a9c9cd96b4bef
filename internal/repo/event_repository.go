package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gatherly/internal/model"
	"gatherly/internal/store"

	"github.com/google/uuid"
	"github.com/thoas/go-funk"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrInvalidEventID  = errors.New("invalid event id: cannot be empty")
)

const (
	defaultWriteTimeout = 5 * time.Second
	defaultReadTimeout  = 30 * time.Second

	eventsCollection   = "events"
	commentsCollection = "event_comments"
	checkinsCollection = "event_checkins"
)

// EventRepository is the façade over the event document tree: the event
// documents themselves plus their comment and check-in records. Watch methods
// open a realtime snapshot subscription that lives until the caller closes it;
// every mutating method is a single remote write with no retry and no local
// staging.
type EventRepository interface {
	WatchEvent(ctx context.Context, id string) *store.Subscription[*model.Event]
	WatchAllEvents(ctx context.Context) *store.Subscription[[]model.Event]
	GetEvent(ctx context.Context, id string) (*model.Event, error)
	ListEvents(ctx context.Context) ([]model.Event, error)
	AddEvent(ctx context.Context, event *model.Event) (string, error)
	UpdateEvent(ctx context.Context, id string, event *model.Event) error
	DeleteEvent(ctx context.Context, id string) error
	ClearEvents(ctx context.Context) error

	WatchComments(ctx context.Context, eventID string) *store.Subscription[[]model.Comment]
	GetComment(ctx context.Context, eventID, commentID string) (*model.Comment, error)
	PostComment(ctx context.Context, eventID string, comment *model.Comment) error
	DeleteComment(ctx context.Context, eventID, commentID string) error

	WatchParticipantsCount(ctx context.Context, eventID string) *store.Subscription[int64]
	ParticipantIDs(ctx context.Context, eventID string) ([]string, error)

	WatchCheckIns(ctx context.Context, eventID string) *store.Subscription[model.CheckInData]
	CheckIn(ctx context.Context, eventID, userID string) error
	CancelCheckIn(ctx context.Context, eventID, userID string) error

	BanUser(ctx context.Context, eventID, userID string) error
	UnbanUser(ctx context.Context, eventID, userID string) error
}

type eventRepository struct {
	events   *store.Repository[model.Event]
	comments *store.Repository[model.Comment]
	checkins *store.Repository[model.CheckIn]
	users    *store.Repository[model.User]
	logger   *zap.Logger
}

func NewEventRepository(con *mongo.Database, logger *zap.Logger) EventRepository {
	return &eventRepository{
		events:   store.NewRepository[model.Event](con, eventsCollection),
		comments: store.NewRepository[model.Comment](con, commentsCollection),
		checkins: store.NewRepository[model.CheckIn](con, checkinsCollection),
		users:    store.NewRepository[model.User](con, usersCollection),
		logger:   logger,
	}
}

func (r *eventRepository) WatchEvent(ctx context.Context, id string) *store.Subscription[*model.Event] {
	return store.WatchOne(ctx, r.events, id)
}

func (r *eventRepository) WatchAllEvents(ctx context.Context) *store.Subscription[[]model.Event] {
	return store.WatchQuery(ctx, r.events, store.Empty(), bson.D{{Key: "created_at", Value: -1}})
}

func (r *eventRepository) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultReadTimeout)
	defer cancel()

	event, err := r.events.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event failed: %w", err)
	}
	return event, nil
}

func (r *eventRepository) ListEvents(ctx context.Context) ([]model.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultReadTimeout)
	defer cancel()

	events, err := r.events.FindAll(ctx, store.Empty(), bson.D{{Key: "created_at", Value: -1}})
	if err != nil {
		return nil, fmt.Errorf("list events failed: %w", err)
	}
	return events, nil
}

// AddEvent tags the event with a fresh id before the write, like a document
// reference allocated ahead of the set, and returns that id.
func (r *eventRepository) AddEvent(ctx context.Context, event *model.Event) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	event.ID = uuid.NewString()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	if _, err := r.events.Create(ctx, *event); err != nil {
		r.logger.Error("failed to insert event", zap.Error(err), zap.String("created_by", event.CreatedBy))
		return "", fmt.Errorf("add event failed: %w", err)
	}

	r.logger.Info("event inserted", zap.String("event_id", event.ID))
	return event.ID, nil
}

func (r *eventRepository) UpdateEvent(ctx context.Context, id string, event *model.Event) error {
	if id == "" {
		return ErrInvalidEventID
	}

	ctx, cancel := context.WithTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	event.ID = id
	if err := r.events.Replace(ctx, id, *event); err != nil {
		r.logger.Error("failed to update event", zap.Error(err), zap.String("event_id", id))
		return fmt.Errorf("update event failed: %w", err)
	}
	return nil
}

func (r *eventRepository) DeleteEvent(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidEventID
	}

	ctx, cancel := context.WithTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	if _, err := r.events.DeleteByID(ctx, id); err != nil {
		r.logger.Error("failed to delete event", zap.Error(err), zap.String("event_id", id))
		return fmt.Errorf("delete event failed: %w", err)
	}
	return nil
}

func (r *eventRepository) ClearEvents(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	if _, err := r.events.DeleteMany(ctx, store.Empty()); err != nil {
		return fmt.Errorf("clear events failed: %w", err)
	}
	return nil
}

func (r *eventRepository) WatchComments(ctx context.Context, eventID string) *store.Subscription[[]model.Comment] {
	filter := store.NewFilter().Eq("event_id", eventID).Build()
	return store.WatchQuery(ctx, r.comments, filter, bson.D{{Key: "created_at", Value: 1}})
}

func (r *eventRepository) GetComment(ctx context.Context, eventID, commentID string) (*model.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := store.NewFilter().Eq("_id", commentID).Eq("event_id", eventID).Build()
	comment, err := r.comments.FindOne(ctx, filter)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment failed: %w", err)
	}
	return comment, nil
}

func (r *eventRepository) PostComment(ctx context.Context, eventID string, comment *model.Comment) error {
	ctx, cancel := context.WithTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	comment.ID = uuid.NewString()
	comment.EventID = eventID
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}

	if _, err := r.comments.Create(ctx, *comment); err != nil {
		r.logger.Error("failed to post comment", zap.Error(err), zap.String("event_id", eventID))
		return fmt.Errorf("post comment failed: %w", err)
	}
	return nil
}

func (r *eventRepository) DeleteComment(ctx context.Context, eventID, commentID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	filter := store.NewFilter().Eq("_id", commentID).Eq("event_id", eventID).Build()
	if _, err := r.comments.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("delete comment failed: %w", err)
	}
	return nil
}

// WatchParticipantsCount counts users whose joined list contains the event.
// The count lives on the user collection only; the event document never
// caches it.
func (r *eventRepository) WatchParticipantsCount(ctx context.Context, eventID string) *store.Subscription[int64] {
	filter := store.NewFilter().ArrayContains("events_joined", eventID).Build()
	return store.WatchCount(ctx, r.users, filter)
}

func (r *eventRepository) ParticipantIDs(ctx context.Context, eventID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := store.NewFilter().ArrayContains("events_joined", eventID).Build()
	users, err := r.users.FindAll(ctx, filter, nil)
	if err != nil {
		return nil, fmt.Errorf("participant ids failed: %w", err)
	}

	return funk.Map(users, func(u model.User) string { return u.ID }).([]string), nil
}

func (r *eventRepository) WatchCheckIns(ctx context.Context, eventID string) *store.Subscription[model.CheckInData] {
	filter := store.NewFilter().Eq("event_id", eventID).Build()
	sub := store.WatchQuery(ctx, r.checkins, filter, nil)
	return store.MapSubscription(ctx, sub, func(records []model.CheckIn) model.CheckInData {
		return model.CheckInData{
			Count:   len(records),
			UserIDs: funk.Map(records, func(c model.CheckIn) string { return c.UserID }).([]string),
		}
	})
}

// CheckIn upserts the record keyed by user id, so checking in twice leaves a
// single record for that user.
func (r *eventRepository) CheckIn(ctx context.Context, eventID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	record := model.CheckIn{
		ID:        model.CheckInID(eventID, userID),
		EventID:   eventID,
		UserID:    userID,
		Method:    "manual",
		Timestamp: time.Now().UnixMilli(),
	}

	if err := r.checkins.Replace(ctx, record.ID, record); err != nil {
		r.logger.Error("failed to check in", zap.Error(err), zap.String("event_id", eventID), zap.String("user_id", userID))
		return fmt.Errorf("check in failed: %w", err)
	}
	return nil
}

func (r *eventRepository) CancelCheckIn(ctx context.Context, eventID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	if _, err := r.checkins.DeleteByID(ctx, model.CheckInID(eventID, userID)); err != nil {
		return fmt.Errorf("cancel check in failed: %w", err)
	}
	return nil
}

func (r *eventRepository) BanUser(ctx context.Context, eventID, userID string) error {
	return r.updateBanList(ctx, eventID, bson.M{"$addToSet": bson.M{"banned_user_ids": userID}})
}

func (r *eventRepository) UnbanUser(ctx context.Context, eventID, userID string) error {
	return r.updateBanList(ctx, eventID, bson.M{"$pull": bson.M{"banned_user_ids": userID}})
}

// updateBanList touches only the event's own banned list; the banned user's
// existing comments stay in place.
func (r *eventRepository) updateBanList(ctx context.Context, eventID string, update bson.M) error {
	if strings.TrimSpace(eventID) == "" {
		return ErrInvalidEventID
	}

	ctx, cancel := context.WithTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	if _, err := r.events.UpdateByID(ctx, eventID, update); err != nil {
		return fmt.Errorf("update ban list failed: %w", err)
	}
	return nil
}
