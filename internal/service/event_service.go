package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gatherly/internal/model"
	"gatherly/internal/repo"

	"go.uber.org/zap"
)

var (
	ErrNotHost         = errors.New("only the event host may do this")
	ErrBannedFromEvent = errors.New("user is banned from this event")
	ErrEmptyComment    = errors.New("comment text cannot be empty")
	ErrNotCommentOwner = errors.New("only the comment author or the event host may delete a comment")
)

// EventService orchestrates event operations across the two repositories.
// Host-only moderation (edit, delete, ban/unban) is enforced here; the
// repositories below stay pure pass-throughs to the store.
type EventService interface {
	Create(ctx context.Context, creatorID string, event *model.Event) (string, error)
	Get(ctx context.Context, eventID string) (*model.Event, error)
	List(ctx context.Context) ([]model.Event, error)
	Update(ctx context.Context, actorID, eventID string, event *model.Event) error
	Delete(ctx context.Context, actorID, eventID string) error

	Join(ctx context.Context, userID, eventID string) error
	Leave(ctx context.Context, userID, eventID string) error
	Participants(ctx context.Context, eventID string) ([]model.User, error)

	PostComment(ctx context.Context, actor Actor, eventID, text string, parentID *string) error
	DeleteComment(ctx context.Context, actorID, eventID, commentID string) error

	CheckIn(ctx context.Context, userID, eventID string) error
	CancelCheckIn(ctx context.Context, userID, eventID string) error

	Ban(ctx context.Context, actorID, eventID, targetID string) error
	Unban(ctx context.Context, actorID, eventID, targetID string) error
	BannedUsers(ctx context.Context, eventID string) ([]model.User, error)
}

// Actor identifies the signed-in user performing an operation.
type Actor struct {
	ID          string
	DisplayName string
}

type eventService struct {
	events repo.EventRepository
	users  repo.UserRepository
	logger *zap.Logger
}

func NewEventService(events repo.EventRepository, users repo.UserRepository, logger *zap.Logger) EventService {
	return &eventService{
		events: events,
		users:  users,
		logger: logger,
	}
}

// Create writes the event, then records it on the creator's document. The
// second write is best-effort: a failure leaves the event in place and is
// reported, not rolled back.
func (s *eventService) Create(ctx context.Context, creatorID string, event *model.Event) (string, error) {
	event.CreatedBy = creatorID

	id, err := s.events.AddEvent(ctx, event)
	if err != nil {
		return "", err
	}

	if err := s.users.AddCreatedEvent(ctx, creatorID, id); err != nil {
		s.logger.Error("event created but creator list update failed",
			zap.Error(err), zap.String("event_id", id), zap.String("uid", creatorID))
		return id, fmt.Errorf("event created but creator list update failed: %w", err)
	}
	return id, nil
}

func (s *eventService) Get(ctx context.Context, eventID string) (*model.Event, error) {
	return s.events.GetEvent(ctx, eventID)
}

func (s *eventService) List(ctx context.Context) ([]model.Event, error) {
	return s.events.ListEvents(ctx)
}

func (s *eventService) Update(ctx context.Context, actorID, eventID string, event *model.Event) error {
	if err := s.requireHost(ctx, actorID, eventID); err != nil {
		return err
	}
	event.CreatedBy = actorID
	return s.events.UpdateEvent(ctx, eventID, event)
}

func (s *eventService) Delete(ctx context.Context, actorID, eventID string) error {
	if err := s.requireHost(ctx, actorID, eventID); err != nil {
		return err
	}
	return s.events.DeleteEvent(ctx, eventID)
}

// Join records membership on the user document only. The event's participant
// count is derived by querying users, so no event write happens here.
func (s *eventService) Join(ctx context.Context, userID, eventID string) error {
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if event.IsBanned(userID) {
		return ErrBannedFromEvent
	}
	return s.users.AddJoinedEvent(ctx, userID, eventID)
}

func (s *eventService) Leave(ctx context.Context, userID, eventID string) error {
	return s.users.RemoveJoinedEvent(ctx, userID, eventID)
}

func (s *eventService) Participants(ctx context.Context, eventID string) ([]model.User, error) {
	ids, err := s.events.ParticipantIDs(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return s.users.UsersByIDs(ctx, ids)
}

func (s *eventService) PostComment(ctx context.Context, actor Actor, eventID, text string, parentID *string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ErrEmptyComment
	}

	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if event.IsBanned(actor.ID) {
		return ErrBannedFromEvent
	}

	comment := &model.Comment{
		EventID:  eventID,
		UserID:   actor.ID,
		UserName: actor.DisplayName,
		Text:     trimmed,
		ParentID: parentID,
	}
	return s.events.PostComment(ctx, eventID, comment)
}

func (s *eventService) DeleteComment(ctx context.Context, actorID, eventID, commentID string) error {
	comment, err := s.events.GetComment(ctx, eventID, commentID)
	if err != nil {
		return err
	}

	if comment.UserID != actorID {
		event, err := s.events.GetEvent(ctx, eventID)
		if err != nil {
			return err
		}
		if event.CreatedBy != actorID {
			return ErrNotCommentOwner
		}
	}

	return s.events.DeleteComment(ctx, eventID, commentID)
}

func (s *eventService) CheckIn(ctx context.Context, userID, eventID string) error {
	return s.events.CheckIn(ctx, eventID, userID)
}

func (s *eventService) CancelCheckIn(ctx context.Context, userID, eventID string) error {
	return s.events.CancelCheckIn(ctx, eventID, userID)
}

// Ban appends to the event's banned list. The banned user's existing comments
// stay untouched.
func (s *eventService) Ban(ctx context.Context, actorID, eventID, targetID string) error {
	if err := s.requireHost(ctx, actorID, eventID); err != nil {
		return err
	}
	return s.events.BanUser(ctx, eventID, targetID)
}

func (s *eventService) Unban(ctx context.Context, actorID, eventID, targetID string) error {
	if err := s.requireHost(ctx, actorID, eventID); err != nil {
		return err
	}
	return s.events.UnbanUser(ctx, eventID, targetID)
}

func (s *eventService) BannedUsers(ctx context.Context, eventID string) ([]model.User, error) {
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return s.users.UsersByIDs(ctx, event.BannedUserIDs)
}

func (s *eventService) requireHost(ctx context.Context, actorID, eventID string) error {
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if event.CreatedBy != actorID {
		return ErrNotHost
	}
	return nil
}
