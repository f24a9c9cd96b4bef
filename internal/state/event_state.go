package state

import (
	"context"
	"strings"
	"sync"

	"gatherly/internal/model"
	"gatherly/internal/repo"

	"go.uber.org/zap"
)

// EventState owns the observable cells behind the event screens: the feed,
// one event's detail, its comments, and the derived participant/check-in
// aggregates. Each cell is mutated only by the goroutine owning its
// subscription or mutation; starting a new load supersedes the previous
// subscription by cancelling it, which releases the remote listener.
type EventState struct {
	events repo.EventRepository
	users  repo.UserRepository
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	Events       *Cell[UiState[[]model.Event]]
	Event        *Cell[UiState[*model.Event]]
	Operation    *Cell[UiState[string]]
	Comments     *Cell[UiState[[]model.Comment]]
	Participants *Cell[int64]
	Arrived      *Cell[int]
	CheckedIn    *Cell[bool]
	BannedUsers  *Cell[[]model.User]

	mu          sync.Mutex
	superseders map[string]context.CancelFunc
}

func NewEventState(ctx context.Context, events repo.EventRepository, users repo.UserRepository, logger *zap.Logger) *EventState {
	ctx, cancel := context.WithCancel(ctx)
	return &EventState{
		events:       events,
		users:        users,
		logger:       logger,
		ctx:          ctx,
		cancel:       cancel,
		Events:       NewCell(Loading[[]model.Event]()),
		Event:        NewCell(Idle[*model.Event]()),
		Operation:    NewCell(Idle[string]()),
		Comments:     NewCell(Loading[[]model.Comment]()),
		Participants: NewCell[int64](0),
		Arrived:      NewCell(0),
		CheckedIn:    NewCell(false),
		BannedUsers:  NewCell([]model.User{}),
		superseders:  make(map[string]context.CancelFunc),
	}
}

// Close tears the holder down, releasing every open subscription.
func (s *EventState) Close() {
	s.cancel()
}

// supersede cancels the previous subscription registered under key and
// returns a fresh context for its replacement.
func (s *EventState) supersede(key string) context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cancel, ok := s.superseders[key]; ok {
		cancel()
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.superseders[key] = cancel
	return ctx
}

func (s *EventState) LoadAllEvents() {
	ctx := s.supersede("events")
	s.Events.Set(Loading[[]model.Event]())

	sub := s.events.WatchAllEvents(ctx)
	consume(sub,
		func(events []model.Event) {
			s.Events.Set(Success(events))
		},
		func(err error) {
			s.logger.Error("failed to load events", zap.Error(err))
			s.Events.Set(Fail[[]model.Event](errMessage(err, "Unknown error occurred")))
		},
	)
}

func (s *EventState) LoadEvent(eventID string) {
	ctx := s.supersede("event")
	s.Event.Set(Loading[*model.Event]())

	sub := s.events.WatchEvent(ctx, eventID)
	consume(sub,
		func(event *model.Event) {
			if event == nil {
				s.Event.Set(Fail[*model.Event]("Event not found"))
				return
			}
			s.Event.Set(Success(event))
		},
		func(err error) {
			s.logger.Error("error loading event", zap.Error(err), zap.String("event_id", eventID))
			s.Event.Set(Fail[*model.Event](errMessage(err, "Unknown error occurred")))
		},
	)
}

// SaveEvent persists a new event. Exactly one of onSuccess/onError fires,
// after the operation cell has settled.
func (s *EventState) SaveEvent(event *model.Event, onSuccess func(string), onError func(error)) {
	s.Operation.Set(Loading[string]())

	go func() {
		id, err := s.events.AddEvent(s.ctx, event)
		if err != nil {
			s.Operation.Set(Fail[string](errMessage(err, "Failed to save event")))
			if onError != nil {
				onError(err)
			}
			return
		}

		s.Operation.Set(Success("Event saved successfully"))
		s.logger.Info("event saved", zap.String("event_id", id))
		if onSuccess != nil {
			onSuccess(id)
		}
	}()
}

func (s *EventState) UpdateEvent(eventID string, event *model.Event, onSuccess func(), onError func(error)) {
	s.Operation.Set(Loading[string]())

	go func() {
		if err := s.events.UpdateEvent(s.ctx, eventID, event); err != nil {
			s.logger.Error("failed to update event", zap.Error(err), zap.String("event_id", eventID))
			s.Operation.Set(Fail[string](errMessage(err, "Failed to update event")))
			if onError != nil {
				onError(err)
			}
			return
		}

		s.Operation.Set(Success("Event updated successfully"))
		if onSuccess != nil {
			onSuccess()
		}
	}()
}

func (s *EventState) DeleteEvent(eventID string, onResult func(bool)) {
	s.Operation.Set(Loading[string]())

	go func() {
		if err := s.events.DeleteEvent(s.ctx, eventID); err != nil {
			s.logger.Error("failed to delete event", zap.Error(err), zap.String("event_id", eventID))
			s.Operation.Set(Fail[string](errMessage(err, "Failed to delete event")))
			if onResult != nil {
				onResult(false)
			}
			return
		}

		s.Operation.Set(Success("Event deleted"))
		if onResult != nil {
			onResult(true)
		}
	}()
}

func (s *EventState) ClearAllEvents() {
	s.Operation.Set(Loading[string]())

	go func() {
		if err := s.events.ClearEvents(s.ctx); err != nil {
			s.Operation.Set(Fail[string](errMessage(err, "Failed to clear events")))
			return
		}
		s.Operation.Set(Success("All events cleared"))
	}()
}

func (s *EventState) StartComments(eventID string) {
	ctx := s.supersede("comments")
	s.Comments.Set(Loading[[]model.Comment]())

	sub := s.events.WatchComments(ctx, eventID)
	consume(sub,
		func(comments []model.Comment) {
			s.Comments.Set(Success(comments))
		},
		func(err error) {
			s.logger.Error("error listening comments", zap.Error(err), zap.String("event_id", eventID))
			s.Comments.Set(Fail[[]model.Comment](errMessage(err, "Failed to load comments")))
		},
	)
}

// PostComment trims the text first; an empty or whitespace-only comment is a
// no-op, no remote write happens and no cell changes.
func (s *EventState) PostComment(eventID, userID, userName, text string, parentID *string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return
	}

	comment := &model.Comment{
		EventID:  eventID,
		UserID:   userID,
		UserName: userName,
		Text:     trimmed,
		ParentID: parentID,
	}

	go func() {
		if err := s.events.PostComment(s.ctx, eventID, comment); err != nil {
			s.logger.Error("failed to add comment", zap.Error(err), zap.String("event_id", eventID))
			return
		}
		s.logger.Debug("comment added", zap.String("event_id", eventID))
	}()
}

func (s *EventState) DeleteComment(eventID, commentID string) {
	go func() {
		if err := s.events.DeleteComment(s.ctx, eventID, commentID); err != nil {
			s.logger.Error("failed to delete comment", zap.Error(err), zap.String("comment_id", commentID))
			return
		}
		s.logger.Debug("comment deleted", zap.String("comment_id", commentID))
	}()
}

func (s *EventState) StartParticipants(eventID string) {
	ctx := s.supersede("participants")

	sub := s.events.WatchParticipantsCount(ctx, eventID)
	consume(sub,
		func(count int64) {
			s.Participants.Set(count)
		},
		func(err error) {
			s.logger.Error("error listening participants", zap.Error(err), zap.String("event_id", eventID))
			s.Participants.Set(0)
		},
	)
}

func (s *EventState) ParticipantIDs(eventID string) ([]string, error) {
	ids, err := s.events.ParticipantIDs(s.ctx, eventID)
	if err != nil {
		s.logger.Error("failed to get participant ids", zap.Error(err), zap.String("event_id", eventID))
		return nil, err
	}
	return ids, nil
}

// StartCheckIns follows the event's check-in records, deriving both the
// arrived count and whether currentUserID is among them.
func (s *EventState) StartCheckIns(eventID, currentUserID string) {
	ctx := s.supersede("checkins")
	s.Arrived.Set(0)
	s.CheckedIn.Set(false)

	sub := s.events.WatchCheckIns(ctx, eventID)
	consume(sub,
		func(data model.CheckInData) {
			s.Arrived.Set(data.Count)
			if currentUserID == "" {
				s.CheckedIn.Set(false)
				return
			}
			s.CheckedIn.Set(data.Contains(currentUserID))
		},
		func(err error) {
			s.logger.Error("error listening check-ins", zap.Error(err), zap.String("event_id", eventID))
			s.Arrived.Set(0)
			s.CheckedIn.Set(false)
		},
	)
}

func (s *EventState) ManualCheckIn(eventID, userID string) {
	go func() {
		if err := s.events.CheckIn(s.ctx, eventID, userID); err != nil {
			s.logger.Error("manual check-in failed", zap.Error(err), zap.String("event_id", eventID))
			return
		}
		s.logger.Debug("manual check-in success", zap.String("event_id", eventID), zap.String("user_id", userID))
	}()
}

func (s *EventState) CancelManualCheckIn(eventID, userID string) {
	go func() {
		if err := s.events.CancelCheckIn(s.ctx, eventID, userID); err != nil {
			s.logger.Error("cancel manual check-in failed", zap.Error(err), zap.String("event_id", eventID))
			return
		}
		s.logger.Debug("manual check-in cancelled", zap.String("event_id", eventID), zap.String("user_id", userID))
	}()
}

func (s *EventState) BanUser(eventID, userIDToBan string) {
	go func() {
		if err := s.events.BanUser(s.ctx, eventID, userIDToBan); err != nil {
			s.logger.Error("failed to ban user", zap.Error(err), zap.String("event_id", eventID))
			return
		}
		s.logger.Info("user banned from event", zap.String("event_id", eventID), zap.String("user_id", userIDToBan))
	}()
}

func (s *EventState) UnbanUser(eventID, userIDToUnban string) {
	go func() {
		if err := s.events.UnbanUser(s.ctx, eventID, userIDToUnban); err != nil {
			s.logger.Error("failed to unban user", zap.Error(err), zap.String("event_id", eventID))
			return
		}
		s.logger.Info("user unbanned from event", zap.String("event_id", eventID), zap.String("user_id", userIDToUnban))
	}()
}

// LoadBannedUsers resolves the banned id list to full user records through
// the batched lookup.
func (s *EventState) LoadBannedUsers(userIDs []string) {
	go func() {
		if len(userIDs) == 0 {
			s.BannedUsers.Set([]model.User{})
			return
		}

		users, err := s.users.UsersByIDs(s.ctx, userIDs)
		if err != nil {
			s.logger.Error("failed to load banned users", zap.Error(err))
			return
		}
		s.BannedUsers.Set(users)
	}()
}
