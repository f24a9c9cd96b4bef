package state

import (
	"context"
	"sync"

	"gatherly/internal/model"
	"gatherly/internal/repo"

	"go.uber.org/zap"
)

// UserState owns the observable cells behind the profile screens: one user
// document plus an operation cell for profile mutations.
type UserState struct {
	users  repo.UserRepository
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	User      *Cell[UiState[*model.User]]
	Operation *Cell[UiState[string]]

	mu         sync.Mutex
	loadCancel context.CancelFunc
}

func NewUserState(ctx context.Context, users repo.UserRepository, logger *zap.Logger) *UserState {
	ctx, cancel := context.WithCancel(ctx)
	return &UserState{
		users:     users,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		User:      NewCell(Idle[*model.User]()),
		Operation: NewCell(Idle[string]()),
	}
}

func (s *UserState) Close() {
	s.cancel()
}

func (s *UserState) LoadUser(uid string) {
	s.mu.Lock()
	if s.loadCancel != nil {
		s.loadCancel()
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.loadCancel = cancel
	s.mu.Unlock()

	s.User.Set(Loading[*model.User]())

	sub := s.users.WatchUser(ctx, uid)
	consume(sub,
		func(user *model.User) {
			if user == nil {
				s.User.Set(Fail[*model.User]("User not found"))
				return
			}
			s.User.Set(Success(user))
		},
		func(err error) {
			s.logger.Error("error loading user", zap.Error(err), zap.String("uid", uid))
			s.User.Set(Fail[*model.User](errMessage(err, "Unknown error")))
		},
	)
}

func (s *UserState) CreateUser(user *model.User) {
	s.Operation.Set(Loading[string]())

	go func() {
		if err := s.users.CreateUser(s.ctx, user); err != nil {
			s.logger.Error("failed to create user", zap.Error(err), zap.String("uid", user.ID))
			s.Operation.Set(Fail[string](errMessage(err, "Failed to create user")))
			return
		}

		s.logger.Info("user created", zap.String("uid", user.ID))
		s.Operation.Set(Success("User created successfully"))
	}()
}

func (s *UserState) UpdateUser(uid string, updates map[string]interface{}) {
	s.Operation.Set(Loading[string]())

	go func() {
		if err := s.users.UpdateUser(s.ctx, uid, updates); err != nil {
			s.logger.Error("failed to update user", zap.Error(err), zap.String("uid", uid))
			s.Operation.Set(Fail[string](errMessage(err, "Failed to update user")))
			return
		}

		s.logger.Info("user updated", zap.String("uid", uid))
		s.Operation.Set(Success("User updated successfully"))
	}()
}

func (s *UserState) DeleteUser(uid string) {
	s.Operation.Set(Loading[string]())

	go func() {
		if err := s.users.DeleteUser(s.ctx, uid); err != nil {
			s.logger.Error("failed to delete user", zap.Error(err), zap.String("uid", uid))
			s.Operation.Set(Fail[string](errMessage(err, "Failed to delete user")))
			return
		}

		s.logger.Info("user deleted", zap.String("uid", uid))
		s.Operation.Set(Success("User deleted successfully"))
	}()
}

func (s *UserState) AddCreatedEvent(uid, eventID string) {
	go func() {
		if err := s.users.AddCreatedEvent(s.ctx, uid, eventID); err != nil {
			s.logger.Error("failed to add created event", zap.Error(err), zap.String("uid", uid))
			return
		}
		s.logger.Debug("added created event", zap.String("uid", uid), zap.String("event_id", eventID))
	}()
}

func (s *UserState) AddJoinedEvent(uid, eventID string) {
	go func() {
		if err := s.users.AddJoinedEvent(s.ctx, uid, eventID); err != nil {
			s.logger.Error("failed to add joined event", zap.Error(err), zap.String("uid", uid))
			return
		}
		s.logger.Debug("added joined event", zap.String("uid", uid), zap.String("event_id", eventID))
	}()
}

func (s *UserState) RemoveCreatedEvent(uid, eventID string) {
	go func() {
		if err := s.users.RemoveCreatedEvent(s.ctx, uid, eventID); err != nil {
			s.logger.Error("failed to remove created event", zap.Error(err), zap.String("uid", uid))
			return
		}
		s.logger.Debug("removed created event", zap.String("uid", uid), zap.String("event_id", eventID))
	}()
}

func (s *UserState) RemoveJoinedEvent(uid, eventID string) {
	go func() {
		if err := s.users.RemoveJoinedEvent(s.ctx, uid, eventID); err != nil {
			s.logger.Error("failed to remove joined event", zap.Error(err), zap.String("uid", uid))
			return
		}
		s.logger.Debug("removed joined event", zap.String("uid", uid), zap.String("event_id", eventID))
	}()
}

func (s *UserState) FollowUser(currentUserID, userToFollowID string) {
	go func() {
		if err := s.users.FollowUser(s.ctx, currentUserID, userToFollowID); err != nil {
			s.logger.Error("failed to follow user", zap.Error(err),
				zap.String("follower", currentUserID), zap.String("followee", userToFollowID))
			return
		}
		s.logger.Debug("followed user", zap.String("follower", currentUserID), zap.String("followee", userToFollowID))
	}()
}

func (s *UserState) UnfollowUser(currentUserID, userToUnfollowID string) {
	go func() {
		if err := s.users.UnfollowUser(s.ctx, currentUserID, userToUnfollowID); err != nil {
			s.logger.Error("failed to unfollow user", zap.Error(err),
				zap.String("follower", currentUserID), zap.String("followee", userToUnfollowID))
			return
		}
		s.logger.Debug("unfollowed user", zap.String("follower", currentUserID), zap.String("followee", userToUnfollowID))
	}()
}

func (s *UserState) UsersByIDs(userIDs []string) []model.User {
	users, err := s.users.UsersByIDs(s.ctx, userIDs)
	if err != nil {
		s.logger.Error("failed to get users by ids", zap.Error(err))
		return []model.User{}
	}
	return users
}

func (s *UserState) ResetOperationState() {
	s.Operation.Set(Idle[string]())
}
