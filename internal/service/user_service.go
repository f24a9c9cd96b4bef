package service

import (
	"context"
	"errors"

	"gatherly/internal/model"
	"gatherly/internal/repo"

	"go.uber.org/zap"
)

var ErrSelfFollow = errors.New("cannot follow yourself")

// Allowed profile fields for updates; anything else in the payload is
// silently dropped so counters and lists cannot be overwritten through the
// profile route.
var profileFields = map[string]string{
	"displayName": "display_name",
	"username":    "username",
	"photoUrl":    "photo_url",
	"bio":         "bio",
	"pronouns":    "pronouns",
	"link":        "link",
}

// UserService orchestrates profile and social-graph operations.
type UserService interface {
	Profile(ctx context.Context, uid string) (*model.User, error)
	UpdateProfile(ctx context.Context, uid string, updates map[string]interface{}) error
	DeleteAccount(ctx context.Context, uid string) error

	Follow(ctx context.Context, currentUserID, targetID string) error
	Unfollow(ctx context.Context, currentUserID, targetID string) error
	Followers(ctx context.Context, uid string) ([]model.User, error)
	Following(ctx context.Context, uid string) ([]model.User, error)
	UsersByIDs(ctx context.Context, ids []string) ([]model.User, error)
}

type userService struct {
	users  repo.UserRepository
	logger *zap.Logger
}

func NewUserService(users repo.UserRepository, logger *zap.Logger) UserService {
	return &userService{
		users:  users,
		logger: logger,
	}
}

func (s *userService) Profile(ctx context.Context, uid string) (*model.User, error) {
	return s.users.GetUser(ctx, uid)
}

func (s *userService) UpdateProfile(ctx context.Context, uid string, updates map[string]interface{}) error {
	filtered := make(map[string]interface{}, len(updates))
	for key, value := range updates {
		if field, ok := profileFields[key]; ok {
			filtered[field] = value
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	return s.users.UpdateUser(ctx, uid, filtered)
}

// DeleteAccount removes the user document and its credential record. Events
// the user created or joined are left as they are; nothing cascades.
func (s *userService) DeleteAccount(ctx context.Context, uid string) error {
	if err := s.users.DeleteUser(ctx, uid); err != nil {
		return err
	}
	if err := s.users.DeleteCredential(ctx, uid); err != nil {
		s.logger.Error("user deleted but credential cleanup failed", zap.Error(err), zap.String("uid", uid))
		return err
	}
	return nil
}

func (s *userService) Follow(ctx context.Context, currentUserID, targetID string) error {
	if currentUserID == targetID {
		return ErrSelfFollow
	}
	return s.users.FollowUser(ctx, currentUserID, targetID)
}

func (s *userService) Unfollow(ctx context.Context, currentUserID, targetID string) error {
	if currentUserID == targetID {
		return ErrSelfFollow
	}
	return s.users.UnfollowUser(ctx, currentUserID, targetID)
}

func (s *userService) Followers(ctx context.Context, uid string) ([]model.User, error) {
	user, err := s.users.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	return s.users.UsersByIDs(ctx, user.FollowersList)
}

func (s *userService) Following(ctx context.Context, uid string) ([]model.User, error) {
	user, err := s.users.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	return s.users.UsersByIDs(ctx, user.FollowingList)
}

func (s *userService) UsersByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	return s.users.UsersByIDs(ctx, ids)
}
