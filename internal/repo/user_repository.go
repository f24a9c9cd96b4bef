package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gatherly/internal/model"
	"gatherly/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrInvalidUserID = errors.New("invalid user id: cannot be empty")
)

const (
	usersCollection       = "users"
	credentialsCollection = "credentials"

	// The store limits how many ids a single "in" query may carry; longer
	// id lists are fetched in batches of this size.
	lookupBatchSize = 10
)

// UserRepository is the façade over user documents and their credential
// records. FollowUser/UnfollowUser issue two independent writes with no
// atomicity across the pair: a failure after the first write leaves the
// social graph inconsistent until the operation is repeated.
type UserRepository interface {
	WatchUser(ctx context.Context, uid string) *store.Subscription[*model.User]
	GetUser(ctx context.Context, uid string) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User) error
	UpdateUser(ctx context.Context, uid string, updates map[string]interface{}) error
	DeleteUser(ctx context.Context, uid string) error

	AddCreatedEvent(ctx context.Context, uid, eventID string) error
	AddJoinedEvent(ctx context.Context, uid, eventID string) error
	RemoveCreatedEvent(ctx context.Context, uid, eventID string) error
	RemoveJoinedEvent(ctx context.Context, uid, eventID string) error

	UsersByIDs(ctx context.Context, userIDs []string) ([]model.User, error)

	FollowUser(ctx context.Context, currentUserID, userToFollowID string) error
	UnfollowUser(ctx context.Context, currentUserID, userToUnfollowID string) error

	SaveCredential(ctx context.Context, cred *model.Credential) error
	CredentialByEmail(ctx context.Context, email string) (*model.Credential, error)
	DeleteCredential(ctx context.Context, uid string) error
}

type userRepository struct {
	users       *store.Repository[model.User]
	credentials *store.Repository[model.Credential]
	logger      *zap.Logger
}

func NewUserRepository(con *mongo.Database, logger *zap.Logger) UserRepository {
	return &userRepository{
		users:       store.NewRepository[model.User](con, usersCollection),
		credentials: store.NewRepository[model.Credential](con, credentialsCollection),
		logger:      logger,
	}
}

func (r *userRepository) WatchUser(ctx context.Context, uid string) *store.Subscription[*model.User] {
	return store.WatchOne(ctx, r.users, uid)
}

func (r *userRepository) GetUser(ctx context.Context, uid string) (*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultReadTimeout)
	defer cancel()

	user, err := r.users.FindByID(ctx, uid)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user failed: %w", err)
	}
	return user, nil
}

func (r *userRepository) CreateUser(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		return ErrInvalidUserID
	}

	ctx, cancel := context.WithTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.Bio == "" {
		user.Bio = "I have a bio now!"
	}

	if err := r.users.Replace(ctx, user.ID, *user); err != nil {
		r.logger.Error("failed to create user", zap.Error(err), zap.String("uid", user.ID))
		return fmt.Errorf("create user failed: %w", err)
	}

	r.logger.Info("user created", zap.String("uid", user.ID))
	return nil
}

func (r *userRepository) UpdateUser(ctx context.Context, uid string, updates map[string]interface{}) error {
	if uid == "" {
		return ErrInvalidUserID
	}

	ctx, cancel := context.WithTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	fields := bson.M{}
	for k, v := range updates {
		fields[k] = v
	}

	if _, err := r.users.SetByID(ctx, uid, fields); err != nil {
		r.logger.Error("failed to update user", zap.Error(err), zap.String("uid", uid))
		return fmt.Errorf("update user failed: %w", err)
	}
	return nil
}

func (r *userRepository) DeleteUser(ctx context.Context, uid string) error {
	if uid == "" {
		return ErrInvalidUserID
	}

	ctx, cancel := context.WithTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	if _, err := r.users.DeleteByID(ctx, uid); err != nil {
		return fmt.Errorf("delete user failed: %w", err)
	}
	return nil
}

func (r *userRepository) AddCreatedEvent(ctx context.Context, uid, eventID string) error {
	return r.updateEventList(ctx, uid, bson.M{"$addToSet": bson.M{"events_created": eventID}})
}

func (r *userRepository) AddJoinedEvent(ctx context.Context, uid, eventID string) error {
	return r.updateEventList(ctx, uid, bson.M{"$addToSet": bson.M{"events_joined": eventID}})
}

func (r *userRepository) RemoveCreatedEvent(ctx context.Context, uid, eventID string) error {
	return r.updateEventList(ctx, uid, bson.M{"$pull": bson.M{"events_created": eventID}})
}

func (r *userRepository) RemoveJoinedEvent(ctx context.Context, uid, eventID string) error {
	return r.updateEventList(ctx, uid, bson.M{"$pull": bson.M{"events_joined": eventID}})
}

func (r *userRepository) updateEventList(ctx context.Context, uid string, update bson.M) error {
	if uid == "" {
		return ErrInvalidUserID
	}

	ctx, cancel := context.WithTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	if _, err := r.users.UpdateByID(ctx, uid, update); err != nil {
		return fmt.Errorf("update event list failed: %w", err)
	}
	return nil
}

// UsersByIDs fetches user records in batches of lookupBatchSize, concatenating
// the results. The first failing batch aborts the whole call: nothing fetched
// so far is returned.
func (r *userRepository) UsersByIDs(ctx context.Context, userIDs []string) ([]model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultReadTimeout)
	defer cancel()

	users, err := lookupInBatches(ctx, userIDs, lookupBatchSize, func(ctx context.Context, chunk []string) ([]model.User, error) {
		filter := store.NewFilter().In("_id", chunk).Build()
		return r.users.FindAll(ctx, filter, nil)
	})
	if err != nil {
		r.logger.Error("batched user lookup failed", zap.Error(err))
		return nil, fmt.Errorf("users by ids failed: %w", err)
	}
	return users, nil
}

// lookupInBatches runs find once per chunk and concatenates the results. The
// first failing chunk aborts the whole lookup; nothing partial is returned.
func lookupInBatches(ctx context.Context, ids []string, size int, find func(context.Context, []string) ([]model.User, error)) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}

	all := make([]model.User, 0, len(ids))
	for _, chunk := range chunkIDs(ids, size) {
		users, err := find(ctx, chunk)
		if err != nil {
			return nil, err
		}
		all = append(all, users...)
	}
	return all, nil
}

// chunkIDs splits ids into slices of at most size elements, preserving order.
func chunkIDs(ids []string, size int) [][]string {
	if size <= 0 {
		return [][]string{ids}
	}

	chunks := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

// FollowUser adds the target to the caller's following list, then the caller
// to the target's followers list. Each write pairs the array update with an
// atomic counter increment so the counter always equals the list length on
// its own document.
func (r *userRepository) FollowUser(ctx context.Context, currentUserID, userToFollowID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	_, err := r.users.UpdateByID(ctx, currentUserID, bson.M{
		"$addToSet": bson.M{"following_list": userToFollowID},
		"$inc":      bson.M{"following": 1},
	})
	if err != nil {
		return fmt.Errorf("follow user failed: %w", err)
	}

	_, err = r.users.UpdateByID(ctx, userToFollowID, bson.M{
		"$addToSet": bson.M{"followers_list": currentUserID},
		"$inc":      bson.M{"followers": 1},
	})
	if err != nil {
		// The first write already applied; the graph stays inconsistent
		// until a follow or unfollow on the same pair succeeds.
		r.logger.Error("follow second write failed",
			zap.Error(err),
			zap.String("follower", currentUserID),
			zap.String("followee", userToFollowID),
		)
		return fmt.Errorf("follow user failed: %w", err)
	}
	return nil
}

// UnfollowUser is the exact inverse of FollowUser on the same pair.
func (r *userRepository) UnfollowUser(ctx context.Context, currentUserID, userToUnfollowID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	_, err := r.users.UpdateByID(ctx, currentUserID, bson.M{
		"$pull": bson.M{"following_list": userToUnfollowID},
		"$inc":  bson.M{"following": -1},
	})
	if err != nil {
		return fmt.Errorf("unfollow user failed: %w", err)
	}

	_, err = r.users.UpdateByID(ctx, userToUnfollowID, bson.M{
		"$pull": bson.M{"followers_list": currentUserID},
		"$inc":  bson.M{"followers": -1},
	})
	if err != nil {
		r.logger.Error("unfollow second write failed",
			zap.Error(err),
			zap.String("follower", currentUserID),
			zap.String("followee", userToUnfollowID),
		)
		return fmt.Errorf("unfollow user failed: %w", err)
	}
	return nil
}

func (r *userRepository) SaveCredential(ctx context.Context, cred *model.Credential) error {
	ctx, cancel := context.WithTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = time.Now().UTC()
	}

	if err := r.credentials.Replace(ctx, cred.ID, *cred); err != nil {
		return fmt.Errorf("save credential failed: %w", err)
	}
	return nil
}

func (r *userRepository) CredentialByEmail(ctx context.Context, email string) (*model.Credential, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultReadTimeout)
	defer cancel()

	cred, err := r.credentials.FindOne(ctx, store.NewFilter().Eq("email", email).Build())
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("credential lookup failed: %w", err)
	}
	return cred, nil
}

func (r *userRepository) DeleteCredential(ctx context.Context, uid string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	if _, err := r.credentials.DeleteByID(ctx, uid); err != nil {
		return fmt.Errorf("delete credential failed: %w", err)
	}
	return nil
}
