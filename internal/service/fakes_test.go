package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"gatherly/internal/model"
	"gatherly/internal/repo"
	"gatherly/internal/store"
)

// memUserRepo is an in-memory user store with the same write semantics as
// the real one: follow/unfollow pair an array update with a counter update
// on each of the two documents.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
	creds map[string]*model.Credential
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		users: make(map[string]*model.User),
		creds: make(map[string]*model.Credential),
	}
}

func (m *memUserRepo) put(user *model.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

func (m *memUserRepo) WatchUser(ctx context.Context, uid string) *store.Subscription[*model.User] {
	sub, push, _ := store.Feed[*model.User](ctx)
	m.mu.Lock()
	push(m.users[uid])
	m.mu.Unlock()
	return sub
}

func (m *memUserRepo) GetUser(ctx context.Context, uid string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[uid]
	if !ok {
		return nil, repo.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (m *memUserRepo) CreateUser(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *memUserRepo) UpdateUser(ctx context.Context, uid string, updates map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[uid]
	if !ok {
		return repo.ErrUserNotFound
	}
	for field, value := range updates {
		switch field {
		case "display_name":
			user.DisplayName, _ = value.(string)
		case "username":
			user.Username, _ = value.(string)
		case "photo_url":
			user.PhotoURL, _ = value.(string)
		case "bio":
			user.Bio, _ = value.(string)
		case "pronouns":
			user.Pronouns, _ = value.(string)
		case "link":
			user.Link, _ = value.(string)
		}
	}
	return nil
}

func (m *memUserRepo) DeleteUser(ctx context.Context, uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, uid)
	return nil
}

func (m *memUserRepo) AddCreatedEvent(ctx context.Context, uid, eventID string) error {
	return m.mutateLists(uid, func(u *model.User) {
		u.EventsCreated = addToSet(u.EventsCreated, eventID)
	})
}

func (m *memUserRepo) AddJoinedEvent(ctx context.Context, uid, eventID string) error {
	return m.mutateLists(uid, func(u *model.User) {
		u.EventsJoined = addToSet(u.EventsJoined, eventID)
	})
}

func (m *memUserRepo) RemoveCreatedEvent(ctx context.Context, uid, eventID string) error {
	return m.mutateLists(uid, func(u *model.User) {
		u.EventsCreated = removeFromSet(u.EventsCreated, eventID)
	})
}

func (m *memUserRepo) RemoveJoinedEvent(ctx context.Context, uid, eventID string) error {
	return m.mutateLists(uid, func(u *model.User) {
		u.EventsJoined = removeFromSet(u.EventsJoined, eventID)
	})
}

func (m *memUserRepo) mutateLists(uid string, f func(*model.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[uid]
	if !ok {
		return repo.ErrUserNotFound
	}
	f(user)
	return nil
}

func (m *memUserRepo) UsersByIDs(ctx context.Context, userIDs []string) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.User, 0, len(userIDs))
	for _, id := range userIDs {
		if user, ok := m.users[id]; ok {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (m *memUserRepo) FollowUser(ctx context.Context, currentUserID, userToFollowID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	follower, ok := m.users[currentUserID]
	if !ok {
		return repo.ErrUserNotFound
	}
	followee, ok := m.users[userToFollowID]
	if !ok {
		return repo.ErrUserNotFound
	}
	follower.FollowingList = addToSet(follower.FollowingList, userToFollowID)
	follower.Following++
	followee.FollowersList = addToSet(followee.FollowersList, currentUserID)
	followee.Followers++
	return nil
}

func (m *memUserRepo) UnfollowUser(ctx context.Context, currentUserID, userToUnfollowID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	follower, ok := m.users[currentUserID]
	if !ok {
		return repo.ErrUserNotFound
	}
	followee, ok := m.users[userToUnfollowID]
	if !ok {
		return repo.ErrUserNotFound
	}
	follower.FollowingList = removeFromSet(follower.FollowingList, userToUnfollowID)
	follower.Following--
	followee.FollowersList = removeFromSet(followee.FollowersList, currentUserID)
	followee.Followers--
	return nil
}

func (m *memUserRepo) SaveCredential(ctx context.Context, cred *model.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *cred
	m.creds[cred.ID] = &clone
	return nil
}

func (m *memUserRepo) CredentialByEmail(ctx context.Context, email string) (*model.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cred := range m.creds {
		if strings.EqualFold(cred.Email, email) {
			clone := *cred
			return &clone, nil
		}
	}
	return nil, repo.ErrUserNotFound
}

func (m *memUserRepo) DeleteCredential(ctx context.Context, uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.creds, uid)
	return nil
}

// memEventRepo is an in-memory event store. Participant queries derive their
// answers from the user repo's joined lists, matching the real layout where
// membership lives on user documents only.
type memEventRepo struct {
	mu       sync.Mutex
	users    *memUserRepo
	events   map[string]*model.Event
	comments map[string]*model.Comment
	checkins map[string]*model.CheckIn
	nextID   int
}

func newMemEventRepo(users *memUserRepo) *memEventRepo {
	return &memEventRepo{
		users:    users,
		events:   make(map[string]*model.Event),
		comments: make(map[string]*model.Comment),
		checkins: make(map[string]*model.CheckIn),
	}
}

func (m *memEventRepo) WatchEvent(ctx context.Context, id string) *store.Subscription[*model.Event] {
	sub, push, _ := store.Feed[*model.Event](ctx)
	m.mu.Lock()
	push(m.events[id])
	m.mu.Unlock()
	return sub
}

func (m *memEventRepo) WatchAllEvents(ctx context.Context) *store.Subscription[[]model.Event] {
	sub, push, _ := store.Feed[[]model.Event](ctx)
	events, _ := m.ListEvents(ctx)
	push(events)
	return sub
}

func (m *memEventRepo) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	event, ok := m.events[id]
	if !ok {
		return nil, repo.ErrEventNotFound
	}
	clone := *event
	return &clone, nil
}

func (m *memEventRepo) ListEvents(ctx context.Context) ([]model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Event, 0, len(m.events))
	for _, event := range m.events {
		out = append(out, *event)
	}
	return out, nil
}

func (m *memEventRepo) AddEvent(ctx context.Context, event *model.Event) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	event.ID = fmt.Sprintf("event-%d", m.nextID)
	clone := *event
	m.events[event.ID] = &clone
	return event.ID, nil
}

func (m *memEventRepo) UpdateEvent(ctx context.Context, id string, event *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	event.ID = id
	clone := *event
	m.events[id] = &clone
	return nil
}

func (m *memEventRepo) DeleteEvent(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.events, id)
	return nil
}

func (m *memEventRepo) ClearEvents(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = make(map[string]*model.Event)
	return nil
}

func (m *memEventRepo) WatchComments(ctx context.Context, eventID string) *store.Subscription[[]model.Comment] {
	sub, push, _ := store.Feed[[]model.Comment](ctx)
	push(m.commentsFor(eventID))
	return sub
}

func (m *memEventRepo) commentsFor(eventID string) []model.Comment {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Comment, 0)
	for _, comment := range m.comments {
		if comment.EventID == eventID {
			out = append(out, *comment)
		}
	}
	return out
}

func (m *memEventRepo) GetComment(ctx context.Context, eventID, commentID string) (*model.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	comment, ok := m.comments[commentID]
	if !ok || comment.EventID != eventID {
		return nil, repo.ErrCommentNotFound
	}
	clone := *comment
	return &clone, nil
}

func (m *memEventRepo) PostComment(ctx context.Context, eventID string, comment *model.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	comment.ID = fmt.Sprintf("comment-%d", m.nextID)
	comment.EventID = eventID
	clone := *comment
	m.comments[comment.ID] = &clone
	return nil
}

func (m *memEventRepo) DeleteComment(ctx context.Context, eventID, commentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.comments, commentID)
	return nil
}

func (m *memEventRepo) WatchParticipantsCount(ctx context.Context, eventID string) *store.Subscription[int64] {
	sub, push, _ := store.Feed[int64](ctx)
	ids, _ := m.ParticipantIDs(ctx, eventID)
	push(int64(len(ids)))
	return sub
}

func (m *memEventRepo) ParticipantIDs(ctx context.Context, eventID string) ([]string, error) {
	m.users.mu.Lock()
	defer m.users.mu.Unlock()
	ids := make([]string, 0)
	for _, user := range m.users.users {
		if user.HasJoined(eventID) {
			ids = append(ids, user.ID)
		}
	}
	return ids, nil
}

func (m *memEventRepo) WatchCheckIns(ctx context.Context, eventID string) *store.Subscription[model.CheckInData] {
	sub, push, _ := store.Feed[model.CheckInData](ctx)
	push(m.checkInData(eventID))
	return sub
}

func (m *memEventRepo) checkInData(eventID string) model.CheckInData {
	m.mu.Lock()
	defer m.mu.Unlock()
	data := model.CheckInData{UserIDs: []string{}}
	for _, record := range m.checkins {
		if record.EventID == eventID {
			data.Count++
			data.UserIDs = append(data.UserIDs, record.UserID)
		}
	}
	return data
}

func (m *memEventRepo) CheckIn(ctx context.Context, eventID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := model.CheckInID(eventID, userID)
	m.checkins[id] = &model.CheckIn{ID: id, EventID: eventID, UserID: userID, Method: "manual"}
	return nil
}

func (m *memEventRepo) CancelCheckIn(ctx context.Context, eventID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.checkins, model.CheckInID(eventID, userID))
	return nil
}

func (m *memEventRepo) BanUser(ctx context.Context, eventID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	event, ok := m.events[eventID]
	if !ok {
		return repo.ErrEventNotFound
	}
	event.BannedUserIDs = addToSet(event.BannedUserIDs, userID)
	return nil
}

func (m *memEventRepo) UnbanUser(ctx context.Context, eventID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	event, ok := m.events[eventID]
	if !ok {
		return repo.ErrEventNotFound
	}
	event.BannedUserIDs = removeFromSet(event.BannedUserIDs, userID)
	return nil
}

func addToSet(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}

func removeFromSet(list []string, value string) []string {
	out := list[:0]
	for _, v := range list {
		if v != value {
			out = append(out, v)
		}
	}
	return out
}
