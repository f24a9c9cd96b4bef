package state

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gatherly/internal/model"
	"gatherly/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeEventRepo serves canned snapshots through in-process feeds and records
// every mutation it receives.
type fakeEventRepo struct {
	mu sync.Mutex

	event    *model.Event
	events   []model.Event
	comments []model.Comment
	checkins model.CheckInData

	watchErr error
	addErr   error

	addedEvents   []model.Event
	posted        []model.Comment
	deletedIDs    []string
	checkedIn     []string
	cancelled     []string
	banned        []string
	unbanned      []string
	deletedEvents []string
}

func (f *fakeEventRepo) WatchEvent(ctx context.Context, id string) *store.Subscription[*model.Event] {
	sub, push, fail := store.Feed[*model.Event](ctx)
	if f.watchErr != nil {
		fail(f.watchErr)
	} else {
		push(f.event)
	}
	return sub
}

func (f *fakeEventRepo) WatchAllEvents(ctx context.Context) *store.Subscription[[]model.Event] {
	sub, push, fail := store.Feed[[]model.Event](ctx)
	if f.watchErr != nil {
		fail(f.watchErr)
	} else {
		push(f.events)
	}
	return sub
}

func (f *fakeEventRepo) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	return f.event, nil
}

func (f *fakeEventRepo) ListEvents(ctx context.Context) ([]model.Event, error) {
	return f.events, nil
}

func (f *fakeEventRepo) AddEvent(ctx context.Context, event *model.Event) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return "", f.addErr
	}
	event.ID = "generated-id"
	f.addedEvents = append(f.addedEvents, *event)
	return event.ID, nil
}

func (f *fakeEventRepo) UpdateEvent(ctx context.Context, id string, event *model.Event) error {
	return nil
}

func (f *fakeEventRepo) DeleteEvent(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedEvents = append(f.deletedEvents, id)
	return nil
}

func (f *fakeEventRepo) ClearEvents(ctx context.Context) error { return nil }

func (f *fakeEventRepo) WatchComments(ctx context.Context, eventID string) *store.Subscription[[]model.Comment] {
	sub, push, _ := store.Feed[[]model.Comment](ctx)
	push(f.comments)
	return sub
}

func (f *fakeEventRepo) GetComment(ctx context.Context, eventID, commentID string) (*model.Comment, error) {
	return nil, store.ErrNotFound
}

func (f *fakeEventRepo) PostComment(ctx context.Context, eventID string, comment *model.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posted = append(f.posted, *comment)
	return nil
}

func (f *fakeEventRepo) DeleteComment(ctx context.Context, eventID, commentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedIDs = append(f.deletedIDs, commentID)
	return nil
}

func (f *fakeEventRepo) WatchParticipantsCount(ctx context.Context, eventID string) *store.Subscription[int64] {
	sub, push, _ := store.Feed[int64](ctx)
	push(int64(len(f.checkins.UserIDs)))
	return sub
}

func (f *fakeEventRepo) ParticipantIDs(ctx context.Context, eventID string) ([]string, error) {
	return f.checkins.UserIDs, nil
}

func (f *fakeEventRepo) WatchCheckIns(ctx context.Context, eventID string) *store.Subscription[model.CheckInData] {
	sub, push, _ := store.Feed[model.CheckInData](ctx)
	push(f.checkins)
	return sub
}

func (f *fakeEventRepo) CheckIn(ctx context.Context, eventID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkedIn = append(f.checkedIn, userID)
	return nil
}

func (f *fakeEventRepo) CancelCheckIn(ctx context.Context, eventID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, userID)
	return nil
}

func (f *fakeEventRepo) BanUser(ctx context.Context, eventID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.banned = append(f.banned, userID)
	return nil
}

func (f *fakeEventRepo) UnbanUser(ctx context.Context, eventID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unbanned = append(f.unbanned, userID)
	return nil
}

func (f *fakeEventRepo) postedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.posted)
}

func awaitPhase[T any](t *testing.T, cell *Cell[UiState[T]], phase Phase) UiState[T] {
	t.Helper()
	var got UiState[T]
	require.Eventually(t, func() bool {
		got = cell.Get()
		return got.Phase == phase
	}, 2*time.Second, 10*time.Millisecond)
	return got
}

func newEventStateForTest(t *testing.T, events *fakeEventRepo, users *fakeUserRepo) *EventState {
	t.Helper()
	if users == nil {
		users = &fakeUserRepo{}
	}
	s := NewEventState(context.Background(), events, users, zap.NewNop())
	t.Cleanup(s.Close)
	return s
}

func TestLoadEventSuccess(t *testing.T) {
	repo := &fakeEventRepo{event: &model.Event{ID: "e1", Title: "Garden party"}}
	s := newEventStateForTest(t, repo, nil)

	s.LoadEvent("e1")

	got := awaitPhase(t, s.Event, PhaseSuccess)
	require.NotNil(t, got.Value)
	assert.Equal(t, "Garden party", got.Value.Title)
}

func TestLoadEventMissing(t *testing.T) {
	repo := &fakeEventRepo{event: nil}
	s := newEventStateForTest(t, repo, nil)

	s.LoadEvent("missing")

	got := awaitPhase(t, s.Event, PhaseError)
	assert.Equal(t, "Event not found", got.Message)
}

func TestLoadEventWatchError(t *testing.T) {
	repo := &fakeEventRepo{watchErr: errors.New("stream broke")}
	s := newEventStateForTest(t, repo, nil)

	s.LoadEvent("e1")

	got := awaitPhase(t, s.Event, PhaseError)
	assert.Equal(t, "stream broke", got.Message)
}

func TestLoadAllEvents(t *testing.T) {
	repo := &fakeEventRepo{events: []model.Event{{ID: "e1"}, {ID: "e2"}}}
	s := newEventStateForTest(t, repo, nil)

	s.LoadAllEvents()

	got := awaitPhase(t, s.Events, PhaseSuccess)
	assert.Len(t, got.Value, 2)
}

func TestSaveEventCallsBackExactlyOnce(t *testing.T) {
	repo := &fakeEventRepo{}
	s := newEventStateForTest(t, repo, nil)

	ids := make(chan string, 2)
	s.SaveEvent(&model.Event{Title: "New"}, func(id string) { ids <- id }, func(error) {
		t.Error("onError fired for a successful save")
	})

	select {
	case id := <-ids:
		assert.Equal(t, "generated-id", id)
	case <-time.After(2 * time.Second):
		t.Fatal("onSuccess never fired")
	}

	got := awaitPhase(t, s.Operation, PhaseSuccess)
	assert.Equal(t, "Event saved successfully", got.Value)

	select {
	case <-ids:
		t.Fatal("onSuccess fired twice")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSaveEventFailure(t *testing.T) {
	repo := &fakeEventRepo{addErr: errors.New("write refused")}
	s := newEventStateForTest(t, repo, nil)

	errs := make(chan error, 1)
	s.SaveEvent(&model.Event{}, func(string) {
		t.Error("onSuccess fired for a failed save")
	}, func(err error) { errs <- err })

	select {
	case err := <-errs:
		assert.EqualError(t, err, "write refused")
	case <-time.After(2 * time.Second):
		t.Fatal("onError never fired")
	}

	got := awaitPhase(t, s.Operation, PhaseError)
	assert.Equal(t, "write refused", got.Message)
}

func TestDeleteEventReportsResult(t *testing.T) {
	repo := &fakeEventRepo{}
	s := newEventStateForTest(t, repo, nil)

	results := make(chan bool, 1)
	s.DeleteEvent("e1", func(ok bool) { results <- ok })

	select {
	case ok := <-results:
		assert.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("onResult never fired")
	}
}

func TestPostCommentEmptyTextIsNoOp(t *testing.T) {
	repo := &fakeEventRepo{}
	s := newEventStateForTest(t, repo, nil)

	s.PostComment("e1", "u1", "Sam", "", nil)
	s.PostComment("e1", "u1", "Sam", "   \t\n", nil)

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, repo.postedCount())
}

func TestPostCommentTrimsText(t *testing.T) {
	repo := &fakeEventRepo{}
	s := newEventStateForTest(t, repo, nil)

	s.PostComment("e1", "u1", "Sam", "  hello  ", nil)

	require.Eventually(t, func() bool { return repo.postedCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Equal(t, "hello", repo.posted[0].Text)
	assert.Equal(t, "u1", repo.posted[0].UserID)
}

func TestStartCommentsDeliversSnapshot(t *testing.T) {
	repo := &fakeEventRepo{comments: []model.Comment{{ID: "c1", Text: "first"}}}
	s := newEventStateForTest(t, repo, nil)

	s.StartComments("e1")

	got := awaitPhase(t, s.Comments, PhaseSuccess)
	require.Len(t, got.Value, 1)
	assert.Equal(t, "first", got.Value[0].Text)
}

func TestStartCheckInsDerivesArrivedAndCheckedIn(t *testing.T) {
	repo := &fakeEventRepo{checkins: model.CheckInData{Count: 2, UserIDs: []string{"u1", "u2"}}}
	s := newEventStateForTest(t, repo, nil)

	s.StartCheckIns("e1", "u1")

	require.Eventually(t, func() bool { return s.Arrived.Get() == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.True(t, s.CheckedIn.Get())
}

func TestStartCheckInsWithoutViewer(t *testing.T) {
	repo := &fakeEventRepo{checkins: model.CheckInData{Count: 1, UserIDs: []string{"u2"}}}
	s := newEventStateForTest(t, repo, nil)

	s.StartCheckIns("e1", "")

	require.Eventually(t, func() bool { return s.Arrived.Get() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.False(t, s.CheckedIn.Get())
}

func TestLoadBannedUsers(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*model.User{
		"u1": {ID: "u1", DisplayName: "Banned One"},
	}}
	s := newEventStateForTest(t, &fakeEventRepo{}, users)

	s.LoadBannedUsers([]string{"u1"})

	require.Eventually(t, func() bool { return len(s.BannedUsers.Get()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "Banned One", s.BannedUsers.Get()[0].DisplayName)
}

func TestLoadBannedUsersEmpty(t *testing.T) {
	s := newEventStateForTest(t, &fakeEventRepo{}, nil)

	s.LoadBannedUsers(nil)

	require.Eventually(t, func() bool {
		banned := s.BannedUsers.Get()
		return banned != nil && len(banned) == 0
	}, 2*time.Second, 10*time.Millisecond)
}
