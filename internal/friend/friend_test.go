package friend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/eventplanner/internal/apperr"
	"github.com/fkhayef/eventplanner/internal/notification"
	"github.com/fkhayef/eventplanner/internal/user"
	"github.com/fkhayef/eventplanner/pkg/middleware"
)

// memStore models the friendships and friend_requests tables with maps
// keyed by (user, friend) and (from, to).
type memStore struct {
	users         map[int64]*user.User
	friendships   map[[2]int64]bool
	requests      map[[2]int64]*Request
	notifications []*notification.Notification
	nextID        int64
	// calls records pair locks and request inserts in order
	calls []string
}

func newMemStore() *memStore {
	m := &memStore{
		users:       map[int64]*user.User{},
		friendships: map[[2]int64]bool{},
		requests:    map[[2]int64]*Request{},
	}
	for id, name := range map[int64]string{1: "alice", 2: "bob", 3: "carol", 4: "alina"} {
		m.users[id] = &user.User{ID: id, Username: name, Email: name + "@example.com"}
	}
	return m
}

func (m *memStore) WithTx(_ context.Context, fn func(Store) error) error { return fn(m) }

func (m *memStore) GetUser(_ context.Context, id int64) (*user.User, error) { return m.users[id], nil }

func (m *memStore) SearchUsers(_ context.Context, query string, excludeID int64, limit int) ([]*user.User, error) {
	var out []*user.User
	for _, u := range m.users {
		if u.ID != excludeID && strings.Contains(strings.ToLower(u.Username), strings.ToLower(query)) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) IsFriend(_ context.Context, userID, friendID int64) (bool, error) {
	return m.friendships[[2]int64{userID, friendID}], nil
}

func (m *memStore) LockPair(_ context.Context, a, b int64) error {
	if a > b {
		a, b = b, a
	}
	m.calls = append(m.calls, fmt.Sprintf("lock %d:%d", a, b))
	return nil
}

func (m *memStore) EnsureFriendship(_ context.Context, userID, friendID int64) error {
	m.friendships[[2]int64{userID, friendID}] = true
	return nil
}

func (m *memStore) DeleteFriendships(_ context.Context, a, b int64) error {
	delete(m.friendships, [2]int64{a, b})
	delete(m.friendships, [2]int64{b, a})
	return nil
}

func (m *memStore) ListFriends(_ context.Context, userID int64) ([]*user.User, error) {
	seen := map[int64]bool{}
	var out []*user.User
	for key, confirmed := range m.friendships {
		if !confirmed {
			continue
		}
		var other int64
		switch userID {
		case key[0]:
			other = key[1]
		case key[1]:
			other = key[0]
		default:
			continue
		}
		if !seen[other] {
			seen[other] = true
			out = append(out, m.users[other])
		}
	}
	return out, nil
}

func (m *memStore) ListOutgoingFriends(_ context.Context, userID int64) ([]*user.User, error) {
	var out []*user.User
	for key, confirmed := range m.friendships {
		if confirmed && key[0] == userID {
			out = append(out, m.users[key[1]])
		}
	}
	return out, nil
}

func (m *memStore) GetRequestBetween(_ context.Context, fromID, toID int64) (*Request, error) {
	return m.requests[[2]int64{fromID, toID}], nil
}

func (m *memStore) GetRequestForUpdate(_ context.Context, id int64) (*Request, error) {
	for _, r := range m.requests {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (m *memStore) CreateRequest(_ context.Context, req *Request) error {
	key := [2]int64{req.FromUserID, req.ToUserID}
	if _, ok := m.requests[key]; ok {
		return ErrRequestAlreadySent
	}
	m.nextID++
	req.ID = m.nextID
	req.CreatedAt = time.Now()
	m.requests[key] = req
	m.calls = append(m.calls, fmt.Sprintf("create %d->%d", req.FromUserID, req.ToUserID))
	return nil
}

func (m *memStore) MarkAccepted(_ context.Context, id int64) error {
	for _, r := range m.requests {
		if r.ID == id {
			r.IsAccepted = true
		}
	}
	return nil
}

func (m *memStore) DeleteRequest(_ context.Context, id int64) error {
	for key, r := range m.requests {
		if r.ID == id {
			delete(m.requests, key)
		}
	}
	return nil
}

func (m *memStore) DeleteRequestsBetween(_ context.Context, a, b int64) error {
	delete(m.requests, [2]int64{a, b})
	delete(m.requests, [2]int64{b, a})
	return nil
}

func (m *memStore) ListPending(_ context.Context, userID int64, incoming bool) ([]*Request, error) {
	var out []*Request
	for _, r := range m.requests {
		if r.IsAccepted {
			continue
		}
		if (incoming && r.ToUserID == userID) || (!incoming && r.FromUserID == userID) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) ListInvolving(_ context.Context, userID int64) ([]*Request, error) {
	var out []*Request
	for _, r := range m.requests {
		if r.FromUserID == userID || r.ToUserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) CreateNotification(_ context.Context, n *notification.Notification) error {
	m.notifications = append(m.notifications, n)
	return nil
}

type recordingSink struct {
	got []*notification.Notification
}

func (s *recordingSink) Deliver(_ context.Context, n *notification.Notification) error {
	s.got = append(s.got, n)
	return nil
}

func newService(store Store) (*Service, *recordingSink) {
	sink := &recordingSink{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(store, notification.NewDispatcher(logger, sink)), sink
}

func TestSendThenAcceptIsSymmetric(t *testing.T) {
	store := newMemStore()
	svc, sink := newService(store)
	ctx := context.Background()

	sent, err := svc.SendRequest(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, sent.AlreadyFriends)
	require.Len(t, sink.got, 1)
	assert.Equal(t, notification.TypeFriendRequest, sink.got[0].Type)
	assert.Equal(t, int64(2), sink.got[0].UserID)

	_, err = svc.AcceptRequest(ctx, sent.Request.ID, 2)
	require.NoError(t, err)

	assert.True(t, store.friendships[[2]int64{1, 2}])
	assert.True(t, store.friendships[[2]int64{2, 1}])
	require.Len(t, sink.got, 2)
	assert.Equal(t, int64(1), sink.got[1].UserID)

	friends, err := svc.ListFriends(ctx, 1)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, "bob", friends[0].Username)

	// a second accept restores missing rows without notifying again
	delete(store.friendships, [2]int64{2, 1})
	_, err = svc.AcceptRequest(ctx, sent.Request.ID, 2)
	require.NoError(t, err)
	assert.True(t, store.friendships[[2]int64{2, 1}])
	assert.Len(t, sink.got, 2)
}

func TestSendRules(t *testing.T) {
	ctx := context.Background()

	t.Run("self", func(t *testing.T) {
		svc, _ := newService(newMemStore())
		_, err := svc.SendRequest(ctx, 1, 1)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, _ := newService(newMemStore())
		_, err := svc.SendRequest(ctx, 1, 99)
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})

	t.Run("twice leaves one pending request", func(t *testing.T) {
		store := newMemStore()
		svc, sink := newService(store)
		_, err := svc.SendRequest(ctx, 1, 2)
		require.NoError(t, err)

		_, err = svc.SendRequest(ctx, 1, 2)
		assert.ErrorIs(t, err, ErrRequestAlreadySent)
		assert.Len(t, store.requests, 1)
		assert.Len(t, sink.got, 1)
	})

	t.Run("already friends", func(t *testing.T) {
		store := newMemStore()
		store.friendships[[2]int64{1, 2}] = true
		svc, _ := newService(store)
		_, err := svc.SendRequest(ctx, 1, 2)
		assert.ErrorIs(t, err, ErrAlreadyFriends)
	})

	t.Run("reverse pending carries request id", func(t *testing.T) {
		store := newMemStore()
		svc, _ := newService(store)
		theirs, err := svc.SendRequest(ctx, 2, 1)
		require.NoError(t, err)

		_, err = svc.SendRequest(ctx, 1, 2)
		require.ErrorIs(t, err, ErrReversePending)
		e, ok := apperr.As(err)
		require.True(t, ok)
		assert.Equal(t, theirs.Request.ID, e.Details["request_id"])
		assert.Nil(t, ErrReversePending.Details)
	})

	t.Run("accepted request restores friendship", func(t *testing.T) {
		store := newMemStore()
		store.requests[[2]int64{1, 2}] = &Request{ID: 7, FromUserID: 1, ToUserID: 2, ToUsername: "bob", IsAccepted: true}
		svc, sink := newService(store)

		res, err := svc.SendRequest(ctx, 1, 2)
		require.NoError(t, err)
		assert.True(t, res.AlreadyFriends)
		assert.True(t, store.friendships[[2]int64{1, 2}])
		assert.True(t, store.friendships[[2]int64{2, 1}])
		assert.Empty(t, sink.got)
	})
}

func TestAcceptAndRejectRequireRecipient(t *testing.T) {
	store := newMemStore()
	svc, _ := newService(store)
	ctx := context.Background()

	sent, err := svc.SendRequest(ctx, 1, 2)
	require.NoError(t, err)

	_, err = svc.AcceptRequest(ctx, sent.Request.ID, 1)
	assert.ErrorIs(t, err, ErrNotRequestRecipient)
	assert.ErrorIs(t, svc.RejectRequest(ctx, sent.Request.ID, 3), apperr.ErrForbidden)

	_, err = svc.AcceptRequest(ctx, 99, 2)
	assert.ErrorIs(t, err, ErrRequestNotFound)

	require.NoError(t, svc.RejectRequest(ctx, sent.Request.ID, 2))
	assert.Empty(t, store.requests)
	assert.Empty(t, store.friendships)
}

func TestRemoveFriendDeletesEverything(t *testing.T) {
	store := newMemStore()
	svc, _ := newService(store)
	ctx := context.Background()

	sent, err := svc.SendRequest(ctx, 1, 2)
	require.NoError(t, err)
	_, err = svc.AcceptRequest(ctx, sent.Request.ID, 2)
	require.NoError(t, err)

	other, err := svc.RemoveFriend(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", other.Username)
	assert.Empty(t, store.friendships)
	assert.Empty(t, store.requests)

	_, err = svc.RemoveFriend(ctx, 2, 99)
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestOverview(t *testing.T) {
	store := newMemStore()
	svc, _ := newService(store)
	ctx := context.Background()

	_, err := svc.SendRequest(ctx, 1, 2)
	require.NoError(t, err)
	_, err = svc.SendRequest(ctx, 3, 1)
	require.NoError(t, err)

	o, err := svc.Overview(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, o.Friends)
	require.Len(t, o.Incoming, 1)
	assert.Equal(t, int64(3), o.Incoming[0].FromUserID)
	require.Len(t, o.Outgoing, 1)
	assert.Equal(t, int64(2), o.Outgoing[0].ToUserID)
}

func TestSearchRelations(t *testing.T) {
	store := newMemStore()
	store.users[2].Username = "bart"
	store.users[5] = &user.User{ID: 5, Username: "dan"}
	store.friendships[[2]int64{1, 2}] = true
	store.requests[[2]int64{1, 3}] = &Request{ID: 1, FromUserID: 1, ToUserID: 3}
	store.requests[[2]int64{4, 1}] = &Request{ID: 2, FromUserID: 4, ToUserID: 1}
	store.requests[[2]int64{1, 5}] = &Request{ID: 3, FromUserID: 1, ToUserID: 5, IsAccepted: true}
	svc, _ := newService(store)

	results, err := svc.Search(context.Background(), 1, "a")
	require.NoError(t, err)

	got := map[string]Relation{}
	for _, r := range results {
		got[r.User.Username] = r.Relation
	}
	assert.Equal(t, map[string]Relation{
		"bart":  RelationFriends,
		"carol": RelationSentPending,
		"alina": RelationReceivedPending,
		"dan":   RelationAcceptedNoFriendship,
	}, got)
	assert.NotContains(t, got, "alice")

	// search does not repair anything
	assert.False(t, store.friendships[[2]int64{1, 5}])

	_, err = svc.Search(context.Background(), 1, "   ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestRelation(t *testing.T) {
	pending := &Request{}
	accepted := &Request{IsAccepted: true}

	tests := []struct {
		name     string
		isFriend bool
		sent     *Request
		received *Request
		want     Relation
	}{
		{"nothing", false, nil, nil, RelationNone},
		{"friends", true, nil, nil, RelationFriends},
		{"friends with accepted request", true, accepted, nil, RelationFriends},
		{"sent", false, pending, nil, RelationSentPending},
		{"received", false, nil, pending, RelationReceivedPending},
		{"accepted without rows", false, nil, accepted, RelationAcceptedNoFriendship},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, relation(tt.isFriend, tt.sent, tt.received))
		})
	}
}

func newRouter(svc *Service, userID int64) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithUserID(req.Context(), userID)))
		})
	})
	NewHandler(svc).Register(r)
	return r
}

func TestHandlerSendConflictDetails(t *testing.T) {
	store := newMemStore()
	svc, _ := newService(store)

	rec := httptest.NewRecorder()
	newRouter(svc, 2).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/friends/request/1/", nil))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	newRouter(svc, 1).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/friends/request/2/", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "REVERSE_REQUEST_PENDING", resp.Error.Code)
	assert.Equal(t, float64(1), resp.Error.Details["request_id"])
}

func TestHandlerForInvite(t *testing.T) {
	store := newMemStore()
	store.friendships[[2]int64{1, 2}] = true
	store.friendships[[2]int64{3, 1}] = true
	svc, _ := newService(store)

	rec := httptest.NewRecorder()
	newRouter(svc, 1).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/friends/ajax/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data FriendListResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.Count)
	assert.Equal(t, "bob", resp.Data.Friends[0].Username)
}

func TestRepositoryCreateRequestDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO friend_requests")).
		WithArgs(int64(1), int64(2)).
		WillReturnError(&pq.Error{Code: "23505"})

	err = NewRepository(db).CreateRequest(context.Background(), &Request{FromUserID: 1, ToUserID: 2})
	assert.ErrorIs(t, err, ErrRequestAlreadySent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryRemoveInTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM friendships")).
		WithArgs(int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM friend_requests")).
		WithArgs(int64(1), int64(2)).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err = NewRepository(db).WithTx(context.Background(), func(tx Store) error {
		if err := tx.DeleteFriendships(context.Background(), 1, 2); err != nil {
			return err
		}
		return tx.DeleteRequestsBetween(context.Background(), 1, 2)
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendLocksPairBeforeCreating(t *testing.T) {
	store := newMemStore()
	svc, _ := newService(store)
	ctx := context.Background()

	_, err := svc.SendRequest(ctx, 2, 1)
	require.NoError(t, err)

	// the crossing request waits on the same lock and then sees the first one
	_, err = svc.SendRequest(ctx, 1, 2)
	assert.ErrorIs(t, err, ErrReversePending)

	_, err = svc.RemoveFriend(ctx, 1, 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"lock 1:2", "create 2->1", "lock 1:2", "lock 1:2"}, store.calls)
}

func TestSendRepairsUnconfirmedFriendship(t *testing.T) {
	store := newMemStore()
	store.requests[[2]int64{1, 2}] = &Request{ID: 7, FromUserID: 1, ToUserID: 2, IsAccepted: true}
	store.friendships[[2]int64{1, 2}] = false
	svc, _ := newService(store)
	ctx := context.Background()

	result, err := svc.SendRequest(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, result.AlreadyFriends)

	friends, err := svc.ListFriends(ctx, 1)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, "bob", friends[0].Username)
}

func TestRepositoryLockPair(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock(")).
		WithArgs(int64(2), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO friend_requests")).
		WithArgs(int64(2), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "is_accepted", "created_at"}).AddRow(4, false, time.Now()))
	mock.ExpectCommit()

	err = NewRepository(db).WithTx(context.Background(), func(tx Store) error {
		if err := tx.LockPair(context.Background(), 2, 1); err != nil {
			return err
		}
		return tx.CreateRequest(context.Background(), &Request{FromUserID: 2, ToUserID: 1})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCreateRequestPendingPair(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO friend_requests")).
		WithArgs(int64(1), int64(2)).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "uniq_friend_requests_pending_pair"})

	err = NewRepository(db).CreateRequest(context.Background(), &Request{FromUserID: 1, ToUserID: 2})
	assert.ErrorIs(t, err, ErrReversePending)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryEnsureFriendshipConfirmsExisting(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (user_id, friend_id) DO UPDATE SET confirmed = TRUE")).
		WithArgs(int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewRepository(db).EnsureFriendship(context.Background(), 1, 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}
