package expense

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/eventplanner/internal/apperr"
	"github.com/fkhayef/eventplanner/internal/event"
	"github.com/fkhayef/eventplanner/internal/expense/split"
	"github.com/fkhayef/eventplanner/internal/notification"
	"github.com/fkhayef/eventplanner/pkg/middleware"
)

// memStore: event 10 owned by 1; user 2 accepted, 3 invited, 4 confirmed.
type memStore struct {
	event         *event.Event
	statuses      map[int64]string
	expenses      []*Expense
	shares        map[int64]*Share
	notifications []*notification.Notification
	nextID        int64
}

func newMemStore() *memStore {
	return &memStore{
		event:    &event.Event{ID: 10, OwnerID: 1, Title: "Trip", IsActive: true},
		statuses: map[int64]string{2: "accepted", 3: "invited", 4: "confirmed"},
		shares:   map[int64]*Share{},
	}
}

func (m *memStore) WithTx(_ context.Context, fn func(Store) error) error { return fn(m) }

func (m *memStore) Membership(_ context.Context, eventID, userID int64) (*event.Membership, error) {
	if eventID != m.event.ID {
		return nil, nil
	}
	return &event.Membership{Event: m.event, IsOwner: userID == m.event.OwnerID, Status: m.statuses[userID]}, nil
}

func (m *memStore) CreateExpense(_ context.Context, e *Expense) error {
	m.nextID++
	e.ID = m.nextID
	e.CreatedAt = time.Now()
	m.expenses = append(m.expenses, e)
	return nil
}

func (m *memStore) CreateShare(_ context.Context, s *Share) error {
	m.nextID++
	s.ID = m.nextID
	m.shares[s.ID] = s
	return nil
}

func (m *memStore) ListByEvent(_ context.Context, eventID int64) ([]*Expense, error) {
	return m.expenses, nil
}

func (m *memStore) GetShareForUpdate(_ context.Context, id int64) (*Share, error) {
	return m.shares[id], nil
}

func (m *memStore) MarkSharePaid(_ context.Context, id int64) error {
	m.shares[id].IsPaid = true
	return nil
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
	return NewService(store, split.NewSplitStrategyFactory(), notification.NewDispatcher(logger, sink)), sink
}

func amount(v float64) *float64 { return &v }

func TestAddEvenSplit(t *testing.T) {
	store := newMemStore()
	svc, sink := newService(store)

	e, err := svc.Add(context.Background(), 10, 2, &CreateExpenseRequest{
		Title:     "Fuel",
		Amount:    90,
		PaidByID:  1,
		SplitType: "EVEN",
		Shares:    []*ShareInput{{UserID: 1}, {UserID: 2}, {UserID: 4}},
	})
	require.NoError(t, err)

	assert.Equal(t, split.SplitTypeEven, e.SplitType)
	assert.Equal(t, int64(2), e.CreatedByID)
	require.Len(t, e.Shares, 2)
	assert.Equal(t, int64(2), e.Shares[0].UserID)
	assert.Equal(t, 30.0, e.Shares[0].ShareAmount)
	assert.Equal(t, int64(4), e.Shares[1].UserID)

	// the creator holds a share but is not notified about their own expense
	require.Len(t, sink.got, 1)
	assert.Equal(t, int64(4), sink.got[0].UserID)
	assert.Equal(t, notification.TypeExpenseAdded, sink.got[0].Type)
	assert.Contains(t, sink.got[0].Message, "30.00")
}

func TestAddManualDefault(t *testing.T) {
	store := newMemStore()
	svc, _ := newService(store)

	e, err := svc.Add(context.Background(), 10, 1, &CreateExpenseRequest{
		Title:    "Snacks",
		Amount:   20,
		PaidByID: 1,
		Shares:   []*ShareInput{{UserID: 2, Amount: amount(5)}},
	})
	require.NoError(t, err)
	assert.Equal(t, split.SplitTypeManual, e.SplitType)
	require.Len(t, e.Shares, 1)
	assert.Equal(t, 5.0, e.Shares[0].ShareAmount)

	e, err = svc.Add(context.Background(), 10, 1, &CreateExpenseRequest{Title: "Tip", Amount: 3, PaidByID: 2})
	require.NoError(t, err)
	assert.Empty(t, e.Shares)
}

func TestAddRules(t *testing.T) {
	tests := []struct {
		name    string
		actor   int64
		req     *CreateExpenseRequest
		wantErr error
	}{
		{
			name:    "invited user is not a member",
			actor:   3,
			req:     &CreateExpenseRequest{Title: "x", Amount: 1, PaidByID: 1},
			wantErr: event.ErrNotEventMember,
		},
		{
			name:    "payer must be a member",
			actor:   1,
			req:     &CreateExpenseRequest{Title: "x", Amount: 1, PaidByID: 3},
			wantErr: ErrPayerNotMember,
		},
		{
			name:  "share holder must be a member",
			actor: 1,
			req: &CreateExpenseRequest{Title: "x", Amount: 1, PaidByID: 1,
				Shares: []*ShareInput{{UserID: 5, Amount: amount(1)}}},
			wantErr: apperr.ErrValidation,
		},
		{
			name:  "percentages must add up",
			actor: 1,
			req: &CreateExpenseRequest{Title: "x", Amount: 10, PaidByID: 1, SplitType: "PERCENTAGE",
				Shares: []*ShareInput{{UserID: 2, Percentage: amount(40)}}},
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "blank title",
			actor:   1,
			req:     &CreateExpenseRequest{Title: "   ", Amount: 1, PaidByID: 1},
			wantErr: apperr.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			svc, sink := newService(store)

			_, err := svc.Add(context.Background(), 10, tt.actor, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, store.expenses)
			assert.Empty(t, sink.got)
		})
	}
}

func TestListRequiresMembership(t *testing.T) {
	svc, _ := newService(newMemStore())

	_, err := svc.List(context.Background(), 10, 3)
	assert.ErrorIs(t, err, event.ErrNotEventMember)

	_, err = svc.List(context.Background(), 11, 1)
	assert.ErrorIs(t, err, event.ErrEventNotFound)

	list, err := svc.List(context.Background(), 10, 4)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMarkSharePaid(t *testing.T) {
	store := newMemStore()
	store.shares[7] = &Share{ID: 7, ExpenseID: 1, UserID: 2, ShareAmount: 5, PaidByID: 1, EventID: 10}
	svc, _ := newService(store)
	ctx := context.Background()

	_, err := svc.MarkSharePaid(ctx, 7, 4)
	assert.ErrorIs(t, err, ErrCannotMarkPaid)

	_, err = svc.MarkSharePaid(ctx, 8, 2)
	assert.ErrorIs(t, err, ErrShareNotFound)

	share, err := svc.MarkSharePaid(ctx, 7, 1)
	require.NoError(t, err)
	assert.True(t, share.IsPaid)

	share, err = svc.MarkSharePaid(ctx, 7, 2)
	require.NoError(t, err)
	assert.True(t, share.IsPaid)
}

func TestHandlerAdd(t *testing.T) {
	store := newMemStore()
	svc, _ := newService(store)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithUserID(req.Context(), 1)))
		})
	})
	NewHandler(svc).Register(r)

	body := `{"title":"Tickets","amount":45.5,"paid_by_id":1,"split_type":"MANUAL","shares":[{"user_id":2,"amount":20}]}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/events/10/expenses/add/", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data ExpenseResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 45.5, resp.Data.Amount)
	assert.Equal(t, "MANUAL", resp.Data.SplitType)
	require.Len(t, resp.Data.Shares, 1)
	assert.Equal(t, 20.0, resp.Data.Shares[0].ShareAmount)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/events/10/expenses/add/",
		strings.NewReader(`{"title":"Tickets","amount":0,"paid_by_id":1}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"amount"`)
}

func TestRepositoryListByEventGroupsShares(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM expenses x")).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "title", "amount", "paid_by", "created_by", "split_type", "is_settled", "created_at", "username"}).
			AddRow(2, 10, "Fuel", "90.00", 1, 1, "EVEN", false, now, "alice").
			AddRow(1, 10, "Snacks", "12.50", 2, 2, "MANUAL", true, now, "bob"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM expense_participants s")).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "expense_id", "user_id", "share_amount", "is_paid", "username", "event_id", "paid_by"}).
			AddRow(5, 2, 2, "45.00", false, "bob", 10, 1).
			AddRow(6, 2, 3, "45.00", true, "carol", 10, 1))

	expenses, err := NewRepository(db).ListByEvent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, expenses, 2)

	assert.Equal(t, 90.0, expenses[0].Amount)
	assert.Equal(t, split.SplitTypeEven, expenses[0].SplitType)
	require.Len(t, expenses[0].Shares, 2)
	assert.True(t, expenses[0].Shares[1].IsPaid)
	assert.Empty(t, expenses[1].Shares)
	assert.True(t, expenses[1].IsSettled)
	assert.NoError(t, mock.ExpectationsWereMet())
}
