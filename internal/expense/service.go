package expense

import (
	"context"
	"fmt"
	"strings"

	"github.com/fkhayef/eventplanner/internal/apperr"
	"github.com/fkhayef/eventplanner/internal/event"
	"github.com/fkhayef/eventplanner/internal/expense/split"
	"github.com/fkhayef/eventplanner/internal/notification"
)

// Common errors
var (
	ErrShareNotFound  = apperr.NotFound("SHARE_NOT_FOUND", "share not found")
	ErrCannotMarkPaid = apperr.Forbidden("CANNOT_MARK_PAID", "only the share holder or the payer can mark a share as paid")
	ErrPayerNotMember = apperr.Validation("paid_by_id", "the payer must be a participant of the event")
	ErrDuplicateShare = apperr.Validation("shares", "each participant can only appear once")
)

// Store is the persistence the expense service needs
type Store interface {
	WithTx(ctx context.Context, fn func(Store) error) error
	Membership(ctx context.Context, eventID, userID int64) (*event.Membership, error)
	CreateExpense(ctx context.Context, e *Expense) error
	CreateShare(ctx context.Context, s *Share) error
	ListByEvent(ctx context.Context, eventID int64) ([]*Expense, error)
	GetShareForUpdate(ctx context.Context, id int64) (*Share, error)
	MarkSharePaid(ctx context.Context, id int64) error
	CreateNotification(ctx context.Context, n *notification.Notification) error
}

// Service handles expense business logic
type Service struct {
	store        Store
	splitFactory *split.Factory
	dispatcher   *notification.Dispatcher
}

// NewService creates a new expense service with dependencies injected
func NewService(store Store, splitFactory *split.Factory, dispatcher *notification.Dispatcher) *Service {
	return &Service{
		store:        store,
		splitFactory: splitFactory,
		dispatcher:   dispatcher,
	}
}

// List returns the expenses of an event. Only members may see them.
func (s *Service) List(ctx context.Context, eventID, actorID int64) ([]*Expense, error) {
	m, err := s.store.Membership(ctx, eventID, actorID)
	if err != nil {
		return nil, err
	}
	if err := event.RequireMember(m); err != nil {
		return nil, err
	}
	return s.store.ListByEvent(ctx, eventID)
}

// Add records an expense and its shares and notifies every share holder
func (s *Service) Add(ctx context.Context, eventID, actorID int64, req *CreateExpenseRequest) (*Expense, error) {
	strategy, err := s.splitFactory.Create(split.SplitType(req.SplitType))
	if err != nil {
		return nil, apperr.Validation("split_type", err.Error())
	}

	inputs := make([]split.SplitInput, len(req.Shares))
	for i, p := range req.Shares {
		inputs[i] = p.ToSplitInput()
	}

	outputs, err := strategy.Calculate(req.Amount, req.PaidByID, inputs)
	if err != nil {
		return nil, apperr.Validation("shares", err.Error())
	}

	e := &Expense{
		EventID:     eventID,
		Title:       strings.TrimSpace(req.Title),
		Amount:      req.Amount,
		PaidByID:    req.PaidByID,
		CreatedByID: actorID,
		SplitType:   strategy.Type(),
		Shares:      make([]*Share, 0, len(outputs)),
	}
	if e.Title == "" {
		return nil, apperr.Validation("title", "title is required")
	}

	var out notification.Outbox
	err = s.store.WithTx(ctx, func(tx Store) error {
		m, err := tx.Membership(ctx, eventID, actorID)
		if err != nil {
			return err
		}
		if err := event.RequireMember(m); err != nil {
			return err
		}

		payer, err := tx.Membership(ctx, eventID, req.PaidByID)
		if err != nil {
			return err
		}
		if payer == nil || !payer.IsMember() {
			return ErrPayerNotMember
		}
		for _, o := range outputs {
			holder, err := tx.Membership(ctx, eventID, o.UserID)
			if err != nil {
				return err
			}
			if holder == nil || !holder.IsMember() {
				return apperr.Validation("shares", "every share holder must be a participant of the event").
					WithDetail("user_id", o.UserID)
			}
		}

		if err := tx.CreateExpense(ctx, e); err != nil {
			return err
		}

		for _, o := range outputs {
			share := &Share{
				ExpenseID:   e.ID,
				UserID:      o.UserID,
				ShareAmount: o.Amount,
				EventID:     eventID,
				PaidByID:    e.PaidByID,
			}
			if err := tx.CreateShare(ctx, share); err != nil {
				return err
			}
			e.Shares = append(e.Shares, share)

			if o.UserID == actorID {
				continue
			}
			n := &notification.Notification{
				UserID:         o.UserID,
				Type:           notification.TypeExpenseAdded,
				Title:          "New expense",
				Message:        fmt.Sprintf("%q was added to %q. Your share is %.2f", e.Title, m.Event.Title, o.Amount),
				RelatedEventID: &e.EventID,
				RelatedUserID:  &e.CreatedByID,
			}
			if err := tx.CreateNotification(ctx, n); err != nil {
				return err
			}
			out.Add(n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out.Flush(ctx, s.dispatcher)
	return e, nil
}

// MarkSharePaid flags a share as paid. The share holder or the payer of the
// expense may do this; repeating it is a no-op.
func (s *Service) MarkSharePaid(ctx context.Context, shareID, actorID int64) (*Share, error) {
	var share *Share
	err := s.store.WithTx(ctx, func(tx Store) error {
		var err error
		share, err = tx.GetShareForUpdate(ctx, shareID)
		if err != nil {
			return err
		}
		if share == nil {
			return ErrShareNotFound
		}
		if actorID != share.UserID && actorID != share.PaidByID {
			return ErrCannotMarkPaid
		}
		if share.IsPaid {
			return nil
		}
		if err := tx.MarkSharePaid(ctx, share.ID); err != nil {
			return err
		}
		share.IsPaid = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return share, nil
}
