package settlement

import (
	"context"

	"github.com/fkhayef/eventplanner/internal/apperr"
	"github.com/fkhayef/eventplanner/internal/event"
)

// Common errors
var (
	ErrExpenseNotFound = apperr.NotFound("EXPENSE_NOT_FOUND", "expense not found")
	ErrCannotSettle    = apperr.Forbidden("CANNOT_SETTLE", "only the payer or the creator can settle an expense")
)

// Store is the persistence the settlement service needs
type Store interface {
	WithTx(ctx context.Context, fn func(Store) error) error
	Membership(ctx context.Context, eventID, userID int64) (*event.Membership, error)
	ListPayments(ctx context.Context, eventID int64) ([]*Payment, error)
	ListOpenShares(ctx context.Context, eventID int64) ([]*Debt, error)
	GetExpenseForUpdate(ctx context.Context, id int64) (*ExpenseRef, error)
	MarkSettled(ctx context.Context, id int64) error
}

// Service computes balances and settles expenses
type Service struct {
	store Store
}

// NewService creates a new settlement service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// EventBalances returns who owes whom within an event
func (s *Service) EventBalances(ctx context.Context, eventID, actorID int64) (*Balances, error) {
	m, err := s.store.Membership(ctx, eventID, actorID)
	if err != nil {
		return nil, err
	}
	if err := event.RequireMember(m); err != nil {
		return nil, err
	}

	payments, err := s.store.ListPayments(ctx, eventID)
	if err != nil {
		return nil, err
	}
	shares, err := s.store.ListOpenShares(ctx, eventID)
	if err != nil {
		return nil, err
	}

	return Compute(eventID, payments, shares), nil
}

// SettleExpense closes an expense and marks all its shares paid.
// Settling an already settled expense succeeds without changes.
func (s *Service) SettleExpense(ctx context.Context, expenseID, actorID int64) (*ExpenseRef, error) {
	var x *ExpenseRef
	err := s.store.WithTx(ctx, func(tx Store) error {
		var err error
		x, err = tx.GetExpenseForUpdate(ctx, expenseID)
		if err != nil {
			return err
		}
		if x == nil {
			return ErrExpenseNotFound
		}
		if actorID != x.PaidByID && actorID != x.CreatedByID {
			return ErrCannotSettle
		}
		if x.IsSettled {
			return nil
		}
		if err := tx.MarkSettled(ctx, x.ID); err != nil {
			return err
		}
		x.IsSettled = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return x, nil
}
