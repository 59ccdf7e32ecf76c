package settlement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fkhayef/eventplanner/internal/database"
	"github.com/fkhayef/eventplanner/internal/event"
)

// Repository reads the event ledger and settles expenses
type Repository struct {
	db *sql.DB
	q  database.DBTX
}

// NewRepository creates a new settlement repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, q: db}
}

// WithTx runs fn with a repository bound to a single transaction
func (r *Repository) WithTx(ctx context.Context, fn func(Store) error) error {
	if r.db == nil {
		return fn(r)
	}
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		return fn(&Repository{q: tx})
	})
}

// Membership loads the event and the user's relation to it
func (r *Repository) Membership(ctx context.Context, eventID, userID int64) (*event.Membership, error) {
	return event.NewRepository(r.q).Membership(ctx, eventID, userID)
}

// ListPayments sums what each payer spent on the event's unsettled expenses
func (r *Repository) ListPayments(ctx context.Context, eventID int64) ([]*Payment, error) {
	query := `
		SELECT x.paid_by, u.username, SUM(x.amount)
		FROM expenses x
		JOIN users u ON u.id = x.paid_by
		WHERE x.event_id = $1 AND x.is_settled = FALSE
		GROUP BY x.paid_by, u.username
		ORDER BY x.paid_by
	`

	rows, err := r.q.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := []*Payment{}
	for rows.Next() {
		p := &Payment{}
		if err := rows.Scan(&p.UserID, &p.Username, &p.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// ListOpenShares returns one debt per unpaid share of an unsettled expense,
// from the share holder to the payer
func (r *Repository) ListOpenShares(ctx context.Context, eventID int64) ([]*Debt, error) {
	query := `
		SELECT s.user_id, su.username, x.paid_by, pu.username, s.share_amount
		FROM expense_participants s
		JOIN expenses x ON x.id = s.expense_id
		JOIN users su ON su.id = s.user_id
		JOIN users pu ON pu.id = x.paid_by
		WHERE x.event_id = $1
		  AND x.is_settled = FALSE
		  AND s.is_paid = FALSE
		  AND s.user_id <> x.paid_by
		ORDER BY s.id
	`

	rows, err := r.q.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list open shares: %w", err)
	}
	defer rows.Close()

	debts := []*Debt{}
	for rows.Next() {
		d := &Debt{}
		if err := rows.Scan(&d.FromID, &d.FromUsername, &d.ToID, &d.ToUsername, &d.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		debts = append(debts, d)
	}
	return debts, rows.Err()
}

// GetExpenseForUpdate retrieves an expense and locks its row
func (r *Repository) GetExpenseForUpdate(ctx context.Context, id int64) (*ExpenseRef, error) {
	query := `
		SELECT id, event_id, title, paid_by, created_by, is_settled
		FROM expenses
		WHERE id = $1
		FOR UPDATE
	`

	x := &ExpenseRef{}
	err := r.q.QueryRowContext(ctx, query, id).Scan(&x.ID, &x.EventID, &x.Title, &x.PaidByID, &x.CreatedByID, &x.IsSettled)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return x, nil
}

// MarkSettled flags an expense as settled and all its shares as paid
func (r *Repository) MarkSettled(ctx context.Context, id int64) error {
	if _, err := r.q.ExecContext(ctx, `UPDATE expenses SET is_settled = TRUE WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to settle expense: %w", err)
	}
	if _, err := r.q.ExecContext(ctx, `UPDATE expense_participants SET is_paid = TRUE WHERE expense_id = $1`, id); err != nil {
		return fmt.Errorf("failed to mark shares paid: %w", err)
	}
	return nil
}
