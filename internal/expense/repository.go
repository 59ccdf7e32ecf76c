package expense

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fkhayef/eventplanner/internal/database"
	"github.com/fkhayef/eventplanner/internal/event"
	"github.com/fkhayef/eventplanner/internal/notification"
)

const expenseSelect = `
	SELECT x.id, x.event_id, x.title, x.amount, x.paid_by, x.created_by, x.split_type, x.is_settled, x.created_at, u.username
	FROM expenses x
	JOIN users u ON u.id = x.paid_by`

const shareSelect = `
	SELECT s.id, s.expense_id, s.user_id, s.share_amount, s.is_paid, u.username, x.event_id, x.paid_by
	FROM expense_participants s
	JOIN expenses x ON x.id = s.expense_id
	JOIN users u ON u.id = s.user_id`

// Repository handles expense and share persistence
type Repository struct {
	db *sql.DB
	q  database.DBTX
}

// NewRepository creates a new expense repository
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

// CreateNotification stores a notification in the current transaction
func (r *Repository) CreateNotification(ctx context.Context, n *notification.Notification) error {
	return notification.NewRepository(r.q).Create(ctx, n)
}

// CreateExpense inserts a new expense
func (r *Repository) CreateExpense(ctx context.Context, e *Expense) error {
	query := `
		INSERT INTO expenses (event_id, title, amount, paid_by, created_by, split_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, is_settled, created_at
	`

	err := r.q.QueryRowContext(ctx, query,
		e.EventID,
		e.Title,
		e.Amount,
		e.PaidByID,
		e.CreatedByID,
		string(e.SplitType),
	).Scan(&e.ID, &e.IsSettled, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// CreateShare inserts a share of an expense
func (r *Repository) CreateShare(ctx context.Context, s *Share) error {
	query := `
		INSERT INTO expense_participants (expense_id, user_id, share_amount)
		VALUES ($1, $2, $3)
		RETURNING id, is_paid
	`

	err := r.q.QueryRowContext(ctx, query, s.ExpenseID, s.UserID, s.ShareAmount).Scan(&s.ID, &s.IsPaid)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateShare
		}
		return fmt.Errorf("failed to create share: %w", err)
	}
	return nil
}

func scanExpense(row interface{ Scan(dest ...any) error }) (*Expense, error) {
	e := &Expense{}
	err := row.Scan(
		&e.ID,
		&e.EventID,
		&e.Title,
		&e.Amount,
		&e.PaidByID,
		&e.CreatedByID,
		&e.SplitType,
		&e.IsSettled,
		&e.CreatedAt,
		&e.PaidByUsername,
	)
	return e, err
}

func scanShare(row interface{ Scan(dest ...any) error }) (*Share, error) {
	s := &Share{}
	err := row.Scan(
		&s.ID,
		&s.ExpenseID,
		&s.UserID,
		&s.ShareAmount,
		&s.IsPaid,
		&s.Username,
		&s.EventID,
		&s.PaidByID,
	)
	return s, err
}

// ListByEvent retrieves the expenses of an event, newest first, with their shares
func (r *Repository) ListByEvent(ctx context.Context, eventID int64) ([]*Expense, error) {
	rows, err := r.q.QueryContext(ctx, expenseSelect+` WHERE x.event_id = $1 ORDER BY x.created_at DESC, x.id DESC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []*Expense{}
	byID := make(map[int64]*Expense)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		e.Shares = []*Share{}
		expenses = append(expenses, e)
		byID[e.ID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	shareRows, err := r.q.QueryContext(ctx, shareSelect+` WHERE x.event_id = $1 ORDER BY s.id`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}
	defer shareRows.Close()

	for shareRows.Next() {
		s, err := scanShare(shareRows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		if e, ok := byID[s.ExpenseID]; ok {
			e.Shares = append(e.Shares, s)
		}
	}
	return expenses, shareRows.Err()
}

// GetShareForUpdate retrieves a share with its expense's event and payer and
// locks the share row
func (r *Repository) GetShareForUpdate(ctx context.Context, id int64) (*Share, error) {
	s, err := scanShare(r.q.QueryRowContext(ctx, shareSelect+` WHERE s.id = $1 FOR UPDATE OF s`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get share: %w", err)
	}
	return s, nil
}

// MarkSharePaid flags a share as paid
func (r *Repository) MarkSharePaid(ctx context.Context, id int64) error {
	query := `UPDATE expense_participants SET is_paid = TRUE WHERE id = $1`
	if _, err := r.q.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to mark share paid: %w", err)
	}
	return nil
}
