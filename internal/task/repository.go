package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fkhayef/eventplanner/internal/database"
	"github.com/fkhayef/eventplanner/internal/event"
	"github.com/fkhayef/eventplanner/internal/notification"
)

const taskSelect = `
	SELECT t.id, t.event_id, t.title, t.description, t.assigned_to, a.username,
	       t.created_by, c.username, t.due_date, t.status, t.created_at, t.updated_at
	FROM tasks t
	JOIN users c ON c.id = t.created_by
	LEFT JOIN users a ON a.id = t.assigned_to`

// Repository handles task persistence
type Repository struct {
	db *sql.DB
	q  database.DBTX
}

// NewRepository creates a new task repository
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

func scanTask(row interface{ Scan(dest ...any) error }) (*Task, error) {
	t := &Task{}
	var dueDate sql.NullTime
	err := row.Scan(
		&t.ID,
		&t.EventID,
		&t.Title,
		&t.Description,
		&t.AssignedToID,
		&t.AssignedToUsername,
		&t.CreatedByID,
		&t.CreatedByUsername,
		&dueDate,
		&t.Status,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if dueDate.Valid {
		t.DueDate = &dueDate.Time
	}
	return t, err
}

// Create inserts a new task
func (r *Repository) Create(ctx context.Context, t *Task) error {
	query := `
		INSERT INTO tasks (event_id, title, description, assigned_to, created_by, due_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRowContext(ctx, query,
		t.EventID,
		t.Title,
		t.Description,
		t.AssignedToID,
		t.CreatedByID,
		t.DueDate,
		string(t.Status),
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// ListByEvent retrieves the tasks of an event, open ones with the nearest due date first
func (r *Repository) ListByEvent(ctx context.Context, eventID int64) ([]*Task, error) {
	rows, err := r.q.QueryContext(ctx, taskSelect+`
		WHERE t.event_id = $1
		ORDER BY t.due_date ASC NULLS LAST, t.created_at, t.id`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// GetForUpdate retrieves a task and locks its row
func (r *Repository) GetForUpdate(ctx context.Context, id int64) (*Task, error) {
	t, err := scanTask(r.q.QueryRowContext(ctx, taskSelect+` WHERE t.id = $1 FOR UPDATE OF t`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

// UpdateStatus changes the status of a task
func (r *Repository) UpdateStatus(ctx context.Context, t *Task) error {
	query := `UPDATE tasks SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING updated_at`
	if err := r.q.QueryRowContext(ctx, query, string(t.Status), t.ID).Scan(&t.UpdatedAt); err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

// Delete removes a task
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}
