package participant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fkhayef/eventplanner/internal/database"
	"github.com/fkhayef/eventplanner/internal/event"
	"github.com/fkhayef/eventplanner/internal/notification"
	"github.com/fkhayef/eventplanner/internal/user"
)

const participantSelect = `
	SELECT p.id, p.event_id, p.user_id, u.username, p.status, p.role, p.invited_by, ib.username, p.created_at
	FROM event_participants p
	JOIN users u ON u.id = p.user_id
	LEFT JOIN users ib ON ib.id = p.invited_by`

// Repository handles participant data persistence
type Repository struct {
	db *sql.DB
	q  database.DBTX
}

// NewRepository creates a new participant repository
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

// GetUser retrieves a user by ID
func (r *Repository) GetUser(ctx context.Context, id int64) (*user.User, error) {
	return user.NewRepository(r.q).GetByID(ctx, id)
}

// CreateNotification stores a notification in the current transaction
func (r *Repository) CreateNotification(ctx context.Context, n *notification.Notification) error {
	return notification.NewRepository(r.q).Create(ctx, n)
}

// AreFriends reports whether a confirmed friendship userID -> friendID exists
func (r *Repository) AreFriends(ctx context.Context, userID, friendID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM friendships
			WHERE user_id = $1 AND friend_id = $2 AND confirmed
		)
	`

	var exists bool
	if err := r.q.QueryRowContext(ctx, query, userID, friendID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check friendship: %w", err)
	}
	return exists, nil
}

// Insert stores p unless the (event, user) pair already exists. It reports
// whether a row was created.
func (r *Repository) Insert(ctx context.Context, p *Participant) (bool, error) {
	query := `
		INSERT INTO event_participants (event_id, user_id, status, role, invited_by)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_id, user_id) DO NOTHING
		RETURNING id, created_at
	`

	err := r.q.QueryRowContext(ctx, query,
		p.EventID, p.UserID, string(p.Status), p.Role, p.InvitedBy,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create participant: %w", err)
	}
	return true, nil
}

func scanParticipant(row interface{ Scan(dest ...any) error }) (*Participant, error) {
	p := &Participant{}
	err := row.Scan(
		&p.ID,
		&p.EventID,
		&p.UserID,
		&p.Username,
		&p.Status,
		&p.Role,
		&p.InvitedBy,
		&p.InvitedByUsername,
		&p.CreatedAt,
	)
	return p, err
}

func (r *Repository) getOne(ctx context.Context, where string, args ...any) (*Participant, error) {
	query := participantSelect + ` WHERE ` + where + ` FOR UPDATE OF p`

	p, err := scanParticipant(r.q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return p, nil
}

// GetForUpdate retrieves a participant by ID and locks the row for the
// rest of the transaction
func (r *Repository) GetForUpdate(ctx context.Context, id int64) (*Participant, error) {
	return r.getOne(ctx, "p.id = $1", id)
}

// GetByEventAndUser retrieves and locks the participant row of a user in an event
func (r *Repository) GetByEventAndUser(ctx context.Context, eventID, userID int64) (*Participant, error) {
	return r.getOne(ctx, "p.event_id = $1 AND p.user_id = $2", eventID, userID)
}

// UpdateStatus sets the status of a participant
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	query := `UPDATE event_participants SET status = $2 WHERE id = $1`
	if _, err := r.q.ExecContext(ctx, query, id, string(status)); err != nil {
		return fmt.Errorf("failed to update participant status: %w", err)
	}
	return nil
}

// Delete removes a participant row
func (r *Repository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM event_participants WHERE id = $1`
	if _, err := r.q.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}
	return nil
}

// ListByEvent retrieves all participants of an event in invitation order
func (r *Repository) ListByEvent(ctx context.Context, eventID int64) ([]*Participant, error) {
	query := participantSelect + ` WHERE p.event_id = $1 ORDER BY p.created_at, p.id`

	rows, err := r.q.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	participants := []*Participant{}
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}
