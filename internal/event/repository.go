package event

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/fkhayef/eventplanner/internal/database"
)

const eventFields = `
	e.id, e.owner_id, u.username, e.title, e.description, e.category, e.start_time, e.end_time,
	e.location_type, e.address, e.online_link, e.latitude, e.longitude, e.is_active,
	e.created_at, e.updated_at`

const eventFrom = `
	FROM events e
	JOIN users u ON u.id = e.owner_id`

// Repository handles event data persistence
type Repository struct {
	db database.DBTX
}

// NewRepository creates a new event repository
func NewRepository(db database.DBTX) *Repository {
	return &Repository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner, extra ...any) (*Event, error) {
	e := &Event{}
	dest := []any{
		&e.ID,
		&e.OwnerID,
		&e.OwnerUsername,
		&e.Title,
		&e.Description,
		&e.Category,
		&e.StartTime,
		&e.EndTime,
		&e.LocationType,
		&e.Address,
		&e.OnlineLink,
		&e.Latitude,
		&e.Longitude,
		&e.IsActive,
		&e.CreatedAt,
		&e.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]*Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := []*Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Create inserts a new event owned by ownerID
func (r *Repository) Create(ctx context.Context, ownerID int64, in *Input) (*Event, error) {
	query := `
		INSERT INTO events (owner_id, title, description, category, start_time, end_time,
		                    location_type, address, online_link, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		ownerID, in.Title, in.Description, string(in.Category), in.StartTime, in.EndTime,
		string(in.LocationType), in.Address, in.OnlineLink, in.Latitude, in.Longitude,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	return r.GetByID(ctx, id)
}

// GetByID retrieves an event by its ID, active or not
func (r *Repository) GetByID(ctx context.Context, id int64) (*Event, error) {
	query := `SELECT ` + eventFields + eventFrom + ` WHERE e.id = $1`

	e, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return e, nil
}

// Update replaces the editable fields of an event
func (r *Repository) Update(ctx context.Context, id int64, in *Input) (*Event, error) {
	query := `
		UPDATE events
		SET title = $2, description = $3, category = $4, start_time = $5, end_time = $6,
		    location_type = $7, address = $8, online_link = $9, latitude = $10, longitude = $11,
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		id, in.Title, in.Description, string(in.Category), in.StartTime, in.EndTime,
		string(in.LocationType), in.Address, in.OnlineLink, in.Latitude, in.Longitude,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil, nil
	}

	return r.GetByID(ctx, id)
}

// SoftDelete hides an event
func (r *Repository) SoftDelete(ctx context.Context, id int64) error {
	query := `UPDATE events SET is_active = false, updated_at = NOW() WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// ListOwned retrieves the active events owned by a user, newest start first
func (r *Repository) ListOwned(ctx context.Context, ownerID int64) ([]*Event, error) {
	query := `SELECT ` + eventFields + eventFrom + `
		WHERE e.owner_id = $1 AND e.is_active
		ORDER BY e.start_time DESC`
	return r.list(ctx, query, ownerID)
}

// ListByParticipantStatus retrieves active events where the user has a
// participant row in one of the given statuses
func (r *Repository) ListByParticipantStatus(ctx context.Context, userID int64, statuses ...string) ([]*Event, error) {
	query := `SELECT ` + eventFields + eventFrom + `
		JOIN event_participants p ON p.event_id = e.id
		WHERE p.user_id = $1 AND p.status = ANY($2) AND e.is_active
		ORDER BY e.start_time DESC`
	return r.list(ctx, query, userID, pq.Array(statuses))
}

// Membership loads an event together with how userID relates to it.
// Returns nil when the event does not exist.
func (r *Repository) Membership(ctx context.Context, eventID, userID int64) (*Membership, error) {
	query := `SELECT ` + eventFields + `, COALESCE(p.status, '')` + eventFrom + `
		LEFT JOIN event_participants p ON p.event_id = e.id AND p.user_id = $2
		WHERE e.id = $1`

	m := &Membership{}
	e, err := scanEvent(r.db.QueryRowContext(ctx, query, eventID, userID), &m.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load event membership: %w", err)
	}
	m.Event = e
	m.IsOwner = e.OwnerID == userID
	return m, nil
}
