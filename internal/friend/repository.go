package friend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fkhayef/eventplanner/internal/database"
	"github.com/fkhayef/eventplanner/internal/notification"
	"github.com/fkhayef/eventplanner/internal/user"
)

const userColumns = `u.id, u.username, u.email, u.avatar_url, u.created_at`

const requestSelect = `
	SELECT r.id, r.from_user_id, fu.username, r.to_user_id, tu.username, r.is_accepted, r.created_at
	FROM friend_requests r
	JOIN users fu ON fu.id = r.from_user_id
	JOIN users tu ON tu.id = r.to_user_id`

const pendingPairIndex = "uniq_friend_requests_pending_pair"

// Repository handles friendship and friend request persistence
type Repository struct {
	db *sql.DB
	q  database.DBTX
}

// NewRepository creates a new friend repository
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

// GetUser retrieves a user by ID
func (r *Repository) GetUser(ctx context.Context, id int64) (*user.User, error) {
	return user.NewRepository(r.q).GetByID(ctx, id)
}

// CreateNotification stores a notification in the current transaction
func (r *Repository) CreateNotification(ctx context.Context, n *notification.Notification) error {
	return notification.NewRepository(r.q).Create(ctx, n)
}

func (r *Repository) queryUsers(ctx context.Context, query string, args ...any) ([]*user.User, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*user.User{}
	for rows.Next() {
		u := &user.User{}
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.AvatarURL, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// SearchUsers finds users whose username contains query, excluding one user
func (r *Repository) SearchUsers(ctx context.Context, query string, excludeID int64, limit int) ([]*user.User, error) {
	q := `
		SELECT ` + userColumns + `
		FROM users u
		WHERE u.username ILIKE $1 AND u.id <> $2
		ORDER BY u.username
		LIMIT $3
	`
	users, err := r.queryUsers(ctx, q, "%"+query+"%", excludeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}

// IsFriend reports whether a confirmed friendship row userID -> friendID exists
func (r *Repository) IsFriend(ctx context.Context, userID, friendID int64) (bool, error) {
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

// EnsureFriendship creates the row userID -> friendID, or confirms it when it
// already exists
func (r *Repository) EnsureFriendship(ctx context.Context, userID, friendID int64) error {
	query := `
		INSERT INTO friendships (user_id, friend_id, confirmed)
		VALUES ($1, $2, TRUE)
		ON CONFLICT (user_id, friend_id) DO UPDATE SET confirmed = TRUE
		WHERE NOT friendships.confirmed
	`
	if _, err := r.q.ExecContext(ctx, query, userID, friendID); err != nil {
		return fmt.Errorf("failed to create friendship: %w", err)
	}
	return nil
}

// DeleteFriendships removes the friendship rows in both directions
func (r *Repository) DeleteFriendships(ctx context.Context, a, b int64) error {
	query := `
		DELETE FROM friendships
		WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
	`
	if _, err := r.q.ExecContext(ctx, query, a, b); err != nil {
		return fmt.Errorf("failed to delete friendships: %w", err)
	}
	return nil
}

// ListFriends returns every user sharing a confirmed friendship row with
// userID in either direction
func (r *Repository) ListFriends(ctx context.Context, userID int64) ([]*user.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users u
		WHERE u.id IN (
			SELECT friend_id FROM friendships WHERE user_id = $1 AND confirmed
			UNION
			SELECT user_id FROM friendships WHERE friend_id = $1 AND confirmed
		)
		ORDER BY u.username
	`
	users, err := r.queryUsers(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	return users, nil
}

// ListOutgoingFriends returns the friends reachable through userID's own
// confirmed rows
func (r *Repository) ListOutgoingFriends(ctx context.Context, userID int64) ([]*user.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM friendships f
		JOIN users u ON u.id = f.friend_id
		WHERE f.user_id = $1 AND f.confirmed
		ORDER BY u.username
	`
	users, err := r.queryUsers(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	return users, nil
}

func scanRequest(row interface{ Scan(dest ...any) error }) (*Request, error) {
	req := &Request{}
	err := row.Scan(
		&req.ID,
		&req.FromUserID,
		&req.FromUsername,
		&req.ToUserID,
		&req.ToUsername,
		&req.IsAccepted,
		&req.CreatedAt,
	)
	return req, err
}

func (r *Repository) getRequest(ctx context.Context, query string, args ...any) (*Request, error) {
	req, err := scanRequest(r.q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get friend request: %w", err)
	}
	return req, nil
}

func (r *Repository) listRequests(ctx context.Context, query string, args ...any) ([]*Request, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list friend requests: %w", err)
	}
	defer rows.Close()

	reqs := []*Request{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan friend request: %w", err)
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

// LockPair takes a transaction-scoped advisory lock on the unordered pair
// (a, b). Requests between the two users are created under this lock.
func (r *Repository) LockPair(ctx context.Context, a, b int64) error {
	query := `SELECT pg_advisory_xact_lock(hashtextextended('friend:' || LEAST($1::bigint, $2::bigint) || ':' || GREATEST($1::bigint, $2::bigint), 0))`
	if _, err := r.q.ExecContext(ctx, query, a, b); err != nil {
		return fmt.Errorf("failed to lock friend pair: %w", err)
	}
	return nil
}

// GetRequestBetween retrieves the request from -> to, if any
func (r *Repository) GetRequestBetween(ctx context.Context, fromID, toID int64) (*Request, error) {
	return r.getRequest(ctx, requestSelect+` WHERE r.from_user_id = $1 AND r.to_user_id = $2 FOR UPDATE OF r`, fromID, toID)
}

// GetRequestForUpdate retrieves a request by ID and locks it
func (r *Repository) GetRequestForUpdate(ctx context.Context, id int64) (*Request, error) {
	return r.getRequest(ctx, requestSelect+` WHERE r.id = $1 FOR UPDATE OF r`, id)
}

// CreateRequest inserts a pending request
func (r *Repository) CreateRequest(ctx context.Context, req *Request) error {
	query := `
		INSERT INTO friend_requests (from_user_id, to_user_id)
		VALUES ($1, $2)
		RETURNING id, is_accepted, created_at
	`

	err := r.q.QueryRowContext(ctx, query, req.FromUserID, req.ToUserID).
		Scan(&req.ID, &req.IsAccepted, &req.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			if database.ViolatedConstraint(err) == pendingPairIndex {
				return ErrReversePending
			}
			return ErrRequestAlreadySent
		}
		return fmt.Errorf("failed to create friend request: %w", err)
	}
	return nil
}

// MarkAccepted flags a request as accepted
func (r *Repository) MarkAccepted(ctx context.Context, id int64) error {
	query := `UPDATE friend_requests SET is_accepted = TRUE WHERE id = $1`
	if _, err := r.q.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to accept friend request: %w", err)
	}
	return nil
}

// DeleteRequest removes a single request
func (r *Repository) DeleteRequest(ctx context.Context, id int64) error {
	query := `DELETE FROM friend_requests WHERE id = $1`
	if _, err := r.q.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete friend request: %w", err)
	}
	return nil
}

// DeleteRequestsBetween removes the requests in both directions
func (r *Repository) DeleteRequestsBetween(ctx context.Context, a, b int64) error {
	query := `
		DELETE FROM friend_requests
		WHERE (from_user_id = $1 AND to_user_id = $2) OR (from_user_id = $2 AND to_user_id = $1)
	`
	if _, err := r.q.ExecContext(ctx, query, a, b); err != nil {
		return fmt.Errorf("failed to delete friend requests: %w", err)
	}
	return nil
}

// ListPending returns unaccepted requests addressed to userID when incoming
// is set, or sent by userID otherwise
func (r *Repository) ListPending(ctx context.Context, userID int64, incoming bool) ([]*Request, error) {
	column := "r.from_user_id"
	if incoming {
		column = "r.to_user_id"
	}
	return r.listRequests(ctx, requestSelect+` WHERE `+column+` = $1 AND NOT r.is_accepted ORDER BY r.created_at DESC`, userID)
}

// ListInvolving returns every request sent or received by userID
func (r *Repository) ListInvolving(ctx context.Context, userID int64) ([]*Request, error) {
	return r.listRequests(ctx, requestSelect+` WHERE r.from_user_id = $1 OR r.to_user_id = $1`, userID)
}
