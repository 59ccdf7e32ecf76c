package notification

import (
	"context"

	"github.com/fkhayef/eventplanner/internal/apperr"
)

// Common errors
var (
	ErrNotificationNotFound = apperr.NotFound("NOTIFICATION_NOT_FOUND", "notification not found")
	ErrNotRecipient         = apperr.Forbidden("NOT_RECIPIENT", "not the recipient of this notification")
)

const (
	defaultFeedLimit = 20
	maxFeedLimit     = 100
)

// Store is the persistence the notification service needs.
type Store interface {
	GetByID(ctx context.Context, id int64) (*Notification, error)
	ListRecent(ctx context.Context, userID int64, limit int) ([]*Notification, error)
	MarkAsRead(ctx context.Context, id int64) error
	MarkAllAsRead(ctx context.Context, userID int64) (int, error)
	DeleteAll(ctx context.Context, userID int64) (int, error)
	GetUnreadCount(ctx context.Context, userID int64) (int, error)
}

// Service handles notification business logic
type Service struct {
	repo Store
}

// NewService creates a new notification service
func NewService(repo Store) *Service {
	return &Service{repo: repo}
}

// Feed returns the most recent notifications of a user. With markRead set,
// every notification of the user is marked read after the page is loaded,
// and the returned unread count reflects that.
func (s *Service) Feed(ctx context.Context, userID int64, limit int, markRead bool) ([]*Notification, int, error) {
	if limit < 1 {
		limit = defaultFeedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}

	notifications, err := s.repo.ListRecent(ctx, userID, limit)
	if err != nil {
		return nil, 0, err
	}

	if markRead {
		if _, err := s.repo.MarkAllAsRead(ctx, userID); err != nil {
			return nil, 0, err
		}
	}

	unread, err := s.repo.GetUnreadCount(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return notifications, unread, nil
}

// MarkAsRead marks a single notification of the actor as read
func (s *Service) MarkAsRead(ctx context.Context, id, actorID int64) error {
	notification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if notification == nil {
		return ErrNotificationNotFound
	}
	if notification.UserID != actorID {
		return ErrNotRecipient
	}

	return s.repo.MarkAsRead(ctx, id)
}

// MarkAllAsRead marks all notifications as read and reports how many changed
func (s *Service) MarkAllAsRead(ctx context.Context, actorID int64) (int, error) {
	return s.repo.MarkAllAsRead(ctx, actorID)
}

// Clear deletes all notifications of the actor and reports how many were removed
func (s *Service) Clear(ctx context.Context, actorID int64) (int, error) {
	return s.repo.DeleteAll(ctx, actorID)
}

// GetUnreadCount returns the count of unread notifications
func (s *Service) GetUnreadCount(ctx context.Context, actorID int64) (int, error) {
	return s.repo.GetUnreadCount(ctx, actorID)
}
