package notification

import "time"

// Type represents the type of notification
type Type string

const (
	TypeEventInvitation Type = "event_invitation"
	TypeFriendRequest   Type = "friend_request"
	TypeEventUpdate     Type = "event_update"
	TypeExpenseAdded    Type = "expense_added"
	TypeTaskAssigned    Type = "task_assigned"
)

// Notification is an entry in a user's inbox
type Notification struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	Type           Type      `json:"type"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	RelatedEventID *int64    `json:"related_event_id,omitempty"`
	RelatedUserID  *int64    `json:"related_user_id,omitempty"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`

	// Populated by list queries.
	EventTitle      *string `json:"-"`
	RelatedUsername *string `json:"-"`
}
