package notification

// NotificationResponse is the API shape of a notification
type NotificationResponse struct {
	ID              int64   `json:"id"`
	Type            Type    `json:"type"`
	Title           string  `json:"title"`
	Message         string  `json:"message"`
	RelatedEventID  *int64  `json:"related_event_id,omitempty"`
	EventTitle      *string `json:"event_title,omitempty"`
	RelatedUserID   *int64  `json:"related_user_id,omitempty"`
	RelatedUsername *string `json:"related_username,omitempty"`
	IsRead          bool    `json:"is_read"`
	CreatedAt       string  `json:"created_at"`
}

// FeedResponse is returned by the notification feed endpoint
type FeedResponse struct {
	Notifications []*NotificationResponse `json:"notifications"`
	UnreadCount   int                     `json:"unread_count"`
}

// CountResponse reports how many notifications an operation touched
type CountResponse struct {
	Count int `json:"count"`
}

// ToResponse converts a Notification to its API shape
func (n *Notification) ToResponse() *NotificationResponse {
	return &NotificationResponse{
		ID:              n.ID,
		Type:            n.Type,
		Title:           n.Title,
		Message:         n.Message,
		RelatedEventID:  n.RelatedEventID,
		EventTitle:      n.EventTitle,
		RelatedUserID:   n.RelatedUserID,
		RelatedUsername: n.RelatedUsername,
		IsRead:          n.IsRead,
		CreatedAt:       n.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
