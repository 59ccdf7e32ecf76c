package participant

// InviteRequest is the optional body of a direct invite
type InviteRequest struct {
	Role string `json:"role" validate:"max=100"`
}

// InviteFriendRequest invites a friend chosen in the invite dialog
type InviteFriendRequest struct {
	FriendID int64  `json:"friend_id" validate:"required,gt=0"`
	Role     string `json:"role" validate:"max=100"`
}

// RespondRequest answers an invitation
type RespondRequest struct {
	Action string `json:"action" validate:"required,oneof=accept decline"`
}

// ParticipantResponse represents a participant row
type ParticipantResponse struct {
	ID          int64   `json:"id"`
	EventID     int64   `json:"event_id"`
	UserID      int64   `json:"user_id"`
	Username    string  `json:"username"`
	Role        string  `json:"role"`
	Status      Status  `json:"status"`
	InvitedByID *int64  `json:"invited_by_id,omitempty"`
	InvitedBy   *string `json:"invited_by,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// ToResponse converts a Participant to its API shape
func (p *Participant) ToResponse() *ParticipantResponse {
	return &ParticipantResponse{
		ID:          p.ID,
		EventID:     p.EventID,
		UserID:      p.UserID,
		Username:    p.Username,
		Role:        p.Role,
		Status:      p.Status,
		InvitedByID: p.InvitedBy,
		InvitedBy:   p.InvitedByUsername,
		CreatedAt:   p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
