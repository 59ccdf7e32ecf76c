package participant

import "time"

// Status is the state of a user's participation in an event
type Status string

const (
	StatusInvited   Status = "invited"
	StatusAccepted  Status = "accepted"
	StatusDeclined  Status = "declined"
	StatusConfirmed Status = "confirmed"
)

// DefaultRole is assigned when an invitation does not name a role
const DefaultRole = "Participant"

// Participant links a user to an event.
//
//	invited -> accepted | declined   (invitee responds)
//	invited -> deleted               (inviter cancels)
//	accepted | confirmed -> declined (participant leaves)
type Participant struct {
	ID                int64
	EventID           int64
	UserID            int64
	Username          string
	Status            Status
	Role              string
	InvitedBy         *int64
	InvitedByUsername *string
	CreatedAt         time.Time
}

// Active reports whether the participant has joined the event
func (p *Participant) Active() bool {
	return p.Status == StatusAccepted || p.Status == StatusConfirmed
}
