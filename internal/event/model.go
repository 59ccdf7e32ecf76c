package event

import "time"

// Category classifies an event
type Category string

const (
	CategoryMeeting    Category = "meeting"
	CategoryParty      Category = "party"
	CategoryConference Category = "conference"
	CategoryTraining   Category = "training"
	CategoryOther      Category = "other"
)

// LocationType selects which location field of an event is populated
type LocationType string

const (
	LocationAddress LocationType = "address"
	LocationOnline  LocationType = "online"
	LocationMap     LocationType = "map"
)

// participant statuses as stored in event_participants
const (
	statusInvited   = "invited"
	statusAccepted  = "accepted"
	statusConfirmed = "confirmed"
)

// Event is a planned gathering owned by one user. Events are never hard
// deleted; IsActive=false hides them.
type Event struct {
	ID            int64
	OwnerID       int64
	OwnerUsername string
	Title         string
	Description   string
	Category      Category
	StartTime     time.Time
	EndTime       *time.Time
	LocationType  LocationType
	Address       string
	OnlineLink    string
	Latitude      *float64
	Longitude     *float64
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Input is a validated event form
type Input struct {
	Title        string
	Description  string
	Category     Category
	StartTime    time.Time
	EndTime      *time.Time
	LocationType LocationType
	Address      string
	OnlineLink   string
	Latitude     *float64
	Longitude    *float64
}

// Membership describes how a user relates to an event
type Membership struct {
	Event   *Event
	IsOwner bool
	// Status is the user's participant status, empty when there is no row.
	Status string
}

// CanView reports whether the user may see the event
func (m *Membership) CanView() bool {
	if m.IsOwner {
		return true
	}
	switch m.Status {
	case statusInvited, statusAccepted, statusConfirmed:
		return true
	}
	return false
}

// IsMember reports whether the user takes part in the event
func (m *Membership) IsMember() bool {
	return m.IsOwner || m.Status == statusAccepted || m.Status == statusConfirmed
}

// Role is "organizer" for the owner and the participant status otherwise
func (m *Membership) Role() string {
	if m.IsOwner {
		return "organizer"
	}
	return m.Status
}

// RequireMember checks that m refers to an active event the user belongs to
func RequireMember(m *Membership) error {
	if m == nil || !m.Event.IsActive {
		return ErrEventNotFound
	}
	if !m.IsMember() {
		return ErrNotEventMember
	}
	return nil
}

// Location is a human readable rendering of the event location
func (e *Event) Location() string {
	switch e.LocationType {
	case LocationOnline:
		return e.OnlineLink
	case LocationMap:
		if e.Latitude != nil && e.Longitude != nil {
			return formatPoint(*e.Latitude, *e.Longitude)
		}
		return ""
	default:
		return e.Address
	}
}
