package event

import (
	"strconv"
	"time"
)

const timeLayout = "2006-01-02T15:04:05Z"

// EventRequest is the create/update form for an event
type EventRequest struct {
	Title         string   `json:"title" validate:"required,max=200"`
	Description   string   `json:"description" validate:"max=5000"`
	Category      string   `json:"event_type" validate:"omitempty,oneof=meeting party conference training other"`
	StartDatetime string   `json:"start_datetime" validate:"required"`
	EndDatetime   string   `json:"end_datetime"`
	LocationType  string   `json:"location_type" validate:"omitempty,oneof=address online map"`
	Address       string   `json:"address" validate:"max=500"`
	OnlineLink    string   `json:"online_link"`
	Latitude      *float64 `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude     *float64 `json:"longitude" validate:"omitempty,min=-180,max=180"`
}

// EventResponse represents the response for a single event
type EventResponse struct {
	ID            int64    `json:"id"`
	OwnerID       int64    `json:"owner_id"`
	OwnerUsername string   `json:"owner_username"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	EventType     Category `json:"event_type"`
	StartDatetime string   `json:"start_datetime"`
	EndDatetime   *string  `json:"end_datetime"`
	LocationType  string   `json:"location_type"`
	Address       string   `json:"address,omitempty"`
	OnlineLink    string   `json:"online_link,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	Location      string   `json:"location"`
	IsActive      bool     `json:"is_active"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
}

// DetailResponse is an event as seen by a specific user
type DetailResponse struct {
	Event    *EventResponse `json:"event"`
	UserRole string         `json:"user_role"`
	IsOwner  bool           `json:"is_owner"`
}

// MyEventsResponse groups the events a user is involved in
type MyEventsResponse struct {
	Organized     []*EventResponse `json:"organized"`
	Participating []*EventResponse `json:"participating"`
	Invitations   []*EventResponse `json:"invitations"`
}

// ToResponse converts an Event model to an EventResponse DTO
func (e *Event) ToResponse() *EventResponse {
	resp := &EventResponse{
		ID:            e.ID,
		OwnerID:       e.OwnerID,
		OwnerUsername: e.OwnerUsername,
		Title:         e.Title,
		Description:   e.Description,
		EventType:     e.Category,
		StartDatetime: e.StartTime.UTC().Format(timeLayout),
		LocationType:  string(e.LocationType),
		Address:       e.Address,
		OnlineLink:    e.OnlineLink,
		Latitude:      e.Latitude,
		Longitude:     e.Longitude,
		Location:      e.Location(),
		IsActive:      e.IsActive,
		CreatedAt:     e.CreatedAt.UTC().Format(timeLayout),
		UpdatedAt:     e.UpdatedAt.UTC().Format(timeLayout),
	}
	if e.EndTime != nil {
		end := e.EndTime.UTC().Format(timeLayout)
		resp.EndDatetime = &end
	}
	return resp
}

func toResponses(events []*Event) []*EventResponse {
	out := make([]*EventResponse, len(events))
	for i, e := range events {
		out[i] = e.ToResponse()
	}
	return out
}

func formatPoint(lat, lng float64) string {
	return strconv.FormatFloat(lat, 'f', 6, 64) + ", " + strconv.FormatFloat(lng, 'f', 6, 64)
}

func formatISO(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
