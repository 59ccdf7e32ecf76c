package event

import (
	"strconv"
	"time"
)

var categoryColors = map[Category]string{
	CategoryMeeting:    "#0d6efd",
	CategoryParty:      "#dc3545",
	CategoryConference: "#198754",
	CategoryTraining:   "#ffc107",
	CategoryOther:      "#6c757d",
}

const calendarTextColor = "#ffffff"

// CalendarEvent is the event shape expected by FullCalendar
type CalendarEvent struct {
	ID            int64         `json:"id"`
	Title         string        `json:"title"`
	Start         string        `json:"start"`
	End           *string       `json:"end"`
	Description   string        `json:"description"`
	Location      string        `json:"location"`
	Type          Category      `json:"type"`
	Color         string        `json:"color"`
	TextColor     string        `json:"textColor"`
	URL           string        `json:"url"`
	ExtendedProps CalendarProps `json:"extendedProps"`

	startTime time.Time
}

// CalendarProps carries the extra fields shown in the calendar popover
type CalendarProps struct {
	Description  string   `json:"description"`
	Location     string   `json:"location"`
	LocationType string   `json:"location_type"`
	Type         Category `json:"type"`
	IsOwner      bool     `json:"is_owner"`
}

func toCalendarEvent(e *Event, isOwner bool) *CalendarEvent {
	color, ok := categoryColors[e.Category]
	if !ok {
		color = categoryColors[CategoryOther]
	}

	item := &CalendarEvent{
		ID:          e.ID,
		Title:       e.Title,
		Start:       formatISO(e.StartTime),
		Description: e.Description,
		Location:    e.Location(),
		Type:        e.Category,
		Color:       color,
		TextColor:   calendarTextColor,
		URL:         "/events/" + strconv.FormatInt(e.ID, 10) + "/",
		ExtendedProps: CalendarProps{
			Description:  e.Description,
			Location:     e.Location(),
			LocationType: string(e.LocationType),
			Type:         e.Category,
			IsOwner:      isOwner,
		},
		startTime: e.StartTime,
	}
	if e.EndTime != nil {
		end := formatISO(*e.EndTime)
		item.End = &end
	}
	return item
}
