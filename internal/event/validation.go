package event

import (
	"strings"
	"time"

	"github.com/fkhayef/eventplanner/internal/apperr"
	"github.com/fkhayef/eventplanner/pkg/request"
)

// accepted date-time inputs, including the HTML datetime-local format
var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

func parseDateTime(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperr.Validation(field, field+" must be a date-time such as 2026-05-01T18:30")
}

// Validate checks the form and returns the normalized input. Location fields
// that do not belong to the selected location type are cleared.
func (req *EventRequest) Validate() (*Input, error) {
	if err := request.Validate(req); err != nil {
		return nil, err
	}

	in := &Input{
		Title:        strings.TrimSpace(req.Title),
		Description:  strings.TrimSpace(req.Description),
		Category:     Category(req.Category),
		LocationType: LocationType(req.LocationType),
	}
	if in.Title == "" {
		return nil, apperr.Validation("title", "title is required")
	}
	if in.Category == "" {
		in.Category = CategoryMeeting
	}
	if in.LocationType == "" {
		in.LocationType = LocationAddress
	}

	start, err := parseDateTime("start_datetime", req.StartDatetime)
	if err != nil {
		return nil, err
	}
	in.StartTime = start

	if strings.TrimSpace(req.EndDatetime) != "" {
		end, err := parseDateTime("end_datetime", req.EndDatetime)
		if err != nil {
			return nil, err
		}
		if end.Before(start) {
			return nil, apperr.Validation("end_datetime", "end_datetime must not be before start_datetime")
		}
		in.EndTime = &end
	}

	switch in.LocationType {
	case LocationAddress:
		in.Address = strings.TrimSpace(req.Address)
		if in.Address == "" {
			return nil, apperr.Validation("address", "address is required when location_type is address")
		}
	case LocationOnline:
		in.OnlineLink = strings.TrimSpace(req.OnlineLink)
		if in.OnlineLink == "" {
			return nil, apperr.Validation("online_link", "online_link is required when location_type is online")
		}
		if err := request.ValidateField("online_link", in.OnlineLink, "url"); err != nil {
			return nil, err
		}
	case LocationMap:
		if req.Latitude == nil {
			return nil, apperr.Validation("latitude", "latitude is required when location_type is map")
		}
		if req.Longitude == nil {
			return nil, apperr.Validation("longitude", "longitude is required when location_type is map")
		}
		in.Latitude = req.Latitude
		in.Longitude = req.Longitude
	}

	return in, nil
}
