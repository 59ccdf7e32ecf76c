package event

import (
	"context"
	"sort"

	"github.com/fkhayef/eventplanner/internal/apperr"
)

// Common errors
var (
	ErrEventNotFound     = apperr.NotFound("EVENT_NOT_FOUND", "event not found")
	ErrNotEventOwner     = apperr.Forbidden("NOT_EVENT_OWNER", "only the organizer can change this event")
	ErrEventAccessDenied = apperr.Forbidden("EVENT_ACCESS_DENIED", "you do not have access to this event")
	ErrNotEventMember    = apperr.Forbidden("NOT_EVENT_MEMBER", "only event participants can do this")
)

// Store is the persistence the event service needs.
type Store interface {
	Create(ctx context.Context, ownerID int64, in *Input) (*Event, error)
	Update(ctx context.Context, id int64, in *Input) (*Event, error)
	SoftDelete(ctx context.Context, id int64) error
	ListOwned(ctx context.Context, ownerID int64) ([]*Event, error)
	ListByParticipantStatus(ctx context.Context, userID int64, statuses ...string) ([]*Event, error)
	Membership(ctx context.Context, eventID, userID int64) (*Membership, error)
}

// Service handles event business logic
type Service struct {
	repo Store
}

// NewService creates a new event service
func NewService(repo Store) *Service {
	return &Service{repo: repo}
}

// Create validates the form and stores a new event owned by the actor
func (s *Service) Create(ctx context.Context, actorID int64, req *EventRequest) (*Event, error) {
	in, err := req.Validate()
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, actorID, in)
}

// Get returns an active event the actor may view
func (s *Service) Get(ctx context.Context, eventID, actorID int64) (*Membership, error) {
	m, err := s.repo.Membership(ctx, eventID, actorID)
	if err != nil {
		return nil, err
	}
	if m == nil || !m.Event.IsActive {
		return nil, ErrEventNotFound
	}
	if !m.CanView() {
		return nil, ErrEventAccessDenied
	}
	return m, nil
}

func (s *Service) owned(ctx context.Context, eventID, actorID int64) (*Membership, error) {
	m, err := s.repo.Membership(ctx, eventID, actorID)
	if err != nil {
		return nil, err
	}
	if m == nil || !m.Event.IsActive {
		return nil, ErrEventNotFound
	}
	if !m.IsOwner {
		return nil, ErrNotEventOwner
	}
	return m, nil
}

// Update replaces an event's fields. Only the owner may update.
func (s *Service) Update(ctx context.Context, eventID, actorID int64, req *EventRequest) (*Event, error) {
	if _, err := s.owned(ctx, eventID, actorID); err != nil {
		return nil, err
	}

	in, err := req.Validate()
	if err != nil {
		return nil, err
	}

	e, err := s.repo.Update(ctx, eventID, in)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrEventNotFound
	}
	return e, nil
}

// Delete soft-deletes an event. Only the owner may delete.
func (s *Service) Delete(ctx context.Context, eventID, actorID int64) error {
	if _, err := s.owned(ctx, eventID, actorID); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, eventID)
}

// MyEvents groups the actor's events into organized, participating and
// pending invitations
type MyEvents struct {
	Organized     []*Event
	Participating []*Event
	Invitations   []*Event
}

// ListMine returns every active event the actor is involved in
func (s *Service) ListMine(ctx context.Context, actorID int64) (*MyEvents, error) {
	organized, err := s.repo.ListOwned(ctx, actorID)
	if err != nil {
		return nil, err
	}
	participating, err := s.repo.ListByParticipantStatus(ctx, actorID, statusAccepted, statusConfirmed)
	if err != nil {
		return nil, err
	}
	invitations, err := s.repo.ListByParticipantStatus(ctx, actorID, statusInvited)
	if err != nil {
		return nil, err
	}

	return &MyEvents{
		Organized:     organized,
		Participating: participating,
		Invitations:   invitations,
	}, nil
}

// Calendar returns the actor's owned and joined events formatted for the
// calendar widget, ordered by start time
func (s *Service) Calendar(ctx context.Context, actorID int64) ([]*CalendarEvent, error) {
	owned, err := s.repo.ListOwned(ctx, actorID)
	if err != nil {
		return nil, err
	}
	joined, err := s.repo.ListByParticipantStatus(ctx, actorID, statusAccepted, statusConfirmed)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool, len(owned)+len(joined))
	items := make([]*CalendarEvent, 0, len(owned)+len(joined))
	for _, e := range owned {
		seen[e.ID] = true
		items = append(items, toCalendarEvent(e, true))
	}
	for _, e := range joined {
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		items = append(items, toCalendarEvent(e, false))
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].startTime.Before(items[j].startTime)
	})
	return items, nil
}
