package participant

import (
	"context"
	"fmt"
	"strings"

	"github.com/fkhayef/eventplanner/internal/apperr"
	"github.com/fkhayef/eventplanner/internal/event"
	"github.com/fkhayef/eventplanner/internal/notification"
	"github.com/fkhayef/eventplanner/internal/user"
)

// Common errors
var (
	ErrCannotInvite         = apperr.Forbidden("CANNOT_INVITE", "only the organizer or participants can invite")
	ErrInviteSelf           = apperr.Validation("user_id", "you cannot invite yourself")
	ErrInviteOrganizer      = apperr.Conflict("INVITEE_IS_ORGANIZER", "the organizer is already part of this event")
	ErrNotFriends           = apperr.Forbidden("NOT_FRIENDS", "you can only invite your friends")
	ErrInvitationNotFound   = apperr.NotFound("INVITATION_NOT_FOUND", "invitation not found or already processed")
	ErrNotInvitee           = apperr.Forbidden("NOT_INVITEE", "this invitation is addressed to someone else")
	ErrNotInviter           = apperr.Forbidden("NOT_INVITER", "only the user who sent the invitation can cancel it")
	ErrInvitationNotPending = apperr.Conflict("INVITATION_NOT_PENDING", "only pending invitations can be cancelled")
	ErrNotParticipant       = apperr.NotFound("NOT_PARTICIPANT", "you are not a participant of this event")
	ErrOrganizerCannotLeave = apperr.Conflict("ORGANIZER_CANNOT_LEAVE", "the organizer cannot leave their own event")
	ErrCannotLeave          = apperr.Conflict("CANNOT_LEAVE", "only accepted participants can leave an event")
)

// Store is the persistence the participant service needs. WithTx runs fn
// against a Store bound to one transaction.
type Store interface {
	WithTx(ctx context.Context, fn func(Store) error) error
	Membership(ctx context.Context, eventID, userID int64) (*event.Membership, error)
	GetUser(ctx context.Context, id int64) (*user.User, error)
	AreFriends(ctx context.Context, userID, friendID int64) (bool, error)
	Insert(ctx context.Context, p *Participant) (bool, error)
	GetForUpdate(ctx context.Context, id int64) (*Participant, error)
	GetByEventAndUser(ctx context.Context, eventID, userID int64) (*Participant, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	Delete(ctx context.Context, id int64) error
	ListByEvent(ctx context.Context, eventID int64) ([]*Participant, error)
	CreateNotification(ctx context.Context, n *notification.Notification) error
}

// Service handles invitations and participation
type Service struct {
	store      Store
	dispatcher *notification.Dispatcher
}

// NewService creates a new participant service
func NewService(store Store, dispatcher *notification.Dispatcher) *Service {
	return &Service{store: store, dispatcher: dispatcher}
}

// InviteInput describes an invitation
type InviteInput struct {
	EventID   int64
	InviterID int64
	InviteeID int64
	Role      string
	// FriendsOnly requires a confirmed friendship from inviter to invitee
	FriendsOnly bool
}

// InviteResult carries the participant row and whether it was just created.
// Created is false when the invitee was already part of the event.
type InviteResult struct {
	Participant *Participant
	Created     bool
}

// Invite adds the invitee to the event with status invited and notifies them
func (s *Service) Invite(ctx context.Context, in InviteInput) (*InviteResult, error) {
	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = DefaultRole
	}

	var out notification.Outbox
	result := &InviteResult{}

	err := s.store.WithTx(ctx, func(tx Store) error {
		m, err := tx.Membership(ctx, in.EventID, in.InviterID)
		if err != nil {
			return err
		}
		if m == nil || !m.Event.IsActive {
			return event.ErrEventNotFound
		}
		if !m.IsMember() {
			return ErrCannotInvite
		}
		if in.InviteeID == in.InviterID {
			return ErrInviteSelf
		}
		if in.InviteeID == m.Event.OwnerID {
			return ErrInviteOrganizer
		}

		invitee, err := tx.GetUser(ctx, in.InviteeID)
		if err != nil {
			return err
		}
		if invitee == nil {
			return user.ErrUserNotFound
		}

		if in.FriendsOnly {
			ok, err := tx.AreFriends(ctx, in.InviterID, in.InviteeID)
			if err != nil {
				return err
			}
			if !ok {
				return ErrNotFriends
			}
		}

		inviter, err := tx.GetUser(ctx, in.InviterID)
		if err != nil {
			return err
		}
		if inviter == nil {
			return user.ErrUserNotFound
		}

		p := &Participant{
			EventID:           in.EventID,
			UserID:            in.InviteeID,
			Username:          invitee.Username,
			Status:            StatusInvited,
			Role:              role,
			InvitedBy:         &in.InviterID,
			InvitedByUsername: &inviter.Username,
		}
		created, err := tx.Insert(ctx, p)
		if err != nil {
			return err
		}
		if !created {
			existing, err := tx.GetByEventAndUser(ctx, in.EventID, in.InviteeID)
			if err != nil {
				return err
			}
			result.Participant = existing
			return nil
		}

		n := &notification.Notification{
			UserID:         in.InviteeID,
			Type:           notification.TypeEventInvitation,
			Title:          "New event invitation",
			Message:        fmt.Sprintf("%s invited you to %q", inviter.Username, m.Event.Title),
			RelatedEventID: &in.EventID,
			RelatedUserID:  &in.InviterID,
		}
		if err := tx.CreateNotification(ctx, n); err != nil {
			return err
		}
		out.Add(n)

		result.Participant = p
		result.Created = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	out.Flush(ctx, s.dispatcher)
	return result, nil
}

// Respond accepts or declines a pending invitation addressed to the actor.
// The inviter, or the organizer when the inviter is gone, is notified.
func (s *Service) Respond(ctx context.Context, participantID, actorID int64, action string) (*Participant, error) {
	var status Status
	switch action {
	case "accept":
		status = StatusAccepted
	case "decline":
		status = StatusDeclined
	default:
		return nil, apperr.Validation("action", "action must be accept or decline")
	}

	var out notification.Outbox
	var updated *Participant

	err := s.store.WithTx(ctx, func(tx Store) error {
		p, err := tx.GetForUpdate(ctx, participantID)
		if err != nil {
			return err
		}
		if p == nil {
			return ErrInvitationNotFound
		}
		m, err := activeMembership(ctx, tx, p.EventID, actorID)
		if err != nil {
			return err
		}
		if p.UserID != actorID {
			return ErrNotInvitee
		}
		if p.Status != StatusInvited {
			return ErrInvitationNotFound
		}

		if err := tx.UpdateStatus(ctx, p.ID, status); err != nil {
			return err
		}
		p.Status = status
		updated = p

		recipient := m.Event.OwnerID
		if p.InvitedBy != nil {
			recipient = *p.InvitedBy
		}
		if recipient == actorID {
			return nil
		}

		title, verb := "Invitation accepted", "accepted"
		if status == StatusDeclined {
			title, verb = "Invitation declined", "declined"
		}
		n := &notification.Notification{
			UserID:         recipient,
			Type:           notification.TypeEventUpdate,
			Title:          title,
			Message:        fmt.Sprintf("%s %s your invitation to %q", p.Username, verb, m.Event.Title),
			RelatedEventID: &p.EventID,
			RelatedUserID:  &actorID,
		}
		if err := tx.CreateNotification(ctx, n); err != nil {
			return err
		}
		out.Add(n)
		return nil
	})
	if err != nil {
		return nil, err
	}

	out.Flush(ctx, s.dispatcher)
	return updated, nil
}

// Cancel withdraws a pending invitation. Only its sender may cancel it.
func (s *Service) Cancel(ctx context.Context, eventID, participantID, actorID int64) error {
	return s.store.WithTx(ctx, func(tx Store) error {
		p, err := tx.GetForUpdate(ctx, participantID)
		if err != nil {
			return err
		}
		if p == nil || p.EventID != eventID {
			return ErrInvitationNotFound
		}
		if _, err := activeMembership(ctx, tx, eventID, actorID); err != nil {
			return err
		}
		if p.InvitedBy == nil || *p.InvitedBy != actorID {
			return ErrNotInviter
		}
		if p.Status != StatusInvited {
			return ErrInvitationNotPending
		}
		return tx.Delete(ctx, p.ID)
	})
}

// Leave marks the actor's participation as declined and tells the organizer
func (s *Service) Leave(ctx context.Context, eventID, actorID int64) error {
	var out notification.Outbox

	err := s.store.WithTx(ctx, func(tx Store) error {
		m, err := activeMembership(ctx, tx, eventID, actorID)
		if err != nil {
			return err
		}
		if m.IsOwner {
			return ErrOrganizerCannotLeave
		}

		p, err := tx.GetByEventAndUser(ctx, eventID, actorID)
		if err != nil {
			return err
		}
		if p == nil {
			return ErrNotParticipant
		}
		if !p.Active() {
			return ErrCannotLeave
		}

		if err := tx.UpdateStatus(ctx, p.ID, StatusDeclined); err != nil {
			return err
		}

		n := &notification.Notification{
			UserID:         m.Event.OwnerID,
			Type:           notification.TypeEventUpdate,
			Title:          "Participant left",
			Message:        fmt.Sprintf("%s left %q", p.Username, m.Event.Title),
			RelatedEventID: &eventID,
			RelatedUserID:  &actorID,
		}
		if err := tx.CreateNotification(ctx, n); err != nil {
			return err
		}
		out.Add(n)
		return nil
	})
	if err != nil {
		return err
	}

	out.Flush(ctx, s.dispatcher)
	return nil
}

// List returns every participant of an event the actor may view
func (s *Service) List(ctx context.Context, eventID, actorID int64) ([]*Participant, error) {
	m, err := s.store.Membership(ctx, eventID, actorID)
	if err != nil {
		return nil, err
	}
	if m == nil || !m.Event.IsActive {
		return nil, event.ErrEventNotFound
	}
	if !m.CanView() {
		return nil, event.ErrEventAccessDenied
	}
	return s.store.ListByEvent(ctx, eventID)
}

// Mine returns the actor's own participant row for an event
func (s *Service) Mine(ctx context.Context, eventID, actorID int64) (*Participant, error) {
	if _, err := activeMembership(ctx, s.store, eventID, actorID); err != nil {
		return nil, err
	}
	p, err := s.store.GetByEventAndUser(ctx, eventID, actorID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotParticipant
	}
	return p, nil
}

// activeMembership loads the actor's relation to an event that still exists
func activeMembership(ctx context.Context, st Store, eventID, userID int64) (*event.Membership, error) {
	m, err := st.Membership(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	if m == nil || !m.Event.IsActive {
		return nil, event.ErrEventNotFound
	}
	return m, nil
}
