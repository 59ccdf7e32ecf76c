package task

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fkhayef/eventplanner/internal/apperr"
	"github.com/fkhayef/eventplanner/internal/event"
	"github.com/fkhayef/eventplanner/internal/notification"
)

// Common errors
var (
	ErrTaskNotFound      = apperr.NotFound("TASK_NOT_FOUND", "task not found")
	ErrAssigneeNotMember = apperr.Validation("assigned_to", "the assignee must be a participant of the event")
	ErrCannotUpdate      = apperr.Forbidden("CANNOT_UPDATE_TASK", "only the creator, the assignee or the organizer can update this task")
	ErrCannotDelete      = apperr.Forbidden("CANNOT_DELETE_TASK", "only the creator or the organizer can delete this task")
)

// Store is the persistence the task service needs
type Store interface {
	WithTx(ctx context.Context, fn func(Store) error) error
	Membership(ctx context.Context, eventID, userID int64) (*event.Membership, error)
	Create(ctx context.Context, t *Task) error
	ListByEvent(ctx context.Context, eventID int64) ([]*Task, error)
	GetForUpdate(ctx context.Context, id int64) (*Task, error)
	UpdateStatus(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id int64) error
	CreateNotification(ctx context.Context, n *notification.Notification) error
}

// Service handles task business logic
type Service struct {
	store      Store
	dispatcher *notification.Dispatcher
}

// NewService creates a new task service
func NewService(store Store, dispatcher *notification.Dispatcher) *Service {
	return &Service{store: store, dispatcher: dispatcher}
}

// List returns the tasks of an event to its members
func (s *Service) List(ctx context.Context, eventID, actorID int64) ([]*Task, error) {
	m, err := s.store.Membership(ctx, eventID, actorID)
	if err != nil {
		return nil, err
	}
	if err := event.RequireMember(m); err != nil {
		return nil, err
	}
	return s.store.ListByEvent(ctx, eventID)
}

// Create adds a task to an event and notifies the assignee
func (s *Service) Create(ctx context.Context, eventID, actorID int64, req *CreateTaskRequest) (*Task, error) {
	t := &Task{
		EventID:      eventID,
		Title:        strings.TrimSpace(req.Title),
		Description:  strings.TrimSpace(req.Description),
		AssignedToID: req.AssignedToID,
		CreatedByID:  actorID,
		Status:       StatusTodo,
	}
	if t.Title == "" {
		return nil, apperr.Validation("title", "title is required")
	}
	if req.DueDate != "" {
		due, err := time.Parse(dueDateLayout, req.DueDate)
		if err != nil {
			return nil, apperr.Validation("due_date", "due_date must be formatted as YYYY-MM-DD")
		}
		t.DueDate = &due
	}

	var out notification.Outbox
	err := s.store.WithTx(ctx, func(tx Store) error {
		m, err := tx.Membership(ctx, eventID, actorID)
		if err != nil {
			return err
		}
		if err := event.RequireMember(m); err != nil {
			return err
		}

		if t.AssignedToID != nil {
			assignee, err := tx.Membership(ctx, eventID, *t.AssignedToID)
			if err != nil {
				return err
			}
			if assignee == nil || !assignee.IsMember() {
				return ErrAssigneeNotMember
			}
		}

		if err := tx.Create(ctx, t); err != nil {
			return err
		}

		if t.AssignedToID == nil || *t.AssignedToID == actorID {
			return nil
		}
		n := &notification.Notification{
			UserID:         *t.AssignedToID,
			Type:           notification.TypeTaskAssigned,
			Title:          "New task",
			Message:        fmt.Sprintf("You were assigned %q in %q", t.Title, m.Event.Title),
			RelatedEventID: &t.EventID,
			RelatedUserID:  &t.CreatedByID,
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
	return t, nil
}

// UpdateStatus moves a task to another status
func (s *Service) UpdateStatus(ctx context.Context, taskID, actorID int64, status Status) (*Task, error) {
	var t *Task
	err := s.store.WithTx(ctx, func(tx Store) error {
		var err error
		t, err = tx.GetForUpdate(ctx, taskID)
		if err != nil {
			return err
		}
		if t == nil {
			return ErrTaskNotFound
		}

		allowed := actorID == t.CreatedByID || (t.AssignedToID != nil && actorID == *t.AssignedToID)
		if !allowed {
			owner, err := s.isOwner(ctx, tx, t.EventID, actorID)
			if err != nil {
				return err
			}
			allowed = owner
		}
		if !allowed {
			return ErrCannotUpdate
		}

		if t.Status == status {
			return nil
		}
		t.Status = status
		return tx.UpdateStatus(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes a task
func (s *Service) Delete(ctx context.Context, taskID, actorID int64) error {
	return s.store.WithTx(ctx, func(tx Store) error {
		t, err := tx.GetForUpdate(ctx, taskID)
		if err != nil {
			return err
		}
		if t == nil {
			return ErrTaskNotFound
		}
		if actorID != t.CreatedByID {
			owner, err := s.isOwner(ctx, tx, t.EventID, actorID)
			if err != nil {
				return err
			}
			if !owner {
				return ErrCannotDelete
			}
		}
		return tx.Delete(ctx, t.ID)
	})
}

func (s *Service) isOwner(ctx context.Context, tx Store, eventID, userID int64) (bool, error) {
	m, err := tx.Membership(ctx, eventID, userID)
	if err != nil {
		return false, err
	}
	return m != nil && m.IsOwner, nil
}
