package task

import "time"

// Status is the progress of a task
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusCancelled  Status = "cancelled"
)

// Task is a to-do item attached to an event
type Task struct {
	ID                 int64
	EventID            int64
	Title              string
	Description        string
	AssignedToID       *int64
	AssignedToUsername *string
	CreatedByID        int64
	CreatedByUsername  string
	DueDate            *time.Time
	Status             Status
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
