package task

import "time"

const dueDateLayout = "2006-01-02"

// CreateTaskRequest is the body of POST /api/events/{id}/tasks/add/
type CreateTaskRequest struct {
	Title        string `json:"title" validate:"required,max=200"`
	Description  string `json:"description" validate:"max=5000"`
	AssignedToID *int64 `json:"assigned_to" validate:"omitempty,gt=0"`
	DueDate      string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateStatusRequest is the body of POST /api/tasks/{id}/status/
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=todo in_progress done cancelled"`
}

// TaskResponse represents a task
type TaskResponse struct {
	ID                 int64   `json:"id"`
	EventID            int64   `json:"event_id"`
	Title              string  `json:"title"`
	Description        string  `json:"description"`
	AssignedToID       *int64  `json:"assigned_to"`
	AssignedToUsername *string `json:"assigned_to_username"`
	CreatedByID        int64   `json:"created_by"`
	CreatedByUsername  string  `json:"created_by_username"`
	DueDate            *string `json:"due_date"`
	Status             Status  `json:"status"`
	CreatedAt          string  `json:"created_at"`
	UpdatedAt          string  `json:"updated_at"`
}

// ToResponse converts a Task model to a TaskResponse DTO
func (t *Task) ToResponse() *TaskResponse {
	resp := &TaskResponse{
		ID:                 t.ID,
		EventID:            t.EventID,
		Title:              t.Title,
		Description:        t.Description,
		AssignedToID:       t.AssignedToID,
		AssignedToUsername: t.AssignedToUsername,
		CreatedByID:        t.CreatedByID,
		CreatedByUsername:  t.CreatedByUsername,
		Status:             t.Status,
		CreatedAt:          t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          t.UpdatedAt.Format(time.RFC3339),
	}
	if t.DueDate != nil {
		d := t.DueDate.Format(dueDateLayout)
		resp.DueDate = &d
	}
	return resp
}
