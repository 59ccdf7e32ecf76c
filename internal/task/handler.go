package task

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/eventplanner/pkg/middleware"
	"github.com/fkhayef/eventplanner/pkg/request"
	"github.com/fkhayef/eventplanner/pkg/response"
)

// Handler handles HTTP requests for tasks
type Handler struct {
	service *Service
}

// NewHandler creates a new task handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register adds the task endpoints to r
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/events/{id}/tasks/", h.List)
	r.Post("/api/events/{id}/tasks/add/", h.Create)
	r.Post("/api/tasks/{id}/status/", h.UpdateStatus)
	r.Post("/api/tasks/{id}/delete/", h.Delete)
}

// List handles GET /api/events/{id}/tasks/
// @Summary      List event tasks
// @Tags         tasks
// @Produce      json
// @Param        id path int true "Event ID"
// @Success      200 {object} response.APIResponse{data=[]TaskResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /api/events/{id}/tasks/ [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	eventID, err := request.IDParam(r, "id", "event")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	userID, _ := middleware.GetUserID(r.Context())

	tasks, err := h.service.List(r.Context(), eventID, userID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	out := make([]*TaskResponse, len(tasks))
	for i, t := range tasks {
		out[i] = t.ToResponse()
	}
	response.JSON(w, http.StatusOK, out)
}

// Create handles POST /api/events/{id}/tasks/add/
// @Summary      Add a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id path int true "Event ID"
// @Param        request body CreateTaskRequest true "Task"
// @Success      201 {object} response.APIResponse{data=TaskResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /api/events/{id}/tasks/add/ [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	eventID, err := request.IDParam(r, "id", "event")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	userID, _ := middleware.GetUserID(r.Context())

	var req CreateTaskRequest
	if err := request.Decode(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}

	t, err := h.service.Create(r.Context(), eventID, userID, &req)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, t.ToResponse())
}

// UpdateStatus handles POST /api/tasks/{id}/status/
// @Summary      Change a task's status
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id path int true "Task ID"
// @Param        request body UpdateStatusRequest true "New status"
// @Success      200 {object} response.APIResponse{data=TaskResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /api/tasks/{id}/status/ [post]
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	taskID, err := request.IDParam(r, "id", "task")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	userID, _ := middleware.GetUserID(r.Context())

	var req UpdateStatusRequest
	if err := request.Decode(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}

	t, err := h.service.UpdateStatus(r.Context(), taskID, userID, Status(req.Status))
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.Message(w, http.StatusOK, "Task updated", t.ToResponse())
}

// Delete handles POST /api/tasks/{id}/delete/
// @Summary      Delete a task
// @Tags         tasks
// @Produce      json
// @Param        id path int true "Task ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /api/tasks/{id}/delete/ [post]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	taskID, err := request.IDParam(r, "id", "task")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	userID, _ := middleware.GetUserID(r.Context())

	if err := h.service.Delete(r.Context(), taskID, userID); err != nil {
		response.Err(w, r, err)
		return
	}

	response.Message(w, http.StatusOK, "Task deleted", nil)
}
