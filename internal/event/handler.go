package event

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/eventplanner/pkg/middleware"
	"github.com/fkhayef/eventplanner/pkg/request"
	"github.com/fkhayef/eventplanner/pkg/response"
)

// Handler handles HTTP requests for event operations
type Handler struct {
	service *Service
}

// NewHandler creates a new event handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register adds the event endpoints to r
func (h *Handler) Register(r chi.Router) {
	r.Post("/events/", h.Create)
	r.Get("/events/{id}/", h.Get)
	r.Put("/events/{id}/", h.Update)
	r.Post("/events/{id}/delete/", h.Delete)

	r.Get("/api/events/my/", h.ListMine)
	r.Get("/api/events/calendar/", h.Calendar)
}

// Create handles POST /events/
// @Summary      Create an event
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        request body EventRequest true "Event form"
// @Success      201 {object} response.APIResponse{data=EventResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /events/ [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req EventRequest
	if err := request.Decode(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}

	e, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, e.ToResponse())
}

// Get handles GET /events/{id}/
// @Summary      Event detail
// @Description  Visible to the organizer and to invited, accepted or confirmed participants
// @Tags         events
// @Produce      json
// @Param        id path int true "Event ID"
// @Success      200 {object} response.APIResponse{data=DetailResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /events/{id}/ [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.IDParam(r, "id", "event")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	userID, _ := middleware.GetUserID(r.Context())

	m, err := h.service.Get(r.Context(), id, userID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, &DetailResponse{
		Event:    m.Event.ToResponse(),
		UserRole: m.Role(),
		IsOwner:  m.IsOwner,
	})
}

// Update handles PUT /events/{id}/
// @Summary      Update an event
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        id path int true "Event ID"
// @Param        request body EventRequest true "Event form"
// @Success      200 {object} response.APIResponse{data=EventResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /events/{id}/ [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.IDParam(r, "id", "event")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	userID, _ := middleware.GetUserID(r.Context())

	var req EventRequest
	if err := request.Decode(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}

	e, err := h.service.Update(r.Context(), id, userID, &req)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, e.ToResponse())
}

// Delete handles POST /events/{id}/delete/
// @Summary      Soft delete an event
// @Tags         events
// @Produce      json
// @Param        id path int true "Event ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /events/{id}/delete/ [post]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.IDParam(r, "id", "event")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	userID, _ := middleware.GetUserID(r.Context())

	if err := h.service.Delete(r.Context(), id, userID); err != nil {
		response.Err(w, r, err)
		return
	}

	response.Message(w, http.StatusOK, "Event deleted", nil)
}

// ListMine handles GET /api/events/my/
// @Summary      My events
// @Description  Organized events, joined events and pending invitations of the current user
// @Tags         events
// @Produce      json
// @Success      200 {object} response.APIResponse{data=MyEventsResponse}
// @Router       /api/events/my/ [get]
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	mine, err := h.service.ListMine(r.Context(), userID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, &MyEventsResponse{
		Organized:     toResponses(mine.Organized),
		Participating: toResponses(mine.Participating),
		Invitations:   toResponses(mine.Invitations),
	})
}

// Calendar handles GET /api/events/calendar/
// @Summary      Calendar feed
// @Description  Bare JSON array in FullCalendar format
// @Tags         events
// @Produce      json
// @Success      200 {array} CalendarEvent
// @Router       /api/events/calendar/ [get]
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	items, err := h.service.Calendar(r.Context(), userID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.Raw(w, http.StatusOK, items)
}
