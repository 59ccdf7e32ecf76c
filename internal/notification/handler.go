package notification

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/eventplanner/pkg/middleware"
	"github.com/fkhayef/eventplanner/pkg/request"
	"github.com/fkhayef/eventplanner/pkg/response"
)

// Handler handles HTTP requests for notification operations
type Handler struct {
	service *Service
}

// NewHandler creates a new notification handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for notification endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/api/", h.Feed)
	r.Get("/unread-count/", h.GetUnreadCount)
	r.Post("/clear/", h.Clear)
	r.Post("/mark-all-read/", h.MarkAllAsRead)
	r.Post("/{id}/read/", h.MarkAsRead)

	return r
}

// Feed handles GET /notifications/api/
// @Summary      Notification feed
// @Description  Latest notifications of the current user. Marks everything read unless mark_read=false.
// @Tags         notifications
// @Produce      json
// @Param        limit query int false "Max notifications" default(20)
// @Param        mark_read query bool false "Mark all as read after loading" default(true)
// @Success      200 {object} response.APIResponse{data=FeedResponse}
// @Router       /notifications/api/ [get]
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	markRead := r.URL.Query().Get("mark_read") != "false"

	notifications, unread, err := h.service.Feed(r.Context(), userID, limit, markRead)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	items := make([]*NotificationResponse, len(notifications))
	for i, n := range notifications {
		items[i] = n.ToResponse()
	}

	response.JSON(w, http.StatusOK, &FeedResponse{Notifications: items, UnreadCount: unread})
}

// GetUnreadCount handles GET /notifications/unread-count/
// @Summary      Unread notification count
// @Tags         notifications
// @Produce      json
// @Success      200 {object} response.APIResponse{data=CountResponse}
// @Router       /notifications/unread-count/ [get]
func (h *Handler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	count, err := h.service.GetUnreadCount(r.Context(), userID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, &CountResponse{Count: count})
}

// Clear handles POST /notifications/clear/
// @Summary      Delete all notifications
// @Tags         notifications
// @Produce      json
// @Success      200 {object} response.APIResponse{data=CountResponse}
// @Router       /notifications/clear/ [post]
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	count, err := h.service.Clear(r.Context(), userID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.Message(w, http.StatusOK, "Notifications cleared", &CountResponse{Count: count})
}

// MarkAllAsRead handles POST /notifications/mark-all-read/
// @Summary      Mark all notifications as read
// @Tags         notifications
// @Produce      json
// @Success      200 {object} response.APIResponse{data=CountResponse}
// @Router       /notifications/mark-all-read/ [post]
func (h *Handler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	count, err := h.service.MarkAllAsRead(r.Context(), userID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.Message(w, http.StatusOK, "All notifications marked as read", &CountResponse{Count: count})
}

// MarkAsRead handles POST /notifications/{id}/read/
// @Summary      Mark one notification as read
// @Tags         notifications
// @Produce      json
// @Param        id path int true "Notification ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /notifications/{id}/read/ [post]
func (h *Handler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	id, err := request.IDParam(r, "id", "notification")
	if err != nil {
		response.Err(w, r, err)
		return
	}

	userID, _ := middleware.GetUserID(r.Context())
	if err := h.service.MarkAsRead(r.Context(), id, userID); err != nil {
		response.Err(w, r, err)
		return
	}

	response.Message(w, http.StatusOK, "Notification marked as read", nil)
}
