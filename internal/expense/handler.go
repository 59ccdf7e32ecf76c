package expense

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/eventplanner/pkg/middleware"
	"github.com/fkhayef/eventplanner/pkg/request"
	"github.com/fkhayef/eventplanner/pkg/response"
)

// Handler handles HTTP requests for expense operations
type Handler struct {
	service *Service
}

// NewHandler creates a new expense handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register adds the expense endpoints to r
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/events/{id}/expenses/", h.List)
	r.Post("/api/events/{id}/expenses/add/", h.Add)
	r.Post("/api/expenses/shares/{id}/paid/", h.MarkSharePaid)
}

// List handles GET /api/events/{id}/expenses/
// @Summary      List event expenses
// @Tags         expenses
// @Produce      json
// @Param        id path int true "Event ID"
// @Success      200 {object} response.APIResponse{data=[]ExpenseResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /api/events/{id}/expenses/ [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	eventID, err := request.IDParam(r, "id", "event")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	userID, _ := middleware.GetUserID(r.Context())

	expenses, err := h.service.List(r.Context(), eventID, userID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	out := make([]*ExpenseResponse, len(expenses))
	for i, e := range expenses {
		out[i] = e.ToResponse()
	}
	response.JSON(w, http.StatusOK, out)
}

// Add handles POST /api/events/{id}/expenses/add/
// @Summary      Add an expense
// @Description  Shares are split with MANUAL (default), EVEN or PERCENTAGE. The payer never holds a share.
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        id path int true "Event ID"
// @Param        request body CreateExpenseRequest true "Expense"
// @Success      201 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /api/events/{id}/expenses/add/ [post]
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	eventID, err := request.IDParam(r, "id", "event")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	userID, _ := middleware.GetUserID(r.Context())

	var req CreateExpenseRequest
	if err := request.Decode(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}

	e, err := h.service.Add(r.Context(), eventID, userID, &req)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, e.ToResponse())
}

// MarkSharePaid handles POST /api/expenses/shares/{id}/paid/
// @Summary      Mark a share as paid
// @Tags         expenses
// @Produce      json
// @Param        id path int true "Share ID"
// @Success      200 {object} response.APIResponse{data=ShareResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /api/expenses/shares/{id}/paid/ [post]
func (h *Handler) MarkSharePaid(w http.ResponseWriter, r *http.Request) {
	shareID, err := request.IDParam(r, "id", "share")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	userID, _ := middleware.GetUserID(r.Context())

	share, err := h.service.MarkSharePaid(r.Context(), shareID, userID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.Message(w, http.StatusOK, "Share marked as paid", share.ToResponse())
}
