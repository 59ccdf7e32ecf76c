package settlement

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/eventplanner/pkg/middleware"
	"github.com/fkhayef/eventplanner/pkg/request"
	"github.com/fkhayef/eventplanner/pkg/response"
)

// Handler handles HTTP requests for balances and settlements
type Handler struct {
	service *Service
}

// NewHandler creates a new settlement handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register adds the settlement endpoints to r
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/events/{id}/balances/", h.Balances)
	r.Post("/api/expenses/{id}/settle/", h.Settle)
}

// Balances handles GET /api/events/{id}/balances/
// @Summary      Event balances
// @Description  Per-member totals over unsettled expenses and the netted debts between members
// @Tags         settlements
// @Produce      json
// @Param        id path int true "Event ID"
// @Success      200 {object} response.APIResponse{data=BalancesResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /api/events/{id}/balances/ [get]
func (h *Handler) Balances(w http.ResponseWriter, r *http.Request) {
	eventID, err := request.IDParam(r, "id", "event")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	userID, _ := middleware.GetUserID(r.Context())

	b, err := h.service.EventBalances(r.Context(), eventID, userID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, b.ToResponse(userID))
}

// Settle handles POST /api/expenses/{id}/settle/
// @Summary      Settle an expense
// @Tags         settlements
// @Produce      json
// @Param        id path int true "Expense ID"
// @Success      200 {object} response.APIResponse{data=SettleResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /api/expenses/{id}/settle/ [post]
func (h *Handler) Settle(w http.ResponseWriter, r *http.Request) {
	expenseID, err := request.IDParam(r, "id", "expense")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	userID, _ := middleware.GetUserID(r.Context())

	x, err := h.service.SettleExpense(r.Context(), expenseID, userID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.Message(w, http.StatusOK, "Expense settled", &SettleResponse{
		ExpenseID: x.ID,
		EventID:   x.EventID,
		IsSettled: x.IsSettled,
	})
}
