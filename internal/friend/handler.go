package friend

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/eventplanner/pkg/middleware"
	"github.com/fkhayef/eventplanner/pkg/request"
	"github.com/fkhayef/eventplanner/pkg/response"
)

// Handler handles HTTP requests for the friend graph
type Handler struct {
	service *Service
}

// NewHandler creates a new friend handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register adds the friend endpoints to r
func (h *Handler) Register(r chi.Router) {
	r.Get("/friends/", h.Overview)
	r.Get("/friends/search/", h.Search)
	r.Get("/friends/ajax/", h.ForInvite)
	r.Post("/friends/request/{user_id}/", h.Send)
	r.Post("/friends/accept/{id}/", h.Accept)
	r.Post("/friends/reject/{id}/", h.Reject)
	r.Post("/friends/remove/{user_id}/", h.Remove)
}

// Overview handles GET /friends/
// @Summary      Friends and pending requests
// @Tags         friends
// @Produce      json
// @Success      200 {object} response.APIResponse{data=OverviewResponse}
// @Router       /friends/ [get]
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	o, err := h.service.Overview(r.Context(), userID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, &OverviewResponse{
		Friends:  summaries(o.Friends),
		Incoming: requestResponses(o.Incoming),
		Outgoing: requestResponses(o.Outgoing),
	})
}

// Search handles GET /friends/search/?q=
// @Summary      Search users
// @Description  Up to 10 users whose username contains q, with their relation to the caller
// @Tags         friends
// @Produce      json
// @Param        q query string true "Username fragment"
// @Success      200 {object} response.APIResponse{data=SearchResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /friends/search/ [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	q := r.URL.Query().Get("q")

	results, err := h.service.Search(r.Context(), userID, q)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	users := make([]*SearchResultResponse, len(results))
	for i, res := range results {
		users[i] = &SearchResultResponse{
			ID:                res.User.ID,
			Username:          res.User.Username,
			Email:             res.User.Email,
			Status:            res.Relation,
			IsFriend:          res.Relation == RelationFriends,
			SentRequestID:     res.SentRequestID,
			ReceivedRequestID: res.ReceivedRequestID,
		}
	}
	response.JSON(w, http.StatusOK, &SearchResponse{Query: q, Users: users, Count: len(users)})
}

// ForInvite handles GET /friends/ajax/
// @Summary      Friends for the invite dialog
// @Tags         friends
// @Produce      json
// @Success      200 {object} response.APIResponse{data=FriendListResponse}
// @Router       /friends/ajax/ [get]
func (h *Handler) ForInvite(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	friends, err := h.service.FriendsForInvite(r.Context(), userID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, &FriendListResponse{Friends: summaries(friends), Count: len(friends)})
}

// Send handles POST /friends/request/{user_id}/
// @Summary      Send a friend request
// @Tags         friends
// @Produce      json
// @Param        user_id path int true "Recipient ID"
// @Success      201 {object} response.APIResponse{data=SendResponse}
// @Success      200 {object} response.APIResponse{data=SendResponse} "Friendship restored"
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /friends/request/{user_id}/ [post]
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	toID, err := request.IDParam(r, "user_id", "user")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	userID, _ := middleware.GetUserID(r.Context())

	res, err := h.service.SendRequest(r.Context(), userID, toID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	if res.AlreadyFriends {
		response.Message(w, http.StatusOK,
			"You are now friends with "+res.Request.ToUsername,
			&SendResponse{RequestID: res.Request.ID, AlreadyFriends: true})
		return
	}
	response.Message(w, http.StatusCreated,
		"Friend request sent to "+res.Request.ToUsername,
		&SendResponse{RequestID: res.Request.ID})
}

// Accept handles POST /friends/accept/{id}/
// @Summary      Accept a friend request
// @Tags         friends
// @Produce      json
// @Param        id path int true "Request ID"
// @Success      200 {object} response.APIResponse{data=RequestResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /friends/accept/{id}/ [post]
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	id, err := request.IDParam(r, "id", "friend request")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	userID, _ := middleware.GetUserID(r.Context())

	req, err := h.service.AcceptRequest(r.Context(), id, userID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.Message(w, http.StatusOK, "You are now friends with "+req.FromUsername, req.ToResponse())
}

// Reject handles POST /friends/reject/{id}/
// @Summary      Reject a friend request
// @Tags         friends
// @Produce      json
// @Param        id path int true "Request ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /friends/reject/{id}/ [post]
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := request.IDParam(r, "id", "friend request")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	userID, _ := middleware.GetUserID(r.Context())

	if err := h.service.RejectRequest(r.Context(), id, userID); err != nil {
		response.Err(w, r, err)
		return
	}

	response.Message(w, http.StatusOK, "Friend request rejected", nil)
}

// Remove handles POST /friends/remove/{user_id}/
// @Summary      Remove a friend
// @Tags         friends
// @Produce      json
// @Param        user_id path int true "Friend ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /friends/remove/{user_id}/ [post]
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	otherID, err := request.IDParam(r, "user_id", "user")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	userID, _ := middleware.GetUserID(r.Context())

	other, err := h.service.RemoveFriend(r.Context(), userID, otherID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.Message(w, http.StatusOK, other.Username+" was removed from your friends", nil)
}
