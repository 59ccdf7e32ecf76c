package participant

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/eventplanner/pkg/middleware"
	"github.com/fkhayef/eventplanner/pkg/request"
	"github.com/fkhayef/eventplanner/pkg/response"
)

// Handler handles HTTP requests for invitations and participation
type Handler struct {
	service *Service
}

// NewHandler creates a new participant handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register adds the participation endpoints to r
func (h *Handler) Register(r chi.Router) {
	r.Post("/events/{id}/invite/{user_id}/", h.Invite)
	r.Post("/events/{id}/invite/", h.InviteFriend)
	r.Post("/events/invitation/{id}/respond/", h.Respond)
	r.Post("/events/{id}/cancel-invite/{participant_id}/", h.Cancel)
	r.Post("/events/{id}/leave/", h.Leave)
	r.Get("/events/{id}/participants/", h.List)
	r.Get("/events/{id}/my-participant/", h.Mine)
}

func (h *Handler) invite(w http.ResponseWriter, r *http.Request, in InviteInput) {
	res, err := h.service.Invite(r.Context(), in)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	if !res.Created {
		response.Notice(w, "ALREADY_INVITED",
			res.Participant.Username+" is already invited to this event",
			res.Participant.ToResponse())
		return
	}
	response.Message(w, http.StatusCreated,
		"Invitation sent to "+res.Participant.Username,
		res.Participant.ToResponse())
}

// Invite handles POST /events/{id}/invite/{user_id}/
// @Summary      Invite a user
// @Tags         participants
// @Accept       json
// @Produce      json
// @Param        id path int true "Event ID"
// @Param        user_id path int true "Invitee ID"
// @Param        request body InviteRequest false "Role"
// @Success      201 {object} response.APIResponse{data=ParticipantResponse}
// @Success      200 {object} response.APIResponse{data=ParticipantResponse} "Already invited"
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /events/{id}/invite/{user_id}/ [post]
func (h *Handler) Invite(w http.ResponseWriter, r *http.Request) {
	eventID, err := request.IDParam(r, "id", "event")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	inviteeID, err := request.IDParam(r, "user_id", "user")
	if err != nil {
		response.Err(w, r, err)
		return
	}

	var req InviteRequest
	if err := request.Decode(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}

	userID, _ := middleware.GetUserID(r.Context())
	h.invite(w, r, InviteInput{
		EventID:   eventID,
		InviterID: userID,
		InviteeID: inviteeID,
		Role:      req.Role,
	})
}

// InviteFriend handles POST /events/{id}/invite/
// @Summary      Invite a friend
// @Tags         participants
// @Accept       json
// @Produce      json
// @Param        id path int true "Event ID"
// @Param        request body InviteFriendRequest true "Friend and role"
// @Success      201 {object} response.APIResponse{data=ParticipantResponse}
// @Success      200 {object} response.APIResponse{data=ParticipantResponse} "Already invited"
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /events/{id}/invite/ [post]
func (h *Handler) InviteFriend(w http.ResponseWriter, r *http.Request) {
	eventID, err := request.IDParam(r, "id", "event")
	if err != nil {
		response.Err(w, r, err)
		return
	}

	var req InviteFriendRequest
	if err := request.Decode(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}

	userID, _ := middleware.GetUserID(r.Context())
	h.invite(w, r, InviteInput{
		EventID:     eventID,
		InviterID:   userID,
		InviteeID:   req.FriendID,
		Role:        req.Role,
		FriendsOnly: true,
	})
}

// Respond handles POST /events/invitation/{id}/respond/
// @Summary      Accept or decline an invitation
// @Tags         participants
// @Accept       json
// @Produce      json
// @Param        id path int true "Participant ID"
// @Param        request body RespondRequest true "accept or decline"
// @Success      200 {object} response.APIResponse{data=ParticipantResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /events/invitation/{id}/respond/ [post]
func (h *Handler) Respond(w http.ResponseWriter, r *http.Request) {
	id, err := request.IDParam(r, "id", "invitation")
	if err != nil {
		response.Err(w, r, err)
		return
	}

	var req RespondRequest
	if err := request.Decode(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}

	userID, _ := middleware.GetUserID(r.Context())
	p, err := h.service.Respond(r.Context(), id, userID, req.Action)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	msg := "Invitation accepted"
	if p.Status == StatusDeclined {
		msg = "Invitation declined"
	}
	response.Message(w, http.StatusOK, msg, p.ToResponse())
}

// Cancel handles POST /events/{id}/cancel-invite/{participant_id}/
// @Summary      Cancel a pending invitation
// @Tags         participants
// @Produce      json
// @Param        id path int true "Event ID"
// @Param        participant_id path int true "Participant ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /events/{id}/cancel-invite/{participant_id}/ [post]
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	eventID, err := request.IDParam(r, "id", "event")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	participantID, err := request.IDParam(r, "participant_id", "participant")
	if err != nil {
		response.Err(w, r, err)
		return
	}

	userID, _ := middleware.GetUserID(r.Context())
	if err := h.service.Cancel(r.Context(), eventID, participantID, userID); err != nil {
		response.Err(w, r, err)
		return
	}

	response.Message(w, http.StatusOK, "Invitation cancelled", nil)
}

// Leave handles POST /events/{id}/leave/
// @Summary      Leave an event
// @Tags         participants
// @Produce      json
// @Param        id path int true "Event ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /events/{id}/leave/ [post]
func (h *Handler) Leave(w http.ResponseWriter, r *http.Request) {
	eventID, err := request.IDParam(r, "id", "event")
	if err != nil {
		response.Err(w, r, err)
		return
	}

	userID, _ := middleware.GetUserID(r.Context())
	if err := h.service.Leave(r.Context(), eventID, userID); err != nil {
		response.Err(w, r, err)
		return
	}

	response.Message(w, http.StatusOK, "You left the event", nil)
}

// List handles GET /events/{id}/participants/
// @Summary      List participants
// @Tags         participants
// @Produce      json
// @Param        id path int true "Event ID"
// @Success      200 {object} response.APIResponse{data=[]ParticipantResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /events/{id}/participants/ [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	eventID, err := request.IDParam(r, "id", "event")
	if err != nil {
		response.Err(w, r, err)
		return
	}

	userID, _ := middleware.GetUserID(r.Context())
	participants, err := h.service.List(r.Context(), eventID, userID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	out := make([]*ParticipantResponse, len(participants))
	for i, p := range participants {
		out[i] = p.ToResponse()
	}
	response.JSON(w, http.StatusOK, out)
}

// Mine handles GET /events/{id}/my-participant/
// @Summary      Current user's participation
// @Tags         participants
// @Produce      json
// @Param        id path int true "Event ID"
// @Success      200 {object} response.APIResponse{data=ParticipantResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /events/{id}/my-participant/ [get]
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	eventID, err := request.IDParam(r, "id", "event")
	if err != nil {
		response.Err(w, r, err)
		return
	}

	userID, _ := middleware.GetUserID(r.Context())
	p, err := h.service.Mine(r.Context(), eventID, userID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, p.ToResponse())
}
