package friend

import "github.com/fkhayef/eventplanner/internal/user"

// RequestResponse represents a friend request
type RequestResponse struct {
	ID         int64         `json:"id"`
	FromUser   *user.Summary `json:"from_user"`
	ToUser     *user.Summary `json:"to_user"`
	IsAccepted bool          `json:"is_accepted"`
	CreatedAt  string        `json:"created_at"`
}

// OverviewResponse is the payload of GET /friends/
type OverviewResponse struct {
	Friends  []*user.Summary    `json:"friends"`
	Incoming []*RequestResponse `json:"incoming_requests"`
	Outgoing []*RequestResponse `json:"outgoing_requests"`
}

// SearchResultResponse is one row of a user search
type SearchResultResponse struct {
	ID                int64    `json:"id"`
	Username          string   `json:"username"`
	Email             string   `json:"email"`
	Status            Relation `json:"status"`
	IsFriend          bool     `json:"is_friend"`
	SentRequestID     *int64   `json:"sent_request_id,omitempty"`
	ReceivedRequestID *int64   `json:"received_request_id,omitempty"`
}

// SearchResponse is the payload of GET /friends/search/
type SearchResponse struct {
	Query string                  `json:"query"`
	Users []*SearchResultResponse `json:"users"`
	Count int                     `json:"count"`
}

// FriendListResponse is the payload of GET /friends/ajax/
type FriendListResponse struct {
	Friends []*user.Summary `json:"friends"`
	Count   int             `json:"count"`
}

// SendResponse is returned after sending a request
type SendResponse struct {
	RequestID      int64 `json:"request_id,omitempty"`
	AlreadyFriends bool  `json:"already_friends"`
}

// ToResponse converts a Request to its API shape
func (r *Request) ToResponse() *RequestResponse {
	return &RequestResponse{
		ID:         r.ID,
		FromUser:   &user.Summary{ID: r.FromUserID, Username: r.FromUsername},
		ToUser:     &user.Summary{ID: r.ToUserID, Username: r.ToUsername},
		IsAccepted: r.IsAccepted,
		CreatedAt:  r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func summaries(users []*user.User) []*user.Summary {
	out := make([]*user.Summary, len(users))
	for i, u := range users {
		out[i] = u.Summary()
	}
	return out
}

func requestResponses(reqs []*Request) []*RequestResponse {
	out := make([]*RequestResponse, len(reqs))
	for i, r := range reqs {
		out[i] = r.ToResponse()
	}
	return out
}
