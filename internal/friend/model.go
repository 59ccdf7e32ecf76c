package friend

import (
	"time"

	"github.com/fkhayef/eventplanner/internal/user"
)

// Request is a directed friend request
type Request struct {
	ID           int64
	FromUserID   int64
	FromUsername string
	ToUserID     int64
	ToUsername   string
	IsAccepted   bool
	CreatedAt    time.Time
}

// Relation describes how a search result relates to the searching user
type Relation string

const (
	RelationFriends         Relation = "friends"
	RelationSentPending     Relation = "sent_pending"
	RelationReceivedPending Relation = "received_pending"
	// RelationAcceptedNoFriendship marks an accepted request whose friendship
	// rows are missing. Sending a new request repairs it.
	RelationAcceptedNoFriendship Relation = "accepted_but_not_friends"
	RelationNone                 Relation = "no_relation"
)

// Overview is the friends page: friends plus pending requests both ways
type Overview struct {
	Friends  []*user.User
	Incoming []*Request
	Outgoing []*Request
}

// SearchResult is a user found by search together with the relation to the
// searching user
type SearchResult struct {
	User              *user.User
	Relation          Relation
	SentRequestID     *int64
	ReceivedRequestID *int64
}

// SendResult reports the outcome of a friend request
type SendResult struct {
	Request *Request
	// AlreadyFriends is set when an earlier accepted request was found and the
	// friendship rows were restored instead of sending a new request.
	AlreadyFriends bool
}
