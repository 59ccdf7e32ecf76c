package friend

import (
	"context"
	"fmt"
	"strings"

	"github.com/fkhayef/eventplanner/internal/apperr"
	"github.com/fkhayef/eventplanner/internal/notification"
	"github.com/fkhayef/eventplanner/internal/user"
)

// SearchLimit caps the number of users returned by Search
const SearchLimit = 10

// Common errors
var (
	ErrSelfRequest         = apperr.Validation("user_id", "you cannot send a friend request to yourself")
	ErrAlreadyFriends      = apperr.Conflict("ALREADY_FRIENDS", "you are already friends")
	ErrRequestAlreadySent  = apperr.Conflict("REQUEST_ALREADY_SENT", "friend request already sent")
	ErrReversePending      = apperr.Conflict("REVERSE_REQUEST_PENDING", "this user already sent you a request, respond to it instead")
	ErrRequestNotFound     = apperr.NotFound("FRIEND_REQUEST_NOT_FOUND", "friend request not found")
	ErrNotRequestRecipient = apperr.Forbidden("NOT_REQUEST_RECIPIENT", "this friend request is addressed to someone else")
	ErrEmptyQuery          = apperr.Validation("q", "enter a username to search")
)

// Store is the persistence the friend service needs
type Store interface {
	WithTx(ctx context.Context, fn func(Store) error) error
	GetUser(ctx context.Context, id int64) (*user.User, error)
	SearchUsers(ctx context.Context, query string, excludeID int64, limit int) ([]*user.User, error)
	LockPair(ctx context.Context, a, b int64) error
	IsFriend(ctx context.Context, userID, friendID int64) (bool, error)
	EnsureFriendship(ctx context.Context, userID, friendID int64) error
	DeleteFriendships(ctx context.Context, a, b int64) error
	ListFriends(ctx context.Context, userID int64) ([]*user.User, error)
	ListOutgoingFriends(ctx context.Context, userID int64) ([]*user.User, error)
	GetRequestBetween(ctx context.Context, fromID, toID int64) (*Request, error)
	GetRequestForUpdate(ctx context.Context, id int64) (*Request, error)
	CreateRequest(ctx context.Context, req *Request) error
	MarkAccepted(ctx context.Context, id int64) error
	DeleteRequest(ctx context.Context, id int64) error
	DeleteRequestsBetween(ctx context.Context, a, b int64) error
	ListPending(ctx context.Context, userID int64, incoming bool) ([]*Request, error)
	ListInvolving(ctx context.Context, userID int64) ([]*Request, error)
	CreateNotification(ctx context.Context, n *notification.Notification) error
}

// Service manages the friend graph
type Service struct {
	store      Store
	dispatcher *notification.Dispatcher
}

// NewService creates a new friend service
func NewService(store Store, dispatcher *notification.Dispatcher) *Service {
	return &Service{store: store, dispatcher: dispatcher}
}

func befriend(ctx context.Context, tx Store, a, b int64) error {
	if err := tx.EnsureFriendship(ctx, a, b); err != nil {
		return err
	}
	return tx.EnsureFriendship(ctx, b, a)
}

// SendRequest sends a friend request from one user to another
func (s *Service) SendRequest(ctx context.Context, fromID, toID int64) (*SendResult, error) {
	if fromID == toID {
		return nil, ErrSelfRequest
	}

	var out notification.Outbox
	result := &SendResult{}

	err := s.store.WithTx(ctx, func(tx Store) error {
		if err := tx.LockPair(ctx, fromID, toID); err != nil {
			return err
		}

		to, err := tx.GetUser(ctx, toID)
		if err != nil {
			return err
		}
		if to == nil {
			return user.ErrUserNotFound
		}

		friends, err := tx.IsFriend(ctx, fromID, toID)
		if err != nil {
			return err
		}
		if friends {
			return ErrAlreadyFriends
		}

		own, err := tx.GetRequestBetween(ctx, fromID, toID)
		if err != nil {
			return err
		}
		if own != nil {
			if !own.IsAccepted {
				return ErrRequestAlreadySent
			}
			result.Request = own
			result.AlreadyFriends = true
			return befriend(ctx, tx, fromID, toID)
		}

		theirs, err := tx.GetRequestBetween(ctx, toID, fromID)
		if err != nil {
			return err
		}
		if theirs != nil && !theirs.IsAccepted {
			return ErrReversePending.WithDetail("request_id", theirs.ID)
		}

		from, err := tx.GetUser(ctx, fromID)
		if err != nil {
			return err
		}
		if from == nil {
			return user.ErrUserNotFound
		}

		req := &Request{
			FromUserID:   fromID,
			FromUsername: from.Username,
			ToUserID:     toID,
			ToUsername:   to.Username,
		}
		if err := tx.CreateRequest(ctx, req); err != nil {
			return err
		}
		result.Request = req

		n := &notification.Notification{
			UserID:        toID,
			Type:          notification.TypeFriendRequest,
			Title:         "New friend request",
			Message:       fmt.Sprintf("%s wants to be your friend", from.Username),
			RelatedUserID: &fromID,
		}
		if err := tx.CreateNotification(ctx, n); err != nil {
			return err
		}
		out.Add(n)
		return nil
	})
	if err != nil {
		return nil, err
	}

	out.Flush(ctx, s.dispatcher)
	return result, nil
}

// AcceptRequest accepts a request addressed to the actor and creates both
// friendship rows. Accepting twice only restores missing rows.
func (s *Service) AcceptRequest(ctx context.Context, requestID, actorID int64) (*Request, error) {
	var out notification.Outbox
	var accepted *Request

	err := s.store.WithTx(ctx, func(tx Store) error {
		req, err := tx.GetRequestForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return ErrRequestNotFound
		}
		if req.ToUserID != actorID {
			return ErrNotRequestRecipient
		}
		accepted = req

		if req.IsAccepted {
			return befriend(ctx, tx, req.FromUserID, req.ToUserID)
		}

		if err := tx.MarkAccepted(ctx, req.ID); err != nil {
			return err
		}
		req.IsAccepted = true
		if err := befriend(ctx, tx, req.FromUserID, req.ToUserID); err != nil {
			return err
		}

		n := &notification.Notification{
			UserID:        req.FromUserID,
			Type:          notification.TypeFriendRequest,
			Title:         "Friend request accepted",
			Message:       fmt.Sprintf("%s accepted your friend request", req.ToUsername),
			RelatedUserID: &actorID,
		}
		if err := tx.CreateNotification(ctx, n); err != nil {
			return err
		}
		out.Add(n)
		return nil
	})
	if err != nil {
		return nil, err
	}

	out.Flush(ctx, s.dispatcher)
	return accepted, nil
}

// RejectRequest deletes a request addressed to the actor
func (s *Service) RejectRequest(ctx context.Context, requestID, actorID int64) error {
	return s.store.WithTx(ctx, func(tx Store) error {
		req, err := tx.GetRequestForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return ErrRequestNotFound
		}
		if req.ToUserID != actorID {
			return ErrNotRequestRecipient
		}
		return tx.DeleteRequest(ctx, req.ID)
	})
}

// RemoveFriend deletes every friendship and request row between the actor
// and another user
func (s *Service) RemoveFriend(ctx context.Context, actorID, otherID int64) (*user.User, error) {
	var other *user.User
	err := s.store.WithTx(ctx, func(tx Store) error {
		if err := tx.LockPair(ctx, actorID, otherID); err != nil {
			return err
		}

		var err error
		other, err = tx.GetUser(ctx, otherID)
		if err != nil {
			return err
		}
		if other == nil {
			return user.ErrUserNotFound
		}
		if err := tx.DeleteFriendships(ctx, actorID, otherID); err != nil {
			return err
		}
		return tx.DeleteRequestsBetween(ctx, actorID, otherID)
	})
	if err != nil {
		return nil, err
	}
	return other, nil
}

// ListFriends returns the actor's friends from either side of the graph
func (s *Service) ListFriends(ctx context.Context, actorID int64) ([]*user.User, error) {
	return s.store.ListFriends(ctx, actorID)
}

// FriendsForInvite returns the friends offered in the invite dialog
func (s *Service) FriendsForInvite(ctx context.Context, actorID int64) ([]*user.User, error) {
	return s.store.ListOutgoingFriends(ctx, actorID)
}

// Overview returns friends and pending requests in both directions
func (s *Service) Overview(ctx context.Context, actorID int64) (*Overview, error) {
	friends, err := s.store.ListFriends(ctx, actorID)
	if err != nil {
		return nil, err
	}
	incoming, err := s.store.ListPending(ctx, actorID, true)
	if err != nil {
		return nil, err
	}
	outgoing, err := s.store.ListPending(ctx, actorID, false)
	if err != nil {
		return nil, err
	}
	return &Overview{Friends: friends, Incoming: incoming, Outgoing: outgoing}, nil
}

// Search finds users by username and reports their relation to the actor
func (s *Service) Search(ctx context.Context, actorID int64, query string) ([]*SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	users, err := s.store.SearchUsers(ctx, query, actorID, SearchLimit)
	if err != nil {
		return nil, err
	}
	friends, err := s.store.ListOutgoingFriends(ctx, actorID)
	if err != nil {
		return nil, err
	}
	requests, err := s.store.ListInvolving(ctx, actorID)
	if err != nil {
		return nil, err
	}

	friendIDs := make(map[int64]bool, len(friends))
	for _, f := range friends {
		friendIDs[f.ID] = true
	}
	sent := make(map[int64]*Request)
	received := make(map[int64]*Request)
	for _, req := range requests {
		if req.FromUserID == actorID {
			sent[req.ToUserID] = req
		} else {
			received[req.FromUserID] = req
		}
	}

	results := make([]*SearchResult, 0, len(users))
	for _, u := range users {
		res := &SearchResult{User: u}
		out, in := sent[u.ID], received[u.ID]
		if out != nil {
			res.SentRequestID = &out.ID
		}
		if in != nil {
			res.ReceivedRequestID = &in.ID
		}
		res.Relation = relation(friendIDs[u.ID], out, in)
		results = append(results, res)
	}
	return results, nil
}

func relation(isFriend bool, sent, received *Request) Relation {
	accepted := (sent != nil && sent.IsAccepted) || (received != nil && received.IsAccepted)
	switch {
	case accepted && !isFriend:
		return RelationAcceptedNoFriendship
	case isFriend:
		return RelationFriends
	case sent != nil && !sent.IsAccepted:
		return RelationSentPending
	case received != nil && !received.IsAccepted:
		return RelationReceivedPending
	default:
		return RelationNone
	}
}
