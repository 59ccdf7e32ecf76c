// Package realtime pushes notifications to connected browsers over websockets.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/olahol/melody"

	"github.com/fkhayef/eventplanner/internal/notification"
	"github.com/fkhayef/eventplanner/pkg/middleware"
	"github.com/fkhayef/eventplanner/pkg/response"
)

const userKey = "user_id"

// Message is the frame sent to a websocket client.
type Message struct {
	Kind         string                             `json:"kind"`
	Notification *notification.NotificationResponse `json:"notification"`
}

// Hub tracks websocket sessions keyed by user id.
type Hub struct {
	m      *melody.Melody
	logger *slog.Logger
}

// NewHub creates a hub. Clients only receive, so inbound messages are capped small.
func NewHub(logger *slog.Logger) *Hub {
	m := melody.New()
	m.Config.MaxMessageSize = 512
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	m.HandleConnect(func(s *melody.Session) {
		userID, _ := s.Get(userKey)
		logger.Debug("websocket connected", "user_id", userID)
	})
	m.HandleDisconnect(func(s *melody.Session) {
		userID, _ := s.Get(userKey)
		logger.Debug("websocket disconnected", "user_id", userID)
	})
	m.HandleError(func(s *melody.Session, err error) {
		userID, _ := s.Get(userKey)
		logger.Warn("websocket error", "user_id", userID, "error", err)
	})

	return &Hub{m: m, logger: logger}
}

// ServeHTTP upgrades an authenticated request to a websocket session.
// @Summary      Notification stream
// @Description  Websocket that receives a frame for every new notification of the current user
// @Tags         notifications
// @Router       /ws/notifications [get]
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	if err := h.m.HandleRequestWithKeys(w, r, map[string]interface{}{userKey: userID}); err != nil {
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", "user_id", userID, "error", err)
	}
}

// Deliver sends n to every open session of its recipient.
func (h *Hub) Deliver(_ context.Context, n *notification.Notification) error {
	payload, err := json.Marshal(&Message{Kind: "notification", Notification: n.ToResponse()})
	if err != nil {
		return fmt.Errorf("failed to encode websocket message: %w", err)
	}

	return h.m.BroadcastFilter(payload, func(s *melody.Session) bool {
		return sessionUser(s) == n.UserID
	})
}

// Sessions returns the number of open sessions.
func (h *Hub) Sessions() int {
	return h.m.Len()
}

// Close disconnects every session.
func (h *Hub) Close() error {
	return h.m.Close()
}

func sessionUser(s *melody.Session) int64 {
	v, ok := s.Get(userKey)
	if !ok {
		return 0
	}
	id, _ := v.(int64)
	return id
}
