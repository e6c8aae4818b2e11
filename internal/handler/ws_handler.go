package handler

import (
	"log"
	"strings"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"estampa-fina/internal/middleware"
	"estampa-fina/internal/model"
	"estampa-fina/internal/permission"
	"estampa-fina/internal/ws"
)

type WSHandler struct {
	hub *ws.Hub
}

func NewWSHandler(hub *ws.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// Upgrade rejects plain HTTP requests on the websocket route.
func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// topicCapability names the capability a shared topic requires. Topics not
// listed here are open to every signed-in user.
var topicCapability = map[string]permission.Capability{
	ws.TopicSales:         permission.ViewSales,
	ws.TopicUsers:         permission.ViewUsers,
	ws.TopicInventory:     permission.ViewProducts,
	ws.TopicNotifications: permission.ViewAlerts,
}

func canSubscribe(user permission.Principal, topic string) bool {
	required, ok := topicCapability[topic]
	return !ok || permission.Can(user, required)
}

// requestedTopics parses ?topics=a,b. Unknown names and topics the user may
// not read are dropped; an empty selection means every shared topic the user
// may read. The user's own topic is always added.
func requestedTopics(raw string, user permission.Principal) []string {
	known := make(map[string]bool, len(ws.AllTopics))
	for _, t := range ws.AllTopics {
		known[t] = true
	}

	var topics []string
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if known[t] && canSubscribe(user, t) {
			topics = append(topics, t)
		}
	}
	if len(topics) == 0 {
		for _, t := range ws.AllTopics {
			if canSubscribe(user, t) {
				topics = append(topics, t)
			}
		}
	}
	if user.ID != "" {
		topics = append(topics, ws.UserTopic(user.ID))
	}
	return topics
}

// Stream forwards hub events to the connection until either side goes away.
// GET /ws?token=...&topics=notifications,settings
func (h *WSHandler) Stream() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		user, _ := c.Locals(middleware.LocalCurrentUser).(*model.User)
		if user == nil {
			return
		}
		userID := user.ID.String()

		sub := h.hub.Subscribe(requestedTopics(c.Query("topics"), user.Principal())...)
		if sub == nil {
			return
		}
		defer sub.Close()

		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := c.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-closed:
				return
			case msg, ok := <-sub.C:
				if !ok {
					return
				}
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					log.Printf("ws: write to %s failed: %v", userID, err)
					return
				}
			}
		}
	})
}
