package http

import (
	"time"

	"contacts-api/internal/contacts/domain/model"
	"contacts-api/internal/contacts/usecase"
	"contacts-api/internal/shared/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	watchBufferSize = 32
	writeTimeout    = 10 * time.Second
)

// WatchHandler streams contact events to WebSocket clients
type WatchHandler struct {
	hub *usecase.WatchHub
	log logger.Logger
}

// NewWatchHandler creates a new WatchHandler
func NewWatchHandler(hub *usecase.WatchHub, log logger.Logger) *WatchHandler {
	if log == nil {
		log = logger.NewLogger()
	}
	return &WatchHandler{hub: hub, log: log.WithComponent("watch-handler")}
}

// RegisterRoutes mounts GET /contacts/watch
func (h *WatchHandler) RegisterRoutes(router fiber.Router) {
	router.Use("/contacts/watch", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/contacts/watch", websocket.New(h.handleConnection))
}

func (h *WatchHandler) handleConnection(conn *websocket.Conn) {
	subscriberID := uuid.NewString()
	log := h.log.WithFields(map[string]interface{}{"subscriber_id": subscriberID})

	events := make(chan model.ContactEvent, watchBufferSize)
	h.hub.Subscribe(subscriberID, events)
	log.Info("Watch connection opened")

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for event := range events {
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(event); err != nil {
				log.Warnf("Failed to write event: %v", err)
				// drain until the channel is closed
				for range events {
				}
				return
			}
		}
	}()

	// Clients never send anything meaningful; reading detects disconnects
	// and answers control frames.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warnf("Watch connection error: %v", err)
			}
			break
		}
	}

	h.hub.Unsubscribe(subscriberID)
	close(events)
	<-writerDone
	log.Info("Watch connection closed")
}
