package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mealtrack-go-api/internal/service"
)

const feedPingInterval = 30 * time.Second

// FeedHandler streams live claim events to dashboard websockets.
type FeedHandler struct {
	feed   service.ClaimFeedService
	logger zerolog.Logger
}

// NewFeedHandler constructs the handler.
func NewFeedHandler(feed service.ClaimFeedService, logger zerolog.Logger) *FeedHandler {
	return &FeedHandler{
		feed:   feed,
		logger: logger.With().Str("component", "feed_handler").Logger(),
	}
}

// Register wires the websocket upgrade under the provided router group.
func (h *FeedHandler) Register(router fiber.Router) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	router.Get("/ws", websocket.New(h.handleConnection))
}

func (h *FeedHandler) handleConnection(conn *websocket.Conn) {
	events, cancel := h.feed.Subscribe()
	defer cancel()

	h.logger.Info().Msg("feed websocket connected")
	defer h.logger.Info().Msg("feed websocket disconnected")

	// Drain the client read side so close frames are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(feedPingInterval)
	defer ping.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
