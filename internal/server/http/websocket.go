package http

import (
	"context"
	"log"

	"chessrules/internal/core"
	"chessrules/internal/server/processor"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// wsUpgrade refuses plain HTTP requests on the stream endpoint
func wsUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

// StreamGame pushes the game state on connect and after every change
// until the client leaves or the game is deleted. Incoming messages are
// read only to notice the disconnect.
func (h *HTTPHandler) StreamGame(c *websocket.Conn) {
	gameID := c.Params("gameId")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		defer cancel()
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	sent := -1
	for {
		resp := h.proc.Execute(processor.NewGetGameCommand(gameID))
		if !resp.Success {
			_ = c.WriteJSON(resp.Error)
			return
		}
		state := resp.Data.(core.GameResponse)
		if state.Version != sent {
			if err := c.WriteJSON(state); err != nil {
				log.Printf("websocket write for game %s: %v", gameID, err)
				return
			}
			sent = state.Version
		}

		<-h.svc.RegisterWait(ctx, gameID, sent)
		if ctx.Err() != nil {
			return
		}
	}
}
