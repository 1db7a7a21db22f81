package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/justda2ofus/memories_backend/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket handles the WebSocket connection. snapshot supplies the
// current feed so a fresh client is never empty while waiting for the
// next change.
func HandleWebSocket(c echo.Context, hub *Hub, snapshot func() []models.Post) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := newClient(conn)
	hub.register <- client

	// Both go through the client's writer so they cannot interleave
	// with a broadcast already in flight
	client.enqueue(Event{
		Type:    EventTypeConnected,
		Message: "WebSocket connection established",
	})

	// Deliver the current feed right away
	client.enqueue(Event{
		Type: EventTypeFeed,
		Data: snapshot(),
	})

	// Drain the connection until the client goes away
	go func() {
		defer func() {
			hub.unregister <- client
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()

	return nil
}
