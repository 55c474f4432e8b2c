package websocket

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced by the HTTP middleware stack
	},
}

// HandleWebSocket upgrades an authenticated admin request to a WebSocket
// connection and keeps it registered until the dashboard disconnects.
func HandleWebSocket(hub *Hub) echo.HandlerFunc {
	return func(c echo.Context) error {
		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed: %v", err)
			return err
		}

		client := newClient(conn)
		hub.register <- client
		go client.writePump()

		// Dashboards never send application messages; the read loop exists
		// to observe the close frame.
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
}
