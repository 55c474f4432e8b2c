package websocket

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialTestHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()

	e := echo.New()
	e.GET("/ws", HandleWebSocket(hub))
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 5*time.Millisecond)

	return conn
}

func TestBroadcastFromConcurrentRequests(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn := dialTestHub(t, hub)

	received := make(chan Notification, 256)
	go func() {
		for {
			var n Notification
			if err := conn.ReadJSON(&n); err != nil {
				close(received)
				return
			}
			received <- n
		}
	}()

	// Bookings land from many handlers at once; every frame must still
	// arrive intact
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 4; j++ {
				hub.NotifyTicketCreated(map[string]string{"tripType": "one-way"})
			}
		}()
	}
	wg.Wait()

	deadline := time.After(time.Second)
	count := 0
	for count == 0 {
		select {
		case n, ok := <-received:
			require.True(t, ok, "connection closed before any event arrived")
			assert.Equal(t, EventTicketCreated, n.Type)
			assert.NotEmpty(t, n.Message)
			count++
		case <-deadline:
			t.Fatal("no broadcast event arrived")
		}
	}

	// Drain whatever else made it through; every frame must decode cleanly
	for {
		select {
		case n, ok := <-received:
			if !ok {
				return
			}
			assert.Equal(t, EventTicketCreated, n.Type)
		case <-time.After(100 * time.Millisecond):
			return
		}
	}
}

func TestHubUnregistersClosedConnections(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn := dialTestHub(t, hub)
	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 0
	}, time.Second, 5*time.Millisecond)

	// Broadcasting with no listeners is a no-op, not a panic
	hub.NotifyTicketStatus(map[string]string{"status": "confirmed"})
}
