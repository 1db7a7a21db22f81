package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// dialTestClient connects one real WebSocket client to the hub and
// returns the consumer side of the connection.
func dialTestClient(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		client := newClient(conn)
		hub.register <- client
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					hub.unregister <- client
					return
				}
			}
		}()
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	waitForClients(t, hub, 1)
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hub.mu.RLock()
		count := len(hub.clients)
		hub.mu.RUnlock()
		if count == n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("hub never reached %d registered clients", n)
}

// Feed snapshots and upload progress are broadcast from different
// goroutines; every event must still reach the client intact.
func TestConcurrentBroadcastsShareOneWriter(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn := dialTestClient(t, hub)

	const rounds = 50
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			hub.BroadcastFeed(nil)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			hub.BroadcastProgress("session", i)
		}
	}()
	wg.Wait()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	feeds, progress := 0, 0
	for feeds+progress < 2*rounds {
		var event Event
		if err := conn.ReadJSON(&event); err != nil {
			t.Fatalf("read after %d events: %v", feeds+progress, err)
		}
		switch event.Type {
		case EventTypeFeed:
			feeds++
		case EventTypeUploadProgress:
			progress++
		default:
			t.Fatalf("unexpected event type %q", event.Type)
		}
	}
	if feeds != rounds || progress != rounds {
		t.Fatalf("got %d feed and %d progress events, want %d of each", feeds, progress, rounds)
	}
}

func TestUnregisterStopsDelivery(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn := dialTestClient(t, hub)

	conn.Close()
	waitForClients(t, hub, 0)

	// Broadcasting into an empty hub must not block or panic
	hub.BroadcastFeed(nil)
	hub.BroadcastProgress("session", 100)
}
