package chat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{}

// echoServer upgrades, counts pings, and echoes every JSON frame back.
func echoServer(t *testing.T, pings *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer func() { _ = ws.Close() }()
		if pings != nil {
			ws.SetPingHandler(func(appData string) error {
				pings.Add(1)
				return ws.WriteControl(websocket.PongMessage, nil, time.Now().Add(time.Second))
			})
		}
		for {
			var msg Message
			if err := ws.ReadJSON(&msg); err != nil {
				return
			}
			if err := ws.WriteJSON(msg); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestSendAndReceive(t *testing.T) {
	srv := echoServer(t, nil)

	conn, err := Dial(context.Background(), wsURL(srv))
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	sent := Message{Type: "chat", Sender: "tester", Body: "hello"}
	if err := conn.Send(sent); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case got := <-conn.Messages():
		if got.Body != "hello" || got.Sender != "tester" {
			t.Errorf("echoed message = %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for echo")
	}
}

func TestKeepAlivePings(t *testing.T) {
	var pings atomic.Int32
	srv := echoServer(t, &pings)

	conn, err := Dial(context.Background(), wsURL(srv), WithPingInterval(20*time.Millisecond))
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	// Reads must be pumped for the ping handler to run server-side; the echo
	// loop does that, we just need traffic-free waiting client-side.
	deadline := time.After(2 * time.Second)
	for pings.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 2 keep-alive pings, got %d", pings.Load())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestCloseEndsMessageChannel(t *testing.T) {
	srv := echoServer(t, nil)

	conn, err := Dial(context.Background(), wsURL(srv))
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Close twice is safe.
	_ = conn.Close()

	select {
	case _, ok := <-conn.Messages():
		if ok {
			t.Error("expected closed channel after Close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("message channel did not close")
	}
	if conn.Err() != nil {
		t.Errorf("deliberate close must not record an error, got %v", conn.Err())
	}
}
