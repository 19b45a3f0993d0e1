package hub

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http"), nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	return conn
}

func TestBroadcastReachesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := New(nil)
	go h.Run(ctx)
	srv := httptest.NewServer(h)
	defer srv.Close()

	a := dial(t, srv.URL)
	defer a.Close()
	b := dial(t, srv.URL)
	defer b.Close()
	waitFor(t, func() bool { return h.ClientCount() == 2 })

	if err := h.Broadcast(map[string]string{"type": "state_saved"}); err != nil {
		t.Fatalf("Broadcast failed: %v", err)
	}

	for _, conn := range []*websocket.Conn{a, b} {
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			t.Fatalf("ReadJSON failed: %v", err)
		}
		if env.Type != "state_saved" {
			t.Errorf("Expected state_saved, got %q", env.Type)
		}
	}
}

func TestInboundMessagesReachHandler(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan []byte, 1)
	h := New(func(data []byte) { received <- data })
	go h.Run(ctx)
	srv := httptest.NewServer(h)
	defer srv.Close()

	conn := dial(t, srv.URL)
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"type": "recall", "deploymentId": "dep_1"}); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	select {
	case data := <-received:
		var msg struct {
			Type         string `json:"type"`
			DeploymentID string `json:"deploymentId"`
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("Bad message: %v", err)
		}
		if msg.Type != "recall" || msg.DeploymentID != "dep_1" {
			t.Errorf("Unexpected message %+v", msg)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Handler never received the message")
	}
}

func TestDisconnectUnregisters(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := New(nil)
	go h.Run(ctx)
	srv := httptest.NewServer(h)
	defer srv.Close()

	conn := dial(t, srv.URL)
	waitFor(t, func() bool { return h.ClientCount() == 1 })
	conn.Close()
	waitFor(t, func() bool { return h.ClientCount() == 0 })
}
