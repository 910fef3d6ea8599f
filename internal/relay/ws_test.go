package relay

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/your-org/alert-relay/pkg/bus"
)

func dialWS(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForSessions(t *testing.T, hub *bus.Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Count() != want {
		if time.Now().After(deadline) {
			t.Fatalf("sessions=%d, want %d", hub.Count(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWebSocketReceivesBroadcasts(t *testing.T) {
	h, hub := newTestHandler(t, &fakeBackend{})
	server := httptest.NewServer(h.Router())
	defer server.Close()

	conn := dialWS(t, server)
	waitForSessions(t, hub, 1)

	if _, err := h.service.ProcessAlert(context.Background(), 40.7, -74.0); err != nil {
		t.Fatalf("process alert: %v", err)
	}

	var env struct {
		Event string         `json:"event"`
		Data  map[string]any `json:"data"`
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read event: %v", err)
	}

	if env.Event != TopicAlert {
		t.Fatalf("event=%q, want %q", env.Event, TopicAlert)
	}
	if env.Data["latitude"] != 40.7 || env.Data["longitude"] != -74.0 {
		t.Fatalf("payload=%v", env.Data)
	}
	if _, ok := env.Data["timestamp"]; !ok {
		t.Fatalf("payload missing timestamp: %v", env.Data)
	}
}

func TestWebSocketRecordingPayloadIsURLString(t *testing.T) {
	backend := &fakeBackend{ref: "/uploads/clip.webm"}
	h, hub := newTestHandler(t, backend)
	server := httptest.NewServer(h.Router())
	defer server.Close()

	conn := dialWS(t, server)
	waitForSessions(t, hub, 1)

	if _, err := h.service.ProcessRecording(context.Background(), strings.NewReader("b"), 1, "audio/webm"); err != nil {
		t.Fatalf("process recording: %v", err)
	}

	var env struct {
		Event string `json:"event"`
		Data  any    `json:"data"`
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read event: %v", err)
	}

	if env.Event != TopicRecording {
		t.Fatalf("event=%q, want %q", env.Event, TopicRecording)
	}
	if env.Data != backend.ref {
		t.Fatalf("payload=%v, want %q", env.Data, backend.ref)
	}
}

func TestWebSocketDisconnectUnregisters(t *testing.T) {
	h, hub := newTestHandler(t, &fakeBackend{})
	server := httptest.NewServer(h.Router())
	defer server.Close()

	first := dialWS(t, server)
	dialWS(t, server)
	waitForSessions(t, hub, 2)

	first.Close()
	waitForSessions(t, hub, 1)

	// The departed session must not delay or fail a new broadcast.
	if _, err := h.service.ProcessAlert(context.Background(), 1, 2); err != nil {
		t.Fatalf("broadcast after disconnect: %v", err)
	}
}
