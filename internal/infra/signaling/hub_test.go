package signaling_test

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"interview-coach/internal/infra/signaling"
)

type gaugeRecorder struct {
	mu   sync.Mutex
	last int
}

func (g *gaugeRecorder) PeersChanged(n int) {
	g.mu.Lock()
	g.last = n
	g.mu.Unlock()
}

func (g *gaugeRecorder) value() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}

func newTestHub(t *testing.T) (*signaling.Hub, *gaugeRecorder, string) {
	t.Helper()
	gauge := &gaugeRecorder{}
	hub := signaling.NewHub(gauge, slog.New(slog.NewTextHandler(io.Discard, nil)))
	server := httptest.NewServer(hub)
	t.Cleanup(server.Close)
	return hub, gauge, "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg string) {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("writing: %v", err)
	}
}

func receive(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("reading: %v", err)
	}
	return string(payload)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHub_JoinRelayLeave(t *testing.T) {
	hub, _, url := newTestHub(t)

	alice := dial(t, url)
	bob := dial(t, url)

	send(t, alice, `{"type":"join"}`)
	waitFor(t, "alice in room", func() bool { return hub.Rooms()[signaling.DefaultRoom] == 1 })

	send(t, bob, `{"type":"join","room":"interview-room"}`)
	if got := receive(t, alice); got != `{"type":"user-joined","room":"interview-room"}` {
		t.Errorf("join notice: got %s", got)
	}

	offer := `{"type":"offer","offer":{"sdp":"v=0","type":"offer"}}`
	send(t, bob, offer)
	if got := receive(t, alice); got != offer {
		t.Errorf("relayed offer: got %s, want verbatim %s", got, offer)
	}

	send(t, alice, `{"type":"leave"}`)
	if got := receive(t, bob); got != `{"type":"user-left","room":"interview-room"}` {
		t.Errorf("leave notice: got %s", got)
	}
	waitFor(t, "alice removed", func() bool { return hub.Rooms()[signaling.DefaultRoom] == 1 })
}

func TestHub_MalformedMessageIgnored(t *testing.T) {
	hub, _, url := newTestHub(t)

	alice := dial(t, url)
	bob := dial(t, url)

	send(t, alice, `{"type":"join","room":"r1"}`)
	waitFor(t, "alice in room", func() bool { return hub.Rooms()["r1"] == 1 })
	send(t, bob, `{"type":"join","room":"r1"}`)
	receive(t, alice)

	send(t, bob, `not json`)
	candidate := `{"type":"ice-candidate","candidate":{"candidate":"a=1"}}`
	send(t, bob, candidate)

	if got := receive(t, alice); got != candidate {
		t.Errorf("got %s, want %s", got, candidate)
	}
}

func TestHub_DisconnectDeletesEmptyRoom(t *testing.T) {
	hub, gauge, url := newTestHub(t)

	alice := dial(t, url)
	send(t, alice, `{"type":"join","room":"solo"}`)
	waitFor(t, "room created", func() bool { return hub.Rooms()["solo"] == 1 })
	waitFor(t, "peer counted", func() bool { return gauge.value() == 1 })

	alice.Close()

	waitFor(t, "room deleted", func() bool {
		_, ok := hub.Rooms()["solo"]
		return !ok
	})
	waitFor(t, "peer uncounted", func() bool { return gauge.value() == 0 })
}
