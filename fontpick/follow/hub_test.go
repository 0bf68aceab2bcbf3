package follow

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"
)

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	h := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return h, srv
}

// dial connects to room and consumes the greeting.
func dial(t *testing.T, srv *httptest.Server, room string) (*websocket.Conn, Message) {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/follow?room=" + room
	c, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", room, err)
	}
	t.Cleanup(func() { c.Close() })

	var hello Message
	c.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := c.ReadJSON(&hello); err != nil {
		t.Fatalf("greeting: %v", err)
	}
	return c, hello
}

func TestHubRelaysWithinRoom(t *testing.T) {
	_, srv := newTestHub(t)

	a, hello := dial(t, srv, "studio")
	if hello.FontID != "" {
		t.Errorf("empty room greeted with %q", hello.FontID)
	}
	b, _ := dial(t, srv, "studio")
	other, _ := dial(t, srv, "elsewhere")

	if err := a.WriteJSON(Message{FontID: "fraunces"}); err != nil {
		t.Fatal(err)
	}

	var got Message
	b.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := b.ReadJSON(&got); err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(Message{Room: "studio", FontID: "fraunces"}, got); d != "" {
		t.Errorf("relayed message mismatch (-want +got):\n%s", d)
	}

	other.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if err := other.ReadJSON(&got); err == nil {
		t.Errorf("peer in another room received %+v", got)
	}
}

func TestHubGreetsWithLastFont(t *testing.T) {
	_, srv := newTestHub(t)

	a, _ := dial(t, srv, "r")
	b, _ := dial(t, srv, "r")
	a.WriteJSON(Message{FontID: "dm-mono"})

	var m Message
	b.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := b.ReadJSON(&m); err != nil {
		t.Fatal(err)
	}

	_, hello := dial(t, srv, "r")
	if hello.FontID != "dm-mono" {
		t.Errorf("late peer greeted with %q, want dm-mono", hello.FontID)
	}
}

func TestHubIgnoresUnknownFonts(t *testing.T) {
	_, srv := newTestHub(t)

	a, _ := dial(t, srv, "r")
	b, _ := dial(t, srv, "r")
	a.WriteJSON(Message{FontID: "wingdings"})
	a.WriteJSON(Message{FontID: "outfit"})

	var m Message
	b.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := b.ReadJSON(&m); err != nil {
		t.Fatal(err)
	}
	if m.FontID != "outfit" {
		t.Errorf("got %q, want outfit", m.FontID)
	}
}

func TestHubRequiresRoom(t *testing.T) {
	_, srv := newTestHub(t)
	res, err := http.Get(srv.URL + "/follow")
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("got status %d, want 400", res.StatusCode)
	}
}

func TestHubForgetsEmptyRooms(t *testing.T) {
	h, srv := newTestHub(t)
	c, _ := dial(t, srv, "tmp")
	if n := h.Peers("tmp"); n != 1 {
		t.Fatalf("got %d peers, want 1", n)
	}
	c.Close()

	deadline := time.Now().Add(2 * time.Second)
	for h.Peers("tmp") != 0 {
		if time.Now().After(deadline) {
			t.Fatal("peer never left")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
