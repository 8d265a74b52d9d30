package httpserver

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestWebSocketStreamsBoardChanges(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/bob"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readFrame := func() string {
		t.Helper()
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read frame: %v", err)
		}
		return string(data)
	}

	if got, want := readFrame(), "2x2\ndown\ndown\ndown\ndown"; got != want {
		t.Fatalf("initial frame:\n%s\nwant:\n%s", got, want)
	}

	if code, body := get(t, s.Router(), "/flip/alice/0,0"); code != 200 {
		t.Fatalf("flip failed: %d %q", code, body)
	}

	if got, want := readFrame(), "2x2\nup A\ndown\ndown\ndown"; got != want {
		t.Fatalf("frame after flip:\n%s\nwant:\n%s", got, want)
	}
}
