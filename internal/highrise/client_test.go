package highrise

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestClientSessionRoundTrip(t *testing.T) {
	t.Parallel()

	upgrader := websocket.Upgrader{}
	received := make(chan map[string]any, 64)
	headers := make(chan http.Header, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Clone()
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		frames := []string{
			`{"_type":"SessionMetadata","user_id":"bot","room_info":{"owner_id":"o","room_name":"lobby"},"connection_id":"c"}`,
			`{"_type":"VoiceEvent"}`,
			`{"_type":"ChatEvent","user":{"id":"u1","username":"alice"},"message":"hi","whisper":false}`,
		}
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			frame := map[string]any{}
			if json.Unmarshal(data, &frame) != nil {
				continue
			}
			select {
			case received <- frame:
			default:
			}
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, err := Dial(ctx, url, "room-1", "secret")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	client.keepalive = 20 * time.Millisecond

	h := <-headers
	if h.Get(headerRoomID) != "room-1" || h.Get(headerAPIToken) != "secret" {
		t.Fatalf("unexpected handshake headers: %v", h)
	}

	events := make(chan Event, 4)
	listenCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- client.Listen(listenCtx, func(e Event) { events <- e }) }()

	if ev := <-events; ev.EventType() != "SessionMetadata" {
		t.Fatalf("expected session metadata first, got %s", ev.EventType())
	}
	chat, ok := (<-events).(*ChatEvent)
	if !ok || chat.Message != "hi" {
		t.Fatalf("unexpected chat event: %#v", chat)
	}

	if err := client.SendWhisper(ctx, "u1", "hello alice"); err != nil {
		t.Fatalf("send whisper: %v", err)
	}

	var sawWhisper, sawKeepalive bool
	for !sawWhisper || !sawKeepalive {
		select {
		case frame := <-received:
			switch frame["_type"] {
			case "ChatRequest":
				if frame["whisper_target_id"] != "u1" || frame["message"] != "hello alice" {
					t.Fatalf("unexpected chat request: %v", frame)
				}
				sawWhisper = true
			case "KeepaliveRequest":
				sawKeepalive = true
			}
		case <-ctx.Done():
			t.Fatalf("timed out: whisper=%v keepalive=%v", sawWhisper, sawKeepalive)
		}
	}

	stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("listen did not return after cancel")
	}
}
