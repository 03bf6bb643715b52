package highrise

import (
	"encoding/json"
	"errors"
	"testing"

	hrerrors "github.com/iamwavecut/hrbots/internal/errors"
)

func TestDecodeEvent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		frame string
		check func(t *testing.T, ev Event)
	}{
		{
			name:  "chat",
			frame: `{"_type":"ChatEvent","user":{"id":"u1","username":"alice"},"message":"hi","whisper":false}`,
			check: func(t *testing.T, ev Event) {
				e, ok := ev.(*ChatEvent)
				if !ok || e.User.ID != "u1" || e.Message != "hi" || e.Whisper {
					t.Fatalf("unexpected chat event: %#v", ev)
				}
			},
		},
		{
			name:  "move-with-coordinates",
			frame: `{"_type":"UserMovedEvent","user":{"id":"u1","username":"alice"},"position":{"x":3,"y":4,"z":0,"facing":"BackLeft"}}`,
			check: func(t *testing.T, ev Event) {
				e, ok := ev.(*UserMovedEvent)
				if !ok {
					t.Fatalf("unexpected event: %#v", ev)
				}
				pos, ok := e.Location.(Position)
				if !ok || pos.X != 3 || pos.Y != 4 || pos.Facing != FacingBackLeft {
					t.Fatalf("unexpected location: %#v", e.Location)
				}
			},
		},
		{
			name:  "move-to-anchor",
			frame: `{"_type":"UserMovedEvent","user":{"id":"u1","username":"alice"},"position":{"entity_id":"chair-1","anchor_ix":2}}`,
			check: func(t *testing.T, ev Event) {
				e := ev.(*UserMovedEvent)
				anchor, ok := e.Location.(AnchorPosition)
				if !ok || anchor.EntityID != "chair-1" || anchor.AnchorIx != 2 {
					t.Fatalf("unexpected location: %#v", e.Location)
				}
			},
		},
		{
			name:  "join-without-position",
			frame: `{"_type":"UserJoinedEvent","user":{"id":"u2","username":"bob"}}`,
			check: func(t *testing.T, ev Event) {
				e := ev.(*UserJoinedEvent)
				if e.User.Username != "bob" || e.Location != nil {
					t.Fatalf("unexpected join: %#v", e)
				}
			},
		},
		{
			name:  "emote-without-receiver",
			frame: `{"_type":"EmoteEvent","user":{"id":"u1","username":"alice"},"emote_id":"emote-wave","receiver":null}`,
			check: func(t *testing.T, ev Event) {
				e := ev.(*EmoteEvent)
				if e.EmoteID != "emote-wave" || e.Receiver != nil {
					t.Fatalf("unexpected emote: %#v", e)
				}
			},
		},
		{
			name:  "tip",
			frame: `{"_type":"TipReactionEvent","sender":{"id":"u1","username":"alice"},"receiver":{"id":"u2","username":"bob"},"item":{"type":"gold","amount":5}}`,
			check: func(t *testing.T, ev Event) {
				e := ev.(*TipReactionEvent)
				if e.Item.Type != "gold" || e.Item.Amount != 5 || e.Receiver.Username != "bob" {
					t.Fatalf("unexpected tip: %#v", e)
				}
			},
		},
		{
			name:  "channel",
			frame: `{"_type":"ChannelEvent","sender_id":"bot-2","message":"ping","tags":["a","b"]}`,
			check: func(t *testing.T, ev Event) {
				e := ev.(*ChannelEvent)
				if e.SenderID != "bot-2" || len(e.Tags) != 2 {
					t.Fatalf("unexpected channel: %#v", e)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ev, err := DecodeEvent([]byte(tt.frame))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			tt.check(t, ev)
		})
	}
}

func TestDecodeEventUnknownType(t *testing.T) {
	t.Parallel()

	_, err := DecodeEvent([]byte(`{"_type":"VoiceEvent"}`))
	if !errors.Is(err, hrerrors.ErrUnknownEvent) {
		t.Fatalf("expected unknown event error, got %v", err)
	}
}

func TestDecodeEventRejectsMoveWithoutPosition(t *testing.T) {
	t.Parallel()

	if _, err := DecodeEvent([]byte(`{"_type":"UserMovedEvent","user":{"id":"u1"}}`)); err == nil {
		t.Fatalf("expected error for move without position")
	}
}

func TestEncodeChatWhisperTarget(t *testing.T) {
	t.Parallel()

	frame, err := encodeChat("psst", "u9")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got := map[string]any{}
	if err := json.Unmarshal(frame, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["_type"] != "ChatRequest" || got["message"] != "psst" || got["whisper_target_id"] != "u9" {
		t.Fatalf("unexpected frame: %s", frame)
	}
	if rid, _ := got["rid"].(string); rid == "" {
		t.Fatalf("missing rid: %s", frame)
	}

	broadcast, err := encodeChat("hello", "")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got = map[string]any{}
	_ = json.Unmarshal(broadcast, &got)
	if _, ok := got["whisper_target_id"]; ok {
		t.Fatalf("broadcast must not carry whisper target: %s", broadcast)
	}
}
