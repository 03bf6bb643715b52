package highrise

import (
	"encoding/json"
	"fmt"

	"github.com/pborman/uuid"

	hrerrors "github.com/iamwavecut/hrbots/internal/errors"
)

const typeKey = "_type"

// Event is any frame delivered by the room session.
type Event interface {
	EventType() string
}

type (
	SessionMetadata struct {
		UserID       string   `json:"user_id"`
		RoomInfo     RoomInfo `json:"room_info"`
		ConnectionID string   `json:"connection_id"`
	}

	ChatEvent struct {
		User    User   `json:"user"`
		Message string `json:"message"`
		Whisper bool   `json:"whisper"`
	}

	UserJoinedEvent struct {
		User     User     `json:"user"`
		Location Location `json:"-"`
	}

	UserLeftEvent struct {
		User User `json:"user"`
	}

	UserMovedEvent struct {
		User     User     `json:"user"`
		Location Location `json:"-"`
	}

	EmoteEvent struct {
		User     User   `json:"user"`
		EmoteID  string `json:"emote_id"`
		Receiver *User  `json:"receiver"`
	}

	ReactionEvent struct {
		User     User     `json:"user"`
		Reaction Reaction `json:"reaction"`
		Receiver User     `json:"receiver"`
	}

	TipReactionEvent struct {
		Sender   User `json:"sender"`
		Receiver User `json:"receiver"`
		Item     Item `json:"item"`
	}

	ChannelEvent struct {
		SenderID string   `json:"sender_id"`
		Message  string   `json:"message"`
		Tags     []string `json:"tags"`
	}

	ChatResponse struct {
		RID string `json:"rid"`
	}

	KeepaliveResponse struct {
		RID string `json:"rid"`
	}

	ErrorEvent struct {
		Message string `json:"message"`
		RID     string `json:"rid"`
	}
)

func (*SessionMetadata) EventType() string   { return "SessionMetadata" }
func (*ChatEvent) EventType() string         { return "ChatEvent" }
func (*UserJoinedEvent) EventType() string   { return "UserJoinedEvent" }
func (*UserLeftEvent) EventType() string     { return "UserLeftEvent" }
func (*UserMovedEvent) EventType() string    { return "UserMovedEvent" }
func (*EmoteEvent) EventType() string        { return "EmoteEvent" }
func (*ReactionEvent) EventType() string     { return "ReactionEvent" }
func (*TipReactionEvent) EventType() string  { return "TipReactionEvent" }
func (*ChannelEvent) EventType() string      { return "ChannelEvent" }
func (*ChatResponse) EventType() string      { return "ChatResponse" }
func (*KeepaliveResponse) EventType() string { return "KeepaliveResponse" }
func (*ErrorEvent) EventType() string        { return "Error" }

func (e *UserJoinedEvent) UnmarshalJSON(data []byte) error {
	wire := struct {
		User     User            `json:"user"`
		Position json.RawMessage `json:"position"`
	}{}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	loc, err := decodeLocation(wire.Position)
	if err != nil {
		return err
	}
	e.User, e.Location = wire.User, loc
	return nil
}

func (e *UserMovedEvent) UnmarshalJSON(data []byte) error {
	wire := struct {
		User     User            `json:"user"`
		Position json.RawMessage `json:"position"`
	}{}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	loc, err := decodeLocation(wire.Position)
	if err != nil {
		return err
	}
	if loc == nil {
		return fmt.Errorf("move event without position")
	}
	e.User, e.Location = wire.User, loc
	return nil
}

var eventFactories = map[string]func() Event{
	"SessionMetadata":   func() Event { return &SessionMetadata{} },
	"ChatEvent":         func() Event { return &ChatEvent{} },
	"UserJoinedEvent":   func() Event { return &UserJoinedEvent{} },
	"UserLeftEvent":     func() Event { return &UserLeftEvent{} },
	"UserMovedEvent":    func() Event { return &UserMovedEvent{} },
	"EmoteEvent":        func() Event { return &EmoteEvent{} },
	"ReactionEvent":     func() Event { return &ReactionEvent{} },
	"TipReactionEvent":  func() Event { return &TipReactionEvent{} },
	"ChannelEvent":      func() Event { return &ChannelEvent{} },
	"ChatResponse":      func() Event { return &ChatResponse{} },
	"KeepaliveResponse": func() Event { return &KeepaliveResponse{} },
	"Error":             func() Event { return &ErrorEvent{} },
}

// DecodeEvent parses one session frame. Frames with an unregistered _type
// yield an error wrapping ErrUnknownEvent.
func DecodeEvent(data []byte) (Event, error) {
	envelope := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	var eventType string
	if raw, ok := envelope[typeKey]; ok {
		if err := json.Unmarshal(raw, &eventType); err != nil {
			return nil, fmt.Errorf("decode frame type: %w", err)
		}
	}
	factory, ok := eventFactories[eventType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", hrerrors.ErrUnknownEvent, eventType)
	}
	event := factory()
	if err := json.Unmarshal(data, event); err != nil {
		return nil, fmt.Errorf("decode %s: %w", eventType, err)
	}
	return event, nil
}

type (
	chatRequest struct {
		Type            string  `json:"_type"`
		Message         string  `json:"message"`
		WhisperTargetID *string `json:"whisper_target_id,omitempty"`
		RID             string  `json:"rid"`
	}

	keepaliveRequest struct {
		Type string `json:"_type"`
		RID  string `json:"rid"`
	}
)

func encodeChat(message string, whisperTarget string) ([]byte, error) {
	req := chatRequest{
		Type:    "ChatRequest",
		Message: message,
		RID:     uuid.New(),
	}
	if whisperTarget != "" {
		req.WhisperTargetID = &whisperTarget
	}
	return json.Marshal(req)
}

func encodeKeepalive() ([]byte, error) {
	return json.Marshal(keepaliveRequest{Type: "KeepaliveRequest", RID: uuid.New()})
}
