package highrise

import (
	"encoding/json"
	"fmt"
)

type (
	User struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}

	Facing string

	// Location is where a user stands: either free coordinates (Position)
	// or a seat/furniture slot (AnchorPosition).
	Location interface {
		location()
	}

	Position struct {
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
		Z      float64 `json:"z"`
		Facing Facing  `json:"facing"`
	}

	AnchorPosition struct {
		EntityID string `json:"entity_id"`
		AnchorIx int    `json:"anchor_ix"`
	}

	// Item is a tip payload. Currency tips carry no ID.
	Item struct {
		Type   string `json:"type"`
		Amount int    `json:"amount"`
		ID     string `json:"id,omitempty"`
	}

	Reaction string

	RoomInfo struct {
		OwnerID  string `json:"owner_id"`
		RoomName string `json:"room_name"`
	}
)

const (
	FacingFrontRight Facing = "FrontRight"
	FacingFrontLeft  Facing = "FrontLeft"
	FacingBackRight  Facing = "BackRight"
	FacingBackLeft   Facing = "BackLeft"
)

const (
	ReactionClap   Reaction = "clap"
	ReactionHeart  Reaction = "heart"
	ReactionThumbs Reaction = "thumbs"
	ReactionWave   Reaction = "wave"
	ReactionWink   Reaction = "wink"
)

func (Position) location()       {}
func (AnchorPosition) location() {}

func (u User) String() string {
	return u.Username
}

func (p Position) String() string {
	return fmt.Sprintf("%g %g %g", p.X, p.Y, p.Z)
}

func decodeLocation(raw json.RawMessage) (Location, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	shape := struct {
		EntityID *string `json:"entity_id"`
	}{}
	if err := json.Unmarshal(raw, &shape); err != nil {
		return nil, fmt.Errorf("decode position: %w", err)
	}
	if shape.EntityID != nil {
		anchor := AnchorPosition{}
		if err := json.Unmarshal(raw, &anchor); err != nil {
			return nil, fmt.Errorf("decode anchor position: %w", err)
		}
		return anchor, nil
	}
	pos := Position{}
	if err := json.Unmarshal(raw, &pos); err != nil {
		return nil, fmt.Errorf("decode position: %w", err)
	}
	return pos, nil
}
