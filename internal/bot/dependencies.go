package bot

import (
	"context"

	"github.com/iamwavecut/hrbots/internal/db"
	"github.com/iamwavecut/hrbots/internal/highrise"
)

// Room defines the actions a bot can take in the room it is connected to
type Room interface {
	Chat(ctx context.Context, text string) error
	SendWhisper(ctx context.Context, userID, text string) error
}

// ServiceRoom defines room-specific operations
type ServiceRoom interface {
	GetRoom() Room
}

// ServiceDB defines database-specific operations
type ServiceDB interface {
	GetDB() db.Client
}

// Service defines the core bot service interface
type Service interface {
	ServiceRoom
	ServiceDB
	GetLanguage() string
}

// Handler is any bot. What it reacts to is decided by the capability
// interfaces below that it also implements.
type Handler interface {
	Name() string
}

type (
	StartHandler interface {
		OnStart(ctx context.Context, meta *highrise.SessionMetadata) error
	}

	ChatHandler interface {
		OnChat(ctx context.Context, user highrise.User, message string) error
	}

	WhisperHandler interface {
		OnWhisper(ctx context.Context, user highrise.User, message string) error
	}

	JoinHandler interface {
		OnUserJoin(ctx context.Context, user highrise.User, location highrise.Location) error
	}

	LeaveHandler interface {
		OnUserLeave(ctx context.Context, user highrise.User) error
	}

	MoveHandler interface {
		OnUserMove(ctx context.Context, user highrise.User, location highrise.Location) error
	}

	EmoteHandler interface {
		OnEmote(ctx context.Context, user highrise.User, emoteID string, receiver *highrise.User) error
	}

	ReactionHandler interface {
		OnReaction(ctx context.Context, user highrise.User, reaction highrise.Reaction, receiver highrise.User) error
	}

	TipHandler interface {
		OnTip(ctx context.Context, sender, receiver highrise.User, item highrise.Item) error
	}

	ChannelHandler interface {
		OnChannel(ctx context.Context, senderID, message string, tags []string) error
	}
)
