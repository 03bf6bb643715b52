// Package echo writes one transcript line per room event and never replies.
package echo

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/iamwavecut/hrbots/internal/bot"
	"github.com/iamwavecut/hrbots/internal/handlers/base"
	"github.com/iamwavecut/hrbots/internal/highrise"
)

type Echo struct {
	*base.BaseHandler
	transcript *zap.Logger
}

var (
	_ bot.StartHandler    = (*Echo)(nil)
	_ bot.ChatHandler     = (*Echo)(nil)
	_ bot.WhisperHandler  = (*Echo)(nil)
	_ bot.JoinHandler     = (*Echo)(nil)
	_ bot.LeaveHandler    = (*Echo)(nil)
	_ bot.MoveHandler     = (*Echo)(nil)
	_ bot.EmoteHandler    = (*Echo)(nil)
	_ bot.ReactionHandler = (*Echo)(nil)
	_ bot.TipHandler      = (*Echo)(nil)
	_ bot.ChannelHandler  = (*Echo)(nil)
)

func NewEcho(s bot.Service, transcript *zap.Logger) *Echo {
	return &Echo{
		BaseHandler: base.NewBaseHandler(s, "echo"),
		transcript:  transcript,
	}
}

func (e *Echo) line(format string, args ...any) error {
	e.transcript.Info(fmt.Sprintf(format, args...))
	return nil
}

func (e *Echo) OnStart(context.Context, *highrise.SessionMetadata) error {
	return e.line("[START  ]")
}

func (e *Echo) OnUserJoin(_ context.Context, user highrise.User, _ highrise.Location) error {
	return e.line("[JOIN   ] %s", user.Username)
}

func (e *Echo) OnUserLeave(_ context.Context, user highrise.User) error {
	return e.line("[LEAVE  ] %s", user.Username)
}

func (e *Echo) OnChat(_ context.Context, user highrise.User, message string) error {
	return e.line("[CHAT   ] %s: %s", user.Username, message)
}

func (e *Echo) OnWhisper(_ context.Context, user highrise.User, message string) error {
	return e.line("[WHISPER] %s %s", user.Username, message)
}

func (e *Echo) OnEmote(_ context.Context, user highrise.User, emoteID string, receiver *highrise.User) error {
	to := "-"
	if receiver != nil {
		to = receiver.Username
	}
	return e.line("[EMOTE  ] %s %s %s", user.Username, emoteID, to)
}

func (e *Echo) OnReaction(_ context.Context, user highrise.User, reaction highrise.Reaction, receiver highrise.User) error {
	return e.line("[REACTION] %s %s %s", user.Username, reaction, receiver.Username)
}

func (e *Echo) OnTip(_ context.Context, sender, receiver highrise.User, item highrise.Item) error {
	return e.line("[TIP    ] %s %s %s %d", sender.Username, receiver.Username, item.Type, item.Amount)
}

func (e *Echo) OnUserMove(_ context.Context, user highrise.User, location highrise.Location) error {
	switch loc := location.(type) {
	case highrise.Position:
		return e.line("[MOVE   ] %s %s", user.Username, loc)
	case highrise.AnchorPosition:
		return e.line("[MOVE   ] %s anchor %s %d", user.Username, loc.EntityID, loc.AnchorIx)
	}
	return e.line("[MOVE   ] %s", user.Username)
}

func (e *Echo) OnChannel(_ context.Context, senderID, message string, tags []string) error {
	return e.line("[CHANNEL] %s %s %s", senderID, message, strings.Join(tags, ","))
}
