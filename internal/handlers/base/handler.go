package base

import (
	"context"
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/hrbots/internal/bot"
)

// BaseHandler provides common functionality for all handlers
type BaseHandler struct {
	service bot.Service
	name    string
	logger  *log.Entry
}

// NewBaseHandler creates a new base handler
func NewBaseHandler(service bot.Service, handlerName string) *BaseHandler {
	return &BaseHandler{
		service: service,
		name:    handlerName,
		logger:  log.WithField("handler", handlerName),
	}
}

func (h *BaseHandler) Name() string {
	return h.name
}

// GetService returns the bot service
func (h *BaseHandler) GetService() bot.Service {
	return h.service
}

// GetLogger returns the handler's logger
func (h *BaseHandler) GetLogger() *log.Entry {
	return h.logger
}

// GetLanguage returns the reply language
func (h *BaseHandler) GetLanguage() string {
	return h.service.GetLanguage()
}

// Reply posts text to the whole room
func (h *BaseHandler) Reply(ctx context.Context, text string) error {
	room := h.service.GetRoom()
	if room == nil {
		return ErrNoRoom
	}
	return room.Chat(ctx, text)
}

// Whisper sends text privately to one user
func (h *BaseHandler) Whisper(ctx context.Context, userID, text string) error {
	room := h.service.GetRoom()
	if room == nil {
		return ErrNoRoom
	}
	return room.SendWhisper(ctx, userID, text)
}

// ParseCommand reports whether message is addressed to prefix and returns
// the remainder. The prefix must be followed by a single space.
func ParseCommand(prefix, message string) (string, bool) {
	if prefix == "" {
		return "", false
	}
	return strings.CutPrefix(message, prefix+" ")
}

var ErrNoRoom = errors.New("no room attached")
