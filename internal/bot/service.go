package bot

import (
	"github.com/iamwavecut/hrbots/internal/db"
)

type service struct {
	room     Room
	db       db.Client
	language string
}

// NewService bundles what handlers need. db may be nil for bots that keep
// no state.
func NewService(room Room, db db.Client, language string) *service {
	if language == "" {
		language = "en"
	}
	return &service{
		room:     room,
		db:       db,
		language: language,
	}
}

func (s *service) GetRoom() Room {
	return s.room
}

func (s *service) GetDB() db.Client {
	return s.db
}

func (s *service) GetLanguage() string {
	return s.language
}
