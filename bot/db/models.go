package db

import (
	"time"

	"github.com/botfoundry/menubot/bot"
)

// UserSessionModel mirrors the user_sessions schema.
type UserSessionModel struct {
	UserID       int64  `gorm:"primaryKey"`
	Username     string `gorm:"not null;default:''"`
	CurrentMenu  string `gorm:"not null;default:''"`
	State        string `gorm:"not null;default:''"`
	CreatedAt    time.Time
	LastActivity time.Time `gorm:"index"`
}

func (UserSessionModel) TableName() string {
	return "user_sessions"
}

func (m *UserSessionModel) toSession() *bot.UserSession {
	return &bot.UserSession{
		UserID:       m.UserID,
		Username:     m.Username,
		CurrentMenu:  m.CurrentMenu,
		State:        m.State,
		CreatedAt:    m.CreatedAt,
		LastActivity: m.LastActivity,
	}
}

func fromSession(s *bot.UserSession) *UserSessionModel {
	return &UserSessionModel{
		UserID:       s.UserID,
		Username:     s.Username,
		CurrentMenu:  s.CurrentMenu,
		State:        s.State,
		CreatedAt:    s.CreatedAt,
		LastActivity: s.LastActivity,
	}
}
