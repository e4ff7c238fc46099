// Package session хранит сессию CLI: адрес сервера, выбранный tenant
// и bearer токен. Кэш страниц сюда не попадает — он живет только в
// памяти процесса.
package session

import (
	"context"
	"errors"
	"time"
)

//go:generate moq -out session_mock.go . Storage

// Общие ошибки хранилища сессии
var (
	// ErrSessionNotFound — сохраненной сессии нет (нужен login)
	ErrSessionNotFound = errors.New("session not found")
)

// Session представляет сохраненную сессию администратора
type Session struct {
	ServerURL   string `json:"server_url"`
	TenantID    string `json:"tenant_id"`
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"` // unix seconds
}

// Expired сообщает, истек ли токен сессии к моменту now
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt > 0 && now.Unix() >= s.ExpiresAt
}

// Storage определяет интерфейс хранилища сессии
type Storage interface {
	// SaveSession сохраняет сессию (login)
	SaveSession(ctx context.Context, s *Session) error

	// GetSession возвращает сохраненную сессию.
	// Возвращает ErrSessionNotFound, если сессии нет.
	GetSession(ctx context.Context) (*Session, error)

	// DeleteSession удаляет сессию (logout)
	DeleteSession(ctx context.Context) error
}
