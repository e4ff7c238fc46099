package models

import (
	"time"

	"github.com/iudanet/callboard/pkg/api"
)

// Severity представляет уровень важности системного сообщения
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeveritySuccess Severity = "success"
)

// ValidSeverity проверяет, что значение входит в допустимый набор
func ValidSeverity(s string) bool {
	switch Severity(s) {
	case SeverityInfo, SeverityWarning, SeverityError, SeveritySuccess:
		return true
	}
	return false
}

// SystemMessage представляет системное сообщение дашборда.
// Создается администратором, показывается в шапке дашборда.
// TenantID == "" — глобальное сообщение для всех тенантов.
type SystemMessage struct {
	CreatedAt time.Time
	ExpiresAt *time.Time // nil — бессрочное
	ID        string
	TenantID  string
	Severity  Severity
	Text      string
}

// Expired сообщает, истекло ли сообщение к моменту now.
// Сообщение без ExpiresAt не истекает никогда.
func (m *SystemMessage) Expired(now time.Time) bool {
	if m.ExpiresAt == nil {
		return false
	}
	return !m.ExpiresAt.After(now)
}

// MessageFromAPI конвертирует wire-формат в доменную модель
func MessageFromAPI(in api.SystemMessage) SystemMessage {
	return SystemMessage{
		ID:        in.ID,
		TenantID:  in.TenantID,
		Severity:  Severity(in.Severity),
		Text:      in.Text,
		CreatedAt: in.CreatedAt,
		ExpiresAt: in.ExpiresAt,
	}
}

// MessageToAPI конвертирует доменную модель в wire-формат
func MessageToAPI(in SystemMessage) api.SystemMessage {
	return api.SystemMessage{
		ID:        in.ID,
		TenantID:  in.TenantID,
		Severity:  string(in.Severity),
		Text:      in.Text,
		CreatedAt: in.CreatedAt,
		ExpiresAt: in.ExpiresAt,
	}
}

// SplitByExpiry делит список сообщений на активные и истекшие
// относительно момента now, сохраняя порядок.
func SplitByExpiry(msgs []SystemMessage, now time.Time) (active, expired []SystemMessage) {
	for _, m := range msgs {
		if m.Expired(now) {
			expired = append(expired, m)
		} else {
			active = append(active, m)
		}
	}
	return active, expired
}
