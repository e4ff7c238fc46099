package api

import "time"

// SystemMessage представляет системное сообщение дашборда в wire-формате.
// TenantID == "" означает глобальное сообщение, видимое всем тенантам.
type SystemMessage struct {
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	ID        string     `json:"id"`
	TenantID  string     `json:"tenant_id,omitempty"`
	Severity  string     `json:"severity"`
	Text      string     `json:"text"`
}

// Типы событий подписки
const (
	EventSnapshot = "snapshot" // полный снимок всех сообщений scope
	EventInsert   = "insert"
	EventUpdate   = "update"
	EventDelete   = "delete"
)

// SubscriptionEvent представляет один кадр realtime-подписки.
// Сервер шлет либо полный снимок (Snapshot), либо инкрементальное
// изменение одной записи (Row/RowID).
type SubscriptionEvent struct {
	Type     string          `json:"type"`
	Resource string          `json:"resource"`
	Scope    string          `json:"scope,omitempty"`
	Snapshot []SystemMessage `json:"snapshot,omitempty"`
	Row      *SystemMessage  `json:"row,omitempty"`
	RowID    string          `json:"row_id,omitempty"`
	Seq      uint64          `json:"seq"`
}

// Состояния соединения realtime-канала
const (
	ConnConnecting   = "connecting"
	ConnConnected    = "connected"
	ConnDisconnected = "disconnected"
	ConnError        = "error"
)

// ConnectionStatus представляет состояние realtime-соединения
type ConnectionStatus struct {
	State     string `json:"state"`
	LastError string `json:"last_error,omitempty"`
}
