package models

import (
	"time"

	"github.com/iudanet/callboard/pkg/api"
)

// Доменные типы строк дашборда. Слой выборки работает с универсальными
// api.Row; эти типы используются dev-сервером (seed, хранилище) и CLI
// для отображения.

// CallRecord представляет одну запись журнала звонков
type CallRecord struct {
	StartedAt  time.Time
	ID         string
	TenantID   string
	AgentID    string
	CallerName string
	Phone      string
	Direction  string // inbound | outbound
	Status     string // completed | missed | voicemail | in_progress
	Duration   int    // seconds
}

// Lead представляет лид в воронке продаж
type Lead struct {
	CreatedAt time.Time
	ID        string
	TenantID  string
	Name      string
	Phone     string
	Source    string
	Stage     string // new | contacted | qualified | won | lost
	OwnerID   string
}

// ClientAccount представляет клиентскую организацию тенанта
type ClientAccount struct {
	CreatedAt time.Time
	ID        string
	TenantID  string
	Name      string
	Plan      string
	Status    string // active | suspended
}

// AgentUser представляет оператора/администратора тенанта
type AgentUser struct {
	CreatedAt time.Time
	ID        string
	TenantID  string
	Email     string
	Name      string
	Role      string // agent | admin
}

// BillingSummary представляет сводку биллинга за период
type BillingSummary struct {
	PeriodStart time.Time
	ID          string
	TenantID    string
	CallMinutes int
	SeatCount   int
	AmountCents int64
	Currency    string
}

// Row конвертирует запись звонка в универсальную строку ресурса
func (c CallRecord) Row() api.Row {
	return api.Row{
		"id":           c.ID,
		"tenant_id":    c.TenantID,
		"agent_id":     c.AgentID,
		"caller_name":  c.CallerName,
		"phone":        c.Phone,
		"direction":    c.Direction,
		"status":       c.Status,
		"duration_sec": c.Duration,
		"started_at":   c.StartedAt.Format(time.RFC3339),
	}
}

// Row конвертирует лид в универсальную строку ресурса
func (l Lead) Row() api.Row {
	return api.Row{
		"id":         l.ID,
		"tenant_id":  l.TenantID,
		"name":       l.Name,
		"phone":      l.Phone,
		"source":     l.Source,
		"stage":      l.Stage,
		"owner_id":   l.OwnerID,
		"created_at": l.CreatedAt.Format(time.RFC3339),
	}
}

// Row конвертирует клиентскую организацию в универсальную строку ресурса
func (c ClientAccount) Row() api.Row {
	return api.Row{
		"id":         c.ID,
		"tenant_id":  c.TenantID,
		"name":       c.Name,
		"plan":       c.Plan,
		"status":     c.Status,
		"created_at": c.CreatedAt.Format(time.RFC3339),
	}
}

// Row конвертирует оператора в универсальную строку ресурса
func (u AgentUser) Row() api.Row {
	row := api.Row{
		"id":        u.ID,
		"tenant_id": u.TenantID,
		"email":     u.Email,
		"name":      u.Name,
		"role":      u.Role,
	}
	if !u.CreatedAt.IsZero() {
		row["created_at"] = u.CreatedAt.Format(time.RFC3339)
	}
	return row
}

// Row конвертирует сводку биллинга в универсальную строку ресурса
func (b BillingSummary) Row() api.Row {
	return api.Row{
		"id":           b.ID,
		"tenant_id":    b.TenantID,
		"period_start": b.PeriodStart.Format(time.RFC3339),
		"call_minutes": b.CallMinutes,
		"seat_count":   b.SeatCount,
		"amount_cents": b.AmountCents,
		"currency":     b.Currency,
	}
}
