package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/callboard/internal/models"
	"github.com/iudanet/callboard/internal/server/storage"
	"github.com/iudanet/callboard/pkg/api"
)

// SeedDemo наполняет пустую БД демо-данными для локальной разработки:
// два тенанта с общим service key и по горсти строк в каждом ресурсе.
// Повторный вызов на уже наполненной БД ничего не меняет.
func (s *Storage) SeedDemo(ctx context.Context, serviceKey string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(serviceKey), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash service key: %w", err)
	}

	now := time.Now().UTC()
	tenants := []*models.Tenant{
		{ID: "acme", Name: "Acme Telecom", ServiceKeyHash: string(hash), CreatedAt: now},
		{ID: "globex", Name: "Globex Support", ServiceKeyHash: string(hash), CreatedAt: now},
	}

	for _, tenant := range tenants {
		err := s.CreateTenant(ctx, tenant)
		if errors.Is(err, storage.ErrTenantAlreadyExists) {
			return nil // БД уже наполнена
		}
		if err != nil {
			return err
		}
	}

	ago := func(offset time.Duration) time.Time {
		return now.Add(-offset)
	}

	users := []models.AgentUser{
		{ID: "u-1", TenantID: "acme", Email: "dana@acme.test", Name: "Dana", Role: "admin"},
		{ID: "u-2", TenantID: "acme", Email: "lee@acme.test", Name: "Lee", Role: "agent"},
		{ID: "u-3", TenantID: "globex", Email: "kim@globex.test", Name: "Kim", Role: "admin"},
	}
	calls := []models.CallRecord{
		{ID: "c-1", TenantID: "acme", AgentID: "u-2", CallerName: "J. Smith", Phone: "+15550101", Direction: "inbound", Status: "completed", Duration: 312, StartedAt: ago(2 * time.Hour)},
		{ID: "c-2", TenantID: "acme", AgentID: "u-2", CallerName: "M. Doe", Phone: "+15550102", Direction: "inbound", Status: "missed", Duration: 0, StartedAt: ago(90 * time.Minute)},
		{ID: "c-3", TenantID: "acme", AgentID: "u-1", CallerName: "A. Chen", Phone: "+15550103", Direction: "outbound", Status: "completed", Duration: 121, StartedAt: ago(time.Hour)},
		{ID: "c-4", TenantID: "globex", AgentID: "u-3", CallerName: "B. Ortiz", Phone: "+15550201", Direction: "inbound", Status: "voicemail", Duration: 44, StartedAt: ago(30 * time.Minute)},
	}
	leads := []models.Lead{
		{ID: "l-1", TenantID: "acme", Name: "Initech", Phone: "+15550301", Source: "web", Stage: "new", OwnerID: "u-2", CreatedAt: ago(48 * time.Hour)},
		{ID: "l-2", TenantID: "acme", Name: "Hooli", Phone: "+15550302", Source: "referral", Stage: "contacted", OwnerID: "u-2", CreatedAt: ago(24 * time.Hour)},
		{ID: "l-3", TenantID: "globex", Name: "Umbrella", Phone: "+15550303", Source: "web", Stage: "qualified", OwnerID: "u-3", CreatedAt: ago(12 * time.Hour)},
	}
	clients := []models.ClientAccount{
		{ID: "cl-1", TenantID: "acme", Name: "Wayne Logistics", Plan: "pro", Status: "active", CreatedAt: ago(30 * 24 * time.Hour)},
		{ID: "cl-2", TenantID: "globex", Name: "Stark Retail", Plan: "basic", Status: "active", CreatedAt: ago(20 * 24 * time.Hour)},
	}
	billing := []models.BillingSummary{
		{ID: "b-1", TenantID: "acme", PeriodStart: ago(30 * 24 * time.Hour), CallMinutes: 1240, SeatCount: 12, AmountCents: 89900, Currency: "USD"},
		{ID: "b-2", TenantID: "globex", PeriodStart: ago(30 * 24 * time.Hour), CallMinutes: 310, SeatCount: 4, AmountCents: 19900, Currency: "USD"},
	}
	messages := []models.SystemMessage{
		{ID: "m-1", TenantID: "", Severity: models.SeverityInfo, Text: "Welcome to the dev environment", CreatedAt: ago(time.Hour)},
		{ID: "m-2", TenantID: "acme", Severity: models.SeverityWarning, Text: "Scheduled maintenance tonight at 22:00", CreatedAt: ago(30 * time.Minute)},
	}

	seeds := map[string][]api.Row{}
	for _, u := range users {
		seeds["users"] = append(seeds["users"], u.Row())
	}
	for _, c := range calls {
		seeds["calls"] = append(seeds["calls"], c.Row())
	}
	for _, l := range leads {
		seeds["leads"] = append(seeds["leads"], l.Row())
	}
	for _, c := range clients {
		seeds["clients"] = append(seeds["clients"], c.Row())
	}
	for _, b := range billing {
		seeds["billing_summaries"] = append(seeds["billing_summaries"], b.Row())
	}
	for _, m := range messages {
		seeds["system_messages"] = append(seeds["system_messages"], messageRow(m))
	}

	for resource, rows := range seeds {
		for _, row := range rows {
			if _, err := s.InsertRow(ctx, resource, row); err != nil {
				return fmt.Errorf("failed to seed %s: %w", resource, err)
			}
		}
	}

	return nil
}

// messageRow раскладывает системное сообщение в строку ресурса
func messageRow(m models.SystemMessage) api.Row {
	row := api.Row{
		"id":         m.ID,
		"tenant_id":  m.TenantID,
		"severity":   string(m.Severity),
		"text":       m.Text,
		"created_at": m.CreatedAt.Format(time.RFC3339),
	}
	if m.ExpiresAt != nil {
		row["expires_at"] = m.ExpiresAt.Format(time.RFC3339)
	}
	return row
}
