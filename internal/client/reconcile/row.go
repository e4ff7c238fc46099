package reconcile

import (
	"fmt"
	"time"

	"github.com/iudanet/callboard/internal/models"
	"github.com/iudanet/callboard/pkg/api"
)

// messageFromRow декодирует универсальную строку запроса в SystemMessage.
// Временные поля приходят строками RFC3339 (JSON не различает типы дат).
func messageFromRow(row api.Row) (models.SystemMessage, error) {
	id, _ := row["id"].(string)
	if id == "" {
		return models.SystemMessage{}, fmt.Errorf("message row without id")
	}

	severity, _ := row["severity"].(string)
	if !models.ValidSeverity(severity) {
		return models.SystemMessage{}, fmt.Errorf("message %s: bad severity %q", id, severity)
	}

	text, _ := row["text"].(string)
	tenant, _ := row["tenant_id"].(string)

	msg := models.SystemMessage{
		ID:       id,
		TenantID: tenant,
		Severity: models.Severity(severity),
		Text:     text,
	}

	if raw, ok := row["created_at"].(string); ok && raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return models.SystemMessage{}, fmt.Errorf("message %s: bad created_at: %w", id, err)
		}
		msg.CreatedAt = t
	}

	if raw, ok := row["expires_at"].(string); ok && raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return models.SystemMessage{}, fmt.Errorf("message %s: bad expires_at: %w", id, err)
		}
		msg.ExpiresAt = &t
	}

	return msg, nil
}
