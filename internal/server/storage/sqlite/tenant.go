package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/callboard/internal/models"
	"github.com/iudanet/callboard/internal/server/storage"
)

// GetTenant возвращает tenant по id.
// Returns ErrTenantNotFound if tenant doesn't exist.
func (s *Storage) GetTenant(ctx context.Context, id string) (*models.Tenant, error) {
	query := `
		SELECT id, name, service_key_hash, created_at
		FROM tenants
		WHERE id = ?
	`

	tenant := &models.Tenant{}
	var createdAt int64

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&tenant.ID,
		&tenant.Name,
		&tenant.ServiceKeyHash,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	tenant.CreatedAt = time.Unix(createdAt, 0)
	return tenant, nil
}

// CreateTenant создает tenant.
// Returns ErrTenantAlreadyExists if the id is taken.
func (s *Storage) CreateTenant(ctx context.Context, tenant *models.Tenant) error {
	query := `
		INSERT INTO tenants (id, name, service_key_hash, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		tenant.ID,
		tenant.Name,
		tenant.ServiceKeyHash,
		tenant.CreatedAt.Unix(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return storage.ErrTenantAlreadyExists
		}
		return fmt.Errorf("failed to create tenant: %w", err)
	}

	return nil
}
