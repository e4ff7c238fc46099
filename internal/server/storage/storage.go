// Package storage определяет интерфейсы хранилища dev-сервера
package storage

import (
	"context"

	"github.com/iudanet/callboard/internal/models"
	"github.com/iudanet/callboard/pkg/api"
)

// Query описывает постраничную выборку строк ресурса
type Query struct {
	// Filters — точные совпадения col = value
	Filters map[string]string

	// Scope, если задан, выбирает строки tenant_id IN ('', *Scope):
	// глобальные записи видны в любом tenant scope
	Scope *string

	OrderBy    string
	Descending bool
	Limit      int
	Offset     int
}

// Result — страница строк и общее количество под теми же фильтрами
type Result struct {
	Rows       []api.Row
	TotalCount int
}

// DataStore defines interface for dashboard resource persistence
type DataStore interface {
	// QueryRows возвращает страницу строк ресурса.
	// Returns ErrUnknownResource / ErrBadColumn on bad input.
	QueryRows(ctx context.Context, resource string, q Query) (*Result, error)

	// InsertRow создает строку и возвращает ее в каноническом виде
	InsertRow(ctx context.Context, resource string, row api.Row) (api.Row, error)

	// UpdateRow изменяет перечисленные в patch колонки строки.
	// Returns ErrRowNotFound if the row doesn't exist.
	UpdateRow(ctx context.Context, resource, id string, patch api.Row) (api.Row, error)

	// DeleteRow удаляет строку.
	// Returns ErrRowNotFound if the row doesn't exist.
	DeleteRow(ctx context.Context, resource, id string) error
}

// TenantStore defines interface for tenant persistence
type TenantStore interface {
	// GetTenant возвращает tenant по id.
	// Returns ErrTenantNotFound if tenant doesn't exist.
	GetTenant(ctx context.Context, id string) (*models.Tenant, error)

	// CreateTenant создает tenant.
	// Returns ErrTenantAlreadyExists if the id is taken.
	CreateTenant(ctx context.Context, tenant *models.Tenant) error
}
