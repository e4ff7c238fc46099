package handlers

import "context"

// contextKey тип для ключей контекста
type contextKey string

// tenantScopeKey ключ для хранения tenant scope в контексте.
// Пустой scope — глобальный (кросс-тенантный) доступ.
const tenantScopeKey contextKey = "tenant_scope"

// WithTenantScope кладет tenant scope аутентифицированного запроса в контекст
func WithTenantScope(ctx context.Context, scope string) context.Context {
	return context.WithValue(ctx, tenantScopeKey, scope)
}

// GetTenantScope извлекает tenant scope из контекста запроса.
// ok == false означает неаутентифицированный запрос.
func GetTenantScope(ctx context.Context) (string, bool) {
	scope, ok := ctx.Value(tenantScopeKey).(string)
	return scope, ok
}
