package api

// Row представляет одну строку ресурса в универсальном виде.
// Конкретные дашборд-ресурсы (calls, leads, clients...) декодируются
// из Row на стороне потребителя.
type Row map[string]any

// ID возвращает строковый id строки, если он есть
func (r Row) ID() string {
	id, _ := r["id"].(string)
	return id
}

// TenantID возвращает tenant_id строки ("" для глобальных записей)
func (r Row) TenantID() string {
	tenant, _ := r["tenant_id"].(string)
	return tenant
}

// QueryResponse представляет ответ сервера на постраничный запрос.
// TotalCount дублирует заголовок X-Total-Count для клиентов,
// которые читают только тело.
type QueryResponse struct {
	Rows       []Row `json:"rows"`
	TotalCount int   `json:"total_count"`
}

// MutationResponse представляет ответ на insert/update
type MutationResponse struct {
	Row Row `json:"row"`
}

// TokenRequest представляет обмен service key на bearer токен
type TokenRequest struct {
	ServiceKey string `json:"service_key"`
	TenantID   string `json:"tenant_id,omitempty"`
}

// TokenResponse представляет выданный bearer токен
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"` // seconds
}

// ErrorResponse представляет ошибку API
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
