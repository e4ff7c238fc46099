package models

import "time"

// Tenant представляет учетную запись тенанта дашборда.
// ServiceKeyHash — bcrypt-хеш service key, сам ключ не хранится.
type Tenant struct {
	CreatedAt      time.Time
	ID             string
	Name           string
	ServiceKeyHash string
}
