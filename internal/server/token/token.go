// Package token выпускает и проверяет bearer токены dev-сервера.
// Токен несет tenant scope: "" — глобальный админский доступ.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidToken indicates that the token failed verification
var ErrInvalidToken = errors.New("invalid token")

// Claims — полезная нагрузка access токена
type Claims struct {
	TenantID string `json:"tenant_id"`
	jwt.RegisteredClaims
}

// Manager выпускает и проверяет access токены
type Manager struct {
	now    func() time.Time
	secret []byte
	ttl    time.Duration
}

// NewManager создает менеджер токенов.
// secret should be a cryptographically secure random string.
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue выпускает access токен для tenant scope.
// Возвращает токен и срок жизни в секундах.
func (m *Manager) Issue(tenantID string) (string, int64, error) {
	now := m.now()

	claims := Claims{
		TenantID: tenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, int64(m.ttl.Seconds()), nil
}

// Verify проверяет подпись и срок токена и возвращает claims
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return m.now() }))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// HashServiceKey хеширует service key для хранения
func HashServiceKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash service key: %w", err)
	}
	return string(hash), nil
}

// CheckServiceKey сравнивает service key с сохраненным хешем
func CheckServiceKey(hash, key string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}
