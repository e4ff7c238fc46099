package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/callboard/internal/client/session"
)

func (c *Cli) runLogin(ctx context.Context) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	// Пустой tenant — глобальный (кросс-тенантный) доступ администратора
	tenantID, err := c.io.ReadInput("Tenant ID (empty for global): ")
	if err != nil {
		return fmt.Errorf("failed to read tenant id: %w", err)
	}

	serviceKey, err := c.io.ReadPassword("Service key: ")
	if err != nil {
		return fmt.Errorf("failed to read service key: %w", err)
	}
	if serviceKey == "" {
		return fmt.Errorf("service key cannot be empty")
	}

	c.io.Println()
	c.io.Println("Authenticating...")

	token, err := c.exchange(ctx, c.serverURL, tenantID, serviceKey)
	if err != nil {
		return err
	}

	sess := &session.Session{
		ServerURL:   c.serverURL,
		TenantID:    tenantID,
		AccessToken: token.AccessToken,
	}
	if token.ExpiresIn > 0 {
		sess.ExpiresAt = c.now().Unix() + token.ExpiresIn
	}

	if err := c.store.SaveSession(ctx, sess); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	c.io.Println()
	c.io.Println("✓ Login successful!")
	if tenantID == "" {
		c.io.Println("Scope: global (all tenants)")
	} else {
		c.io.Printf("Scope: tenant %s\n", tenantID)
	}
	if token.ExpiresIn > 0 {
		c.io.Printf("Access token expires in: %d seconds\n", token.ExpiresIn)
	}

	return nil
}
