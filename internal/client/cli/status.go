package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/iudanet/callboard/internal/client/session"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Session Status ===")
	c.io.Println()

	sess, err := c.store.GetSession(ctx)
	if err == session.ErrSessionNotFound {
		c.io.Println("Status: Not authenticated")
		c.io.Println()
		c.io.Println("Run 'callboard login' to authenticate.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	c.io.Println("Status: Authenticated")
	c.io.Printf("Server: %s\n", sess.ServerURL)
	if sess.TenantID == "" {
		c.io.Println("Scope: global (all tenants)")
	} else {
		c.io.Printf("Scope: tenant %s\n", sess.TenantID)
	}

	if sess.ExpiresAt > 0 {
		expiresAt := time.Unix(sess.ExpiresAt, 0)
		c.io.Printf("Token expires: %s\n", expiresAt.Format(time.RFC3339))

		if remaining := expiresAt.Sub(c.now()); remaining > 0 {
			c.io.Printf("Time remaining: %s\n", remaining.Round(time.Second))
		} else {
			c.io.Println("⚠️  Token has expired. Please login again.")
		}
	}

	return nil
}
