package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/callboard/internal/client/session"
)

func (c *Cli) runLogout(ctx context.Context) error {
	err := c.store.DeleteSession(ctx)
	if err == session.ErrSessionNotFound {
		c.io.Println("Not logged in.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	c.io.Println("✓ Logged out.")
	return nil
}
