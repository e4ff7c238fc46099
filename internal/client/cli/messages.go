package cli

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/iudanet/callboard/internal/models"
	"github.com/iudanet/callboard/pkg/api"
)

func (c *Cli) runMessages(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing subcommand. Usage: callboard messages <list|create|update|delete>")
	}

	switch args[0] {
	case "list":
		return c.runList(ctx, "system_messages", args[1:])
	case "create":
		return c.runMessagesCreate(ctx, args[1:])
	case "update":
		return c.runMessagesUpdate(ctx, args[1:])
	case "delete":
		return c.runMessagesDelete(ctx, args[1:])
	default:
		return fmt.Errorf("unknown subcommand: %s. Use: list, create, update, or delete", args[0])
	}
}

func (c *Cli) runMessagesCreate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("messages create", flag.ContinueOnError)
	fs.SetOutput(c.io)
	severity := fs.String("severity", string(models.SeverityInfo), "severity: info, warning, error or success")
	text := fs.String("text", "", "message text")
	ttl := fs.Duration("ttl", 0, "expire the message after this duration (0 = never)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	msg := models.SystemMessage{
		Severity: models.Severity(*severity),
		Text:     *text,
	}
	if *ttl > 0 {
		expiresAt := c.now().Add(*ttl)
		msg.ExpiresAt = &expiresAt
	}

	svc, err := c.dataService(ctx)
	if err != nil {
		return err
	}

	created, err := svc.CreateMessage(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	c.io.Printf("✓ Message created: %s\n", created.ID)
	if created.ExpiresAt != nil {
		c.io.Printf("Expires: %s\n", created.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}

func (c *Cli) runMessagesUpdate(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing message id. Usage: callboard messages update <id> [flags]")
	}
	id := args[0]

	fs := flag.NewFlagSet("messages update", flag.ContinueOnError)
	fs.SetOutput(c.io)
	severity := fs.String("severity", "", "new severity (unchanged if empty)")
	text := fs.String("text", "", "new message text (unchanged if empty)")

	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	patch := api.Row{}
	if *severity != "" {
		patch["severity"] = *severity
	}
	if *text != "" {
		patch["text"] = *text
	}
	if len(patch) == 0 {
		return fmt.Errorf("nothing to update: pass -severity and/or -text")
	}

	svc, err := c.dataService(ctx)
	if err != nil {
		return err
	}

	if err := svc.UpdateMessage(ctx, id, patch); err != nil {
		return fmt.Errorf("failed to update message: %w", err)
	}

	c.io.Printf("✓ Message updated: %s\n", id)
	return nil
}

func (c *Cli) runMessagesDelete(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing message id. Usage: callboard messages delete <id>")
	}
	id := args[0]

	svc, err := c.dataService(ctx)
	if err != nil {
		return err
	}

	if err := svc.DeleteMessage(ctx, id); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}

	c.io.Printf("✓ Message deleted: %s\n", id)
	return nil
}

func formatMessage(msg models.SystemMessage) string {
	line := fmt.Sprintf("[%s] %s", msg.Severity, msg.Text)
	if msg.ExpiresAt != nil {
		line += fmt.Sprintf(" (expires %s)", msg.ExpiresAt.Format(time.RFC3339))
	}
	return line
}
