package cli

import (
	"context"
	"fmt"
)

// resources отображает команду CLI в имя ресурса API
var resources = map[string]string{
	"calls":   "calls",
	"leads":   "leads",
	"clients": "clients",
	"users":   "users",
	"billing": "billing_summaries",
}

// Run выполняет команду. Ошибку печатает и завершает процесс main.
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	if resource, ok := resources[command]; ok {
		return c.runList(ctx, resource, args)
	}

	switch command {
	case "login":
		return c.runLogin(ctx)
	case "logout":
		return c.runLogout(ctx)
	case "status":
		return c.runStatus(ctx)
	case "messages":
		return c.runMessages(ctx, args)
	case "watch":
		return c.runWatch(ctx)
	default:
		c.PrintUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}
