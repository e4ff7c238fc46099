// Package cli реализует команды консольного клиента дашборда
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/callboard/internal/backend"
	"github.com/iudanet/callboard/internal/backend/rest"
	"github.com/iudanet/callboard/internal/client/config"
	"github.com/iudanet/callboard/internal/client/data"
	"github.com/iudanet/callboard/internal/client/iocli"
	"github.com/iudanet/callboard/internal/client/session"
	"github.com/iudanet/callboard/pkg/api"
)

// Cli держит зависимости команд. Фабрики backend-а и обмена токена
// подменяются в тестах.
type Cli struct {
	io         iocli.IO
	store      session.Storage
	logger     *slog.Logger
	newBackend func(serverURL, token string) backend.Backend
	exchange   func(ctx context.Context, serverURL, tenantID, serviceKey string) (*api.TokenResponse, error)
	now        func() time.Time
	opts       config.Options
	serverURL  string
}

func New(io iocli.IO, store session.Storage, serverURL string, opts config.Options, logger *slog.Logger) *Cli {
	return &Cli{
		io:        io,
		store:     store,
		logger:    logger,
		opts:      opts,
		serverURL: serverURL,
		newBackend: func(serverURL, token string) backend.Backend {
			return rest.NewClient(serverURL, token, logger)
		},
		exchange: rest.ExchangeToken,
		now:      time.Now,
	}
}

// currentSession возвращает сохраненную сессию, проверяя срок токена
func (c *Cli) currentSession(ctx context.Context) (*session.Session, error) {
	sess, err := c.store.GetSession(ctx)
	if err != nil {
		if err == session.ErrSessionNotFound {
			return nil, fmt.Errorf("not authenticated. Please run 'callboard login' first")
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if sess.Expired(c.now()) {
		return nil, fmt.Errorf("session expired. Please run 'callboard login' again")
	}
	return sess, nil
}

// dataService собирает слой данных для сохраненной сессии
func (c *Cli) dataService(ctx context.Context) (*data.Service, error) {
	sess, err := c.currentSession(ctx)
	if err != nil {
		return nil, err
	}

	b := c.newBackend(sess.ServerURL, sess.AccessToken)
	svc, err := data.NewService(b, sess.TenantID, c.opts, c.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build data service: %w", err)
	}
	return svc, nil
}

func (c *Cli) PrintUsage() {
	c.io.Println("Callboard Admin Client")
	c.io.Println()
	c.io.Println("Usage:")
	c.io.Println("  callboard [OPTIONS] COMMAND")
	c.io.Println()
	c.io.Println("Options:")
	c.io.Println("  --version            Show version information")
	c.io.Println("  --server URL         Server URL (default: http://localhost:8080)")
	c.io.Println("  --db PATH            Path to session database (default: callboard-client.db)")
	c.io.Println()
	c.io.Println("Commands:")
	c.io.Println("  login                Exchange tenant service key for an access token")
	c.io.Println("  logout               Drop the saved session")
	c.io.Println("  status               Show session status")
	c.io.Println("  calls                List call records")
	c.io.Println("  leads                List leads")
	c.io.Println("  clients              List client accounts")
	c.io.Println("  users                List agent users")
	c.io.Println("  billing              List billing summaries")
	c.io.Println("  messages <cmd>       Manage system messages (list, create, delete)")
	c.io.Println("  watch                Follow system messages live")
	c.io.Println()
	c.io.Println("Listing options:")
	c.io.Println("  -page N              Page number (default: 1)")
	c.io.Println("  -size N              Page size (default: 25)")
	c.io.Println("  -filter col=value    Filter rows (repeatable)")
	c.io.Println("  -refresh             Bypass the page cache")
	c.io.Println()
	c.io.Println("Examples:")
	c.io.Println("  callboard login")
	c.io.Println("  callboard calls -page 2 -filter status=missed")
	c.io.Println("  callboard leads -filter stage=contacted")
	c.io.Println("  callboard messages create -severity warning -text 'Maintenance at 22:00'")
	c.io.Println("  callboard messages delete b692f5c0-2d88-4aa1-a9e1-13aa6e4976d5")
	c.io.Println("  callboard --server https://api.example.com watch")
}
