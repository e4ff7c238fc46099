package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/callboard/internal/client/reconcile"
	"github.com/iudanet/callboard/internal/models"
	"github.com/iudanet/callboard/pkg/api"
)

// runWatch следит за системными сообщениями до отмены контекста
// (Ctrl+C в main). Планировщик периодически форсирует сверку, чтобы
// локальное состояние не разъезжалось с сервером даже без событий.
func (c *Cli) runWatch(ctx context.Context) error {
	svc, err := c.dataService(ctx)
	if err != nil {
		return err
	}

	c.io.Println("Watching system messages. Press Ctrl+C to stop.")
	c.io.Println()

	rec, err := svc.WatchMessages(ctx, reconcile.Callbacks{
		OnChange: func(added []models.SystemMessage) {
			for _, msg := range added {
				c.io.Println(formatMessage(msg))
			}
		},
		OnError: func(err error) {
			c.io.Printf("! reconcile error: %v\n", err)
		},
		OnConnection: func(status api.ConnectionStatus) {
			switch status.State {
			case api.ConnConnected:
				c.io.Println("* connected")
			case api.ConnDisconnected:
				c.io.Println("* disconnected")
			case api.ConnError:
				c.io.Printf("* connection error: %s\n", status.LastError)
			}
		},
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	defer rec.Unsubscribe()

	sched := svc.NewScheduler(func(ctx context.Context) {
		if err := rec.Refresh(ctx); err != nil {
			c.io.Printf("! refresh failed: %v\n", err)
		}
	})
	sched.Start(ctx)
	defer sched.Stop()

	<-ctx.Done()
	c.io.Println()
	c.io.Println("Stopped.")
	return nil
}
