package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/iudanet/callboard/internal/client/fetch"
)

const defaultPageSize = 25

func (c *Cli) runList(ctx context.Context, resource string, args []string) error {
	fs := flag.NewFlagSet(resource, flag.ContinueOnError)
	fs.SetOutput(c.io)
	page := fs.Int("page", 1, "page number")
	size := fs.Int("size", defaultPageSize, "page size")
	refresh := fs.Bool("refresh", false, "bypass the page cache")
	var filters filterFlag
	fs.Var(&filters, "filter", "filter rows, col=value (repeatable)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	svc, err := c.dataService(ctx)
	if err != nil {
		return err
	}

	result, err := svc.FetchPage(ctx, resource, *page, *size, filters.values, fetch.Options{
		ForceRefresh: *refresh,
	})
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", resource, err)
	}

	if len(result.Items) == 0 {
		if result.TotalCount > 0 {
			// Страница за концом набора: подсказываем ближайшую валидную
			nearest := fetch.NearestPage(*page, result.TotalCount, *size)
			c.io.Printf("No rows on page %d (%d total). Try -page %d.\n",
				*page, result.TotalCount, nearest)
			return nil
		}
		c.io.Printf("No %s found.\n", resource)
		return nil
	}

	c.renderRows(resource, result.Items)

	c.io.Println()
	c.io.Printf("Page %d of %d (%d total)\n", result.Page, result.TotalPages, result.TotalCount)
	if result.HasMore {
		c.io.Printf("Use -page %d for the next page.\n", result.Page+1)
	}

	return nil
}
