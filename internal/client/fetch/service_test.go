package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/callboard/internal/backend"
	"github.com/iudanet/callboard/internal/client/breaker"
	"github.com/iudanet/callboard/internal/client/cache"
	"github.com/iudanet/callboard/internal/client/dedup"
	"github.com/iudanet/callboard/pkg/api"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// makeRows возвращает окно [start, end) из totalCount строк
func makeRows(start, end, totalCount int) []api.Row {
	if end > totalCount {
		end = totalCount
	}
	if start >= totalCount {
		return nil
	}
	rows := make([]api.Row, 0, end-start)
	for i := start; i < end; i++ {
		rows = append(rows, api.Row{"id": fmt.Sprintf("row-%d", i)})
	}
	return rows
}

// countingBackend отвечает окном из totalCount строк и считает запросы
func countingBackend(totalCount int, queries *atomic.Int64) *backend.BackendMock {
	return &backend.BackendMock{
		QueryFunc: func(ctx context.Context, resource string, opts backend.QueryOptions) (*backend.QueryResult, error) {
			queries.Add(1)
			return &backend.QueryResult{
				Rows:       makeRows(opts.RangeStart, opts.RangeEnd, totalCount),
				TotalCount: totalCount,
			}, nil
		},
	}
}

func newTestService(b backend.Backend, scope string) (Service, *breaker.Breaker) {
	cb := breaker.New(3, 30*time.Second)
	svc := NewService(b, cache.New(64), cb, dedup.New(time.Minute), scope, StaticTTL(30*time.Second), testLogger())
	return svc, cb
}

func TestFetchPage_PaginationBoundaries(t *testing.T) {
	// totalCount=23, pageSize=10: классические границы
	var queries atomic.Int64
	svc, _ := newTestService(countingBackend(23, &queries), "")
	ctx := context.Background()

	tests := []struct {
		name      string
		page      int
		wantItems int
		wantMore  bool
	}{
		{"first page is full", 1, 10, true},
		{"second page is full", 2, 10, true},
		{"last page is partial", 3, 3, false},
		{"page beyond end is empty", 4, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := svc.FetchPage(ctx, "calls", tt.page, 10, nil, Options{})
			require.NoError(t, err)
			assert.Len(t, p.Items, tt.wantItems)
			assert.Equal(t, tt.wantMore, p.HasMore)
			assert.Equal(t, 23, p.TotalCount)
			assert.Equal(t, 3, p.TotalPages)
		})
	}
}

func TestFetchPage_NegativePageClampsToFirst(t *testing.T) {
	var queries atomic.Int64
	mock := countingBackend(23, &queries)
	svc, _ := newTestService(mock, "")

	p, err := svc.FetchPage(context.Background(), "calls", -3, 10, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Page)
	assert.Len(t, p.Items, 10)

	require.Len(t, mock.QueryCalls(), 1)
	assert.Equal(t, 0, mock.QueryCalls()[0].Opts.RangeStart)
}

func TestFetchPage_CacheHitSkipsBackend(t *testing.T) {
	var queries atomic.Int64
	svc, _ := newTestService(countingBackend(23, &queries), "")
	ctx := context.Background()

	first, err := svc.FetchPage(ctx, "calls", 1, 10, nil, Options{})
	require.NoError(t, err)

	second, err := svc.FetchPage(ctx, "calls", 1, 10, nil, Options{})
	require.NoError(t, err)

	assert.Equal(t, int64(1), queries.Load(), "cached page must not hit the backend")
	assert.Same(t, first, second)
}

func TestFetchPage_ForceRefreshBypassesCache(t *testing.T) {
	var queries atomic.Int64
	svc, _ := newTestService(countingBackend(23, &queries), "")
	ctx := context.Background()

	_, err := svc.FetchPage(ctx, "calls", 1, 10, nil, Options{})
	require.NoError(t, err)
	_, err = svc.FetchPage(ctx, "calls", 1, 10, nil, Options{ForceRefresh: true})
	require.NoError(t, err)

	assert.Equal(t, int64(2), queries.Load())
}

func TestFetchPage_InvalidateDropsCachedPages(t *testing.T) {
	var queries atomic.Int64
	svc, _ := newTestService(countingBackend(23, &queries), "")
	ctx := context.Background()

	_, err := svc.FetchPage(ctx, "calls", 1, 10, nil, Options{})
	require.NoError(t, err)

	svc.Invalidate("calls")

	_, err = svc.FetchPage(ctx, "calls", 1, 10, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), queries.Load())
}

func TestFetchPage_ValidationBeforeNetwork(t *testing.T) {
	var queries atomic.Int64
	svc, cb := newTestService(countingBackend(23, &queries), "")
	ctx := context.Background()

	_, err := svc.FetchPage(ctx, "calls", 1, 0, nil, Options{})
	assert.True(t, backend.IsValidation(err), "pageSize <= 0")

	_, err = svc.FetchPage(ctx, "", 1, 10, nil, Options{})
	assert.True(t, backend.IsValidation(err), "empty resource")

	_, err = svc.FetchPage(ctx, "calls", 1, 10, map[string]string{"bad key": "x"}, Options{})
	assert.True(t, backend.IsValidation(err), "malformed filter key")

	assert.Equal(t, int64(0), queries.Load(), "validation must reject before any network call")
	assert.Equal(t, breaker.StateClosed, cb.State("calls"), "validation errors never count against the breaker")
}

func TestFetchPage_CircuitOpenFailsFast(t *testing.T) {
	netErr := &backend.NetworkError{Op: "query", Resource: "calls", Err: errors.New("refused")}
	var queries atomic.Int64
	mock := &backend.BackendMock{
		QueryFunc: func(ctx context.Context, resource string, opts backend.QueryOptions) (*backend.QueryResult, error) {
			queries.Add(1)
			return nil, netErr
		},
	}
	svc, cb := newTestService(mock, "")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.FetchPage(ctx, "calls", 1, 10, nil, Options{ForceRefresh: true})
		require.Error(t, err)
	}
	require.Equal(t, breaker.StateOpen, cb.State("calls"))

	_, err := svc.FetchPage(ctx, "calls", 1, 10, nil, Options{ForceRefresh: true})
	assert.True(t, backend.IsCircuitOpen(err))
	assert.Equal(t, int64(3), queries.Load(), "open circuit must not reach the backend")
}

func TestFetchPage_ScopeAddsTenantFilter(t *testing.T) {
	var gotFilters map[string]string
	mock := &backend.BackendMock{
		QueryFunc: func(ctx context.Context, resource string, opts backend.QueryOptions) (*backend.QueryResult, error) {
			gotFilters = opts.Filters
			return &backend.QueryResult{}, nil
		},
	}
	svc, _ := newTestService(mock, "tenant-7")

	_, err := svc.FetchPage(context.Background(), "calls", 1, 10, map[string]string{"status": "missed"}, Options{})
	require.NoError(t, err)

	assert.Equal(t, "tenant-7", gotFilters["tenant_id"])
	assert.Equal(t, "missed", gotFilters["status"])
}

func TestFetchPage_ConcurrentIdenticalRequestsDeduplicated(t *testing.T) {
	// сценарий §8.7: две конкурентные выборки — один запрос к бэкенду
	var queries atomic.Int64
	release := make(chan struct{})
	mock := &backend.BackendMock{
		QueryFunc: func(ctx context.Context, resource string, opts backend.QueryOptions) (*backend.QueryResult, error) {
			queries.Add(1)
			<-release
			return &backend.QueryResult{Rows: makeRows(0, 5, 5), TotalCount: 5}, nil
		},
	}
	svc, _ := newTestService(mock, "")
	ctx := context.Background()

	var wg sync.WaitGroup
	pages := make([]*Page, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pages[i], errs[i] = svc.FetchPage(ctx, "calls", 1, 5, nil, Options{})
		}(i)
	}

	require.Eventually(t, func() bool { return queries.Load() == 1 }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, int64(1), queries.Load(), "exactly one backend query for concurrent identical requests")
	assert.Len(t, pages[0].Items, 5)
	assert.Equal(t, pages[0].Items, pages[1].Items)

	// повторный запрос в пределах TTL — ноль новых обращений
	_, err := svc.FetchPage(ctx, "calls", 1, 5, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), queries.Load())
}
