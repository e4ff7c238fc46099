package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/callboard/internal/server/storage"
	"github.com/iudanet/callboard/pkg/api"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	s, err := New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return s
}

func insertCalls(t *testing.T, s *Storage, rows ...api.Row) {
	t.Helper()
	for _, row := range rows {
		_, err := s.InsertRow(context.Background(), "calls", row)
		require.NoError(t, err)
	}
}

func TestQueryRows_FiltersAndPagination(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	insertCalls(t, s,
		api.Row{"id": "c-1", "tenant_id": "t1", "status": "missed", "started_at": "2025-06-01T10:00:00Z"},
		api.Row{"id": "c-2", "tenant_id": "t1", "status": "completed", "started_at": "2025-06-01T11:00:00Z"},
		api.Row{"id": "c-3", "tenant_id": "t1", "status": "missed", "started_at": "2025-06-01T12:00:00Z"},
		api.Row{"id": "c-4", "tenant_id": "t2", "status": "missed", "started_at": "2025-06-01T13:00:00Z"},
	)

	res, err := s.QueryRows(ctx, "calls", storage.Query{
		Filters:    map[string]string{"tenant_id": "t1", "status": "missed"},
		OrderBy:    "started_at",
		Descending: true,
		Limit:      1,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.TotalCount)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "c-3", res.Rows[0].ID())

	// Вторая страница того же запроса
	res, err = s.QueryRows(ctx, "calls", storage.Query{
		Filters:    map[string]string{"tenant_id": "t1", "status": "missed"},
		OrderBy:    "started_at",
		Descending: true,
		Limit:      1,
		Offset:     1,
	})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "c-1", res.Rows[0].ID())
}

func TestQueryRows_ScopeIncludesGlobalRows(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	for _, row := range []api.Row{
		{"id": "m-1", "tenant_id": "", "text": "global", "created_at": "2025-06-01T10:00:00Z"},
		{"id": "m-2", "tenant_id": "t1", "text": "for t1", "created_at": "2025-06-01T11:00:00Z"},
		{"id": "m-3", "tenant_id": "t2", "text": "for t2", "created_at": "2025-06-01T12:00:00Z"},
	} {
		_, err := s.InsertRow(ctx, "system_messages", row)
		require.NoError(t, err)
	}

	scope := "t1"
	res, err := s.QueryRows(ctx, "system_messages", storage.Query{Scope: &scope})
	require.NoError(t, err)

	assert.Equal(t, 2, res.TotalCount)
	ids := []string{res.Rows[0].ID(), res.Rows[1].ID()}
	assert.ElementsMatch(t, []string{"m-1", "m-2"}, ids)

	// Пустой scope — только глобальные записи
	empty := ""
	res, err = s.QueryRows(ctx, "system_messages", storage.Query{Scope: &empty})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "m-1", res.Rows[0].ID())
}

func TestQueryRows_BadInput(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_, err := s.QueryRows(ctx, "invoices", storage.Query{})
	assert.ErrorIs(t, err, storage.ErrUnknownResource)

	_, err = s.QueryRows(ctx, "calls", storage.Query{
		Filters: map[string]string{"salary": "1"},
	})
	assert.ErrorIs(t, err, storage.ErrBadColumn)

	_, err = s.QueryRows(ctx, "calls", storage.Query{OrderBy: "salary"})
	assert.ErrorIs(t, err, storage.ErrBadColumn)
}

func TestInsertRow_FillsDefaults(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	row, err := s.InsertRow(ctx, "leads", api.Row{
		"tenant_id": "t1",
		"name":      "Initech",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, row.ID())
	assert.NotEmpty(t, row["created_at"])
	assert.Equal(t, "new", row["stage"]) // схема даёт default
}

func TestInsertRow_RejectsUnknownColumn(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.InsertRow(context.Background(), "leads", api.Row{
		"tenant_id": "t1",
		"budget":    "1000",
	})
	assert.ErrorIs(t, err, storage.ErrBadColumn)
}

func TestUpdateRow(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	insertCalls(t, s, api.Row{
		"id": "c-1", "tenant_id": "t1", "status": "in_progress", "started_at": "2025-06-01T10:00:00Z",
	})

	row, err := s.UpdateRow(ctx, "calls", "c-1", api.Row{
		"status":       "completed",
		"duration_sec": 45,
	})
	require.NoError(t, err)
	assert.Equal(t, "completed", row["status"])
	assert.Equal(t, int64(45), row["duration_sec"])

	_, err = s.UpdateRow(ctx, "calls", "missing", api.Row{"status": "completed"})
	assert.ErrorIs(t, err, storage.ErrRowNotFound)
}

func TestDeleteRow(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	insertCalls(t, s, api.Row{
		"id": "c-1", "tenant_id": "t1", "started_at": "2025-06-01T10:00:00Z",
	})

	require.NoError(t, s.DeleteRow(ctx, "calls", "c-1"))
	assert.ErrorIs(t, s.DeleteRow(ctx, "calls", "c-1"), storage.ErrRowNotFound)

	res, err := s.QueryRows(ctx, "calls", storage.Query{})
	require.NoError(t, err)
	assert.Zero(t, res.TotalCount)
}

func TestQueryRows_NullableColumn(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_, err := s.InsertRow(ctx, "system_messages", api.Row{
		"id": "m-1", "text": "no expiry", "created_at": "2025-06-01T10:00:00Z",
	})
	require.NoError(t, err)

	res, err := s.QueryRows(ctx, "system_messages", storage.Query{})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)

	// NULL expires_at не попадает в строку вовсе
	_, present := res.Rows[0]["expires_at"]
	assert.False(t, present)
}
