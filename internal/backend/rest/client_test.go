package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/callboard/internal/backend"
	"github.com/iudanet/callboard/pkg/api"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestQuery_ParsesRowsAndTotalCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/calls", r.URL.Path)
		assert.Equal(t, "t1", r.URL.Query().Get("tenant_id"))
		assert.Equal(t, "0-10", r.URL.Query().Get("range"))
		assert.Equal(t, "started_at.desc", r.URL.Query().Get("order"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		w.Header().Set("X-Total-Count", "23")
		_ = json.NewEncoder(w).Encode(api.QueryResponse{
			Rows:       []api.Row{{"id": "c1"}, {"id": "c2"}},
			TotalCount: 23,
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, "tok", testLogger())

	res, err := c.Query(context.Background(), "calls", backend.QueryOptions{
		Filters:    map[string]string{"tenant_id": "t1"},
		OrderBy:    "started_at",
		Descending: true,
		RangeStart: 0,
		RangeEnd:   10,
	})
	require.NoError(t, err)
	assert.Equal(t, 23, res.TotalCount)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "c1", res.Rows[0].ID())
}

func TestDoRequest_ErrorMapping(t *testing.T) {
	tests := []struct {
		check  func(t *testing.T, err error)
		name   string
		status int
	}{
		{
			name:   "404 maps to NotFoundError",
			status: http.StatusNotFound,
			check: func(t *testing.T, err error) {
				assert.True(t, backend.IsNotFound(err))
				assert.False(t, backend.CountsAsFailure(err))
			},
		},
		{
			name:   "400 maps to ValidationError",
			status: http.StatusBadRequest,
			check: func(t *testing.T, err error) {
				assert.True(t, backend.IsValidation(err))
			},
		},
		{
			name:   "422 maps to ValidationError",
			status: http.StatusUnprocessableEntity,
			check: func(t *testing.T, err error) {
				assert.True(t, backend.IsValidation(err))
			},
		},
		{
			name:   "500 maps to NetworkError",
			status: http.StatusInternalServerError,
			check: func(t *testing.T, err error) {
				assert.True(t, backend.IsNetwork(err))
				assert.True(t, backend.CountsAsFailure(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: "err", Message: "details"})
			}))
			defer server.Close()

			c := NewClient(server.URL, "", testLogger())
			_, err := c.Query(context.Background(), "calls", backend.QueryOptions{RangeEnd: 10})
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestQuery_TransportFailureIsNetworkError(t *testing.T) {
	// сервер закрыт сразу: соединение откажет
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	c := NewClient(server.URL, "", testLogger())
	_, err := c.Query(context.Background(), "calls", backend.QueryOptions{RangeEnd: 10})
	assert.True(t, backend.IsNetwork(err))
}

func TestInsertUpdateDelete(t *testing.T) {
	var gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		var row api.Row
		_ = json.NewDecoder(r.Body).Decode(&row)
		_ = json.NewEncoder(w).Encode(api.MutationResponse{Row: row})
	}))
	defer server.Close()

	c := NewClient(server.URL, "", testLogger())
	ctx := context.Background()

	row, err := c.Insert(ctx, "system_messages", api.Row{"id": "m1", "text": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "m1", row.ID())
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/v1/system_messages", gotPath)

	_, err = c.Update(ctx, "system_messages", "m1", api.Row{"text": "hello"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/api/v1/system_messages/m1", gotPath)

	require.NoError(t, c.Delete(ctx, "system_messages", "m1"))
	assert.Equal(t, http.MethodDelete, gotMethod)
}

func TestSubscribe_DeliversEventsAndReportsConnection(t *testing.T) {
	upgrader := websocket.Upgrader{}
	frames := make(chan api.SubscriptionEvent, 1)
	frames <- api.SubscriptionEvent{
		Type:     api.EventSnapshot,
		Resource: "system_messages",
		Snapshot: []api.SystemMessage{{ID: "m1", Severity: "info", Text: "hi"}},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/subscribe", r.URL.Path)
		assert.Equal(t, "system_messages", r.URL.Query().Get("resource"))
		assert.Equal(t, "t1", r.URL.Query().Get("scope"))

		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		for ev := range frames {
			require.NoError(t, conn.WriteJSON(ev))
		}
		// держим соединение, пока клиент не отпишется
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	c := NewClient(server.URL, "", testLogger())

	events := make(chan api.SubscriptionEvent, 8)
	var statuses []string
	statusCh := make(chan string, 8)
	c.OnConnectionChange(func(s api.ConnectionStatus) { statusCh <- s.State })

	sub, err := c.Subscribe(context.Background(), "system_messages", "t1", func(ev api.SubscriptionEvent) {
		events <- ev
	})
	require.NoError(t, err)

	select {
	case ev := <-events:
		assert.Equal(t, api.EventSnapshot, ev.Type)
		require.Len(t, ev.Snapshot, 1)
		assert.Equal(t, "m1", ev.Snapshot[0].ID)
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered")
	}
	close(frames)

	require.Eventually(t, func() bool {
		return c.ConnectionStatus().State == api.ConnConnected
	}, 2*time.Second, 10*time.Millisecond)

	sub.Unsubscribe()
	sub.Unsubscribe() // идемпотентно

	require.Eventually(t, func() bool {
		return c.ConnectionStatus().State == api.ConnDisconnected
	}, 2*time.Second, 10*time.Millisecond)

	// connecting → connected → disconnected прошли через callback
	deadline := time.After(time.Second)
drain:
	for {
		select {
		case s := <-statusCh:
			statuses = append(statuses, s)
		case <-deadline:
			break drain
		default:
			if len(statuses) >= 3 {
				break drain
			}
			time.Sleep(5 * time.Millisecond)
		}
	}
	assert.Contains(t, statuses, api.ConnConnecting)
	assert.Contains(t, statuses, api.ConnConnected)
	assert.Contains(t, statuses, api.ConnDisconnected)
}
