package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/callboard/internal/server/realtime"
	"github.com/iudanet/callboard/internal/server/storage/sqlite"
	"github.com/iudanet/callboard/pkg/api"
)

func newSubscribeHandler(t *testing.T) (*SubscribeHandler, *sqlite.Storage, *realtime.Hub) {
	t.Helper()

	store := newTestStore(t)
	hub := realtime.NewHub(testLogger())
	t.Cleanup(hub.Close)
	return NewSubscribeHandler(testLogger(), store, hub), store, hub
}

func seedMessages(t *testing.T, store *sqlite.Storage, rows ...api.Row) {
	t.Helper()
	for _, row := range rows {
		_, err := store.InsertRow(context.Background(), "system_messages", row)
		require.NoError(t, err)
	}
}

func TestSubscribe_Rejections(t *testing.T) {
	h, _, _ := newSubscribeHandler(t)

	tests := []struct {
		name     string
		target   string
		scope    string
		auth     bool
		wantCode int
	}{
		{"bad resource", "/api/v1/subscribe?resource=Nope!", "", true, http.StatusBadRequest},
		{"unauthenticated", "/api/v1/subscribe?resource=system_messages", "", false, http.StatusUnauthorized},
		{"foreign scope", "/api/v1/subscribe?resource=system_messages&scope=globex", "acme", true, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.auth {
				r = r.WithContext(WithTenantScope(r.Context(), tt.scope))
			}
			w := httptest.NewRecorder()
			h.Subscribe(w, r)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestSubscribe_SnapshotFirstFrame(t *testing.T) {
	h, store, _ := newSubscribeHandler(t)

	past := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)
	seedMessages(t, store,
		api.Row{"id": "m-1", "tenant_id": "", "severity": "info", "text": "global notice"},
		api.Row{"id": "m-2", "tenant_id": "acme", "severity": "warning", "text": "tenant notice"},
		api.Row{"id": "m-3", "tenant_id": "globex", "severity": "info", "text": "other tenant"},
		api.Row{"id": "m-4", "tenant_id": "acme", "severity": "info", "text": "already expired", "expires_at": past},
	)

	// tenant scope в контексте имитирует auth middleware
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.Subscribe(w, r.WithContext(WithTenantScope(r.Context(), "acme")))
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/subscribe?resource=system_messages&scope=acme"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		_ = resp.Body.Close()
	}
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event api.SubscriptionEvent
	require.NoError(t, conn.ReadJSON(&event))

	assert.Equal(t, api.EventSnapshot, event.Type)
	assert.Equal(t, "system_messages", event.Resource)
	assert.Equal(t, "acme", event.Scope)

	// scope видит свои и глобальные сообщения; чужие и истекшие — нет
	ids := make([]string, 0, len(event.Snapshot))
	for _, msg := range event.Snapshot {
		ids = append(ids, msg.ID)
	}
	assert.ElementsMatch(t, []string{"m-1", "m-2"}, ids)
}
