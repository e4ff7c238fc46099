package realtime

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/callboard/pkg/api"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// dialSub подключает тестового подписчика к hub-у
func dialSub(t *testing.T, hub *Hub, scope string, snapshot []api.SystemMessage) (*websocket.Conn, func()) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, "system_messages", scope, snapshot)
	}))

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		_ = resp.Body.Close()
	}

	require.Eventually(t, func() bool { return hub.SubscriberCount() > 0 }, time.Second, 5*time.Millisecond)

	return conn, func() {
		_ = conn.Close()
		server.Close()
	}
}

func readEvent(t *testing.T, conn *websocket.Conn) api.SubscriptionEvent {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event api.SubscriptionEvent
	require.NoError(t, conn.ReadJSON(&event))
	return event
}

func TestServe_SendsSnapshotFirst(t *testing.T) {
	hub := NewHub(testLogger())
	defer hub.Close()

	snapshot := []api.SystemMessage{{ID: "m-1", Severity: "info", Text: "hello"}}
	conn, cleanup := dialSub(t, hub, "acme", snapshot)
	defer cleanup()

	event := readEvent(t, conn)
	assert.Equal(t, api.EventSnapshot, event.Type)
	assert.Equal(t, "system_messages", event.Resource)
	require.Len(t, event.Snapshot, 1)
	assert.Equal(t, "m-1", event.Snapshot[0].ID)
	assert.NotZero(t, event.Seq)
}

func TestBroadcast_ScopeRouting(t *testing.T) {
	hub := NewHub(testLogger())
	defer hub.Close()

	acme, cleanupA := dialSub(t, hub, "acme", nil)
	defer cleanupA()
	global, cleanupG := dialSub(t, hub, "", nil)
	defer cleanupG()

	// Событие тенанта acme: видят acme-подписчик и глобальный
	hub.Broadcast("system_messages", "acme", api.SubscriptionEvent{
		Type: api.EventInsert,
		Row:  &api.SystemMessage{ID: "m-2", TenantID: "acme"},
	})

	event := readEvent(t, acme)
	assert.Equal(t, api.EventInsert, event.Type)
	require.NotNil(t, event.Row)
	assert.Equal(t, "m-2", event.Row.ID)
	assert.Equal(t, "acme", event.Scope)

	event = readEvent(t, global)
	require.NotNil(t, event.Row)
	assert.Equal(t, "m-2", event.Row.ID)
	assert.Empty(t, event.Scope)
}

func TestBroadcast_OtherTenantNotDelivered(t *testing.T) {
	hub := NewHub(testLogger())
	defer hub.Close()

	acme, cleanup := dialSub(t, hub, "acme", nil)
	defer cleanup()

	hub.Broadcast("system_messages", "globex", api.SubscriptionEvent{
		Type: api.EventInsert,
		Row:  &api.SystemMessage{ID: "m-3", TenantID: "globex"},
	})
	// Глобальное событие должно прийти первым же кадром
	hub.Broadcast("system_messages", "", api.SubscriptionEvent{
		Type: api.EventInsert,
		Row:  &api.SystemMessage{ID: "m-4"},
	})

	event := readEvent(t, acme)
	require.NotNil(t, event.Row)
	assert.Equal(t, "m-4", event.Row.ID)
}

func TestBroadcast_SeqMonotonic(t *testing.T) {
	hub := NewHub(testLogger())
	defer hub.Close()

	conn, cleanup := dialSub(t, hub, "", nil)
	defer cleanup()

	for i := range 3 {
		hub.Broadcast("system_messages", "", api.SubscriptionEvent{
			Type: api.EventInsert,
			Row:  &api.SystemMessage{ID: string(rune('a' + i))},
		})
	}

	var last uint64
	for range 3 {
		event := readEvent(t, conn)
		assert.Greater(t, event.Seq, last)
		last = event.Seq
	}
}

func TestClose_DropsSubscribers(t *testing.T) {
	hub := NewHub(testLogger())

	conn, cleanup := dialSub(t, hub, "", nil)
	defer cleanup()

	hub.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.Zero(t, hub.SubscriberCount())
}
