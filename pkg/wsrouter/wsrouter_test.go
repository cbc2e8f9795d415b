package wsrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestConn serves router over a real websocket and returns the client
// side plus the server side of the connection.
func newTestConn(t *testing.T, router *WSRouter) (*websocket.Conn, *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	serverConns := make(chan *websocket.Conn, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		serverConns <- conn
		router.ServeConn(context.Background(), conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return client, <-serverConns
}

func TestServeConnRouting(t *testing.T) {
	router := New()
	router.Handle("ping", func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
		return conn.WriteJSON(map[string]string{"type": "pong"})
	})

	client, _ := newTestConn(t, router)

	require.NoError(t, client.WriteJSON(map[string]string{"type": "ping"}))

	client.SetReadDeadline(time.Now().Add(5 * time.Second))
	var reply map[string]string
	require.NoError(t, client.ReadJSON(&reply))
	assert.Equal(t, "pong", reply["type"])
}

func TestUnknownTypeDelegated(t *testing.T) {
	router := New()
	router.Handle("ping", func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
		return conn.WriteJSON(map[string]string{"type": "pong"})
	})

	unknownTypes := make(chan string, 1)
	router.HandleUnknown(func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
		unknownTypes <- GetMessageTypeFromCtx(ctx)
		return conn.WriteJSON(map[string]string{"type": "error"})
	})

	client, _ := newTestConn(t, router)

	require.NoError(t, client.WriteJSON(map[string]string{"type": "bogus"}))

	client.SetReadDeadline(time.Now().Add(5 * time.Second))
	var reply map[string]string
	require.NoError(t, client.ReadJSON(&reply))
	assert.Equal(t, "error", reply["type"])
	assert.Equal(t, "bogus", <-unknownTypes)
}

// Without an unknown handler the router must stay silent: the next frame
// the client sees is the reply to its routed message.
func TestUnknownTypeDroppedWithoutHandler(t *testing.T) {
	router := New()
	router.Handle("ping", func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
		return conn.WriteJSON(map[string]string{"type": "pong"})
	})

	client, _ := newTestConn(t, router)

	require.NoError(t, client.WriteJSON(map[string]string{"type": "bogus"}))
	require.NoError(t, client.WriteJSON(map[string]string{"type": "ping"}))

	client.SetReadDeadline(time.Now().Add(5 * time.Second))
	var reply map[string]string
	require.NoError(t, client.ReadJSON(&reply))
	assert.Equal(t, "pong", reply["type"])
}

// A flood of unrecognized messages must not produce writes that bypass the
// caller's locking while another goroutine broadcasts to the same
// connection. Run with -race.
func TestUnknownTrafficDuringBroadcast(t *testing.T) {
	const frames = 25

	var writeMu sync.Mutex
	router := New()
	router.HandleUnknown(func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(map[string]string{"type": "error"})
	})

	client, server := newTestConn(t, router)

	go func() {
		for i := 0; i < frames; i++ {
			writeMu.Lock()
			server.WriteJSON(map[string]string{"type": "broadcast"})
			writeMu.Unlock()
		}
	}()

	for i := 0; i < frames; i++ {
		require.NoError(t, client.WriteJSON(map[string]string{"type": "bogus"}))
	}

	client.SetReadDeadline(time.Now().Add(5 * time.Second))
	counts := make(map[string]int)
	for i := 0; i < 2*frames; i++ {
		var reply map[string]string
		require.NoError(t, client.ReadJSON(&reply))
		counts[reply["type"]]++
	}

	assert.Equal(t, frames, counts["broadcast"])
	assert.Equal(t, frames, counts["error"])
}
