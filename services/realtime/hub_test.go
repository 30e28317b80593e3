package realtime_test

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/services/realtime"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/testutil"
)

func startHub(t *testing.T, buffer int, onCount func(int)) (*realtime.Hub, string) {
	t.Helper()
	hub := realtime.NewHub(buffer, testutil.Logger(), onCount)
	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitClients(t *testing.T, hub *realtime.Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.ClientCount() == n }, 2*time.Second, 10*time.Millisecond)
}

func readFrame(t *testing.T, conn *websocket.Conn) realtime.Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame realtime.Frame
	require.NoError(t, json.Unmarshal(data, &frame))
	return frame
}

func TestEncodeFrame(t *testing.T) {
	data, err := realtime.EncodeFrame("pollUpdated", map[string]interface{}{"id": "p1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"pollUpdated","data":{"id":"p1"}}`, string(data))
}

func TestHub_Emit(t *testing.T) {
	hub, url := startHub(t, 8, nil)
	c1 := dial(t, url)
	c2 := dial(t, url)
	waitClients(t, hub, 2)

	hub.Emit("assignmentUpdated", map[string]string{"title": "Essay"})

	for _, conn := range []*websocket.Conn{c1, c2} {
		frame := readFrame(t, conn)
		assert.Equal(t, "assignmentUpdated", frame.Event)
		assert.Equal(t, map[string]interface{}{"title": "Essay"}, frame.Data)
	}
}

func TestHub_Emit_noClients(t *testing.T) {
	hub := realtime.NewHub(1, testutil.Logger(), nil)
	defer hub.Close()

	done := make(chan struct{})
	go func() {
		hub.Emit("eventUpdated", "x")
		hub.Emit("eventUpdated", make(chan int)) // not encodable: logged and dropped
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked")
	}
}

func TestHub_ordering(t *testing.T) {
	hub, url := startHub(t, 16, nil)
	conn := dial(t, url)
	waitClients(t, hub, 1)

	for _, ev := range []string{"a", "b", "c"} {
		hub.Emit(ev, nil)
	}
	for _, want := range []string{"a", "b", "c"} {
		assert.Equal(t, want, readFrame(t, conn).Event)
	}
}

func TestHub_disconnect(t *testing.T) {
	var last atomic.Int64
	hub, url := startHub(t, 4, func(n int) { last.Store(int64(n)) })

	conn := dial(t, url)
	waitClients(t, hub, 1)
	assert.EqualValues(t, 1, last.Load())

	require.NoError(t, conn.Close())
	waitClients(t, hub, 0)
	assert.EqualValues(t, 0, last.Load())
}

func TestHub_Close(t *testing.T) {
	hub, url := startHub(t, 4, nil)
	conn := dial(t, url)
	waitClients(t, hub, 1)

	hub.Close()
	assert.Zero(t, hub.ClientCount())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)

	// new clients are turned away
	late := dial(t, url)
	require.NoError(t, late.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = late.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
	assert.Zero(t, hub.ClientCount())
}
