package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wsMessage struct {
	Type     string        `json:"type"`
	Result   string        `json:"result"`
	Message  string        `json:"message"`
	Snapshot *snapshotJSON `json:"snapshot"`
}

func dialWS(t *testing.T, ts *httptest.Server, id string) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?id=" + id
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads messages until pred matches one of them.
func readUntil(t *testing.T, conn *websocket.Conn, pred func(wsMessage) bool) wsMessage {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg wsMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if pred(msg) {
			return msg
		}
	}
}

func TestWebSocketSession(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	conn := dialWS(t, ts, "s1")

	first := readUntil(t, conn, func(m wsMessage) bool { return m.Type == "snapshot" })
	require.NotNil(t, first.Snapshot)
	assert.Equal(t, "s1", first.Snapshot.ID)
	assert.True(t, first.Snapshot.Chart.Renderable)

	require.NoError(t, conn.WriteJSON(wsInbound{Type: "dragEnd", Field: "sales", Zone: "xAxis"}))
	drop := readUntil(t, conn, func(m wsMessage) bool { return m.Type == "drop" })
	assert.Equal(t, "rejected", drop.Result)

	require.NoError(t, conn.WriteJSON(wsInbound{Type: "bind", Channel: "xAxis", Field: "region"}))
	snap := readUntil(t, conn, func(m wsMessage) bool {
		return m.Type == "snapshot" && m.Snapshot != nil &&
			m.Snapshot.Binding["xAxis"] != nil && *m.Snapshot.Binding["xAxis"] == "region"
	})
	assert.Equal(t, []string{"EU", "US", "EU"}, snap.Snapshot.Chart.Categories)

	require.NoError(t, conn.WriteJSON(wsInbound{Type: "bind", Channel: "xAxis", Field: "sales"}))
	errMsg := readUntil(t, conn, func(m wsMessage) bool { return m.Type == "error" })
	assert.Contains(t, errMsg.Message, "kind mismatch")

	require.NoError(t, conn.WriteJSON(wsInbound{Type: "ping"}))
	readUntil(t, conn, func(m wsMessage) bool { return m.Type == "pong" })

	require.NoError(t, conn.WriteJSON(wsInbound{Type: "zoom"}))
	errMsg = readUntil(t, conn, func(m wsMessage) bool { return m.Type == "error" })
	assert.Equal(t, "unknown message type zoom", errMsg.Message)
}

func TestWebSocketUnknownSession(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?id=missing"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
