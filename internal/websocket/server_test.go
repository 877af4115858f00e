package websocket

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

	"github.com/yegors/airtraffic/internal/simulation"
	"github.com/yegors/airtraffic/pkg/logger"
)

type testHub struct {
	server *Server
	url    string
	cancel context.CancelFunc
}

func startHub(t *testing.T) *testHub {
	t.Helper()
	s := NewServer(logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	go s.Run(ctx)

	ts := httptest.NewServer(http.HandlerFunc(s.HandleConnection))
	t.Cleanup(func() {
		cancel()
		ts.Close()
	})

	return &testHub{
		server: s,
		url:    "ws" + strings.TrimPrefix(ts.URL, "http"),
		cancel: cancel,
	}
}

func (h *testHub) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	before := h.server.ClientCount()
	conn, _, err := websocket.DefaultDialer.Dial(h.url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return h.server.ClientCount() == before+1 }, time.Second, 5*time.Millisecond)
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func (h *testHub) clientFilters() []*ClientFilters {
	h.server.mu.RLock()
	defer h.server.mu.RUnlock()
	var out []*ClientFilters
	for c := range h.server.clients {
		out = append(out, c.GetFilters())
	}
	return out
}

func TestPublishReachesAllClients(t *testing.T) {
	hub := startHub(t)
	a := hub.dial(t)
	b := hub.dial(t)

	hub.server.Publish(simulation.MessageTypeEpisodeReset, map[string]any{"seed": 7})

	for _, conn := range []*websocket.Conn{a, b} {
		msg := readMessage(t, conn)
		assert.Equal(t, simulation.MessageTypeEpisodeReset, msg.Type)
		assert.Equal(t, float64(7), msg.Data["seed"])
	}
}

func TestTickStrideFilter(t *testing.T) {
	hub := startHub(t)
	conn := hub.dial(t)

	require.NoError(t, conn.WriteJSON(Message{
		Type: MessageTypeFilterUpdate,
		Data: map[string]any{"tick_stride": 2},
	}))
	require.Eventually(t, func() bool {
		f := hub.clientFilters()
		return len(f) == 1 && f[0] != nil && f[0].TickStride == 2
	}, time.Second, 5*time.Millisecond)

	for tick := 1; tick <= 4; tick++ {
		hub.server.Publish(simulation.MessageTypeTick, map[string]any{"tick": tick, "event_count": 0})
	}
	hub.server.Publish(simulation.MessageTypeEpisodeEnd, map[string]any{})

	assert.Equal(t, float64(2), readMessage(t, conn).Data["tick"])
	assert.Equal(t, float64(4), readMessage(t, conn).Data["tick"])
	assert.Equal(t, simulation.MessageTypeEpisodeEnd, readMessage(t, conn).Type)
}

func TestEventsOnlyFilter(t *testing.T) {
	s := NewServer(logger.NewNop())
	c := &Client{server: s}
	c.UpdateFilters(&ClientFilters{EventsOnly: true})

	quiet := &Message{Type: simulation.MessageTypeTick, Data: map[string]any{"tick": 1, "event_count": 0}}
	busy := &Message{Type: simulation.MessageTypeTick, Data: map[string]any{"tick": 2, "event_count": 3}}
	reset := &Message{Type: simulation.MessageTypeEpisodeReset, Data: map[string]any{}}

	assert.False(t, s.shouldSendToClient(c, quiet))
	assert.True(t, s.shouldSendToClient(c, busy))
	assert.True(t, s.shouldSendToClient(c, reset))
}

type echoHandler struct{}

func (echoHandler) HandleMessage(client *Client, messageType string, data map[string]any) error {
	client.SendMessage(&Message{Type: messageType + "_ack", Data: data})
	return nil
}

func TestMessageHandler(t *testing.T) {
	hub := startHub(t)
	hub.server.SetMessageHandler(echoHandler{})
	conn := hub.dial(t)

	require.NoError(t, conn.WriteJSON(Message{Type: "ping", Data: map[string]any{"n": 1}}))
	msg := readMessage(t, conn)
	assert.Equal(t, "ping_ack", msg.Type)
}

func TestShutdownDisconnectsClients(t *testing.T) {
	hub := startHub(t)
	conn := hub.dial(t)

	hub.cancel()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 0, hub.server.ClientCount())
}

func TestPublishDoesNotBlockWithoutRun(t *testing.T) {
	s := NewServer(logger.NewNop())
	for i := 0; i < 1000; i++ {
		s.Publish(simulation.MessageTypeTick, map[string]any{"tick": i})
	}
}
