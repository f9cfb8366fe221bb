package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"curriculo/internal/tasks"
)

func newWsServer(t *testing.T) (*httptest.Server, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	r := gin.New()
	r.GET("/v1/ws", NewWsHandler(client, testAuthService(), nil, nil).HandleConnection)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, mr
}

func dialWs(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/v1/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestWsForwardsExportNotifications(t *testing.T) {
	srv, mr := newWsServer(t)
	conn := dialWs(t, srv)

	require.NoError(t, conn.WriteJSON(wsAuthMessage{Type: "auth", Token: accessToken(t, 7)}))

	channel := tasks.NotifyChannel(7)
	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(channel)[channel] == 1
	}, 2*time.Second, 10*time.Millisecond)

	mr.Publish(channel, "not json")
	mr.Publish(channel, `{"type":"export","status":"completed","resume_id":3,"format":"pdf"}`)

	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"export","status":"completed","resume_id":3,"format":"pdf"}`, string(msg))
}

func TestWsRejectsRefreshToken(t *testing.T) {
	srv, _ := newWsServer(t)
	conn := dialWs(t, srv)

	pair, err := testAuthService().GenerateTokenPair(7)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(wsAuthMessage{Type: "auth", Token: pair.RefreshToken}))

	_, _, err = conn.ReadMessage()
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)
	assert.Equal(t, "access token required", closeErr.Text)
}

func TestWsOriginCheck(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://api.example.com/v1/ws", nil)
	req.Host = "api.example.com"

	assert.True(t, originAllowed(req, nil))

	req.Header.Set("Origin", "http://api.example.com")
	assert.True(t, originAllowed(req, nil))

	req.Header.Set("Origin", "https://other.example.com")
	assert.False(t, originAllowed(req, nil))
	assert.True(t, originAllowed(req, []string{"https://other.example.com"}))
}
