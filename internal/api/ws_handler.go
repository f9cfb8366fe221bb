package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"curriculo/internal/auth"
	"curriculo/internal/tasks"
)

const (
	wsAuthTimeout  = 10 * time.Second
	wsPingInterval = 30 * time.Second
	wsWriteTimeout = 5 * time.Second
)

// WsHandler 推送异步导出结果：客户端先发送 {"type":"auth","token":...}，
// 之后只接收 user_notify 频道上的导出消息。
type WsHandler struct {
	redisClient redis.UniversalClient
	authService *auth.AuthService
	logger      *slog.Logger
	upgrader    websocket.Upgrader
}

// NewWsHandler 构造 WebSocket 处理器；allowedOrigins 为空时只接受同源连接。
func NewWsHandler(redisClient redis.UniversalClient, authService *auth.AuthService, logger *slog.Logger, allowedOrigins []string) *WsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WsHandler{
		redisClient: redisClient,
		authService: authService,
		logger:      logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return originAllowed(r, allowedOrigins)
			},
		},
	}
}

func originAllowed(r *http.Request, allowed []string) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(allowed) > 0 {
		return slices.Contains(allowed, origin)
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

type wsAuthMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// wsClose 携带需要回给客户端的关闭码。
type wsClose struct {
	code   int
	reason string
	err    error
}

func (e *wsClose) Error() string { return fmt.Sprintf("%s: %v", e.reason, e.err) }
func (e *wsClose) Unwrap() error { return e.err }

type wsSession struct {
	conn *websocket.Conn
	log  *slog.Logger
}

// HandleConnection 升级连接、完成鉴权，然后转发通知直到任一方断开。
func (h *WsHandler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("upgrade websocket failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	s := &wsSession{conn: conn, log: h.logger.With(slog.String("client_ip", c.ClientIP()))}

	userID, err := s.authenticate(h.authService)
	if err != nil {
		s.fail(err)
		return
	}
	s.log = s.log.With(slog.Uint64("user_id", uint64(userID)))
	s.log.Info("websocket authenticated")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// 读循环只用于发现客户端断开
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := s.forward(ctx, h.redisClient, tasks.NotifyChannel(userID)); err != nil {
		s.fail(err)
		return
	}
	s.log.Info("websocket connection closed")
}

func (s *wsSession) authenticate(svc *auth.AuthService) (uint, error) {
	_ = s.conn.SetReadDeadline(time.Now().Add(wsAuthTimeout))
	defer s.conn.SetReadDeadline(time.Time{})

	_, raw, err := s.conn.ReadMessage()
	if err != nil {
		return 0, &wsClose{websocket.CloseAbnormalClosure, "read error", err}
	}
	var msg wsAuthMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return 0, &wsClose{websocket.ClosePolicyViolation, "invalid auth payload", err}
	}
	if msg.Type != "auth" || msg.Token == "" {
		return 0, &wsClose{websocket.ClosePolicyViolation, "auth required", errors.New("missing auth message")}
	}

	claims, err := svc.ValidateTokenOfType(msg.Token, auth.TokenTypeAccess)
	if err != nil {
		reason := "unauthorized"
		if errors.Is(err, auth.ErrWrongTokenType) {
			reason = "access token required"
		}
		return 0, &wsClose{websocket.ClosePolicyViolation, reason, err}
	}
	return claims.UserID, nil
}

func (s *wsSession) forward(ctx context.Context, rdb redis.UniversalClient, channel string) error {
	pubsub := rdb.Subscribe(ctx, channel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return &wsClose{websocket.CloseGoingAway, "notifications closed", errors.New("pubsub channel closed")}
			}
			if !isExportNotification(msg.Payload) {
				s.log.Warn("dropping unexpected notification", slog.String("channel", channel))
				continue
			}
			_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				return fmt.Errorf("write message: %w", err)
			}
		case <-ticker.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				return fmt.Errorf("write ping: %w", err)
			}
		}
	}
}

func (s *wsSession) fail(err error) {
	var closeErr *wsClose
	if errors.As(err, &closeErr) {
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(closeErr.code, closeErr.reason),
			time.Now().Add(wsWriteTimeout))
	}
	s.log.Info("websocket closed with error", slog.Any("error", err))
}

func isExportNotification(payload string) bool {
	var head struct {
		Type string `json:"type"`
	}
	return json.Unmarshal([]byte(payload), &head) == nil && head.Type == "export"
}
