package websocket

import (
	"encoding/json"
	"net/http"
	"time"

	"movie-tracker/pkg/logger"
	"movie-tracker/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     CheckSameOrigin,
}

// Handler 建立推送连接；userIDOf 返回当前会话的用户ID，空串表示未登录
func (m *Manager) Handler(userIDOf func(c *gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := userIDOf(c)
		if userID == "" {
			response.Unauthorized(c, "User not authenticated")
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("WebSocket升级失败", zap.String("user_id", userID), zap.Error(err))
			return
		}

		client := &Client{
			UserID: userID,
			Conn:   conn,
			Send:   make(chan []byte, 64),
		}
		m.AddClient(client)
		logger.Debug("WebSocket已连接", zap.String("user_id", userID))

		go m.writePump(client)
		m.readPump(client)
	}
}

// writePump 发送事件并定时发送ping心跳
func (m *Manager) writePump(client *Client) {
	ticker := time.NewTicker(m.pingInterval)
	defer func() {
		ticker.Stop()
		_ = client.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.Send:
			_ = client.Conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if !ok {
				_ = client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := client.Conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}

// readPump 读取客户端心跳，超时未收到任何数据则断开
func (m *Manager) readPump(client *Client) {
	defer func() {
		m.RemoveClient(client)
		logger.Debug("WebSocket已断开", zap.String("user_id", client.UserID))
	}()

	conn := client.Conn
	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(m.readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(m.readTimeout))
	})

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(m.readTimeout))

		var msg struct {
			Type string `json:"type"`
		}
		if json.Unmarshal(payload, &msg) == nil && msg.Type == "heartbeat" {
			m.Notify(client.UserID, "heartbeat_ack", nil)
		}
	}
}

// CheckSameOrigin 仅允许同源页面建立连接
func CheckSameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || origin == "http://"+r.Host || origin == "https://"+r.Host
}
