package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"movie-tracker/config"
	"movie-tracker/pkg/logger"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client 代表一个WebSocket连接
// 同一用户可以同时打开多个页面，每个页面一个 Client
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
}

// Event 推送给浏览器的事件
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// Manager 管理在线用户的WebSocket连接，推送仅针对在线用户，离线时直接丢弃
type Manager struct {
	clients      map[string]map[*Client]struct{}
	lock         sync.RWMutex
	pingInterval time.Duration
	readTimeout  time.Duration
}

// NewManager 创建连接管理器
func NewManager(cfg config.WebSocketConfig) *Manager {
	ping := cfg.PingInterval
	if ping <= 0 {
		ping = 30 * time.Second
	}
	read := cfg.ReadTimeout
	if read <= 0 {
		read = 2 * ping
	}
	return &Manager{
		clients:      make(map[string]map[*Client]struct{}),
		pingInterval: ping,
		readTimeout:  read,
	}
}

// AddClient 添加新连接
func (m *Manager) AddClient(client *Client) {
	m.lock.Lock()
	defer m.lock.Unlock()
	set, ok := m.clients[client.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		m.clients[client.UserID] = set
	}
	set[client] = struct{}{}
}

// RemoveClient 移除连接并关闭其发送通道
func (m *Manager) RemoveClient(client *Client) {
	m.lock.Lock()
	defer m.lock.Unlock()
	set, ok := m.clients[client.UserID]
	if !ok {
		return
	}
	if _, ok := set[client]; ok {
		close(client.Send)
		delete(set, client)
	}
	if len(set) == 0 {
		delete(m.clients, client.UserID)
	}
}

// IsOnline 判断用户是否在线
func (m *Manager) IsOnline(userID string) bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.clients[userID]) > 0
}

// Notify 向用户的所有连接推送事件，发送缓冲已满的连接跳过
func (m *Manager) Notify(userID, eventType string, payload interface{}) {
	msg, err := json.Marshal(Event{Type: eventType, Data: payload, Timestamp: time.Now().Unix()})
	if err != nil {
		logger.Warn("序列化推送事件失败", zap.String("type", eventType), zap.Error(err))
		return
	}

	m.lock.RLock()
	defer m.lock.RUnlock()
	for client := range m.clients[userID] {
		select {
		case client.Send <- msg:
		default:
			logger.Warn("推送缓冲已满，丢弃事件",
				zap.String("user_id", userID),
				zap.String("type", eventType),
			)
		}
	}
}
