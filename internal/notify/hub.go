// Package notify 通过 WebSocket 向市民推送报告状态变更。
package notify

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	// 鉴权在 JWT 中间件完成，跨域策略交给 CORS 配置
	CheckOrigin: func(r *http.Request) bool { return true },
}

// client 单个连接；只有 writePump 向 conn 写入
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub 按市民 ID 维护 WebSocket 连接
// Publish 只把消息放进各连接的发送缓冲，不在锁内做网络写入
type Hub struct {
	mu      sync.Mutex
	clients map[string]map[*client]struct{}
	logger  *zap.Logger
}

// NewHub 创建 Hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*client]struct{}),
		logger:  logger,
	}
}

// ServeWS 升级连接并阻塞直到客户端断开
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, citizenID string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(citizenID, c)
	defer h.unregister(citizenID, c)

	go h.writePump(citizenID, c)

	// 客户端无需发送消息，读循环只用于处理控制帧与感知断开
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}

// Publish 向该市民的所有连接投递事件，不等待网络写入；
// 发送缓冲已满的连接视为卡死，直接断开
func (h *Hub) Publish(citizenID string, event interface{}) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("序列化通知失败", zap.String("citizen_id", citizenID), zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients[citizenID] {
		select {
		case c.send <- payload:
		default:
			h.logger.Warn("连接发送缓冲已满，断开", zap.String("citizen_id", citizenID))
			h.removeLocked(citizenID, c)
		}
	}
}

// Connections 当前在线连接数
func (h *Hub) Connections(citizenID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[citizenID])
}

func (h *Hub) writePump(citizenID string, c *client) {
	for payload := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.logger.Warn("推送通知失败", zap.String("citizen_id", citizenID), zap.Error(err))
			h.unregister(citizenID, c)
			return
		}
	}
}

func (h *Hub) register(citizenID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[citizenID] == nil {
		h.clients[citizenID] = make(map[*client]struct{})
	}
	h.clients[citizenID][c] = struct{}{}
}

func (h *Hub) unregister(citizenID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(citizenID, c)
}

// removeLocked 调用方需持有 h.mu；send 只在这里关闭，保证只关闭一次
func (h *Hub) removeLocked(citizenID string, c *client) {
	if _, ok := h.clients[citizenID][c]; ok {
		delete(h.clients[citizenID], c)
		close(c.send)
		c.conn.Close()
	}
	if len(h.clients[citizenID]) == 0 {
		delete(h.clients, citizenID)
	}
}
