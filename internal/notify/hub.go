package notify

import (
	"sync"
	"time"

	"renthub/pkg/logger"

	"github.com/gorilla/websocket"
)

// Event 推送给用户的生命周期事件
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// 事件类型常量
const (
	EventApplicationSubmitted = "application.submitted"
	EventApplicationReviewed  = "application.reviewed"
	EventLeaseCreated         = "lease.created"
	EventTerminationRequested = "lease.termination_requested"
	EventLeaseTerminated      = "lease.terminated"
	EventRenewalOffered       = "lease.renewal_offered"
	EventRenewalAnswered      = "lease.renewal_answered"
	EventMaintenanceUpdated   = "maintenance.updated"
)

const (
	// 单次写入超时，超时即摘除连接
	writeWait = 5 * time.Second
	// 每连接发送缓冲，写满即丢弃事件
	sendBuffer = 16
)

// client 单个连接及其发送队列，写操作全部在writePump协程串行执行
type client struct {
	userID uint
	conn   *websocket.Conn
	send   chan Event
	done   chan struct{}
	once   sync.Once
}

// Hub 按用户维护WebSocket连接并推送事件
// 推送尽力而为：用户未连接不算错误；每连接一个写协程+有界缓冲，
// 慢客户端丢事件、超时摘连接，业务请求永不被推送阻塞。
type Hub struct {
	mu      sync.RWMutex
	clients map[uint][]*client
}

// NewHub 创建通知中心
func NewHub() *Hub {
	return &Hub{clients: make(map[uint][]*client)}
}

// Register 注册用户连接并启动其写协程
func (h *Hub) Register(userID uint, conn *websocket.Conn) {
	c := &client{
		userID: userID,
		conn:   conn,
		send:   make(chan Event, sendBuffer),
		done:   make(chan struct{}),
	}
	h.mu.Lock()
	h.clients[userID] = append(h.clients[userID], c)
	h.mu.Unlock()

	go h.writePump(c)
}

// Unregister 摘除用户连接
func (h *Hub) Unregister(userID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients := h.clients[userID]
	for i, c := range clients {
		if c.conn == conn {
			h.clients[userID] = append(clients[:i], clients[i+1:]...)
			c.once.Do(func() { close(c.done) })
			break
		}
	}
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
}

// writePump 串行消费发送队列，写失败或超时即摘除连接
func (h *Hub) writePump(c *client) {
	for {
		select {
		case event := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(event); err != nil {
				logger.GetLogger().Debugf("notify push to user %d failed: %v", c.userID, err)
				h.Unregister(c.userID, c.conn)
				_ = c.conn.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// Push 向指定用户推送事件，入队即返回，缓冲满则丢弃
func (h *Hub) Push(userID uint, eventType string, data interface{}) {
	h.mu.RLock()
	clients := append([]*client(nil), h.clients[userID]...)
	h.mu.RUnlock()

	if len(clients) == 0 {
		return
	}

	event := Event{Type: eventType, Data: data, Timestamp: time.Now()}
	for _, c := range clients {
		select {
		case c.send <- event:
		default:
			logger.GetLogger().Debugf("notify push to user %d dropped: send buffer full", userID)
		}
	}
}

// 全局通知中心，main中初始化
var (
	globalHub *Hub
	hubMu     sync.RWMutex
)

// SetHub 设置全局通知中心
func SetHub(h *Hub) {
	hubMu.Lock()
	defer hubMu.Unlock()
	globalHub = h
}

// Push 通过全局通知中心推送，未初始化时为空操作
func Push(userID uint, eventType string, data interface{}) {
	hubMu.RLock()
	h := globalHub
	hubMu.RUnlock()
	if h != nil {
		h.Push(userID, eventType, data)
	}
}

// PushAll 向一组用户推送同一事件
func PushAll(userIDs []uint, eventType string, data interface{}) {
	for _, id := range userIDs {
		Push(id, eventType, data)
	}
}
