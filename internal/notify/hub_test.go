package notify

import (
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

// 启动一个只负责升级并注册连接的WebSocket测试服务
func newHubTestServer(t *testing.T, hub *Hub, userID uint) (*httptest.Server, *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(userID, conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.clients[userID]) == 1
	}, time.Second, 10*time.Millisecond)

	return srv, client
}

func TestHubPushDeliversEvent(t *testing.T) {
	hub := NewHub()
	_, client := newHubTestServer(t, hub, 7)

	hub.Push(7, EventRenewalOffered, map[string]interface{}{"lease_id": 42})

	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event Event
	require.NoError(t, client.ReadJSON(&event))
	assert.Equal(t, EventRenewalOffered, event.Type)
	assert.False(t, event.Timestamp.IsZero())
}

// 客户端停止读取时，推送必须立即返回而不是卡死业务请求
func TestHubPushStalledClientDoesNotBlock(t *testing.T) {
	hub := NewHub()
	newHubTestServer(t, hub, 1)
	// 客户端从不读取，TCP缓冲写满后服务端写入只能靠队列丢弃和写超时解围

	payload := strings.Repeat("x", 64*1024)
	done := make(chan struct{})
	go func() {
		defer close(done)
		var wg sync.WaitGroup
		for i := 0; i < 64; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				hub.Push(1, EventMaintenanceUpdated, payload)
			}()
		}
		wg.Wait()
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("推送被慢客户端阻塞")
	}
}

func TestHubUnregisterStopsDelivery(t *testing.T) {
	hub := NewHub()
	var serverConn *websocket.Conn
	var mu sync.Mutex

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		mu.Lock()
		serverConn = conn
		mu.Unlock()
		hub.Register(3, conn)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer client.Close()

	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.clients[3]) == 1
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	conn := serverConn
	mu.Unlock()
	hub.Unregister(3, conn)

	hub.mu.RLock()
	remaining := len(hub.clients[3])
	hub.mu.RUnlock()
	assert.Zero(t, remaining)

	// 摘除后推送为空操作
	hub.Push(3, EventLeaseTerminated, nil)
}
