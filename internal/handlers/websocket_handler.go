package handlers

import (
	"net/http"
	"strings"
	"time"

	"renthub/internal/notify"
	"renthub/pkg/config"
	"renthub/pkg/jwt"
	"renthub/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WebSocketHandler 通知推送WebSocket处理器
type WebSocketHandler struct {
	upgrader   websocket.Upgrader
	hub        *notify.Hub
	jwtManager *jwt.JWTManager
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(hub *notify.Hub) *WebSocketHandler {
	// 获取CORS配置
	cfg := config.GetConfig()
	allowedOrigins := cfg.CORS.AllowOrigins

	return &WebSocketHandler{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")

				// 同源请求Origin为空，允许
				if origin == "" {
					return true
				}

				for _, allowed := range allowedOrigins {
					if allowed == "*" || matchOrigin(origin, allowed) {
						return true
					}
				}

				logger.GetLogger().Warnf("WebSocket连接被拒绝，非法Origin: %s", origin)
				return false
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		hub:        hub,
		jwtManager: jwt.GetJWTManager(), // 使用全局JWT管理器
	}
}

// Notifications 建立通知推送连接
// WebSocket不支持自定义header，token从查询参数获取。
func (h *WebSocketHandler) Notifications(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "缺少认证令牌"})
		return
	}

	claims, err := h.jwtManager.VerifyToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "无效的令牌"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.GetLogger().Errorf("WebSocket升级失败: %v", err)
		return
	}

	h.hub.Register(claims.UserID, conn)
	logger.GetLogger().Infof("用户 %d 建立通知连接", claims.UserID)

	// 读循环只处理控制帧，连接断开即摘除
	go func() {
		defer func() {
			h.hub.Unregister(claims.UserID, conn)
			_ = conn.Close()
			logger.GetLogger().Infof("用户 %d 断开通知连接", claims.UserID)
		}()

		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// matchOrigin Origin匹配（支持 *.example.com 通配）
func matchOrigin(origin, allowed string) bool {
	if origin == allowed {
		return true
	}
	if strings.HasPrefix(allowed, "*.") {
		return strings.HasSuffix(origin, allowed[1:])
	}
	return false
}
