package middleware

import (
	"strings"

	"renthub/internal/services"
	"renthub/pkg/jwt"
	"renthub/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 权限中间件
type AuthMiddleware struct {
	userService *services.UserService
	jwtManager  *jwt.JWTManager
}

func NewAuthMiddleware(userService *services.UserService) *AuthMiddleware {
	return &AuthMiddleware{
		userService: userService,
		jwtManager:  jwt.GetJWTManager(), // 使用全局JWT管理器
	}
}

// RequireLogin 登录校验
func (m *AuthMiddleware) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 从Authorization头获取JWT token
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		// 检查Bearer格式
		if !strings.HasPrefix(authHeader, "Bearer ") {
			response.Unauthorized(c, "认证头格式错误")
			c.Abort()
			return
		}

		// 提取token
		tokenString := authHeader[7:] // 去掉 "Bearer "

		// 验证token
		claims, err := m.jwtManager.VerifyToken(tokenString)
		if err != nil {
			response.Unauthorized(c, "Token无效或已过期")
			c.Abort()
			return
		}

		// 获取用户信息
		user, err := m.userService.GetByID(claims.UserID)
		if err != nil {
			response.Unauthorized(c, "用户不存在")
			c.Abort()
			return
		}

		// 检查用户状态
		if !m.userService.IsActive(user) {
			response.Unauthorized(c, "用户已被禁用")
			c.Abort()
			return
		}

		// 将用户信息保存到上下文
		// 角色以数据库为准，token签发后角色变更立即生效
		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Set("role", user.Role)
		c.Set("email", user.Email)
		c.Set("claims", claims)

		c.Next()
	}
}

// RequirePermission 要求特定操作权限（按角色能力表判定）
func (m *AuthMiddleware) RequirePermission(permissionCode string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 先检查登录
		role, exists := c.Get("role")
		if !exists {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		if !RoleAllowed(role.(string), permissionCode) {
			response.Forbidden(c, "权限不足：需要 "+permissionCode+" 权限")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireRole 要求特定角色
func (m *AuthMiddleware) RequireRole(roleCode string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		if role.(string) != roleCode {
			response.Forbidden(c, "权限不足：需要 "+roleCode+" 角色")
			c.Abort()
			return
		}

		c.Next()
	}
}

// CombineMiddleware 组合中间件（登录 + 权限）
func (m *AuthMiddleware) CombineMiddleware(permissionCode string) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		m.RequireLogin(),
		m.RequirePermission(permissionCode),
	}
}

// CurrentUserID 从上下文取当前用户ID
func CurrentUserID(c *gin.Context) uint {
	return c.GetUint("user_id")
}

// CurrentRole 从上下文取当前用户角色
func CurrentRole(c *gin.Context) string {
	return c.GetString("role")
}
