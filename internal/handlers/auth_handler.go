package handlers

import (
	"strconv"
	"time"

	"renthub/internal/models"
	"renthub/internal/services"
	"renthub/pkg/jwt"
	"renthub/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	userService *services.UserService
	jwtManager  *jwt.JWTManager
}

func NewAuthHandler(userService *services.UserService) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		jwtManager:  jwt.GetJWTManager(), // 使用全局JWT管理器
	}
}

type RegisterRequest struct {
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Role      string `json:"role" binding:"omitempty,oneof=tenant property_owner property_manager"`
	Phone     string `json:"phone" binding:"omitempty,max=50"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string   `json:"token"`
	ExpiresAt int64    `json:"expires_at"`
	User      UserInfo `json:"user"`
}

type UserInfo struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Phone     string `json:"phone,omitempty"`
}

// Register 用户注册
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	user, err := h.userService.Register(services.RegisterParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
		Phone:     req.Phone,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}

	// 注册后直接下发令牌
	token, err := h.jwtManager.GenerateToken(user.ID, user.Role, user.Email)
	if err != nil {
		response.ServerError(c, "生成Token失败")
		return
	}

	expiresAt := time.Now().Add(h.jwtManager.GetTokenDuration()).Unix()
	response.SuccessWithMessage(c, "注册成功", LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      toUserInfo(user.ID, user.FirstName, user.LastName, user.Email, user.Role, user.Phone),
	})
}

// Login 用户登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	user, err := h.userService.Login(req.Email, req.Password)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	token, err := h.jwtManager.GenerateToken(user.ID, user.Role, user.Email)
	if err != nil {
		response.ServerError(c, "生成Token失败")
		return
	}

	expiresAt := time.Now().Add(h.jwtManager.GetTokenDuration()).Unix()
	response.Success(c, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      toUserInfo(user.ID, user.FirstName, user.LastName, user.Email, user.Role, user.Phone),
	})
}

// Me 获取当前登录用户信息
func (h *AuthHandler) Me(c *gin.Context) {
	claims, exists := c.Get("claims")
	if !exists {
		response.Unauthorized(c, "未登录")
		return
	}
	userClaims := claims.(*jwt.JWTClaims)

	user, err := h.userService.GetByID(userClaims.UserID)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, toUserInfo(user.ID, user.FirstName, user.LastName, user.Email, user.Role, user.Phone))
}

// GetUser 按ID获取用户（本人，或房东/经理角色）
func (h *AuthHandler) GetUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "用户ID格式错误")
		return
	}

	callerID := c.GetUint("user_id")
	callerRole := c.GetString("role")
	if callerID != uint(id) && callerRole != models.RoleOwner && callerRole != models.RoleManager {
		response.Forbidden(c, "无权查看该用户")
		return
	}

	user, err := h.userService.GetByID(uint(id))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, toUserInfo(user.ID, user.FirstName, user.LastName, user.Email, user.Role, user.Phone))
}

func toUserInfo(id uint, firstName, lastName, email, role, phone string) UserInfo {
	return UserInfo{
		ID:        id,
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Role:      role,
		Phone:     phone,
	}
}
