package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kate44725/computing-management/internal/dto"
	"github.com/Kate44725/computing-management/internal/service"
	"github.com/Kate44725/computing-management/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// RefreshToken 刷新 Token，旧 Refresh Token 作废
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// Logout 用户登出，当前 Access Token 加入黑名单
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	jti, ok := MustGetTokenJTI(c)
	if !ok {
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), jti, GetTokenExpiry(c)); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// Me 当前登录用户
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.authSvc.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// Permissions 当前角色可访问的页面与功能
// GET /api/v1/auth/permissions
func (h *AuthHandler) Permissions(c *gin.Context) {
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	response.OK(c, h.authSvc.Permissions(role))
}

// handleAuthError 认证模块错误映射
func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, 11001, "用户名或密码错误")
	case errors.Is(err, service.ErrUserDisabled):
		response.Error(c, http.StatusForbidden, 11002, "用户已停用")
	case errors.Is(err, service.ErrInvalidToken):
		response.Error(c, http.StatusUnauthorized, 11003, "Token 无效或已过期")
	default:
		handleDomainError(c, err)
	}
}
