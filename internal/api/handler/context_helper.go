package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Kate44725/computing-management/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	return mustGetString(c, "user_id", false)
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	return mustGetString(c, "role", false)
}

// MustGetDepartmentID 从 Gin 上下文中安全提取 department_id。
// 未归属部门的用户该值为空字符串
func MustGetDepartmentID(c *gin.Context) (string, bool) {
	return mustGetString(c, "department_id", true)
}

// MustGetTokenJTI 提取当前 Access Token 的 jti，登出时加入黑名单
func MustGetTokenJTI(c *gin.Context) (string, bool) {
	return mustGetString(c, "token_jti", false)
}

// GetTokenExpiry 提取当前 Access Token 的过期时间，不存在时返回零值
func GetTokenExpiry(c *gin.Context) time.Time {
	v, exists := c.Get("token_exp")
	if !exists {
		return time.Time{}
	}
	t, _ := v.(time.Time)
	return t
}

func mustGetString(c *gin.Context, key string, allowEmpty bool) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || (!allowEmpty && s == "") {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}
