package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Kate44725/computing-management/internal/policy"
	"github.com/Kate44725/computing-management/pkg/jwt"
	"github.com/Kate44725/computing-management/pkg/redis"
	"github.com/Kate44725/computing-management/pkg/response"
)

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取并验证 Access Token
// rdb 为 nil 时跳过黑名单检查
func JWTAuth(jwtMgr *jwt.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "缺少认证头")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "认证头格式无效")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, 10002, "Token 无效或已过期")
			c.Abort()
			return
		}

		if claims.TokenType != jwt.TokenTypeAccess {
			response.Unauthorized(c, 10002, "Token 类型无效")
			c.Abort()
			return
		}

		// 角色表调整后，旧 Token 中已不存在的角色不再放行
		if !policy.IsKnownRole(claims.Role) {
			response.Unauthorized(c, 10002, "Token 角色无效")
			c.Abort()
			return
		}

		if rdb != nil {
			revoked, err := rdb.IsBlacklisted(c.Request.Context(), claims.ID)
			// Redis 出错时降级放行
			if err == nil && revoked {
				response.Unauthorized(c, 10002, "Token 已注销")
				c.Abort()
				return
			}
		}

		// 将用户信息注入上下文
		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Set("department_id", claims.DepartmentID)
		c.Set("token_jti", claims.ID)
		if claims.ExpiresAt != nil {
			c.Set("token_exp", claims.ExpiresAt.Time)
		}

		c.Next()
	}
}

// FeatureAuth 功能权限中间件，按角色-功能表判断
func FeatureAuth(feature string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, ok := currentRole(c)
		if !ok {
			response.Unauthorized(c, 10002, "未认证")
			c.Abort()
			return
		}

		if !policy.CanPerform(userRole, feature) {
			response.Forbidden(c, 10003, "无权限访问")
			c.Abort()
			return
		}

		c.Next()
	}
}

func currentRole(c *gin.Context) (string, bool) {
	v, exists := c.Get("role")
	if !exists {
		return "", false
	}
	role, ok := v.(string)
	return role, ok && role != ""
}
