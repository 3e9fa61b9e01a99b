package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Kate44725/computing-management/pkg/redis"
	"github.com/Kate44725/computing-management/pkg/response"
)

// RateKeyFunc 返回本次请求的限流维度，空串表示不计入该维度
type RateKeyFunc func(c *gin.Context) string

// ClientIPKey 按客户端 IP 限流
func ClientIPKey(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}

// LoginUsernameKey 按登录请求体中的用户名限流
// 换 IP 对同一账号的尝试也会累计到同一计数
func LoginUsernameKey(c *gin.Context) string {
	username := strings.TrimSpace(peekUsername(c))
	if username == "" {
		return ""
	}
	return "user:" + strings.ToLower(username)
}

// peekUsername 读取 JSON 请求体中的 username 后原样放回请求体
func peekUsername(c *gin.Context) string {
	if c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(c.Request.Body)
	_ = c.Request.Body.Close()
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	var payload struct {
		Username string `json:"username"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return ""
	}
	return payload.Username
}

// RateLimit 基于 Redis 滑动窗口的速率限制
// 每个维度（keys，缺省为客户端 IP）各自计数，任一维度超限即返回 429
// rdb 为 nil、limit<=0 或 Redis 出错时放行
func RateLimit(rdb *redis.Client, limit int, window time.Duration, keys ...RateKeyFunc) gin.HandlerFunc {
	if len(keys) == 0 {
		keys = []RateKeyFunc{ClientIPKey}
	}
	retryAfter := strconv.Itoa(int(window.Seconds()))

	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		for _, key := range keys {
			dim := key(c)
			if dim == "" {
				continue
			}
			allowed, err := rdb.CheckRateLimit(c.Request.Context(), "rate_limit:"+c.FullPath()+":"+dim, limit, window)
			if err != nil {
				continue
			}
			if !allowed {
				c.Header("Retry-After", retryAfter)
				response.Error(c, http.StatusTooManyRequests, 10004, "请求过于频繁，请稍后再试")
				c.Abort()
				return
			}
		}

		c.Next()
	}
}
