package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Kate44725/computing-management/config"
)

const (
	corsAllowMethods  = "GET, POST, OPTIONS"
	corsAllowHeaders  = "Authorization, Content-Type, X-Request-ID"
	corsExposeHeaders = "X-Request-ID, Retry-After"
)

// CORS 跨域中间件
// 前端需要读取 X-Request-ID 与 Retry-After，因此显式暴露
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	origins := make(map[string]bool, len(cfg.AllowOrigins))
	anyOrigin := false
	for _, o := range cfg.AllowOrigins {
		if o == "*" {
			anyOrigin = true
			continue
		}
		origins[strings.TrimRight(o, "/")] = true
	}
	maxAge := strconv.FormatInt(int64(cfg.MaxAge.Seconds()), 10)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}
		c.Writer.Header().Add("Vary", "Origin")

		allowed := origins[origin]
		switch {
		case allowed:
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
		case anyOrigin:
			c.Header("Access-Control-Allow-Origin", "*")
			allowed = true
		}
		if allowed {
			c.Header("Access-Control-Expose-Headers", corsExposeHeaders)
		}

		// 预检请求
		if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
			if !allowed {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			c.Header("Access-Control-Allow-Methods", corsAllowMethods)
			c.Header("Access-Control-Allow-Headers", corsAllowHeaders)
			if cfg.MaxAge > 0 {
				c.Header("Access-Control-Max-Age", maxAge)
			}
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
