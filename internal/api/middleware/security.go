package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Kate44725/computing-management/config"
)

// SecurityHeaders 按配置下发安全响应头
// 响应均为 JSON 数据，一律禁止缓存与 MIME 嗅探；HSTS 只在 HTTPS 请求上下发
func SecurityHeaders(cfg config.SecurityConfig) gin.HandlerFunc {
	hsts := ""
	if cfg.HSTSMaxAge > 0 {
		hsts = "max-age=" + strconv.FormatInt(int64(cfg.HSTSMaxAge.Seconds()), 10)
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Cache-Control", "no-store")
		if cfg.FrameOptions != "" {
			h.Set("X-Frame-Options", cfg.FrameOptions)
		}
		if cfg.ContentSecurityPolicy != "" {
			h.Set("Content-Security-Policy", cfg.ContentSecurityPolicy)
		}
		if cfg.ReferrerPolicy != "" {
			h.Set("Referrer-Policy", cfg.ReferrerPolicy)
		}
		if hsts != "" && isHTTPS(c) {
			h.Set("Strict-Transport-Security", hsts)
		}

		c.Next()
	}
}

// isHTTPS 直连 TLS 或反向代理声明的 https
func isHTTPS(c *gin.Context) bool {
	return c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https"
}
