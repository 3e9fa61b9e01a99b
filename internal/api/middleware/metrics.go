package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Kate44725/computing-management/pkg/metrics"
)

// Metrics Prometheus 请求指标中间件
// 路由标签取注册的路由模板，未匹配路由统一记为 unmatched，避免标签基数膨胀
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
