package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kate44725/computing-management/pkg/response"
)

// BodyLimit 请求体上限（server.max_body_bytes）
// 超限直接 413；未超限的请求体读入内存后交给后续处理，可被多次读取
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 || c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			bodyTooLarge(c)
			return
		}

		// 分块传输没有 Content-Length，多读一个字节判断是否超限
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBytes+1))
		_ = c.Request.Body.Close()
		if err != nil {
			response.BadRequest(c, 10001, "读取请求体失败")
			c.Abort()
			return
		}
		if int64(len(body)) > maxBytes {
			bodyTooLarge(c)
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		c.Next()
	}
}

func bodyTooLarge(c *gin.Context) {
	response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
	c.Abort()
}
