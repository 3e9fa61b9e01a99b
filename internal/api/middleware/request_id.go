package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Kate44725/computing-management/pkg/response"
)

const headerRequestID = "X-Request-ID"

// requestIDMaxLen 外部传入 ID 的长度上限
const requestIDMaxLen = 64

// RequestID 请求追踪 ID
// 沿用上游传入的 X-Request-ID（仅限字母数字与 -_.），否则生成 UUID
// ID 写入 gin.Context、响应头，并由 response 包带进错误响应体
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(headerRequestID)
		if !validRequestID(rid) {
			rid = uuid.NewString()
		}

		c.Set(response.RequestIDKey, rid)
		c.Header(headerRequestID, rid)

		c.Next()
	}
}

func validRequestID(rid string) bool {
	if rid == "" || len(rid) > requestIDMaxLen {
		return false
	}
	for i := 0; i < len(rid); i++ {
		ch := rid[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		case ch == '-' || ch == '_' || ch == '.':
		default:
			return false
		}
	}
	return true
}
