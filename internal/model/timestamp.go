package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// timestampLayouts 解码时依次尝试的格式
// 旧数据里有纯日期（2025-01-01）与本地化时间串（2025/1/15 14:30:00）
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/1/2 15:04:05",
	"2006/1/2",
}

// Timestamp 集合中的时间字段；编码为 RFC3339，解码兼容旧格式
// 无时区的格式按本地时区解析
type Timestamp struct {
	time.Time
}

// At 包装 time.Time
func At(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// ParseTimestamp 按 timestampLayouts 解析，空串得到零值
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("无法识别的时间格式 %q", s)
}

// MarshalJSON 零值编码为空串
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

// UnmarshalJSON 接受 null、空串与 timestampLayouts 中任一格式
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("时间字段须为字符串: %w", err)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
