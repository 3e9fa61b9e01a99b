package model

import "encoding/json"

// 项目状态
const (
	ProjectStatusActive = "active"
	ProjectStatusEnded  = "ended"
)

// Project 项目，存于 projects 集合
// 额度只有 Allocated / Consumed 一对字段；旧数据中的 quotaTotal/quotaUsed 与
// quota/usedQuota 在解码时归并到这一对字段
type Project struct {
	ID           string    `json:"id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	Manager      string    `json:"manager"` // 负责人姓名，非用户引用
	DepartmentID string    `json:"departmentId,omitempty"`
	Description  string    `json:"description"`
	Allocated    int64     `json:"allocated"`
	Consumed     int64     `json:"consumed"`
	Members      []string  `json:"members"`
	Status       string    `json:"status"`
	CreatedAt    Timestamp `json:"createdAt"`
	CreatedBy    string    `json:"createdBy"`
}

// Remaining 项目剩余额度
func (p *Project) Remaining() int64 {
	return p.Allocated - p.Consumed
}

// UnmarshalJSON 兼容旧字段名
func (p *Project) UnmarshalJSON(data []byte) error {
	type plain Project
	aux := struct {
		*plain
		Allocated  *int64 `json:"allocated"`
		Consumed   *int64 `json:"consumed"`
		QuotaTotal *int64 `json:"quotaTotal"`
		QuotaUsed  *int64 `json:"quotaUsed"`
		Quota      *int64 `json:"quota"`
		UsedQuota  *int64 `json:"usedQuota"`
	}{plain: (*plain)(p)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	p.Allocated = firstSet(aux.Allocated, aux.QuotaTotal, aux.Quota)
	p.Consumed = firstSet(aux.Consumed, aux.QuotaUsed, aux.UsedQuota)
	return nil
}

func firstSet(values ...*int64) int64 {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return 0
}
