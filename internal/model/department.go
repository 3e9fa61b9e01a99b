package model

// Department 部门，存于 departments 集合
// QuotaUsed <= QuotaTotal 只是预期，不做强制
type Department struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	ManagerID  *string `json:"managerId"`
	QuotaTotal int64   `json:"quotaTotal"`
	QuotaUsed  int64   `json:"quotaUsed"`
}
