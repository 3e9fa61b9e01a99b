package dto

// ── 部门 / 区域 ──

// DepartmentDetailResponse 部门详情
type DepartmentDetailResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	ManagerID  *string `json:"manager_id"`
	QuotaTotal int64   `json:"quota_total"`
	QuotaUsed  int64   `json:"quota_used"`
}

// ZoneResponse 算力区域
type ZoneResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	GPUCount    int    `json:"gpu_count"`
	IsDefault   bool   `json:"is_default"`
}
