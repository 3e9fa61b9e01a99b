package dto

// ── 项目模块 DTO ──

// CreateProjectRequest 创建项目
// allocated 省略时使用默认分配额度
type CreateProjectRequest struct {
	Code         string   `json:"code"          binding:"required,max=32"`
	Name         string   `json:"name"          binding:"required,max=100"`
	Manager      string   `json:"manager"       binding:"max=50"`
	DepartmentID string   `json:"department_id" binding:"omitempty,max=64"`
	Description  string   `json:"description"   binding:"max=500"`
	Allocated    *int64   `json:"allocated"     binding:"omitempty,min=1"`
	Members      []string `json:"members"`
}

// ProjectListRequest 项目列表查询参数
type ProjectListRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=active ended"`
}

// ProjectResponse 项目
type ProjectResponse struct {
	ID           string   `json:"id"`
	Code         string   `json:"code"`
	Name         string   `json:"name"`
	Manager      string   `json:"manager"`
	DepartmentID string   `json:"department_id,omitempty"`
	Description  string   `json:"description"`
	Allocated    int64    `json:"allocated"`
	Consumed     int64    `json:"consumed"`
	Remaining    int64    `json:"remaining"`
	Members      []string `json:"members"`
	Status       string   `json:"status"`
	CreatedAt    string   `json:"created_at"`
	CreatedBy    string   `json:"created_by"`
}
