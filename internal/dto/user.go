package dto

// ── 用户模块 DTO ──

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	DepartmentID string `form:"department_id" binding:"omitempty,max=64"`
	Role         string `form:"role"          binding:"omitempty,oneof=user admin domain_admin operator"`
	Keyword      string `form:"keyword"       binding:"omitempty,max=50"`
}

// UserScope 调用者身份，用于列表数据范围与创建用户的权限范围
type UserScope struct {
	UserID       string
	Role         string
	DepartmentID string
}

// CreateUserRequest 创建用户
type CreateUserRequest struct {
	Username     string   `json:"username"      binding:"required,min=2,max=32"`
	Password     string   `json:"password"      binding:"required,min=6,max=64"`
	Role         string   `json:"role"          binding:"required,oneof=user admin domain_admin operator"`
	DepartmentID string   `json:"department_id" binding:"omitempty,max=64"`
	ProjectIDs   []string `json:"project_ids"`
	ZoneAccess   []string `json:"zone_access"`
	Quota        *int64   `json:"quota"         binding:"omitempty,min=0"`
}
