package dto

// ── 认证模块响应 ──

// TokenResponse Token 对响应
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // Access Token 有效期（秒）
	User         UserResponse `json:"user"`
}

// PermissionsResponse 当前角色的页面与功能权限
type PermissionsResponse struct {
	Role            string   `json:"role"`
	RoleDisplayName string   `json:"role_display_name"`
	Pages           []string `json:"pages"`
	Features        []string `json:"features"`
}

// ── 用户模块响应 ──

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID              string                  `json:"id"`
	Username        string                  `json:"username"`
	Role            string                  `json:"role"`
	RoleDisplayName string                  `json:"role_display_name"`
	Department      *DepartmentResponse     `json:"department,omitempty"`
	ProjectIDs      []string                `json:"project_ids"`
	ZoneAccess      []string                `json:"zone_access"`
	Status          string                  `json:"status"`
	Quota           int64                   `json:"quota"`
	CurrentProject  *CurrentProjectResponse `json:"current_project,omitempty"`
	CreatedAt       string                  `json:"created_at"`
}

// DepartmentResponse 部门简要信息
type DepartmentResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ── 分页请求 ──

// PaginationRequest 通用分页参数
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页数量（含默认值）
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}
