package model

// 角色
const (
	RoleUser        = "user"
	RoleAdmin       = "admin"
	RoleDomainAdmin = "domain_admin"
	RoleOperator    = "operator"
)

// 用户状态
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// DefaultUserQuota 用户未设置额度时的可用额度
const DefaultUserQuota int64 = 1000000

// User 用户，存于 users 集合
type User struct {
	ID             string                     `json:"id"`
	Username       string                     `json:"username"`
	PasswordHash   string                     `json:"passwordHash"`
	Role           string                     `json:"role"`
	DepartmentID   string                     `json:"departmentId,omitempty"`
	ProjectIDs     []string                   `json:"projectIds"`
	ZoneAccess     []string                   `json:"zoneAccess"`
	Status         string                     `json:"status"`
	Quota          *int64                     `json:"quota,omitempty"` // nil 表示未设置，按 DefaultUserQuota 计
	CurrentProject *CurrentProject            `json:"currentProject,omitempty"`
	ProjectHistory []ProjectAffiliationRecord `json:"projectHistory,omitempty"`
	CreatedAt      Timestamp                  `json:"createdAt"`
}

// CurrentProject 用户当前挂靠的项目
type CurrentProject struct {
	ProjectID   string `json:"projectId"`
	ProjectName string `json:"projectName"`
	StartDate   string `json:"startDate"`
	Quota       int64  `json:"quota"`
}

// EffectiveQuota 当前可用额度（未设置时取默认值）
func (u *User) EffectiveQuota() int64 {
	return u.QuotaOr(DefaultUserQuota)
}

// QuotaOr 当前可用额度，未设置时取 def
func (u *User) QuotaOr(def int64) int64 {
	if u.Quota == nil {
		return def
	}
	return *u.Quota
}

// SetQuota 覆盖可用额度
func (u *User) SetQuota(q int64) {
	u.Quota = &q
}

// IsActive 用户是否启用
func (u *User) IsActive() bool {
	return u.Status == "" || u.Status == UserStatusActive
}
