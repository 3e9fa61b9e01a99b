// Package policy 角色访问策略：页面与功能权限的静态查表，无状态
package policy

import "sort"

// 页面
const (
	PageMyComputing    = "my-computing"
	PageQuotaManage    = "quota-manage"
	PageDashboard      = "dashboard"
	PageSystemConfig   = "system-config"
	PageUserManagement = "user-management"
	PageProjects       = "projects"
)

// 功能
const (
	FeatureQuotaApprove   = "quota.approve"
	FeatureQuotaAllocate  = "quota.allocate"
	FeatureQuotaApply     = "quota.apply"
	FeatureQuotaApplyView = "quota.apply.view"
	FeatureUserCreate     = "user.create"
	FeatureUserEdit       = "user.edit"
	FeatureUserDelete     = "user.delete"
	FeatureUserView       = "user.view"
	FeatureConfigEdit     = "config.edit"
	FeatureConfigView     = "config.view"
	FeatureReportExport   = "report.export"
	FeatureTokenCreate    = "token.create"
	FeatureTokenRevoke    = "token.revoke"
	FeatureZoneView       = "zone.view"
	FeatureZoneEdit       = "zone.edit"
)

const (
	roleUser        = "user"
	roleAdmin       = "admin"
	roleDomainAdmin = "domain_admin"
	roleOperator    = "operator"
)

var allRoles = []string{roleUser, roleAdmin, roleDomainAdmin, roleOperator}

var pageAccess = map[string][]string{
	PageMyComputing:    allRoles,
	PageQuotaManage:    {roleUser, roleAdmin, roleDomainAdmin},
	PageDashboard:      allRoles,
	PageSystemConfig:   {roleAdmin, roleDomainAdmin},
	PageUserManagement: {roleAdmin, roleDomainAdmin},
	PageProjects:       {roleAdmin, roleDomainAdmin},
}

var features = map[string][]string{
	FeatureQuotaApprove:   {roleAdmin, roleDomainAdmin},
	FeatureQuotaAllocate:  {roleAdmin, roleDomainAdmin},
	FeatureQuotaApply:     {roleUser},
	FeatureQuotaApplyView: {roleUser, roleAdmin, roleDomainAdmin},
	FeatureUserCreate:     {roleAdmin, roleDomainAdmin},
	FeatureUserEdit:       {roleAdmin, roleDomainAdmin},
	FeatureUserDelete:     {roleAdmin},
	FeatureUserView:       {roleAdmin, roleDomainAdmin, roleOperator},
	FeatureConfigEdit:     {roleAdmin},
	FeatureConfigView:     {roleAdmin, roleDomainAdmin, roleOperator},
	FeatureReportExport:   {roleAdmin, roleDomainAdmin},
	FeatureTokenCreate:    {roleUser, roleAdmin, roleDomainAdmin},
	FeatureTokenRevoke:    {roleUser, roleAdmin, roleDomainAdmin},
	FeatureZoneView:       {roleAdmin, roleDomainAdmin, roleOperator},
	FeatureZoneEdit:       {roleAdmin},
}

var roleNames = map[string]string{
	roleUser:        "普通用户",
	roleAdmin:       "系统管理员",
	roleDomainAdmin: "领域管理员",
	roleOperator:    "运营人员",
}

// UnknownRoleName 未登记角色的显示名称
const UnknownRoleName = "未知角色"

// CanAccessPage 角色是否可访问页面；未登记的页面一律拒绝
func CanAccessPage(role, page string) bool {
	return contains(pageAccess[page], role)
}

// CanPerform 角色是否拥有功能权限；未登记的功能一律拒绝
func CanPerform(role, feature string) bool {
	return contains(features[feature], role)
}

// RoleDisplayName 角色的中文显示名称
func RoleDisplayName(role string) string {
	if name, ok := roleNames[role]; ok {
		return name
	}
	return UnknownRoleName
}

// IsKnownRole 角色是否已登记
func IsKnownRole(role string) bool {
	_, ok := roleNames[role]
	return ok
}

// AllowedPages 角色可访问的全部页面，按名称排序
func AllowedPages(role string) []string {
	return collect(pageAccess, role)
}

// AllowedFeatures 角色拥有的全部功能，按名称排序
func AllowedFeatures(role string) []string {
	return collect(features, role)
}

func collect(table map[string][]string, role string) []string {
	out := make([]string, 0, len(table))
	for key, roles := range table {
		if contains(roles, role) {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

func contains(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
