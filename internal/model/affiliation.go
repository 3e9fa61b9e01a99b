package model

// 挂靠记录状态
const (
	AffiliationActive    = "active"
	AffiliationSwitched  = "switched"
	AffiliationCompleted = "completed" // 由项目结束等外部事件写入，本服务不产生
)

// DateLayout 挂靠日期格式
const DateLayout = "2006-01-02"

// ProjectAffiliationRecord 项目挂靠历史记录（内嵌于 User.ProjectHistory）
type ProjectAffiliationRecord struct {
	ProjectID   string  `json:"projectId"`
	ProjectName string  `json:"projectName"`
	StartDate   string  `json:"startDate"`
	EndDate     *string `json:"endDate"`
	Status      string  `json:"status"`
}

// AffiliateTo 将用户挂靠到新项目
// 所有 active 记录置为 switched 并写入 endDate，再追加一条新的 active 记录；
// 可用额度整体替换为 quota
func (u *User) AffiliateTo(projectID, projectName, today string, quota int64) {
	u.CurrentProject = &CurrentProject{
		ProjectID:   projectID,
		ProjectName: projectName,
		StartDate:   today,
		Quota:       quota,
	}
	u.SetQuota(quota)

	for i := range u.ProjectHistory {
		if u.ProjectHistory[i].Status == AffiliationActive {
			end := today
			u.ProjectHistory[i].Status = AffiliationSwitched
			u.ProjectHistory[i].EndDate = &end
		}
	}

	u.ProjectHistory = append(u.ProjectHistory, ProjectAffiliationRecord{
		ProjectID:   projectID,
		ProjectName: projectName,
		StartDate:   today,
		EndDate:     nil,
		Status:      AffiliationActive,
	})
}

// ActiveAffiliation 返回唯一的 active 挂靠记录，没有时返回 nil
func (u *User) ActiveAffiliation() *ProjectAffiliationRecord {
	for i := range u.ProjectHistory {
		if u.ProjectHistory[i].Status == AffiliationActive {
			return &u.ProjectHistory[i]
		}
	}
	return nil
}

// AffiliationConsistent 检查挂靠不变量：
// 最多一条 active 记录，且存在时与 CurrentProject 指向同一项目
func (u *User) AffiliationConsistent() bool {
	active := 0
	var activeID string
	for _, h := range u.ProjectHistory {
		if h.Status == AffiliationActive {
			active++
			activeID = h.ProjectID
		}
	}
	if active > 1 {
		return false
	}
	if active == 1 && (u.CurrentProject == nil || u.CurrentProject.ProjectID != activeID) {
		return false
	}
	return true
}
