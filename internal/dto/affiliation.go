package dto

// ── 项目挂靠模块 DTO ──

// SwitchProjectRequest 主动切换挂靠项目
type SwitchProjectRequest struct {
	ProjectID string `json:"project_id" binding:"required,max=64"`
}

// CurrentProjectResponse 当前挂靠项目
type CurrentProjectResponse struct {
	ProjectID   string `json:"project_id"`
	ProjectName string `json:"project_name"`
	StartDate   string `json:"start_date"`
	Quota       int64  `json:"quota"`
}

// AffiliationRecordResponse 挂靠历史记录
type AffiliationRecordResponse struct {
	ProjectID   string  `json:"project_id"`
	ProjectName string  `json:"project_name"`
	StartDate   string  `json:"start_date"`
	EndDate     *string `json:"end_date"`
	Status      string  `json:"status"`
}

// SwitchCandidateResponse 可切换的目标项目
type SwitchCandidateResponse struct {
	ProjectID   string `json:"project_id"`
	ProjectName string `json:"project_name"`
	Remaining   int64  `json:"remaining"`
	LowBalance  bool   `json:"low_balance"`
}

// SwitchOutcomeResponse 切换结果
type SwitchOutcomeResponse struct {
	PreviousProjectID string                 `json:"previous_project_id,omitempty"`
	Current           CurrentProjectResponse `json:"current"`
	Remaining         int64                  `json:"remaining"`
}
