package dto

// ── 配额申请模块 DTO ──

// SubmitQuotaRequest 提交配额申请
// request_type / quota_type / target_id 可省略，由业务层补默认值
type SubmitQuotaRequest struct {
	RequestType    string `json:"request_type"    binding:"omitempty,oneof=increase allocate"`
	QuotaType      string `json:"quota_type"      binding:"omitempty,oneof=user project department"`
	TargetID       string `json:"target_id"       binding:"omitempty,max=64"`
	RequestedQuota int64  `json:"requested_quota"`
	Reason         string `json:"reason"          binding:"max=500"`
}

// QuotaRequestListRequest 申请列表查询参数
type QuotaRequestListRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
}

// QuotaRequestFilter 申请过滤条件，零值字段不参与过滤
type QuotaRequestFilter struct {
	UserID string
	Status string
}

// DecisionRequest 单条审批
// approved 使用指针区分"未传"与 false
type DecisionRequest struct {
	Approved *bool  `json:"approved" binding:"required"`
	Comment  string `json:"comment"  binding:"max=500"`
}

// BatchDecisionRequest 批量审批
type BatchDecisionRequest struct {
	IDs      []string `json:"ids"      binding:"required,min=1,max=200,dive,required"`
	Approved *bool    `json:"approved" binding:"required"`
	Comment  string   `json:"comment"  binding:"max=500"`
}

// ── 配额申请模块响应 ──

// QuotaRequestResponse 配额申请
type QuotaRequestResponse struct {
	ID              string `json:"id"`
	UserID          string `json:"user_id"`
	UserName        string `json:"user_name"`
	RequestType     string `json:"request_type"`
	QuotaType       string `json:"quota_type"`
	TargetID        string `json:"target_id"`
	RequestedQuota  int64  `json:"requested_quota"`
	Reason          string `json:"reason"`
	Status          string `json:"status"`
	ApproverID      string `json:"approver_id,omitempty"`
	ApprovalComment string `json:"approval_comment,omitempty"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

// PendingCountResponse 待审批数量
type PendingCountResponse struct {
	Count int `json:"count"`
}

// BatchDecisionItem 批量审批中单条的结果
type BatchDecisionItem struct {
	ID      string                `json:"id"`
	Success bool                  `json:"success"`
	Request *QuotaRequestResponse `json:"request,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// BatchDecisionResponse 批量审批汇总
type BatchDecisionResponse struct {
	Results   []BatchDecisionItem `json:"results"`
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
}
