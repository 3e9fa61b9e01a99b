package model

import "time"

// 申请类型
const (
	RequestTypeIncrease = "increase"
	RequestTypeAllocate = "allocate"
)

// 配额归属类型
const (
	QuotaTypeUser       = "user"
	QuotaTypeProject    = "project"
	QuotaTypeDepartment = "department"
)

// 申请状态
const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// QuotaRequest 配额申请，存于 quotaRequests 集合
// 只记录申请的增量，不持有任何额度状态
type QuotaRequest struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	UserName        string    `json:"userName"`
	RequestType     string    `json:"requestType"`
	QuotaType       string    `json:"quotaType"`
	TargetID        string    `json:"targetId"`
	RequestedQuota  int64     `json:"requestedQuota"`
	Reason          string    `json:"reason"`
	Status          string    `json:"status"`
	ApproverID      string    `json:"approverId,omitempty"`
	ApprovalComment string    `json:"approvalComment,omitempty"`
	CreatedAt       Timestamp `json:"createdAt"`
	UpdatedAt       Timestamp `json:"updatedAt"`
}

// PendingQuotaRequest 待审批申请的句柄
// 只能通过 AsPending 从 pending 状态的申请取得，Resolve 是唯一的审批入口，
// 已结束的申请拿不到句柄，也就无法被再次审批
type PendingQuotaRequest struct {
	req *QuotaRequest
}

// AsPending 申请处于 pending 时返回审批句柄
func (r *QuotaRequest) AsPending() (PendingQuotaRequest, bool) {
	if r.Status != RequestStatusPending {
		return PendingQuotaRequest{}, false
	}
	return PendingQuotaRequest{req: r}, true
}

// Resolve 写入审批结果并返回已结束的申请
func (p PendingQuotaRequest) Resolve(approved bool, approverID, comment string, at time.Time) *QuotaRequest {
	if approved {
		p.req.Status = RequestStatusApproved
	} else {
		p.req.Status = RequestStatusRejected
	}
	p.req.ApproverID = approverID
	p.req.ApprovalComment = comment
	p.req.UpdatedAt = At(at)
	return p.req
}

// ValidRequestType 申请类型是否合法
func ValidRequestType(t string) bool {
	return t == RequestTypeIncrease || t == RequestTypeAllocate
}

// ValidQuotaType 配额归属类型是否合法
func ValidQuotaType(t string) bool {
	return t == QuotaTypeUser || t == QuotaTypeProject || t == QuotaTypeDepartment
}

// ValidRequestStatus 申请状态是否合法
func ValidRequestStatus(s string) bool {
	return s == RequestStatusPending || s == RequestStatusApproved || s == RequestStatusRejected
}
