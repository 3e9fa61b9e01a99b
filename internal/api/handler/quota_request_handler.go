package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Kate44725/computing-management/internal/dto"
	"github.com/Kate44725/computing-management/internal/policy"
	"github.com/Kate44725/computing-management/internal/service"
	"github.com/Kate44725/computing-management/pkg/response"
)

// QuotaRequestHandler 配额申请与审批 HTTP 处理器
type QuotaRequestHandler struct {
	requestSvc  service.QuotaRequestService
	approvalSvc service.ApprovalService
}

// NewQuotaRequestHandler 创建 QuotaRequestHandler
func NewQuotaRequestHandler(requestSvc service.QuotaRequestService, approvalSvc service.ApprovalService) *QuotaRequestHandler {
	return &QuotaRequestHandler{requestSvc: requestSvc, approvalSvc: approvalSvc}
}

// Submit 提交配额申请
// POST /api/v1/quota-requests
func (h *QuotaRequestHandler) Submit(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SubmitQuotaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.requestSvc.Submit(c.Request.Context(), userID, &req)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	response.Created(c, result)
}

// ListMine 我的申请记录，按创建时间倒序
// GET /api/v1/quota-requests/mine
func (h *QuotaRequestHandler) ListMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.QuotaRequestListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	h.listPage(c, dto.QuotaRequestFilter{UserID: userID, Status: req.Status}, &req.PaginationRequest)
}

// ListAll 全部申请（审批人视角），可按状态过滤
// GET /api/v1/quota-requests
func (h *QuotaRequestHandler) ListAll(c *gin.Context) {
	var req dto.QuotaRequestListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	h.listPage(c, dto.QuotaRequestFilter{Status: req.Status}, &req.PaginationRequest)
}

func (h *QuotaRequestHandler) listPage(c *gin.Context, filter dto.QuotaRequestFilter, page *dto.PaginationRequest) {
	list, err := h.requestSvc.ListRecent(c.Request.Context(), filter)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	p, size := page.GetPage(), page.GetPageSize()
	response.OKPage(c, response.Paginate(list, p, size), int64(len(list)), p, size)
}

// PendingCount 待审批数量
// GET /api/v1/quota-requests/pending-count
func (h *QuotaRequestHandler) PendingCount(c *gin.Context) {
	count, err := h.requestSvc.CountPending(c.Request.Context())
	if err != nil {
		handleDomainError(c, err)
		return
	}

	response.OK(c, dto.PendingCountResponse{Count: count})
}

// Get 申请详情；无审批权限的用户只能查看自己的申请
// GET /api/v1/quota-requests/:id
func (h *QuotaRequestHandler) Get(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	result, err := h.requestSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleDomainError(c, err)
		return
	}

	if result.UserID != userID && !policy.CanPerform(role, policy.FeatureQuotaApprove) {
		response.Forbidden(c, 10003, "无权限访问")
		return
	}

	response.OK(c, result)
}

// Decide 审批单条申请
// POST /api/v1/quota-requests/:id/decision
func (h *QuotaRequestHandler) Decide(c *gin.Context) {
	approverID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.approvalSvc.Decide(c.Request.Context(), approverID, c.Param("id"), *req.Approved, req.Comment)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	response.OK(c, result)
}

// DecideBatch 批量审批，单条失败不影响其余
// POST /api/v1/quota-requests/batch-decision
func (h *QuotaRequestHandler) DecideBatch(c *gin.Context) {
	approverID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.BatchDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.approvalSvc.DecideBatch(c.Request.Context(), approverID, req.IDs, *req.Approved, req.Comment)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	response.OK(c, result)
}
