package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Kate44725/computing-management/internal/dto"
	"github.com/Kate44725/computing-management/internal/service"
	"github.com/Kate44725/computing-management/pkg/response"
)

// AffiliationHandler 项目挂靠 HTTP 处理器
type AffiliationHandler struct {
	affiliationSvc service.AffiliationService
}

// NewAffiliationHandler 创建 AffiliationHandler
func NewAffiliationHandler(affiliationSvc service.AffiliationService) *AffiliationHandler {
	return &AffiliationHandler{affiliationSvc: affiliationSvc}
}

// Current 当前挂靠项目，未挂靠时 data 为 null
// GET /api/v1/affiliation/current
func (h *AffiliationHandler) Current(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.affiliationSvc.CurrentProject(c.Request.Context(), userID)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	response.OK(c, result)
}

// History 挂靠历史
// GET /api/v1/affiliation/history
func (h *AffiliationHandler) History(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.affiliationSvc.History(c.Request.Context(), userID)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	response.OK(c, result)
}

// Candidates 可切换的目标项目
// GET /api/v1/affiliation/candidates
func (h *AffiliationHandler) Candidates(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.affiliationSvc.SwitchCandidates(c.Request.Context(), userID)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	response.OK(c, result)
}

// Switch 主动切换挂靠项目
// POST /api/v1/affiliation/switch
func (h *AffiliationHandler) Switch(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SwitchProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.affiliationSvc.VoluntarySwitch(c.Request.Context(), userID, req.ProjectID)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	response.OK(c, result)
}
