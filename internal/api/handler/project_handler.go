package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Kate44725/computing-management/internal/dto"
	"github.com/Kate44725/computing-management/internal/service"
	"github.com/Kate44725/computing-management/pkg/response"
)

// ProjectHandler 项目模块 HTTP 处理器
type ProjectHandler struct {
	projectSvc service.ProjectService
}

// NewProjectHandler 创建 ProjectHandler
func NewProjectHandler(projectSvc service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectSvc: projectSvc}
}

// ListProjects 项目列表（含剩余额度）
// GET /api/v1/projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	var req dto.ProjectListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	projects, err := h.projectSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	response.OK(c, gin.H{"list": projects})
}

// CreateProject 创建项目
// POST /api/v1/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	project, err := h.projectSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	response.Created(c, project)
}
