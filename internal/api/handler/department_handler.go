package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Kate44725/computing-management/internal/service"
	"github.com/Kate44725/computing-management/pkg/response"
)

// DepartmentHandler 部门模块 HTTP 处理器
type DepartmentHandler struct {
	deptSvc service.DepartmentService
}

// NewDepartmentHandler 创建 DepartmentHandler
func NewDepartmentHandler(deptSvc service.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{deptSvc: deptSvc}
}

// ListDepartments 获取部门列表
// GET /api/v1/departments
func (h *DepartmentHandler) ListDepartments(c *gin.Context) {
	depts, err := h.deptSvc.List(c.Request.Context())
	if err != nil {
		handleDomainError(c, err)
		return
	}

	response.OK(c, gin.H{"list": depts})
}

// ZoneHandler 资源分区 HTTP 处理器
type ZoneHandler struct {
	zoneSvc service.ZoneService
}

// NewZoneHandler 创建 ZoneHandler
func NewZoneHandler(zoneSvc service.ZoneService) *ZoneHandler {
	return &ZoneHandler{zoneSvc: zoneSvc}
}

// ListZones 获取分区列表
// GET /api/v1/zones
func (h *ZoneHandler) ListZones(c *gin.Context) {
	zones, err := h.zoneSvc.List(c.Request.Context())
	if err != nil {
		handleDomainError(c, err)
		return
	}

	response.OK(c, gin.H{"list": zones})
}
