package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Kate44725/computing-management/internal/dto"
	"github.com/Kate44725/computing-management/internal/service"
	"github.com/Kate44725/computing-management/pkg/response"
)

// UserHandler 用户模块 HTTP 处理器
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// ListUsers 用户列表，按调用者角色限定数据范围
// GET /api/v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}
	deptID, ok := MustGetDepartmentID(c)
	if !ok {
		return
	}

	var req dto.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	scope := dto.UserScope{UserID: userID, Role: role, DepartmentID: deptID}
	users, err := h.userSvc.List(c.Request.Context(), scope, &req)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	page, size := req.GetPage(), req.GetPageSize()
	response.OKPage(c, response.Paginate(users, page, size), int64(len(users)), page, size)
}

// CreateUser 创建用户
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}
	deptID, ok := MustGetDepartmentID(c)
	if !ok {
		return
	}

	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	scope := dto.UserScope{UserID: userID, Role: role, DepartmentID: deptID}
	user, err := h.userSvc.Create(c.Request.Context(), scope, &req)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	response.Created(c, user)
}
