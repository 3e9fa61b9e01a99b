package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Kate44725/computing-management/internal/dto"
	"github.com/Kate44725/computing-management/internal/model"
	"github.com/Kate44725/computing-management/internal/policy"
	"github.com/Kate44725/computing-management/internal/repository"
	pkgerrors "github.com/Kate44725/computing-management/pkg/errors"
)

// ── 用户模块业务错误 ──

var (
	ErrUsernameExists     = fmt.Errorf("%w: 用户名已存在", pkgerrors.ErrConflict)
	ErrRoleNotAssignable  = fmt.Errorf("%w: 无权创建该角色的用户", pkgerrors.ErrForbidden)
	ErrDepartmentNotOwned = fmt.Errorf("%w: 只能在本部门创建用户", pkgerrors.ErrForbidden)
)

// UserService 用户业务接口
type UserService interface {
	// List 按调用者数据范围过滤：admin / operator 全部，domain_admin 本部门，其余仅本人
	List(ctx context.Context, scope dto.UserScope, req *dto.UserListRequest) ([]dto.UserResponse, error)
	// Create 领域管理员只能在本部门创建 user / operator，未填部门时取调用者部门
	Create(ctx context.Context, scope dto.UserScope, req *dto.CreateUserRequest) (*dto.UserResponse, error)
}

type userService struct {
	repo             *repository.Repository
	defaultUserQuota int64
	logger           *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, defaultUserQuota int64, logger *zap.Logger) UserService {
	if defaultUserQuota <= 0 {
		defaultUserQuota = model.DefaultUserQuota
	}
	return &userService{repo: repo, defaultUserQuota: defaultUserQuota, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *userService) List(ctx context.Context, scope dto.UserScope, req *dto.UserListRequest) ([]dto.UserResponse, error) {
	users, err := s.repo.User.Load(ctx)
	if err != nil {
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	depts, err := s.repo.Department.Load(ctx)
	if err != nil {
		s.logger.Error("查询部门失败", zap.Error(err))
		return nil, err
	}
	deptNames := make(map[string]string, len(depts))
	for _, d := range depts {
		deptNames[d.ID] = d.Name
	}

	keyword := strings.ToLower(strings.TrimSpace(req.Keyword))
	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		u := &users[i]
		if !inUserScope(scope, u) {
			continue
		}
		if req.DepartmentID != "" && u.DepartmentID != req.DepartmentID {
			continue
		}
		if req.Role != "" && u.Role != req.Role {
			continue
		}
		if keyword != "" && !strings.Contains(strings.ToLower(u.Username), keyword) {
			continue
		}

		resp := toUserResponse(u, s.defaultUserQuota)
		if name, ok := deptNames[u.DepartmentID]; ok {
			resp.Department = &dto.DepartmentResponse{ID: u.DepartmentID, Name: name}
		}
		result = append(result, *resp)
	}
	return result, nil
}

func inUserScope(scope dto.UserScope, u *model.User) bool {
	switch scope.Role {
	case model.RoleAdmin, model.RoleOperator:
		return true
	case model.RoleDomainAdmin:
		return scope.DepartmentID != "" && u.DepartmentID == scope.DepartmentID
	default:
		return u.ID == scope.UserID
	}
}

// ────────────────────── Create ──────────────────────

func (s *userService) Create(ctx context.Context, scope dto.UserScope, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	deptID, err := createDepartment(scope, req)
	if err != nil {
		s.logger.Warn("创建用户超出权限范围",
			zap.String("operator_id", scope.UserID),
			zap.String("role", req.Role),
			zap.String("department_id", req.DepartmentID),
		)
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码加密失败", zap.Error(err))
		return nil, err
	}

	var created model.User
	err = s.repo.Exclusive(func() error {
		if deptID != "" {
			if _, err := s.repo.Department.GetByID(ctx, deptID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return ErrDepartmentNotFound
				}
				return err
			}
		}

		users, err := s.repo.User.Load(ctx)
		if err != nil {
			return err
		}
		if findIndex(users, func(u *model.User) bool { return u.Username == req.Username }) >= 0 {
			return ErrUsernameExists
		}

		created = model.User{
			ID:           "user-" + uuid.NewString(),
			Username:     req.Username,
			PasswordHash: string(hash),
			Role:         req.Role,
			DepartmentID: deptID,
			ProjectIDs:   nonNil(req.ProjectIDs),
			ZoneAccess:   nonNil(req.ZoneAccess),
			Status:       model.UserStatusActive,
			Quota:        req.Quota,
			CreatedAt:    model.At(defaultClock()),
		}
		return s.repo.User.Save(ctx, append(users, created))
	})
	if err != nil {
		if !isDomainError(err) {
			s.logger.Error("创建用户失败", zap.String("username", req.Username), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("用户已创建", zap.String("user_id", created.ID), zap.String("role", created.Role))
	return toUserResponse(&created, s.defaultUserQuota), nil
}

// createDepartment 按调用者范围校验新用户的角色与部门，返回实际写入的部门
func createDepartment(scope dto.UserScope, req *dto.CreateUserRequest) (string, error) {
	switch scope.Role {
	case model.RoleAdmin:
		return req.DepartmentID, nil
	case model.RoleDomainAdmin:
		if req.Role != model.RoleUser && req.Role != model.RoleOperator {
			return "", ErrRoleNotAssignable
		}
		if scope.DepartmentID == "" {
			return "", ErrDepartmentNotOwned
		}
		if req.DepartmentID != "" && req.DepartmentID != scope.DepartmentID {
			return "", ErrDepartmentNotOwned
		}
		return scope.DepartmentID, nil
	default:
		return "", ErrRoleNotAssignable
	}
}

// ── 内部辅助方法 ──

func toUserResponse(u *model.User, defaultQuota int64) *dto.UserResponse {
	if defaultQuota <= 0 {
		defaultQuota = model.DefaultUserQuota
	}
	return &dto.UserResponse{
		ID:              u.ID,
		Username:        u.Username,
		Role:            u.Role,
		RoleDisplayName: policy.RoleDisplayName(u.Role),
		ProjectIDs:      nonNil(u.ProjectIDs),
		ZoneAccess:      nonNil(u.ZoneAccess),
		Status:          u.Status,
		Quota:           u.QuotaOr(defaultQuota),
		CurrentProject:  toCurrentProjectResponse(u.CurrentProject),
		CreatedAt:       formatTime(u.CreatedAt.Time),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
