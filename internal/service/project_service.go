package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Kate44725/computing-management/internal/dto"
	"github.com/Kate44725/computing-management/internal/model"
	"github.com/Kate44725/computing-management/internal/repository"
	pkgerrors "github.com/Kate44725/computing-management/pkg/errors"
)

// ── 项目模块业务错误 ──

var ErrProjectCodeExists = fmt.Errorf("%w: 项目编号已存在", pkgerrors.ErrConflict)

// DefaultProjectQuota 新建项目未填写额度时的分配额度
const DefaultProjectQuota int64 = 1000000

// ProjectService 项目业务接口
type ProjectService interface {
	List(ctx context.Context, req *dto.ProjectListRequest) ([]dto.ProjectResponse, error)
	Create(ctx context.Context, req *dto.CreateProjectRequest, creator string) (*dto.ProjectResponse, error)
}

type projectService struct {
	repo         *repository.Repository
	defaultQuota int64
	logger       *zap.Logger
	now          clock
}

func newProjectService(repo *repository.Repository, defaultQuota int64, logger *zap.Logger, now clock) *projectService {
	if defaultQuota <= 0 {
		defaultQuota = DefaultProjectQuota
	}
	if now == nil {
		now = defaultClock
	}
	return &projectService{repo: repo, defaultQuota: defaultQuota, logger: logger, now: now}
}

// ────────────────────── List ──────────────────────

func (s *projectService) List(ctx context.Context, req *dto.ProjectListRequest) ([]dto.ProjectResponse, error) {
	projects, err := s.repo.Project.Load(ctx)
	if err != nil {
		s.logger.Error("查询项目失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ProjectResponse, 0, len(projects))
	for i := range projects {
		if req.Status != "" && projects[i].Status != req.Status {
			continue
		}
		result = append(result, *toProjectResponse(&projects[i]))
	}
	return result, nil
}

// ────────────────────── Create ──────────────────────

func (s *projectService) Create(ctx context.Context, req *dto.CreateProjectRequest, creator string) (*dto.ProjectResponse, error) {
	allocated := s.defaultQuota
	if req.Allocated != nil {
		if *req.Allocated <= 0 {
			return nil, ErrInvalidQuotaAmount
		}
		allocated = *req.Allocated
	}

	var created model.Project
	err := s.repo.Exclusive(func() error {
		if req.DepartmentID != "" {
			if _, err := s.repo.Department.GetByID(ctx, req.DepartmentID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return ErrDepartmentNotFound
				}
				return err
			}
		}

		projects, err := s.repo.Project.Load(ctx)
		if err != nil {
			return err
		}
		code := strings.TrimSpace(req.Code)
		if findIndex(projects, func(p *model.Project) bool { return strings.EqualFold(p.Code, code) }) >= 0 {
			return ErrProjectCodeExists
		}

		created = model.Project{
			ID:           "proj-" + uuid.NewString(),
			Code:         code,
			Name:         strings.TrimSpace(req.Name),
			Manager:      req.Manager,
			DepartmentID: req.DepartmentID,
			Description:  req.Description,
			Allocated:    allocated,
			Consumed:     0,
			Members:      nonNil(req.Members),
			Status:       model.ProjectStatusActive,
			CreatedAt:    model.At(s.now()),
			CreatedBy:    creator,
		}
		return s.repo.Project.Save(ctx, append(projects, created))
	})
	if err != nil {
		if !isDomainError(err) {
			s.logger.Error("创建项目失败", zap.String("code", req.Code), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("项目已创建",
		zap.String("project_id", created.ID),
		zap.Int64("allocated", created.Allocated),
		zap.String("created_by", creator),
	)
	return toProjectResponse(&created), nil
}

func toProjectResponse(p *model.Project) *dto.ProjectResponse {
	return &dto.ProjectResponse{
		ID:           p.ID,
		Code:         p.Code,
		Name:         p.Name,
		Manager:      p.Manager,
		DepartmentID: p.DepartmentID,
		Description:  p.Description,
		Allocated:    p.Allocated,
		Consumed:     p.Consumed,
		Remaining:    p.Remaining(),
		Members:      nonNil(p.Members),
		Status:       p.Status,
		CreatedAt:    formatTime(p.CreatedAt.Time),
		CreatedBy:    p.CreatedBy,
	}
}
