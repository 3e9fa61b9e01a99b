package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/Kate44725/computing-management/internal/dto"
	"github.com/Kate44725/computing-management/internal/repository"
)

// DepartmentService 部门业务接口
type DepartmentService interface {
	List(ctx context.Context) ([]dto.DepartmentDetailResponse, error)
}

type departmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDepartmentService 创建 DepartmentService 实例
func NewDepartmentService(repo *repository.Repository, logger *zap.Logger) DepartmentService {
	return &departmentService{repo: repo, logger: logger}
}

func (s *departmentService) List(ctx context.Context) ([]dto.DepartmentDetailResponse, error) {
	depts, err := s.repo.Department.Load(ctx)
	if err != nil {
		s.logger.Error("列出部门失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.DepartmentDetailResponse, 0, len(depts))
	for _, d := range depts {
		result = append(result, dto.DepartmentDetailResponse{
			ID:         d.ID,
			Name:       d.Name,
			ManagerID:  d.ManagerID,
			QuotaTotal: d.QuotaTotal,
			QuotaUsed:  d.QuotaUsed,
		})
	}
	return result, nil
}

// ZoneService 算力区域业务接口（只读）
type ZoneService interface {
	List(ctx context.Context) ([]dto.ZoneResponse, error)
}

type zoneService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewZoneService 创建 ZoneService 实例
func NewZoneService(repo *repository.Repository, logger *zap.Logger) ZoneService {
	return &zoneService{repo: repo, logger: logger}
}

func (s *zoneService) List(ctx context.Context) ([]dto.ZoneResponse, error) {
	zones, err := s.repo.Zone.Load(ctx)
	if err != nil {
		s.logger.Error("列出区域失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ZoneResponse, 0, len(zones))
	for _, z := range zones {
		result = append(result, dto.ZoneResponse{
			ID:          z.ID,
			Name:        z.Name,
			DisplayName: z.DisplayName,
			Description: z.Description,
			Status:      z.Status,
			GPUCount:    z.GPUCount,
			IsDefault:   z.IsDefault,
		})
	}
	return result, nil
}
