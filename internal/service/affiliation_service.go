package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Kate44725/computing-management/internal/dto"
	"github.com/Kate44725/computing-management/internal/model"
	"github.com/Kate44725/computing-management/internal/repository"
	pkgerrors "github.com/Kate44725/computing-management/pkg/errors"
	"github.com/Kate44725/computing-management/pkg/metrics"
)

// ── 项目挂靠模块业务错误 ──

var (
	ErrAlreadyAffiliated = fmt.Errorf("%w: 已挂靠该项目", pkgerrors.ErrConflict)
	ErrProjectExhausted  = fmt.Errorf("%w: 目标项目没有剩余额度", pkgerrors.ErrInsufficientBalance)
)

// DefaultLowBalanceThreshold 剩余额度低于该值的候选项目标记为余额偏低
const DefaultLowBalanceThreshold int64 = 100000

// 挂靠变更来源（指标标签）
const (
	triggerApproval  = "approval"
	triggerVoluntary = "voluntary"
)

// AffiliationService 用户项目挂靠业务接口
type AffiliationService interface {
	// Bind 审批通过项目额度后将申请人挂靠到该项目；用户或项目不存在时跳过
	Bind(ctx context.Context, userID, projectID string, quota int64) error
	// VoluntarySwitch 用户主动切换到目标项目，额度取目标项目当前剩余
	VoluntarySwitch(ctx context.Context, userID, projectID string) (*dto.SwitchOutcomeResponse, error)
	CurrentProject(ctx context.Context, userID string) (*dto.CurrentProjectResponse, error)
	History(ctx context.Context, userID string) ([]dto.AffiliationRecordResponse, error)
	SwitchCandidates(ctx context.Context, userID string) ([]dto.SwitchCandidateResponse, error)
}

type affiliationService struct {
	repo                *repository.Repository
	lowBalanceThreshold int64
	metrics             *metrics.Metrics
	logger              *zap.Logger
	now                 clock
}

func newAffiliationService(repo *repository.Repository, lowBalanceThreshold int64, m *metrics.Metrics, logger *zap.Logger, now clock) *affiliationService {
	if lowBalanceThreshold <= 0 {
		lowBalanceThreshold = DefaultLowBalanceThreshold
	}
	if now == nil {
		now = defaultClock
	}
	return &affiliationService{
		repo:                repo,
		lowBalanceThreshold: lowBalanceThreshold,
		metrics:             m,
		logger:              logger,
		now:                 now,
	}
}

func (s *affiliationService) today() string {
	return s.now().Format(model.DateLayout)
}

// ────────────────────── Bind ──────────────────────

func (s *affiliationService) Bind(ctx context.Context, userID, projectID string, quota int64) error {
	return s.repo.Exclusive(func() error {
		return s.bind(ctx, userID, projectID, quota)
	})
}

// bind 须在 Exclusive 内调用
func (s *affiliationService) bind(ctx context.Context, userID, projectID string, quota int64) error {
	project, err := s.repo.Project.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("挂靠目标项目不存在，跳过",
				zap.String("user_id", userID), zap.String("project_id", projectID))
			return nil
		}
		return err
	}

	users, err := s.repo.User.Load(ctx)
	if err != nil {
		return err
	}
	i := findIndex(users, func(u *model.User) bool { return u.ID == userID })
	if i < 0 {
		s.logger.Warn("挂靠用户不存在，跳过",
			zap.String("user_id", userID), zap.String("project_id", projectID))
		return nil
	}

	users[i].AffiliateTo(project.ID, project.Name, s.today(), quota)
	if err := s.repo.User.Save(ctx, users); err != nil {
		return err
	}

	s.metrics.AffiliationChanged(triggerApproval)
	s.logger.Info("用户已挂靠项目",
		zap.String("user_id", userID),
		zap.String("project_id", projectID),
		zap.Int64("quota", quota),
	)
	return nil
}

// ────────────────────── VoluntarySwitch ──────────────────────

func (s *affiliationService) VoluntarySwitch(ctx context.Context, userID, projectID string) (*dto.SwitchOutcomeResponse, error) {
	if userID == "" {
		return nil, ErrNoCurrentUser
	}

	var outcome *dto.SwitchOutcomeResponse
	err := s.repo.Exclusive(func() error {
		users, err := s.repo.User.Load(ctx)
		if err != nil {
			return err
		}
		i := findIndex(users, func(u *model.User) bool { return u.ID == userID })
		if i < 0 {
			return ErrNoCurrentUser
		}

		project, err := s.repo.Project.GetByID(ctx, projectID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrProjectNotFound
			}
			return err
		}

		user := &users[i]
		var previous string
		if user.CurrentProject != nil {
			previous = user.CurrentProject.ProjectID
		}
		if previous == project.ID {
			return ErrAlreadyAffiliated
		}

		// 余额校验在任何修改之前，失败时用户状态保持不变
		remaining := project.Remaining()
		if remaining <= 0 {
			return ErrProjectExhausted
		}

		// 原项目余额不做转移，留给项目经理再分配
		user.AffiliateTo(project.ID, project.Name, s.today(), remaining)
		if err := s.repo.User.Save(ctx, users); err != nil {
			return err
		}

		outcome = &dto.SwitchOutcomeResponse{
			PreviousProjectID: previous,
			Current:           *toCurrentProjectResponse(user.CurrentProject),
			Remaining:         remaining,
		}
		return nil
	})
	if err != nil {
		if !isDomainError(err) {
			s.logger.Error("切换项目失败", zap.String("user_id", userID), zap.Error(err))
		}
		return nil, err
	}

	s.metrics.AffiliationChanged(triggerVoluntary)
	s.logger.Info("用户主动切换项目",
		zap.String("user_id", userID),
		zap.String("from", outcome.PreviousProjectID),
		zap.String("to", projectID),
		zap.Int64("remaining", outcome.Remaining),
	)
	return outcome, nil
}

// ────────────────────── 查询 ──────────────────────

// CurrentProject 未挂靠时返回 nil
func (s *affiliationService) CurrentProject(ctx context.Context, userID string) (*dto.CurrentProjectResponse, error) {
	user, err := s.getActor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toCurrentProjectResponse(user.CurrentProject), nil
}

// History 按写入顺序（最早在前）返回，从未挂靠时为空
func (s *affiliationService) History(ctx context.Context, userID string) ([]dto.AffiliationRecordResponse, error) {
	user, err := s.getActor(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]dto.AffiliationRecordResponse, 0, len(user.ProjectHistory))
	for _, h := range user.ProjectHistory {
		result = append(result, dto.AffiliationRecordResponse{
			ProjectID:   h.ProjectID,
			ProjectName: h.ProjectName,
			StartDate:   h.StartDate,
			EndDate:     h.EndDate,
			Status:      h.Status,
		})
	}
	return result, nil
}

// SwitchCandidates 当前项目以外、仍有剩余额度的项目
func (s *affiliationService) SwitchCandidates(ctx context.Context, userID string) ([]dto.SwitchCandidateResponse, error) {
	user, err := s.getActor(ctx, userID)
	if err != nil {
		return nil, err
	}
	projects, err := s.repo.Project.Load(ctx)
	if err != nil {
		s.logger.Error("查询项目失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.SwitchCandidateResponse, 0, len(projects))
	for i := range projects {
		p := &projects[i]
		if user.CurrentProject != nil && p.ID == user.CurrentProject.ProjectID {
			continue
		}
		remaining := p.Remaining()
		if remaining <= 0 {
			continue
		}
		result = append(result, dto.SwitchCandidateResponse{
			ProjectID:   p.ID,
			ProjectName: p.Name,
			Remaining:   remaining,
			LowBalance:  remaining < s.lowBalanceThreshold,
		})
	}
	return result, nil
}

// ── 内部辅助方法 ──

func (s *affiliationService) getActor(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, ErrNoCurrentUser
	}
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoCurrentUser
		}
		s.logger.Error("查询用户失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return user, nil
}

func toCurrentProjectResponse(cp *model.CurrentProject) *dto.CurrentProjectResponse {
	if cp == nil {
		return nil
	}
	return &dto.CurrentProjectResponse{
		ProjectID:   cp.ProjectID,
		ProjectName: cp.ProjectName,
		StartDate:   cp.StartDate,
		Quota:       cp.Quota,
	}
}
