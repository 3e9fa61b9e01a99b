package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Kate44725/computing-management/internal/dto"
	"github.com/Kate44725/computing-management/internal/model"
	"github.com/Kate44725/computing-management/internal/repository"
	pkgerrors "github.com/Kate44725/computing-management/pkg/errors"
	"github.com/Kate44725/computing-management/pkg/metrics"
)

// ── 审批模块业务错误 ──

var (
	ErrRequestResolved = fmt.Errorf("%w: 申请已审批，不能重复审批", pkgerrors.ErrConflict)
	ErrEmptyBatch      = fmt.Errorf("%w: 未选择任何申请", pkgerrors.ErrValidation)
)

// 默认审批意见
const (
	commentApproved      = "已批准"
	commentRejected      = "已拒绝"
	commentBatchApproved = "批量批准"
	commentBatchRejected = "批量拒绝"
)

// 审批结果（指标标签）
const (
	outcomeConflict = "conflict"
	outcomeError    = "error"
)

// ApprovalService 审批业务接口
type ApprovalService interface {
	// Decide 审批单条 pending 申请；已审批的申请返回 ErrRequestResolved 且不做任何修改
	Decide(ctx context.Context, approverID, requestID string, approved bool, comment string) (*dto.QuotaRequestResponse, error)
	// DecideBatch 逐条审批，单条失败不影响其余
	DecideBatch(ctx context.Context, approverID string, requestIDs []string, approved bool, comment string) (*dto.BatchDecisionResponse, error)
}

type approvalService struct {
	repo        *repository.Repository
	mutator     *quotaMutator
	affiliation *affiliationService
	metrics     *metrics.Metrics
	logger      *zap.Logger
	now         clock
}

func newApprovalService(
	repo *repository.Repository,
	mutator *quotaMutator,
	affiliation *affiliationService,
	m *metrics.Metrics,
	logger *zap.Logger,
	now clock,
) *approvalService {
	if now == nil {
		now = defaultClock
	}
	return &approvalService{
		repo:        repo,
		mutator:     mutator,
		affiliation: affiliation,
		metrics:     m,
		logger:      logger,
		now:         now,
	}
}

// ────────────────────── Decide ──────────────────────

func (s *approvalService) Decide(ctx context.Context, approverID, requestID string, approved bool, comment string) (*dto.QuotaRequestResponse, error) {
	if approverID == "" {
		return nil, ErrNoCurrentUser
	}
	comment = defaultComment(comment, approved, commentApproved, commentRejected)

	resolved, err := s.decideExclusive(ctx, approverID, requestID, approved, comment)
	if err != nil {
		return nil, err
	}
	return toQuotaRequestResponse(resolved), nil
}

// ────────────────────── DecideBatch ──────────────────────

func (s *approvalService) DecideBatch(ctx context.Context, approverID string, requestIDs []string, approved bool, comment string) (*dto.BatchDecisionResponse, error) {
	if approverID == "" {
		return nil, ErrNoCurrentUser
	}
	if len(requestIDs) == 0 {
		return nil, ErrEmptyBatch
	}
	comment = defaultComment(comment, approved, commentBatchApproved, commentBatchRejected)

	result := &dto.BatchDecisionResponse{Results: make([]dto.BatchDecisionItem, 0, len(requestIDs))}
	for _, id := range requestIDs {
		item := dto.BatchDecisionItem{ID: id}

		resolved, err := s.decideExclusive(ctx, approverID, id, approved, comment)
		if err != nil {
			item.Error = err.Error()
			result.Failed++
		} else {
			item.Success = true
			item.Request = toQuotaRequestResponse(resolved)
			result.Succeeded++
		}
		result.Results = append(result.Results, item)
	}

	s.logger.Info("批量审批完成",
		zap.String("approver_id", approverID),
		zap.Bool("approved", approved),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

// ── 内部辅助方法 ──

// decideExclusive 每条申请单独占用一次独占区，批量中前一条的失败不会波及后一条
func (s *approvalService) decideExclusive(ctx context.Context, approverID, requestID string, approved bool, comment string) (*model.QuotaRequest, error) {
	var resolved *model.QuotaRequest
	err := s.repo.Exclusive(func() error {
		var err error
		resolved, err = s.decide(ctx, approverID, requestID, approved, comment)
		return err
	})

	switch {
	case err == nil:
		s.metrics.QuotaDecided(resolved.QuotaType, resolved.Status)
		s.logger.Info("配额申请已审批",
			zap.String("request_id", requestID),
			zap.String("approver_id", approverID),
			zap.String("status", resolved.Status),
		)
	case errors.Is(err, pkgerrors.ErrConflict):
		s.metrics.QuotaDecided("", outcomeConflict)
	case errors.Is(err, pkgerrors.ErrNotFound):
		s.metrics.QuotaDecided("", outcomeError)
	default:
		s.metrics.QuotaDecided("", outcomeError)
		s.logger.Error("审批配额申请失败", zap.String("request_id", requestID), zap.Error(err))
	}
	return resolved, err
}

// decide 须在 Exclusive 内调用
// 先写额度与挂靠，最后写回申请状态；任一步失败都恢复额度相关集合，申请保持 pending 可重试
func (s *approvalService) decide(ctx context.Context, approverID, requestID string, approved bool, comment string) (*model.QuotaRequest, error) {
	requests, err := s.repo.QuotaRequest.Load(ctx)
	if err != nil {
		return nil, err
	}
	i := findIndex(requests, func(r *model.QuotaRequest) bool { return r.ID == requestID })
	if i < 0 {
		return nil, ErrRequestNotFound
	}

	pending, ok := requests[i].AsPending()
	if !ok {
		return nil, ErrRequestResolved
	}
	resolved := pending.Resolve(approved, approverID, comment, s.now())

	if !approved {
		if err := s.repo.QuotaRequest.Save(ctx, requests); err != nil {
			return nil, err
		}
		return resolved, nil
	}

	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.mutator.apply(ctx, resolved.QuotaType, resolved.TargetID, resolved.RequestedQuota); err != nil {
		s.restore(ctx, snap, resolved.ID)
		return nil, fmt.Errorf("申请 %s 额度写入失败: %w", resolved.ID, err)
	}

	if resolved.QuotaType == model.QuotaTypeProject && resolved.UserID != "" {
		if err := s.affiliation.bind(ctx, resolved.UserID, resolved.TargetID, resolved.RequestedQuota); err != nil {
			s.restore(ctx, snap, resolved.ID)
			return nil, fmt.Errorf("申请 %s 项目挂靠失败: %w", resolved.ID, err)
		}
	}

	if err := s.repo.QuotaRequest.Save(ctx, requests); err != nil {
		s.restore(ctx, snap, resolved.ID)
		return nil, err
	}
	return resolved, nil
}

// quotaSnapshot 审批可能写入的集合
type quotaSnapshot struct {
	users       []model.User
	projects    []model.Project
	departments []model.Department
}

func (s *approvalService) snapshot(ctx context.Context) (*quotaSnapshot, error) {
	users, err := s.repo.User.Load(ctx)
	if err != nil {
		return nil, err
	}
	projects, err := s.repo.Project.Load(ctx)
	if err != nil {
		return nil, err
	}
	depts, err := s.repo.Department.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &quotaSnapshot{users: users, projects: projects, departments: depts}, nil
}

// restore 整体写回快照；写回失败只能记录，由人工核对
func (s *approvalService) restore(ctx context.Context, snap *quotaSnapshot, requestID string) {
	errs := []error{
		s.repo.User.Save(ctx, snap.users),
		s.repo.Project.Save(ctx, snap.projects),
		s.repo.Department.Save(ctx, snap.departments),
	}
	if err := errors.Join(errs...); err != nil {
		s.logger.Error("审批失败后恢复额度数据失败", zap.String("request_id", requestID), zap.Error(err))
	}
}

func defaultComment(comment string, approved bool, onApprove, onReject string) string {
	if c := strings.TrimSpace(comment); c != "" {
		return c
	}
	if approved {
		return onApprove
	}
	return onReject
}
