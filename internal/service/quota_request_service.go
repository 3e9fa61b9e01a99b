package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Kate44725/computing-management/internal/dto"
	"github.com/Kate44725/computing-management/internal/model"
	"github.com/Kate44725/computing-management/internal/repository"
	pkgerrors "github.com/Kate44725/computing-management/pkg/errors"
	"github.com/Kate44725/computing-management/pkg/metrics"
)

// ── 配额申请模块业务错误 ──

var (
	ErrInvalidQuotaAmount = fmt.Errorf("%w: 申请额度必须为正整数", pkgerrors.ErrValidation)
	ErrEmptyReason        = fmt.Errorf("%w: 申请理由不能为空", pkgerrors.ErrValidation)
	ErrEmptyTarget        = fmt.Errorf("%w: 申请目标不能为空", pkgerrors.ErrValidation)
	ErrInvalidRequestType = fmt.Errorf("%w: 申请类型无效", pkgerrors.ErrValidation)
	ErrInvalidQuotaType   = fmt.Errorf("%w: 额度类型无效", pkgerrors.ErrValidation)
	ErrInvalidStatus      = fmt.Errorf("%w: 申请状态无效", pkgerrors.ErrValidation)
	ErrRequestNotFound    = fmt.Errorf("%w: 配额申请不存在", pkgerrors.ErrNotFound)
)

// QuotaRequestService 配额申请台账业务接口
type QuotaRequestService interface {
	Submit(ctx context.Context, requestorID string, req *dto.SubmitQuotaRequest) (*dto.QuotaRequestResponse, error)
	// List 按存储顺序返回，不做排序
	List(ctx context.Context, filter dto.QuotaRequestFilter) ([]dto.QuotaRequestResponse, error)
	// ListRecent 同 List，按创建时间倒序
	ListRecent(ctx context.Context, filter dto.QuotaRequestFilter) ([]dto.QuotaRequestResponse, error)
	Get(ctx context.Context, id string) (*dto.QuotaRequestResponse, error)
	CountPending(ctx context.Context) (int, error)
}

type quotaRequestService struct {
	repo    *repository.Repository
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     clock
}

func newQuotaRequestService(repo *repository.Repository, m *metrics.Metrics, logger *zap.Logger, now clock) *quotaRequestService {
	if now == nil {
		now = defaultClock
	}
	return &quotaRequestService{repo: repo, metrics: m, logger: logger, now: now}
}

// ────────────────────── Submit ──────────────────────

func (s *quotaRequestService) Submit(ctx context.Context, requestorID string, req *dto.SubmitQuotaRequest) (*dto.QuotaRequestResponse, error) {
	if requestorID == "" {
		return nil, ErrNoCurrentUser
	}

	var created model.QuotaRequest
	err := s.repo.Exclusive(func() error {
		requestor, err := s.repo.User.GetByID(ctx, requestorID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNoCurrentUser
			}
			return err
		}

		draft, err := normalizeSubmission(requestor, req)
		if err != nil {
			return err
		}

		now := model.At(s.now())
		draft.ID = "req-" + uuid.NewString()
		draft.Status = model.RequestStatusPending
		draft.CreatedAt = now
		draft.UpdatedAt = now

		requests, err := s.repo.QuotaRequest.Load(ctx)
		if err != nil {
			return err
		}
		if err := s.repo.QuotaRequest.Save(ctx, append(requests, *draft)); err != nil {
			return err
		}
		created = *draft
		return nil
	})
	if err != nil {
		if !isDomainError(err) {
			s.logger.Error("提交配额申请失败", zap.String("user_id", requestorID), zap.Error(err))
		}
		return nil, err
	}

	s.metrics.QuotaSubmitted(created.QuotaType)
	s.logger.Info("配额申请已提交",
		zap.String("request_id", created.ID),
		zap.String("user_id", created.UserID),
		zap.String("quota_type", created.QuotaType),
		zap.String("target_id", created.TargetID),
		zap.Int64("requested_quota", created.RequestedQuota),
	)
	return toQuotaRequestResponse(&created), nil
}

// normalizeSubmission 校验输入并补默认值：
// requestType 默认 increase，quotaType 默认 user；user 类型未填目标时目标为申请人本人
func normalizeSubmission(requestor *model.User, req *dto.SubmitQuotaRequest) (*model.QuotaRequest, error) {
	requestType := strings.TrimSpace(req.RequestType)
	if requestType == "" {
		requestType = model.RequestTypeIncrease
	}
	if !model.ValidRequestType(requestType) {
		return nil, ErrInvalidRequestType
	}

	quotaType := strings.TrimSpace(req.QuotaType)
	if quotaType == "" {
		quotaType = model.QuotaTypeUser
	}
	if !model.ValidQuotaType(quotaType) {
		return nil, ErrInvalidQuotaType
	}

	if req.RequestedQuota <= 0 {
		return nil, ErrInvalidQuotaAmount
	}

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, ErrEmptyReason
	}

	targetID := strings.TrimSpace(req.TargetID)
	if targetID == "" {
		if quotaType != model.QuotaTypeUser {
			return nil, ErrEmptyTarget
		}
		targetID = requestor.ID
	}

	return &model.QuotaRequest{
		UserID:         requestor.ID,
		UserName:       requestor.Username,
		RequestType:    requestType,
		QuotaType:      quotaType,
		TargetID:       targetID,
		RequestedQuota: req.RequestedQuota,
		Reason:         reason,
	}, nil
}

// ────────────────────── 查询 ──────────────────────

func (s *quotaRequestService) List(ctx context.Context, filter dto.QuotaRequestFilter) ([]dto.QuotaRequestResponse, error) {
	requests, err := s.filtered(ctx, filter)
	if err != nil {
		return nil, err
	}
	return toQuotaRequestResponses(requests), nil
}

func (s *quotaRequestService) ListRecent(ctx context.Context, filter dto.QuotaRequestFilter) ([]dto.QuotaRequestResponse, error) {
	requests, err := s.filtered(ctx, filter)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(requests, func(i, j int) bool {
		return requests[i].CreatedAt.After(requests[j].CreatedAt.Time)
	})
	return toQuotaRequestResponses(requests), nil
}

func (s *quotaRequestService) Get(ctx context.Context, id string) (*dto.QuotaRequestResponse, error) {
	req, err := s.repo.QuotaRequest.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRequestNotFound
		}
		s.logger.Error("查询配额申请失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toQuotaRequestResponse(req), nil
}

func (s *quotaRequestService) CountPending(ctx context.Context) (int, error) {
	requests, err := s.repo.QuotaRequest.Load(ctx)
	if err != nil {
		s.logger.Error("查询配额申请失败", zap.Error(err))
		return 0, err
	}

	count := 0
	for i := range requests {
		if requests[i].Status == model.RequestStatusPending {
			count++
		}
	}
	return count, nil
}

// ── 内部辅助方法 ──

func (s *quotaRequestService) filtered(ctx context.Context, filter dto.QuotaRequestFilter) ([]model.QuotaRequest, error) {
	if filter.Status != "" && !model.ValidRequestStatus(filter.Status) {
		return nil, ErrInvalidStatus
	}

	requests, err := s.repo.QuotaRequest.Load(ctx)
	if err != nil {
		s.logger.Error("查询配额申请失败", zap.Error(err))
		return nil, err
	}

	result := make([]model.QuotaRequest, 0, len(requests))
	for i := range requests {
		if filter.UserID != "" && requests[i].UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && requests[i].Status != filter.Status {
			continue
		}
		result = append(result, requests[i])
	}
	return result, nil
}

func toQuotaRequestResponse(r *model.QuotaRequest) *dto.QuotaRequestResponse {
	return &dto.QuotaRequestResponse{
		ID:              r.ID,
		UserID:          r.UserID,
		UserName:        r.UserName,
		RequestType:     r.RequestType,
		QuotaType:       r.QuotaType,
		TargetID:        r.TargetID,
		RequestedQuota:  r.RequestedQuota,
		Reason:          r.Reason,
		Status:          r.Status,
		ApproverID:      r.ApproverID,
		ApprovalComment: r.ApprovalComment,
		CreatedAt:       formatTime(r.CreatedAt.Time),
		UpdatedAt:       formatTime(r.UpdatedAt.Time),
	}
}

func toQuotaRequestResponses(requests []model.QuotaRequest) []dto.QuotaRequestResponse {
	result := make([]dto.QuotaRequestResponse, 0, len(requests))
	for i := range requests {
		result = append(result, *toQuotaRequestResponse(&requests[i]))
	}
	return result
}
