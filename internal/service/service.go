package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Kate44725/computing-management/config"
	"github.com/Kate44725/computing-management/internal/repository"
	pkgerrors "github.com/Kate44725/computing-management/pkg/errors"
	"github.com/Kate44725/computing-management/pkg/jwt"
	"github.com/Kate44725/computing-management/pkg/metrics"
)

// TokenBlacklist Token 黑名单，由 pkg/redis.Client 实现；未启用 Redis 时传 nil
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// clock 当前时间来源，测试中可替换
type clock func() time.Time

func defaultClock() time.Time { return time.Now() }

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	User         UserService
	QuotaRequest QuotaRequestService
	Approval     ApprovalService
	Affiliation  AffiliationService
	Project      ProjectService
	Department   DepartmentService
	Zone         ZoneService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Service {
	now := clock(defaultClock)

	mutator := newQuotaMutator(repo, cfg.Quota.DefaultUserQuota, logger)
	affiliation := newAffiliationService(repo, cfg.Quota.LowBalanceThreshold, m, logger, now)

	return &Service{
		Auth:         NewAuthService(cfg, repo, jwtMgr, blacklist, logger),
		User:         NewUserService(repo, cfg.Quota.DefaultUserQuota, logger),
		QuotaRequest: newQuotaRequestService(repo, m, logger, now),
		Approval:     newApprovalService(repo, mutator, affiliation, m, logger, now),
		Affiliation:  affiliation,
		Project:      newProjectService(repo, cfg.Quota.DefaultProjectQuota, logger, now),
		Department:   NewDepartmentService(repo, logger),
		Zone:         NewZoneService(repo, logger),
	}
}

// ── 内部辅助方法 ──

// isDomainError 业务分类错误由调用方处理，无需按系统错误记录
func isDomainError(err error) bool {
	return errors.Is(err, pkgerrors.ErrValidation) ||
		errors.Is(err, pkgerrors.ErrNotFound) ||
		errors.Is(err, pkgerrors.ErrConflict) ||
		errors.Is(err, pkgerrors.ErrInsufficientBalance) ||
		errors.Is(err, pkgerrors.ErrPrecondition) ||
		errors.Is(err, pkgerrors.ErrForbidden)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func findIndex[T any](items []T, match func(*T) bool) int {
	for i := range items {
		if match(&items[i]) {
			return i
		}
	}
	return -1
}
