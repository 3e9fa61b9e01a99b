package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Kate44725/computing-management/internal/model"
	"github.com/Kate44725/computing-management/internal/repository"
	pkgerrors "github.com/Kate44725/computing-management/pkg/errors"
)

// ErrNonPositiveDelta 额度增量必须为正
var ErrNonPositiveDelta = fmt.Errorf("%w: 额度增量必须为正整数", pkgerrors.ErrValidation)

// quotaMutator 将已批准的额度增量写入目标实体
// 只做加法；目标不存在或类型未知时记录告警并跳过，不返回错误
// 审批引擎在自己的互斥区内调用 apply，Apply 供单独调用
type quotaMutator struct {
	repo             *repository.Repository
	defaultUserQuota int64
	logger           *zap.Logger
}

func newQuotaMutator(repo *repository.Repository, defaultUserQuota int64, logger *zap.Logger) *quotaMutator {
	if defaultUserQuota <= 0 {
		defaultUserQuota = model.DefaultUserQuota
	}
	return &quotaMutator{repo: repo, defaultUserQuota: defaultUserQuota, logger: logger}
}

func (m *quotaMutator) Apply(ctx context.Context, quotaType, targetID string, delta int64) error {
	return m.repo.Exclusive(func() error {
		return m.apply(ctx, quotaType, targetID, delta)
	})
}

// apply 须在 Exclusive 内调用
func (m *quotaMutator) apply(ctx context.Context, quotaType, targetID string, delta int64) error {
	if delta <= 0 {
		return ErrNonPositiveDelta
	}

	switch quotaType {
	case model.QuotaTypeUser:
		return m.applyUser(ctx, targetID, delta)
	case model.QuotaTypeProject:
		return m.applyProject(ctx, targetID, delta)
	case model.QuotaTypeDepartment:
		return m.applyDepartment(ctx, targetID, delta)
	default:
		m.logger.Warn("未知的额度类型，跳过额度写入",
			zap.String("quota_type", quotaType), zap.String("target_id", targetID))
		return nil
	}
}

func (m *quotaMutator) applyUser(ctx context.Context, targetID string, delta int64) error {
	users, err := m.repo.User.Load(ctx)
	if err != nil {
		return err
	}
	i := findIndex(users, func(u *model.User) bool { return u.ID == targetID })
	if i < 0 {
		m.skipMissing(model.QuotaTypeUser, targetID)
		return nil
	}

	users[i].SetQuota(users[i].QuotaOr(m.defaultUserQuota) + delta)
	return m.repo.User.Save(ctx, users)
}

func (m *quotaMutator) applyProject(ctx context.Context, targetID string, delta int64) error {
	projects, err := m.repo.Project.Load(ctx)
	if err != nil {
		return err
	}
	i := findIndex(projects, func(p *model.Project) bool { return p.ID == targetID })
	if i < 0 {
		m.skipMissing(model.QuotaTypeProject, targetID)
		return nil
	}

	projects[i].Allocated += delta
	return m.repo.Project.Save(ctx, projects)
}

func (m *quotaMutator) applyDepartment(ctx context.Context, targetID string, delta int64) error {
	depts, err := m.repo.Department.Load(ctx)
	if err != nil {
		return err
	}
	i := findIndex(depts, func(d *model.Department) bool { return d.ID == targetID })
	if i < 0 {
		m.skipMissing(model.QuotaTypeDepartment, targetID)
		return nil
	}

	depts[i].QuotaTotal += delta
	return m.repo.Department.Save(ctx, depts)
}

func (m *quotaMutator) skipMissing(quotaType, targetID string) {
	m.logger.Warn("额度目标不存在，跳过额度写入",
		zap.String("quota_type", quotaType), zap.String("target_id", targetID))
}
