package repository

import (
	"context"
	"sync"

	"github.com/Kate44725/computing-management/internal/model"
	"github.com/Kate44725/computing-management/pkg/kvstore"
)

// 集合 key 后缀，完整 key 为 前缀+后缀
const (
	KeyUsers         = "users"
	KeyDepartments   = "departments"
	KeyProjects      = "projects"
	KeyZones         = "zones"
	KeyQuotaRequests = "quota_requests"
)

// UserRepository 用户集合
type UserRepository interface {
	Collection[model.User]
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

// DepartmentRepository 部门集合
type DepartmentRepository interface {
	Collection[model.Department]
}

// ProjectRepository 项目集合
type ProjectRepository interface {
	Collection[model.Project]
}

// ZoneRepository 算力区域集合（只读参考数据）
type ZoneRepository interface {
	Collection[model.Zone]
}

// QuotaRequestRepository 配额申请集合
type QuotaRequestRepository interface {
	Collection[model.QuotaRequest]
}

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User         UserRepository
	Department   DepartmentRepository
	Project      ProjectRepository
	Zone         ZoneRepository
	QuotaRequest QuotaRequestRepository

	mu sync.Mutex
}

// NewRepository 基于键值存储创建 Repository 聚合
func NewRepository(store kvstore.Store, keyPrefix string) *Repository {
	return &Repository{
		User: &userRepo{collection: newCollection(store, keyPrefix+KeyUsers,
			func(u *model.User) string { return u.ID })},
		Department: newCollection(store, keyPrefix+KeyDepartments,
			func(d *model.Department) string { return d.ID }),
		Project: newCollection(store, keyPrefix+KeyProjects,
			func(p *model.Project) string { return p.ID }),
		Zone: newCollection(store, keyPrefix+KeyZones,
			func(z *model.Zone) string { return z.ID }),
		QuotaRequest: newCollection(store, keyPrefix+KeyQuotaRequests,
			func(r *model.QuotaRequest) string { return r.ID }),
	}
}

// Exclusive 在进程内独占区内执行 fn
// 所有"读取集合 → 修改 → 整体写回"的操作都须在独占区内完成，避免并发请求互相覆盖；
// 不可重入，fn 内不得再次调用 Exclusive
func (r *Repository) Exclusive(fn func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn()
}

// ── 用户 ──

type userRepo struct {
	*collection[model.User]
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	users, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Username == username {
			return &users[i], nil
		}
	}
	return nil, ErrNotFound
}
