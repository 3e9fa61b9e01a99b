package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Kate44725/computing-management/internal/model"
	"github.com/Kate44725/computing-management/internal/repository"
	"github.com/Kate44725/computing-management/pkg/kvstore"
)

// ── 测试辅助 ──

const testKeyPrefix = "ai_platform_"

var testNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// steppingClock 每次调用前进一分钟，用于区分创建顺序
func steppingClock() clock {
	t := testNow
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

// failingStore 读写都返回错误
type failingStore struct{}

var errStoreDown = errors.New("存储不可用")

func (failingStore) Get(context.Context, string) ([]byte, error) { return nil, errStoreDown }
func (failingStore) Set(context.Context, string, []byte) error   { return errStoreDown }

// flakyStore 包装内存存储，对 failKey 的写入返回错误
type flakyStore struct {
	*kvstore.Memory
	failKey string
}

func (f *flakyStore) Set(ctx context.Context, key string, value []byte) error {
	if f.failKey != "" && key == testKeyPrefix+f.failKey {
		return errStoreDown
	}
	return f.Memory.Set(ctx, key, value)
}

type testEnv struct {
	store       *kvstore.Memory
	flaky       *flakyStore
	repo        *repository.Repository
	mutator     *quotaMutator
	affiliation *affiliationService
	ledger      *quotaRequestService
	approval    *approvalService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithLogger(t, zap.NewNop())
}

func newTestEnvWithLogger(t *testing.T, logger *zap.Logger) *testEnv {
	t.Helper()
	store := kvstore.NewMemory()
	flaky := &flakyStore{Memory: store}
	repo := repository.NewRepository(flaky, testKeyPrefix)
	seed(t, repo)

	mutator := newQuotaMutator(repo, model.DefaultUserQuota, logger)
	affiliation := newAffiliationService(repo, DefaultLowBalanceThreshold, nil, logger, fixedClock)
	return &testEnv{
		store:       store,
		flaky:       flaky,
		repo:        repo,
		mutator:     mutator,
		affiliation: affiliation,
		ledger:      newQuotaRequestService(repo, nil, logger, fixedClock),
		approval:    newApprovalService(repo, mutator, affiliation, nil, logger, fixedClock),
	}
}

// seed 写入与演示环境一致的用户、部门、项目
//   - proj-001 剩余 4,000,000
//   - proj-002 剩余 50,000（低于余额提示阈值）
//   - proj-003 已耗尽
func seed(t *testing.T, repo *repository.Repository) {
	t.Helper()
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("123456"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("生成密码哈希失败: %v", err)
	}
	pw := string(hash)

	users := []model.User{
		{ID: "user-001", Username: "admin", PasswordHash: pw, Role: model.RoleAdmin, DepartmentID: "dept-001", Status: model.UserStatusActive},
		{ID: "user-002", Username: "user1", PasswordHash: pw, Role: model.RoleUser, DepartmentID: "dept-001", ProjectIDs: []string{"proj-001"}, Status: model.UserStatusActive},
		{ID: "user-003", Username: "domain_admin1", PasswordHash: pw, Role: model.RoleDomainAdmin, DepartmentID: "dept-001", ProjectIDs: []string{"proj-001", "proj-002"}, Status: model.UserStatusActive},
		{ID: "user-004", Username: "operator1", PasswordHash: pw, Role: model.RoleOperator, DepartmentID: "dept-002", Status: model.UserStatusActive},
		{ID: "user-005", Username: "retired", PasswordHash: pw, Role: model.RoleUser, DepartmentID: "dept-002", Status: model.UserStatusDisabled},
	}
	depts := []model.Department{
		{ID: "dept-001", Name: "研发中心", QuotaTotal: 10000000, QuotaUsed: 3000000},
		{ID: "dept-002", Name: "运营部", QuotaTotal: 2000000, QuotaUsed: 500000},
	}
	projects := []model.Project{
		{ID: "proj-001", Code: "CHIP-A", Name: "芯片设计项目A", DepartmentID: "dept-001", Allocated: 5000000, Consumed: 1000000, Status: model.ProjectStatusActive},
		{ID: "proj-002", Code: "VERIFY-B", Name: "验证测试项目B", DepartmentID: "dept-001", Allocated: 2000000, Consumed: 1950000, Status: model.ProjectStatusActive},
		{ID: "proj-003", Code: "OLD-C", Name: "已耗尽项目C", DepartmentID: "dept-002", Allocated: 1000000, Consumed: 1000000, Status: model.ProjectStatusEnded},
	}
	zones := []model.Zone{
		{ID: "zone-red", Name: "red", DisplayName: "红区", Status: "active", GPUCount: 64, IsDefault: true},
		{ID: "zone-yellow", Name: "yellow", DisplayName: "黄区", Status: "active", GPUCount: 32},
	}

	if err := repo.User.Save(ctx, users); err != nil {
		t.Fatalf("写入用户失败: %v", err)
	}
	if err := repo.Department.Save(ctx, depts); err != nil {
		t.Fatalf("写入部门失败: %v", err)
	}
	if err := repo.Project.Save(ctx, projects); err != nil {
		t.Fatalf("写入项目失败: %v", err)
	}
	if err := repo.Zone.Save(ctx, zones); err != nil {
		t.Fatalf("写入区域失败: %v", err)
	}
}

func (e *testEnv) user(t *testing.T, id string) *model.User {
	t.Helper()
	u, err := e.repo.User.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("查询用户 %s 失败: %v", id, err)
	}
	return u
}

func (e *testEnv) project(t *testing.T, id string) *model.Project {
	t.Helper()
	p, err := e.repo.Project.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("查询项目 %s 失败: %v", id, err)
	}
	return p
}

func (e *testEnv) department(t *testing.T, id string) *model.Department {
	t.Helper()
	d, err := e.repo.Department.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("查询部门 %s 失败: %v", id, err)
	}
	return d
}

// raw 读取集合的原始字节，用于断言"未发生任何写入"
func (e *testEnv) raw(t *testing.T, key string) string {
	t.Helper()
	b, err := e.store.Get(context.Background(), testKeyPrefix+key)
	if err != nil {
		t.Fatalf("读取 %s 失败: %v", key, err)
	}
	return string(b)
}

func assertAffiliationInvariant(t *testing.T, e *testEnv) {
	t.Helper()
	users, err := e.repo.User.Load(context.Background())
	if err != nil {
		t.Fatalf("加载用户失败: %v", err)
	}
	for i := range users {
		if !users[i].AffiliationConsistent() {
			t.Errorf("用户 %s 挂靠不变量被破坏: current=%+v history=%+v",
				users[i].ID, users[i].CurrentProject, users[i].ProjectHistory)
		}
	}
}
