package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Kate44725/computing-management/internal/dto"
	"github.com/Kate44725/computing-management/internal/service"
	"github.com/Kate44725/computing-management/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult      *dto.TokenResponse
	loginErr         error
	refreshResult    *dto.TokenResponse
	refreshErr       error
	logoutErr        error
	logoutJTI        string
	getCurrentResult *dto.UserResponse
	getCurrentErr    error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) RefreshToken(_ context.Context, _ string) (*dto.TokenResponse, error) {
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) Logout(_ context.Context, jti string, _ time.Time) error {
	m.logoutJTI = jti
	return m.logoutErr
}
func (m *mockAuthService) GetCurrentUser(_ context.Context, _ string) (*dto.UserResponse, error) {
	return m.getCurrentResult, m.getCurrentErr
}
func (m *mockAuthService) Permissions(role string) *dto.PermissionsResponse {
	return &dto.PermissionsResponse{Role: role, RoleDisplayName: "管理员", Pages: []string{"dashboard"}}
}

// ── Mock QuotaRequestService ──

type mockQuotaRequestService struct {
	submitResult *dto.QuotaRequestResponse
	submitErr    error
	listResult   []dto.QuotaRequestResponse
	listErr      error
	lastFilter   dto.QuotaRequestFilter
	getResult    *dto.QuotaRequestResponse
	getErr       error
	pending      int
	pendingErr   error
}

func (m *mockQuotaRequestService) Submit(_ context.Context, _ string, _ *dto.SubmitQuotaRequest) (*dto.QuotaRequestResponse, error) {
	return m.submitResult, m.submitErr
}
func (m *mockQuotaRequestService) List(_ context.Context, filter dto.QuotaRequestFilter) ([]dto.QuotaRequestResponse, error) {
	m.lastFilter = filter
	return m.listResult, m.listErr
}
func (m *mockQuotaRequestService) ListRecent(_ context.Context, filter dto.QuotaRequestFilter) ([]dto.QuotaRequestResponse, error) {
	m.lastFilter = filter
	return m.listResult, m.listErr
}
func (m *mockQuotaRequestService) Get(_ context.Context, _ string) (*dto.QuotaRequestResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockQuotaRequestService) CountPending(_ context.Context) (int, error) {
	return m.pending, m.pendingErr
}

// ── Mock ApprovalService ──

type mockApprovalService struct {
	decideResult *dto.QuotaRequestResponse
	decideErr    error
	lastApproved bool
	lastComment  string
	batchResult  *dto.BatchDecisionResponse
	batchErr     error
	lastIDs      []string
}

func (m *mockApprovalService) Decide(_ context.Context, _, _ string, approved bool, comment string) (*dto.QuotaRequestResponse, error) {
	m.lastApproved = approved
	m.lastComment = comment
	return m.decideResult, m.decideErr
}
func (m *mockApprovalService) DecideBatch(_ context.Context, _ string, ids []string, approved bool, _ string) (*dto.BatchDecisionResponse, error) {
	m.lastIDs = ids
	m.lastApproved = approved
	return m.batchResult, m.batchErr
}

// ── Mock AffiliationService ──

type mockAffiliationService struct {
	currentResult    *dto.CurrentProjectResponse
	currentErr       error
	historyResult    []dto.AffiliationRecordResponse
	candidatesResult []dto.SwitchCandidateResponse
	switchResult     *dto.SwitchOutcomeResponse
	switchErr        error
}

func (m *mockAffiliationService) Bind(_ context.Context, _, _ string, _ int64) error {
	return nil
}
func (m *mockAffiliationService) VoluntarySwitch(_ context.Context, _, _ string) (*dto.SwitchOutcomeResponse, error) {
	return m.switchResult, m.switchErr
}
func (m *mockAffiliationService) CurrentProject(_ context.Context, _ string) (*dto.CurrentProjectResponse, error) {
	return m.currentResult, m.currentErr
}
func (m *mockAffiliationService) History(_ context.Context, _ string) ([]dto.AffiliationRecordResponse, error) {
	return m.historyResult, nil
}
func (m *mockAffiliationService) SwitchCandidates(_ context.Context, _ string) ([]dto.SwitchCandidateResponse, error) {
	return m.candidatesResult, nil
}

// ── Mock UserService ──

type mockUserService struct {
	listResult      []dto.UserResponse
	lastScope       dto.UserScope
	createResult    *dto.UserResponse
	createErr       error
	lastCreateScope dto.UserScope
}

func (m *mockUserService) List(_ context.Context, scope dto.UserScope, _ *dto.UserListRequest) ([]dto.UserResponse, error) {
	m.lastScope = scope
	return m.listResult, nil
}
func (m *mockUserService) Create(_ context.Context, scope dto.UserScope, _ *dto.CreateUserRequest) (*dto.UserResponse, error) {
	m.lastCreateScope = scope
	return m.createResult, m.createErr
}

// ── Mock ProjectService ──

type mockProjectService struct {
	createResult *dto.ProjectResponse
	createErr    error
	lastCreator  string
}

func (m *mockProjectService) List(_ context.Context, _ *dto.ProjectListRequest) ([]dto.ProjectResponse, error) {
	return []dto.ProjectResponse{}, nil
}
func (m *mockProjectService) Create(_ context.Context, _ *dto.CreateProjectRequest, creator string) (*dto.ProjectResponse, error) {
	m.lastCreator = creator
	return m.createResult, m.createErr
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setupGin() (*gin.Engine, *gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, r := gin.CreateTestContext(w)
	return r, c, w
}

func setAuth(c *gin.Context) {
	setAuthAs(c, "test-user-id", "admin")
}

func setAuthAs(c *gin.Context, userID, role string) {
	c.Set("user_id", userID)
	c.Set("role", role)
	c.Set("department_id", "test-dept-id")
	c.Set("token_jti", "test-jti")
	c.Set("token_exp", time.Now().Add(15*time.Minute))
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func boolPtr(b bool) *bool { return &b }

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.TokenResponse{
			AccessToken:  "test-access-token",
			RefreshToken: "test-refresh-token",
			ExpiresIn:    1800,
		},
	}
	h := NewAuthHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Username: "zhangsan",
		Password: "123456",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Login_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"InvalidCredentials", service.ErrInvalidCredentials, 401, 11001},
		{"Disabled", service.ErrUserDisabled, 403, 11002},
		{"InternalError", errors.New("unknown"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&mockAuthService{loginErr: tt.err})

			_, _, w := setupGin()
			req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
				Username: "zhangsan",
				Password: "wrong",
			}))
			req.Header.Set("Content-Type", "application/json")

			r := gin.New()
			r.POST("/auth/login", h.Login)
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			resp := parseResponse(w)
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestAuthHandler_RefreshToken_Invalid(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{refreshErr: service.ErrInvalidToken})

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/refresh", jsonBody(dto.RefreshTokenRequest{
		RefreshToken: "old-refresh",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/refresh", h.RefreshToken)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 11003 {
		t.Errorf("expected code 11003, got %d", resp.Code)
	}
}

func TestAuthHandler_RefreshToken_MissingToken(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/refresh", jsonBody(map[string]string{}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/refresh", h.RefreshToken)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Me_Success(t *testing.T) {
	mock := &mockAuthService{
		getCurrentResult: &dto.UserResponse{ID: "test-user-id", Username: "zhangsan"},
	}
	h := NewAuthHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/auth/me", nil)

	r := gin.New()
	r.GET("/auth/me", func(c *gin.Context) {
		setAuth(c)
		h.Me(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestAuthHandler_Me_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/auth/me", nil)

	r := gin.New()
	r.GET("/auth/me", h.Me)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthHandler_Permissions(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/auth/permissions", nil)

	r := gin.New()
	r.GET("/auth/permissions", func(c *gin.Context) {
		setAuth(c)
		h.Permissions(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	data, _ := parseResponse(w).Data.(map[string]interface{})
	if data["role"] != "admin" {
		t.Errorf("expected role admin, got %v", data["role"])
	}
}

func TestAuthHandler_Logout_Success(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/logout", nil)

	r := gin.New()
	r.POST("/auth/logout", func(c *gin.Context) {
		setAuth(c)
		h.Logout(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.logoutJTI != "test-jti" {
		t.Errorf("expected jti test-jti, got %q", mock.logoutJTI)
	}
}

// ═══════════════════════════════════════════════════════════
// QuotaRequestHandler Tests
// ═══════════════════════════════════════════════════════════

func TestQuotaRequestHandler_Submit_Success(t *testing.T) {
	mock := &mockQuotaRequestService{
		submitResult: &dto.QuotaRequestResponse{ID: "req-1", Status: "pending"},
	}
	h := NewQuotaRequestHandler(mock, &mockApprovalService{})

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/quota-requests", jsonBody(dto.SubmitQuotaRequest{
		RequestedQuota: 500000,
		Reason:         "训练任务",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/quota-requests", func(c *gin.Context) {
		setAuthAs(c, "user-002", "user")
		h.Submit(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestQuotaRequestHandler_Submit_InvalidType(t *testing.T) {
	h := NewQuotaRequestHandler(&mockQuotaRequestService{}, &mockApprovalService{})

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/quota-requests", jsonBody(map[string]interface{}{
		"request_type":    "shrink",
		"requested_quota": 100,
		"reason":          "x",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/quota-requests", func(c *gin.Context) {
		setAuthAs(c, "user-002", "user")
		h.Submit(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 10001 {
		t.Errorf("expected code 10001, got %d", resp.Code)
	}
}

func TestQuotaRequestHandler_Submit_ValidationFromService(t *testing.T) {
	mock := &mockQuotaRequestService{submitErr: service.ErrInvalidQuotaAmount}
	h := NewQuotaRequestHandler(mock, &mockApprovalService{})

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/quota-requests", jsonBody(dto.SubmitQuotaRequest{
		RequestedQuota: 0,
		Reason:         "训练任务",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/quota-requests", func(c *gin.Context) {
		setAuthAs(c, "user-002", "user")
		h.Submit(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 20001 {
		t.Errorf("expected code 20001, got %d", resp.Code)
	}
	if resp.Details == "" {
		t.Error("expected details to carry the service error")
	}
}

func TestQuotaRequestHandler_ListMine_Paginated(t *testing.T) {
	mock := &mockQuotaRequestService{
		listResult: []dto.QuotaRequestResponse{{ID: "req-3"}, {ID: "req-2"}, {ID: "req-1"}},
	}
	h := NewQuotaRequestHandler(mock, &mockApprovalService{})

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/quota-requests/mine?page=2&page_size=2&status=pending", nil)

	r := gin.New()
	r.GET("/quota-requests/mine", func(c *gin.Context) {
		setAuthAs(c, "user-002", "user")
		h.ListMine(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.lastFilter.UserID != "user-002" || mock.lastFilter.Status != "pending" {
		t.Errorf("unexpected filter: %+v", mock.lastFilter)
	}

	var body struct {
		Data response.PageData `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body.Data.Pagination.Total != 3 || body.Data.Pagination.TotalPages != 2 {
		t.Errorf("unexpected pagination: %+v", body.Data.Pagination)
	}
	list, _ := body.Data.List.([]interface{})
	if len(list) != 1 {
		t.Errorf("expected 1 item on page 2, got %d", len(list))
	}
}

func TestQuotaRequestHandler_ListAll_NoUserFilter(t *testing.T) {
	mock := &mockQuotaRequestService{listResult: []dto.QuotaRequestResponse{}}
	h := NewQuotaRequestHandler(mock, &mockApprovalService{})

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/quota-requests?status=approved", nil)

	r := gin.New()
	r.GET("/quota-requests", func(c *gin.Context) {
		setAuth(c)
		h.ListAll(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.lastFilter.UserID != "" || mock.lastFilter.Status != "approved" {
		t.Errorf("unexpected filter: %+v", mock.lastFilter)
	}
}

func TestQuotaRequestHandler_ListAll_BadStatus(t *testing.T) {
	h := NewQuotaRequestHandler(&mockQuotaRequestService{}, &mockApprovalService{})

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/quota-requests?status=unknown", nil)

	r := gin.New()
	r.GET("/quota-requests", h.ListAll)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestQuotaRequestHandler_PendingCount(t *testing.T) {
	h := NewQuotaRequestHandler(&mockQuotaRequestService{pending: 4}, &mockApprovalService{})

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/quota-requests/pending-count", nil)

	r := gin.New()
	r.GET("/quota-requests/pending-count", h.PendingCount)
	r.ServeHTTP(w, req)

	data, _ := parseResponse(w).Data.(map[string]interface{})
	if data["count"] != float64(4) {
		t.Errorf("expected count 4, got %v", data["count"])
	}
}

func TestQuotaRequestHandler_Get_OwnerOnlyForApplicants(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		role       string
		wantStatus int
	}{
		{"Owner", "user-002", "user", 200},
		{"OtherApplicant", "user-003", "user", 403},
		{"Approver", "user-001", "admin", 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockQuotaRequestService{
				getResult: &dto.QuotaRequestResponse{ID: "req-1", UserID: "user-002"},
			}
			h := NewQuotaRequestHandler(mock, &mockApprovalService{})

			_, _, w := setupGin()
			req := httptest.NewRequest("GET", "/quota-requests/req-1", nil)

			r := gin.New()
			r.GET("/quota-requests/:id", func(c *gin.Context) {
				setAuthAs(c, tt.userID, tt.role)
				h.Get(c)
			})
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestQuotaRequestHandler_Get_NotFound(t *testing.T) {
	h := NewQuotaRequestHandler(&mockQuotaRequestService{getErr: service.ErrRequestNotFound}, &mockApprovalService{})

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/quota-requests/req-x", nil)

	r := gin.New()
	r.GET("/quota-requests/:id", func(c *gin.Context) {
		setAuth(c)
		h.Get(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 20002 {
		t.Errorf("expected code 20002, got %d", resp.Code)
	}
}

func TestQuotaRequestHandler_Decide_Success(t *testing.T) {
	approval := &mockApprovalService{
		decideResult: &dto.QuotaRequestResponse{ID: "req-1", Status: "rejected"},
	}
	h := NewQuotaRequestHandler(&mockQuotaRequestService{}, approval)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/quota-requests/req-1/decision", jsonBody(dto.DecisionRequest{
		Approved: boolPtr(false),
		Comment:  "预算不足",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/quota-requests/:id/decision", func(c *gin.Context) {
		setAuth(c)
		h.Decide(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if approval.lastApproved || approval.lastComment != "预算不足" {
		t.Errorf("unexpected decision args: approved=%v comment=%q", approval.lastApproved, approval.lastComment)
	}
}

func TestQuotaRequestHandler_Decide_MissingApproved(t *testing.T) {
	h := NewQuotaRequestHandler(&mockQuotaRequestService{}, &mockApprovalService{})

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/quota-requests/req-1/decision", jsonBody(map[string]string{"comment": "ok"}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/quota-requests/:id/decision", func(c *gin.Context) {
		setAuth(c)
		h.Decide(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestQuotaRequestHandler_Decide_AlreadyResolved(t *testing.T) {
	approval := &mockApprovalService{decideErr: service.ErrRequestResolved}
	h := NewQuotaRequestHandler(&mockQuotaRequestService{}, approval)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/quota-requests/req-1/decision", jsonBody(dto.DecisionRequest{
		Approved: boolPtr(true),
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/quota-requests/:id/decision", func(c *gin.Context) {
		setAuth(c)
		h.Decide(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 20003 {
		t.Errorf("expected code 20003, got %d", resp.Code)
	}
}

func TestQuotaRequestHandler_DecideBatch(t *testing.T) {
	approval := &mockApprovalService{
		batchResult: &dto.BatchDecisionResponse{Succeeded: 1, Failed: 1},
	}
	h := NewQuotaRequestHandler(&mockQuotaRequestService{}, approval)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/quota-requests/batch-decision", jsonBody(dto.BatchDecisionRequest{
		IDs:      []string{"req-1", "req-2"},
		Approved: boolPtr(true),
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/quota-requests/batch-decision", func(c *gin.Context) {
		setAuth(c)
		h.DecideBatch(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if len(approval.lastIDs) != 2 || !approval.lastApproved {
		t.Errorf("unexpected batch args: ids=%v approved=%v", approval.lastIDs, approval.lastApproved)
	}
}

func TestQuotaRequestHandler_DecideBatch_EmptyIDs(t *testing.T) {
	h := NewQuotaRequestHandler(&mockQuotaRequestService{}, &mockApprovalService{})

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/quota-requests/batch-decision", jsonBody(dto.BatchDecisionRequest{
		IDs:      []string{},
		Approved: boolPtr(true),
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/quota-requests/batch-decision", func(c *gin.Context) {
		setAuth(c)
		h.DecideBatch(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// AffiliationHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAffiliationHandler_Current_Unaffiliated(t *testing.T) {
	h := NewAffiliationHandler(&mockAffiliationService{})

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/affiliation/current", nil)

	r := gin.New()
	r.GET("/affiliation/current", func(c *gin.Context) {
		setAuthAs(c, "user-004", "user")
		h.Current(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Data != nil {
		t.Errorf("expected null data, got %v", resp.Data)
	}
}

func TestAffiliationHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"NoCurrentUser", service.ErrNoCurrentUser, 401, 10002},
		{"ProjectNotFound", service.ErrProjectNotFound, 404, 20002},
		{"AlreadyAffiliated", service.ErrAlreadyAffiliated, 409, 20003},
		{"Exhausted", service.ErrProjectExhausted, 422, 20004},
		{"InternalError", errors.New("unknown"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAffiliationHandler(&mockAffiliationService{switchErr: tt.err})

			_, _, w := setupGin()
			req := httptest.NewRequest("POST", "/affiliation/switch", jsonBody(dto.SwitchProjectRequest{
				ProjectID: "proj-003",
			}))
			req.Header.Set("Content-Type", "application/json")

			r := gin.New()
			r.POST("/affiliation/switch", func(c *gin.Context) {
				setAuthAs(c, "user-002", "user")
				h.Switch(c)
			})
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			resp := parseResponse(w)
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestAffiliationHandler_Switch_MissingProject(t *testing.T) {
	h := NewAffiliationHandler(&mockAffiliationService{})

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/affiliation/switch", jsonBody(map[string]string{}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/affiliation/switch", func(c *gin.Context) {
		setAuthAs(c, "user-002", "user")
		h.Switch(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// UserHandler / ProjectHandler Tests
// ═══════════════════════════════════════════════════════════

func TestUserHandler_ListUsers_PassesScope(t *testing.T) {
	mock := &mockUserService{listResult: []dto.UserResponse{{ID: "user-002"}}}
	h := NewUserHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/users", nil)

	r := gin.New()
	r.GET("/users", func(c *gin.Context) {
		setAuthAs(c, "user-003", "domain_admin")
		h.ListUsers(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	want := dto.UserScope{UserID: "user-003", Role: "domain_admin", DepartmentID: "test-dept-id"}
	if mock.lastScope != want {
		t.Errorf("expected scope %+v, got %+v", want, mock.lastScope)
	}
}

func TestUserHandler_CreateUser_Duplicate(t *testing.T) {
	h := NewUserHandler(&mockUserService{createErr: service.ErrUsernameExists})

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/users", jsonBody(dto.CreateUserRequest{
		Username: "zhangsan",
		Password: "123456",
		Role:     "user",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/users", func(c *gin.Context) {
		setAuth(c)
		h.CreateUser(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestUserHandler_CreateUser_PassesScopeAndMapsForbidden(t *testing.T) {
	mock := &mockUserService{createErr: service.ErrRoleNotAssignable}
	h := NewUserHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/users", jsonBody(dto.CreateUserRequest{
		Username: "lisi",
		Password: "123456",
		Role:     "admin",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/users", func(c *gin.Context) {
		setAuthAs(c, "user-003", "domain_admin")
		h.CreateUser(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 20005 {
		t.Errorf("expected code 20005, got %d", resp.Code)
	}
	want := dto.UserScope{UserID: "user-003", Role: "domain_admin", DepartmentID: "test-dept-id"}
	if mock.lastCreateScope != want {
		t.Errorf("expected scope %+v, got %+v", want, mock.lastCreateScope)
	}
}

func TestProjectHandler_CreateProject_UsesCaller(t *testing.T) {
	mock := &mockProjectService{createResult: &dto.ProjectResponse{ID: "proj-new"}}
	h := NewProjectHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/projects", jsonBody(dto.CreateProjectRequest{
		Code: "P-100",
		Name: "视觉大模型",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/projects", func(c *gin.Context) {
		setAuth(c)
		h.CreateProject(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
	if mock.lastCreator != "test-user-id" {
		t.Errorf("expected creator test-user-id, got %q", mock.lastCreator)
	}
}
