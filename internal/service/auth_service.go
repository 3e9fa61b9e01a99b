package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Kate44725/computing-management/config"
	"github.com/Kate44725/computing-management/internal/dto"
	"github.com/Kate44725/computing-management/internal/model"
	"github.com/Kate44725/computing-management/internal/policy"
	"github.com/Kate44725/computing-management/internal/repository"
	"github.com/Kate44725/computing-management/pkg/jwt"
)

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	// Logout 将 access token 的 jti 加入黑名单直至其过期；未启用 Redis 时为空操作
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	GetCurrentUser(ctx context.Context, userID string) (*dto.UserResponse, error)
	Permissions(role string) *dto.PermissionsResponse
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 查询用户
	user, err := s.repo.User.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, ErrUserDisabled
	}

	// 3. 生成 Token 对
	return s.issueTokens(ctx, user)
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil || claims.TokenType != jwt.TokenTypeRefresh {
		return nil, ErrInvalidToken
	}

	if s.blacklist != nil {
		revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Warn("查询 Token 黑名单失败", zap.Error(err))
		} else if revoked {
			return nil, ErrInvalidToken
		}
	}

	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	if !user.IsActive() {
		return nil, ErrUserDisabled
	}

	// 旧 refresh token 作废，防止重复使用
	if claims.ExpiresAt != nil {
		_ = s.revoke(ctx, claims.ID, claims.ExpiresAt.Time)
	}

	return s.issueTokens(ctx, user)
}

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return nil
	}
	return s.revoke(ctx, jti, expiresAt)
}

func (s *authService) GetCurrentUser(ctx context.Context, userID string) (*dto.UserResponse, error) {
	if userID == "" {
		return nil, ErrNoCurrentUser
	}
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	resp := toUserResponse(user, s.cfg.Quota.DefaultUserQuota)
	if user.DepartmentID != "" {
		if dept, err := s.repo.Department.GetByID(ctx, user.DepartmentID); err == nil {
			resp.Department = &dto.DepartmentResponse{ID: dept.ID, Name: dept.Name}
		}
	}
	return resp, nil
}

func (s *authService) Permissions(role string) *dto.PermissionsResponse {
	return &dto.PermissionsResponse{
		Role:            role,
		RoleDisplayName: policy.RoleDisplayName(role),
		Pages:           policy.AllowedPages(role),
		Features:        policy.AllowedFeatures(role),
	}
}

// ── 内部辅助方法 ──

func (s *authService) issueTokens(ctx context.Context, user *model.User) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.ID, user.Role, user.DepartmentID)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.ID, user.Role, user.DepartmentID)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:         *toUserResponse(user, s.cfg.Quota.DefaultUserQuota),
	}
	if user.DepartmentID != "" {
		if dept, err := s.repo.Department.GetByID(ctx, user.DepartmentID); err == nil {
			resp.User.Department = &dto.DepartmentResponse{ID: dept.ID, Name: dept.Name}
		}
	}
	return resp, nil
}

func (s *authService) revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.blacklist == nil {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, jti, time.Until(expiresAt)); err != nil {
		s.logger.Error("写入 Token 黑名单失败", zap.Error(err))
		return err
	}
	return nil
}
