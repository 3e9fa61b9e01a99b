package service

import (
	"errors"
	"fmt"

	pkgerrors "github.com/Kate44725/computing-management/pkg/errors"
)

// ── 跨模块业务错误 ──
// 每个错误包装 pkg/errors 中的一个分类，Handler 按分类映射 HTTP 状态码

var (
	ErrNoCurrentUser      = fmt.Errorf("%w: 需要登录用户", pkgerrors.ErrPrecondition)
	ErrUserNotFound       = fmt.Errorf("%w: 用户不存在", pkgerrors.ErrNotFound)
	ErrProjectNotFound    = fmt.Errorf("%w: 项目不存在", pkgerrors.ErrNotFound)
	ErrDepartmentNotFound = fmt.Errorf("%w: 部门不存在", pkgerrors.ErrNotFound)
)

// ── 认证模块业务错误 ──

var (
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrUserDisabled       = errors.New("用户已停用")
	ErrInvalidToken       = errors.New("Token 无效或已过期")
)
