package errors

import "errors"

// ── 错误分类 ──
// 业务层的具体错误通过 fmt.Errorf("%w: ...", 分类) 包装，Handler 层按分类映射 HTTP 状态码

var (
	// ErrValidation 输入缺失或格式错误（额度非正数、理由为空、目标为空）
	ErrValidation = errors.New("参数校验失败")
	// ErrNotFound 引用的用户、项目、部门或申请不存在
	ErrNotFound = errors.New("资源不存在")
	// ErrConflict 状态冲突，例如重复审批已结束的申请
	ErrConflict = errors.New("状态冲突")
	// ErrInsufficientBalance 目标项目已无剩余额度
	ErrInsufficientBalance = errors.New("余额不足")
	// ErrPrecondition 操作需要已登录的当前用户
	ErrPrecondition = errors.New("缺少当前用户")
	// ErrForbidden 超出调用者的数据范围，例如领域管理员跨部门创建用户
	ErrForbidden = errors.New("超出权限范围")
)

