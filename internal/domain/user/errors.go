package user

import (
	apperrors "github.com/xiebiao/unilib/pkg/errors"
)

// 用户领域错误定义
var (
	// ErrNotPending 用户不处于待审批状态
	ErrNotPending = apperrors.New(apperrors.ErrCodeBusinessError, "用户不处于待审批状态")

	// ErrNotApproved 账号尚未批准
	ErrNotApproved = apperrors.New(apperrors.ErrCodeForbidden, "账号尚未通过审批，暂时无法登录")
)
