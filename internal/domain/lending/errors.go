package lending

import (
	apperrors "github.com/xiebiao/unilib/pkg/errors"
)

// 借阅领域错误定义
var (
	// ErrBorrowingNotFound 借阅记录不存在
	ErrBorrowingNotFound = apperrors.New(apperrors.ErrCodeBorrowingNotFound, "借阅记录不存在")

	// ErrNoActiveBorrowing 没有未归还的借阅记录
	ErrNoActiveBorrowing = apperrors.New(apperrors.ErrCodeNoActiveBorrowing, "该用户没有此书未归还的借阅记录")

	// ErrAlreadyReturned 借阅记录已归还
	ErrAlreadyReturned = apperrors.New(apperrors.ErrCodeBusinessError, "借阅记录已归还")

	// ErrInvalidDueDate 应还日期不合法
	ErrInvalidDueDate = apperrors.New(apperrors.ErrCodeInvalidParams, "应还日期不能早于当前时间")
)
