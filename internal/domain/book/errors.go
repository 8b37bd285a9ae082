package book

import (
	apperrors "github.com/xiebiao/unilib/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")

	// ErrISBNDuplicate ISBN已存在
	ErrISBNDuplicate = apperrors.New(apperrors.ErrCodeISBNDuplicate, "ISBN号已存在")

	// ErrInvalidISBN ISBN格式不正确
	ErrInvalidISBN = apperrors.New(apperrors.ErrCodeInvalidParams, "ISBN格式不正确")

	// ErrNotAvailable 无可借副本
	ErrNotAvailable = apperrors.New(apperrors.ErrCodeNotAvailable, "图书暂无可借副本")

	// ErrInvalidCopies 无效的副本数
	ErrInvalidCopies = apperrors.New(apperrors.ErrCodeInvalidParams, "副本数必须大于0且不少于已借出数量")

	// ErrInvalidYear 无效的出版年份
	ErrInvalidYear = apperrors.New(apperrors.ErrCodeInvalidParams, "出版年份不合法")

	// ErrHasActiveBorrows 图书仍有未归还借阅
	ErrHasActiveBorrows = apperrors.New(apperrors.ErrCodeHasActiveBorrows, "图书仍有未归还的借阅记录，禁止删除")
)
