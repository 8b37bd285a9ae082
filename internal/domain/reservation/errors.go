package reservation

import (
	apperrors "github.com/xiebiao/unilib/pkg/errors"
)

// 预约领域错误定义
var (
	// ErrReservationNotFound 预约记录不存在
	ErrReservationNotFound = apperrors.New(apperrors.ErrCodeReservationNotFound, "预约记录不存在")

	// ErrNotPending 预约不处于等待状态
	ErrNotPending = apperrors.New(apperrors.ErrCodeBusinessError, "预约已兑现或已取消")
)
