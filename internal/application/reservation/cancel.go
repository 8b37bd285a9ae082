package reservation

import (
	"context"
	"time"

	"github.com/xiebiao/unilib/internal/domain/reservation"
)

// CancelUseCase 取消预约用例
// 取消只做状态流转(pending → cancelled),不改动任何计数:
// 累计预约次数是"发生过多少次预约"的历史统计,不随取消回退
type CancelUseCase struct {
	reservationSvc reservation.Service
	storeTimeout   time.Duration
}

// NewCancelUseCase 创建取消预约用例
func NewCancelUseCase(reservationSvc reservation.Service, storeTimeout time.Duration) *CancelUseCase {
	return &CancelUseCase{
		reservationSvc: reservationSvc,
		storeTimeout:   storeTimeout,
	}
}

// Execute 取消预约
// 业务规则: 只能取消自己的pending预约
func (uc *CancelUseCase) Execute(ctx context.Context, reservationID, userID uint) error {
	ctx, cancel := context.WithTimeout(ctx, uc.storeTimeout)
	defer cancel()

	return uc.reservationSvc.CancelByID(ctx, reservationID, userID)
}
