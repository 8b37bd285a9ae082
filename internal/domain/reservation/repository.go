package reservation

import (
	"context"
)

// Repository 预约仓储接口(依赖倒置原则)
type Repository interface {
	// Create 创建预约
	Create(ctx context.Context, reservation *Reservation) error

	// FindByID 根据ID查找预约
	FindByID(ctx context.Context, id uint) (*Reservation, error)

	// FindPendingForUserAndBook 查找用户对某书的pending预约
	// 不存在时返回ErrReservationNotFound
	FindPendingForUserAndBook(ctx context.Context, bookID, userID uint) (*Reservation, error)

	// Update 更新预约(状态流转)
	Update(ctx context.Context, reservation *Reservation) error

	// ListPendingByBook 某书的pending预约,按创建时间升序(先到先得)
	ListPendingByBook(ctx context.Context, bookID uint) ([]*Reservation, error)

	// CountPending pending预约总数(仪表盘用)
	CountPending(ctx context.Context) (int64, error)

	// CountPendingByBook 某书的pending预约数(状态视图的Reserved判定)
	CountPendingByBook(ctx context.Context, bookID uint) (int64, error)
}
