package reservation

import (
	"context"
)

// Service 预约领域服务
// 设计说明:
// 1. 唯一性不变量(每个用户对每本书至多一条pending预约)在写入时
//    通过"先查后插"保证;底层存储没有对该条件的原生唯一约束,
//    并发下可能双双通过检查——因此重复预约一律按幂等成功处理,
//    而不是报错(application层再配合按书加锁把窗口压到最小)
// 2. 预约不改变图书可借状态
type Service interface {
	// Reserve 登记预约
	// 已存在pending预约时返回该预约并视为成功(幂等),
	// created标志告诉调用方本次是否真的新建了预约
	// (统计投影只在created时+1)
	Reserve(ctx context.Context, bookID, userID uint) (r *Reservation, created bool, err error)

	// CancelByID 取消预约
	// 业务规则: 只能取消自己的pending预约
	CancelByID(ctx context.Context, reservationID, userID uint) error

	// FulfillNext 兑现某书队列中最早的pending预约(归还流程调用)
	// 没有等待者时返回nil, nil
	FulfillNext(ctx context.Context, bookID uint) (*Reservation, error)

	// PendingCountForBook 某书的pending预约数
	PendingCountForBook(ctx context.Context, bookID uint) (int64, error)
}

type service struct {
	repo Repository
}

// NewService 创建预约服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Reserve 登记预约
func (s *service) Reserve(ctx context.Context, bookID, userID uint) (*Reservation, bool, error) {
	// 1. 先查:已有pending预约则幂等返回
	existing, err := s.repo.FindPendingForUserAndBook(ctx, bookID, userID)
	if err == nil && existing != nil {
		return existing, false, nil
	}
	if err != nil && err != ErrReservationNotFound {
		return nil, false, err
	}

	// 2. 后插
	r := NewReservation(bookID, userID)
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, false, err
	}
	return r, true, nil
}

// CancelByID 取消预约
func (s *service) CancelByID(ctx context.Context, reservationID, userID uint) error {
	r, err := s.repo.FindByID(ctx, reservationID)
	if err != nil {
		return err
	}

	// 权限检查:只能取消自己的预约
	if !r.IsOwnedBy(userID) {
		return ErrReservationNotFound
	}

	if err := r.Cancel(); err != nil {
		return err
	}
	return s.repo.Update(ctx, r)
}

// FulfillNext 兑现某书队列中最早的pending预约
func (s *service) FulfillNext(ctx context.Context, bookID uint) (*Reservation, error) {
	pending, err := s.repo.ListPendingByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, nil
	}

	next := pending[0]
	if err := next.Fulfill(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// PendingCountForBook 某书的pending预约数
func (s *service) PendingCountForBook(ctx context.Context, bookID uint) (int64, error) {
	return s.repo.CountPendingByBook(ctx, bookID)
}
