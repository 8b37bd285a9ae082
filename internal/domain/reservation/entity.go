package reservation

import (
	"time"
)

// Status 预约状态
type Status string

const (
	StatusPending   Status = "pending"   // 等待图书可借
	StatusFulfilled Status = "fulfilled" // 已兑现(图书归还后轮到该用户)
	StatusCancelled Status = "cancelled" // 已取消
)

// Reservation 预约(兴趣登记)实体
// 设计说明:
// 1. 用户对当前不可借图书登记兴趣,与借阅台账相互独立
// 2. 不变量: 每个(用户,图书)至多一条pending记录
// 3. 兑现/取消都不直接改动副本计数,可借状态只由计数器决定
type Reservation struct {
	ID        uint
	BookID    uint   // 图书ID
	UserID    uint   // 预约人用户ID
	Status    Status // 预约状态
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewReservation 创建预约(工厂方法),初始状态为pending
func NewReservation(bookID, userID uint) *Reservation {
	now := time.Now()
	return &Reservation{
		BookID:    bookID,
		UserID:    userID,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsPending 是否处于等待状态
func (r *Reservation) IsPending() bool {
	return r.Status == StatusPending
}

// Cancel 取消预约(领域行为)
// 业务规则: 只有pending状态可以取消
func (r *Reservation) Cancel() error {
	if r.Status != StatusPending {
		return ErrNotPending
	}
	r.Status = StatusCancelled
	r.UpdatedAt = time.Now()
	return nil
}

// Fulfill 兑现预约(领域行为)
func (r *Reservation) Fulfill() error {
	if r.Status != StatusPending {
		return ErrNotPending
	}
	r.Status = StatusFulfilled
	r.UpdatedAt = time.Now()
	return nil
}

// IsOwnedBy 检查预约是否属于指定用户
func (r *Reservation) IsOwnedBy(userID uint) bool {
	return r.UserID == userID
}
