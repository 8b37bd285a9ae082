package lending

import (
	"time"
)

// DefaultLoanPeriod 默认借期
// 业务规则: 借阅时未指定应还日期则默认14天
const DefaultLoanPeriod = 14 * 24 * time.Hour

// Borrowing 借阅记录实体(聚合根)
// 教学要点:
// 1. 借阅记录是台账(ledger):借出时创建,归还时只补写归还字段,其余不可变
// 2. 是否逾期永远在查询时计算,不落库(避免陈旧数据)
// 3. 不直接关联Book对象,只保存BookID(避免跨聚合引用)
type Borrowing struct {
	ID         uint
	TicketNo   string     // 借阅单号(业务主键,全局唯一,用于重试时的幂等核对)
	BookID     uint       // 图书ID
	UserID     uint       // 借阅人用户ID
	BorrowDate time.Time  // 借出日期
	DueDate    time.Time  // 应还日期
	ReturnDate *time.Time // 归还日期(未归还时为nil)
	IsReturned bool       // 是否已归还
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewBorrowing 创建借阅记录(工厂方法)
// dueDate为零值时取默认借期
func NewBorrowing(ticketNo string, bookID, userID uint, dueDate time.Time) *Borrowing {
	now := time.Now()
	if dueDate.IsZero() {
		dueDate = now.Add(DefaultLoanPeriod)
	}
	return &Borrowing{
		TicketNo:   ticketNo,
		BookID:     bookID,
		UserID:     userID,
		BorrowDate: now,
		DueDate:    dueDate,
		IsReturned: false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsOverdue 是否逾期(查询时计算)
// 业务规则: 未归还且应还日期早于asOf
func (b *Borrowing) IsOverdue(asOf time.Time) bool {
	return !b.IsReturned && b.DueDate.Before(asOf)
}

// MarkReturned 归还(领域行为)
// 业务规则: 已归还的记录不允许重复归还
func (b *Borrowing) MarkReturned(at time.Time) error {
	if b.IsReturned {
		return ErrAlreadyReturned
	}
	b.IsReturned = true
	b.ReturnDate = &at
	b.UpdatedAt = at
	return nil
}

// UnmarkReturned 撤销归还(领域行为)
// 业务规则: 仅用于归还Saga失败时的补偿,把台账恢复成未归还状态
func (b *Borrowing) UnmarkReturned(at time.Time) {
	b.IsReturned = false
	b.ReturnDate = nil
	b.UpdatedAt = at
}

// IsOwnedBy 检查借阅记录是否属于指定用户
func (b *Borrowing) IsOwnedBy(userID uint) bool {
	return b.UserID == userID
}
