package lending

import (
	"context"
	"time"
)

// Repository 借阅台账仓储接口(依赖倒置原则)
// 教学要点:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 支持事务操作(通过context传递事务)
// 3. 逾期判断基于asOf参数在查询时完成,台账里不存is_overdue列
type Repository interface {
	// Create 创建借阅记录
	Create(ctx context.Context, borrowing *Borrowing) error

	// FindByID 根据ID查找借阅记录
	FindByID(ctx context.Context, id uint) (*Borrowing, error)

	// FindByTicketNo 根据借阅单号查找借阅记录
	// 用于借阅重试前的幂等核对(单号已存在说明上次其实成功了)
	FindByTicketNo(ctx context.Context, ticketNo string) (*Borrowing, error)

	// FindActiveForUserAndBook 查找用户对某书最早的未归还借阅
	// 不存在时返回ErrNoActiveBorrowing
	FindActiveForUserAndBook(ctx context.Context, bookID, userID uint) (*Borrowing, error)

	// Update 更新借阅记录(仅用于补写归还字段)
	Update(ctx context.Context, borrowing *Borrowing) error

	// ListActive 所有未归还的借阅记录
	ListActive(ctx context.Context) ([]*Borrowing, error)

	// ListOverdue 截至asOf已逾期的借阅记录(未归还且应还日期早于asOf)
	ListOverdue(ctx context.Context, asOf time.Time) ([]*Borrowing, error)

	// ListByUserID 查询用户的借阅记录(含历史)
	ListByUserID(ctx context.Context, userID uint) ([]*Borrowing, error)

	// ListByBookID 查询图书的借阅记录(含历史)
	ListByBookID(ctx context.Context, bookID uint) ([]*Borrowing, error)

	// CountActive 未归还借阅总数(仪表盘用)
	CountActive(ctx context.Context) (int64, error)

	// CountActiveByBook 某书未归还借阅数(删除图书前的防护检查)
	CountActiveByBook(ctx context.Context, bookID uint) (int64, error)

	// CountActiveByUser 某用户未归还借阅数(活跃用户标注)
	CountActiveByUser(ctx context.Context, userID uint) (int64, error)
}
