package lending

import (
	"context"
	"time"

	"github.com/xiebiao/unilib/internal/domain/book"
	"github.com/xiebiao/unilib/internal/domain/lending"
	"github.com/xiebiao/unilib/internal/domain/stats"
	"github.com/xiebiao/unilib/pkg/metrics"
	"github.com/xiebiao/unilib/pkg/saga"
)

// BorrowUseCase 借阅用例
// 教学要点:这是整个项目最核心的用例之一
// 涉及:Saga补偿事务、并发控制、派生数据维护
type BorrowUseCase struct {
	bookRepo     book.Repository
	lendingRepo  lending.Repository
	statsRepo    stats.Repository
	storeTimeout time.Duration
}

// NewBorrowUseCase 创建借阅用例
func NewBorrowUseCase(
	bookRepo book.Repository,
	lendingRepo lending.Repository,
	statsRepo stats.Repository,
	storeTimeout time.Duration,
) *BorrowUseCase {
	return &BorrowUseCase{
		bookRepo:     bookRepo,
		lendingRepo:  lendingRepo,
		statsRepo:    statsRepo,
		storeTimeout: storeTimeout,
	}
}

// BorrowRequest 借阅请求DTO
type BorrowRequest struct {
	BookID  uint
	UserID  uint      // 借阅人(从JWT中提取)
	DueDate time.Time // 应还日期(零值表示取默认借期)
}

// BorrowResponse 借阅响应DTO
type BorrowResponse struct {
	BorrowingID uint   `json:"borrowing_id"`
	TicketNo    string `json:"ticket_no"`
	BookID      uint   `json:"book_id"`
	BorrowDate  string `json:"borrow_date"`
	DueDate     string `json:"due_date"`
}

// Execute 执行借阅
// 核心问题:并发借阅超借
// 场景:某书只剩1个可借副本,10人同时借阅
// 错误实现:
//  1. 查询可借副本 → 1
//  2. 判断够不够 → 够
//  3. 扣减 → available = available - 1
//     结果:10个请求都通过了步骤2,计数被扣成负数
//
// 正确实现:条件原子UPDATE
//
//	UPDATE books SET available_copies = available_copies - 1
//	WHERE id = ? AND available_copies - 1 >= 0
//
// 守卫条件不满足时影响行数为0,据此返回ErrNotAvailable,
// 此时台账和统计都还没碰,不会留下半截记录
//
// 借阅整体是一个Saga:
// 扣减可借副本 → 写入借阅台账 → 累加借阅统计
// 任何一步失败,逆序补偿已完成的步骤(作废台账、归还副本),
// 对外整个借阅要么全部完成,要么等价于从未发生
func (uc *BorrowUseCase) Execute(ctx context.Context, req BorrowRequest) (*BorrowResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.storeTimeout)
	defer cancel()

	start := time.Now()

	// 1. 参数校验
	if !req.DueDate.IsZero() && req.DueDate.Before(time.Now()) {
		return nil, lending.ErrInvalidDueDate
	}

	// 2. 前置检查:图书必须存在(NotFound要先于NotAvailable暴露)
	if _, err := uc.bookRepo.FindByID(ctx, req.BookID); err != nil {
		metrics.IncCounterVec(metrics.BorrowsTotal, map[string]string{"result": "failure"})
		return nil, err
	}

	// 3. 组装Saga
	ticketNo := lending.GenerateTicketNo()
	borrowing := lending.NewBorrowing(ticketNo, req.BookID, req.UserID, req.DueDate)

	sg := saga.NewSaga(uc.storeTimeout)

	// 步骤1:扣减可借副本(原子UPDATE,守卫条件防超借)
	sg.AddStep("扣减可借副本",
		func(ctx context.Context) error {
			return uc.bookRepo.UpdateAvailableCopies(ctx, req.BookID, -1)
		},
		func(ctx context.Context) error {
			return uc.bookRepo.UpdateAvailableCopies(ctx, req.BookID, +1)
		},
	)

	// 步骤2:写入借阅台账
	// 补偿:台账是追加型数据,作废方式是立即标记归还
	sg.AddStep("写入借阅台账",
		func(ctx context.Context) error {
			return uc.lendingRepo.Create(ctx, borrowing)
		},
		func(ctx context.Context) error {
			if err := borrowing.MarkReturned(time.Now()); err != nil {
				return err
			}
			return uc.lendingRepo.Update(ctx, borrowing)
		},
	)

	// 步骤3:累加借阅统计(最后一步,失败概率最低的放最后)
	sg.AddStep("累加借阅统计",
		func(ctx context.Context) error {
			return uc.statsRepo.AddBorrows(ctx, req.BookID, 1)
		},
		nil, // 最后一步无需补偿
	)

	// 4. 执行
	if err := sg.Execute(ctx); err != nil {
		metrics.IncCounterVec(metrics.BorrowsTotal, map[string]string{"result": "failure"})
		metrics.IncCounterVec(metrics.SagaExecutionsTotal, map[string]string{"result": "failure"})
		return nil, err
	}

	metrics.IncCounterVec(metrics.BorrowsTotal, map[string]string{"result": "success"})
	metrics.IncCounterVec(metrics.SagaExecutionsTotal, map[string]string{"result": "success"})
	metrics.ObserveHistogram(metrics.BorrowDuration, time.Since(start).Seconds())
	metrics.ActiveBorrowings.Inc()

	return &BorrowResponse{
		BorrowingID: borrowing.ID,
		TicketNo:    borrowing.TicketNo,
		BookID:      borrowing.BookID,
		BorrowDate:  borrowing.BorrowDate.Format("2006-01-02 15:04:05"),
		DueDate:     borrowing.DueDate.Format("2006-01-02 15:04:05"),
	}, nil
}
