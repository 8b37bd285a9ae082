package lending

import (
	"context"
	"log"
	"time"

	"github.com/xiebiao/unilib/internal/domain/book"
	"github.com/xiebiao/unilib/internal/domain/lending"
	"github.com/xiebiao/unilib/internal/domain/reservation"
	"github.com/xiebiao/unilib/pkg/metrics"
	"github.com/xiebiao/unilib/pkg/saga"
)

// ReturnUseCase 归还用例
// 设计说明:
// 1. 归还按(图书,用户)定位最早的未归还借阅(同一用户可借同一本书
//    的多个副本,归还时先还先借出的那条)
// 2. 没有未归还记录时返回NoActiveBorrowing,不碰任何计数
// 3. 归还后若预约队列非空,兑现最早的pending预约(通知等待者)
type ReturnUseCase struct {
	bookRepo       book.Repository
	lendingRepo    lending.Repository
	reservationSvc reservation.Service
	storeTimeout   time.Duration
}

// NewReturnUseCase 创建归还用例
func NewReturnUseCase(
	bookRepo book.Repository,
	lendingRepo lending.Repository,
	reservationSvc reservation.Service,
	storeTimeout time.Duration,
) *ReturnUseCase {
	return &ReturnUseCase{
		bookRepo:       bookRepo,
		lendingRepo:    lendingRepo,
		reservationSvc: reservationSvc,
		storeTimeout:   storeTimeout,
	}
}

// ReturnResponse 归还响应DTO
type ReturnResponse struct {
	TicketNo   string `json:"ticket_no"`
	BookID     uint   `json:"book_id"`
	ReturnDate string `json:"return_date"`
	WasOverdue bool   `json:"was_overdue"` // 归还时是否已逾期
}

// Execute 执行归还
// 归还和借阅一样是两步写(台账补写 + 副本计数),同样用Saga串起来:
// 若补写台账后副本计数写失败,补偿会把台账恢复成未归还状态,
// 否则这个副本就永久丢失,而且重试还会报NoActiveBorrowing
func (uc *ReturnUseCase) Execute(ctx context.Context, bookID, userID uint) (*ReturnResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.storeTimeout)
	defer cancel()

	// 1. 定位最早的未归还借阅
	// 不存在时Repository返回ErrNoActiveBorrowing,直接透传
	borrowing, err := uc.lendingRepo.FindActiveForUserAndBook(ctx, bookID, userID)
	if err != nil {
		metrics.IncCounterVec(metrics.ReturnsTotal, map[string]string{"result": "failure"})
		return nil, err
	}

	now := time.Now()
	wasOverdue := borrowing.IsOverdue(now)

	// 2. 组装Saga
	sg := saga.NewSaga(uc.storeTimeout)

	// 步骤1:补写归还字段
	// 补偿:撤销归还标记,台账恢复为未归还(这样重试仍能找到这条记录)
	sg.AddStep("补写归还字段",
		func(ctx context.Context) error {
			if err := borrowing.MarkReturned(now); err != nil {
				return err
			}
			return uc.lendingRepo.Update(ctx, borrowing)
		},
		func(ctx context.Context) error {
			borrowing.UnmarkReturned(time.Now())
			return uc.lendingRepo.Update(ctx, borrowing)
		},
	)

	// 步骤2:归还副本(原子UPDATE,上限守卫防止计数超过馆藏总数)
	sg.AddStep("归还副本",
		func(ctx context.Context) error {
			return uc.bookRepo.UpdateAvailableCopies(ctx, bookID, +1)
		},
		nil, // 最后一步无需补偿
	)

	// 3. 执行
	if err := sg.Execute(ctx); err != nil {
		metrics.IncCounterVec(metrics.ReturnsTotal, map[string]string{"result": "failure"})
		metrics.IncCounterVec(metrics.SagaExecutionsTotal, map[string]string{"result": "failure"})
		return nil, err
	}
	metrics.IncCounterVec(metrics.SagaExecutionsTotal, map[string]string{"result": "success"})

	// 4. 兑现预约队列中最早的等待者(best-effort)
	// 兑现失败不回滚归还:书已经还了,预约留在队列里等下次归还
	if fulfilled, err := uc.reservationSvc.FulfillNext(ctx, bookID); err != nil {
		log.Printf("预约兑现失败: book=%d err=%v", bookID, err)
	} else if fulfilled != nil {
		log.Printf("预约已兑现: book=%d reservation=%d user=%d", bookID, fulfilled.ID, fulfilled.UserID)
	}

	metrics.IncCounterVec(metrics.ReturnsTotal, map[string]string{"result": "success"})
	metrics.ActiveBorrowings.Dec()

	return &ReturnResponse{
		TicketNo:   borrowing.TicketNo,
		BookID:     borrowing.BookID,
		ReturnDate: now.Format("2006-01-02 15:04:05"),
		WasOverdue: wasOverdue,
	}, nil
}
