package reservation

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/xiebiao/unilib/internal/domain/book"
	"github.com/xiebiao/unilib/internal/domain/reservation"
	"github.com/xiebiao/unilib/internal/domain/stats"
	"github.com/xiebiao/unilib/pkg/keylock"
	"github.com/xiebiao/unilib/pkg/metrics"
)

// ReserveUseCase 预约登记用例
// 设计说明:
// 1. 不变量:每个(用户,图书)至多一条pending预约。底层没有针对
//    该条件的原生唯一约束,领域服务用"先查后插"保证,这里再按
//    (图书,用户)粒度加锁把并发窗口压掉——重复点击、双开页面
//    提交都会被串行化,第二次直接命中已有预约,幂等返回
// 2. 预约不改变副本计数,可借状态只由计数器决定
// 3. 新登记成功才累加预约统计(幂等命中不重复计数)
type ReserveUseCase struct {
	bookRepo       book.Repository
	reservationSvc reservation.Service
	statsRepo      stats.Repository
	locker         *keylock.KeyLock
	storeTimeout   time.Duration
}

// NewReserveUseCase 创建预约用例
func NewReserveUseCase(
	bookRepo book.Repository,
	reservationSvc reservation.Service,
	statsRepo stats.Repository,
	locker *keylock.KeyLock,
	storeTimeout time.Duration,
) *ReserveUseCase {
	return &ReserveUseCase{
		bookRepo:       bookRepo,
		reservationSvc: reservationSvc,
		statsRepo:      statsRepo,
		locker:         locker,
		storeTimeout:   storeTimeout,
	}
}

// ReserveResponse 预约响应DTO
type ReserveResponse struct {
	ReservationID uint   `json:"reservation_id"`
	BookID        uint   `json:"book_id"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
}

// Execute 登记预约
// 已有pending预约时返回该预约并视为成功(幂等)
func (uc *ReserveUseCase) Execute(ctx context.Context, bookID, userID uint) (*ReserveResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.storeTimeout)
	defer cancel()

	// 1. 图书必须存在
	if _, err := uc.bookRepo.FindByID(ctx, bookID); err != nil {
		metrics.IncCounterVec(metrics.ReservationsTotal, map[string]string{"result": "failure"})
		return nil, err
	}

	// 2. 按(图书,用户)串行化"先查后插"
	unlock := uc.locker.Lock(fmt.Sprintf("reserve:%d:%d", bookID, userID))
	defer unlock()

	r, created, err := uc.reservationSvc.Reserve(ctx, bookID, userID)
	if err != nil {
		metrics.IncCounterVec(metrics.ReservationsTotal, map[string]string{"result": "failure"})
		return nil, err
	}

	// 3. 新登记才累加统计(幂等命中不重复计数)
	// 统计是派生数据,累加失败不回滚预约本身
	if created {
		if err := uc.statsRepo.AddReservations(ctx, bookID, 1); err != nil {
			log.Printf("预约统计累加失败: book=%d err=%v", bookID, err)
		}
	}

	metrics.IncCounterVec(metrics.ReservationsTotal, map[string]string{"result": "success"})
	return toResponse(r), nil
}

func toResponse(r *reservation.Reservation) *ReserveResponse {
	return &ReserveResponse{
		ReservationID: r.ID,
		BookID:        r.BookID,
		Status:        string(r.Status),
		CreatedAt:     r.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
