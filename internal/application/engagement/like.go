package engagement

import (
	"context"
	"log"
	"time"

	"github.com/xiebiao/unilib/internal/domain/book"
	"github.com/xiebiao/unilib/internal/domain/engagement"
	"github.com/xiebiao/unilib/internal/domain/stats"
	"github.com/xiebiao/unilib/pkg/metrics"
)

// LikeUseCase 点赞/取消点赞用例
// 设计说明:
// 1. 两个方向都是幂等操作:重复点赞、重复取消都按成功处理
// 2. 点赞数只在状态真的变化时±1(changed标志),
//    这样刷接口不会把计数刷飞
// 3. 计数有下限0守卫(存储层GREATEST),取消点赞不会扣成负数
type LikeUseCase struct {
	bookRepo      book.Repository
	engagementSvc engagement.Service
	statsRepo     stats.Repository
	storeTimeout  time.Duration
}

// NewLikeUseCase 创建点赞用例
func NewLikeUseCase(
	bookRepo book.Repository,
	engagementSvc engagement.Service,
	statsRepo stats.Repository,
	storeTimeout time.Duration,
) *LikeUseCase {
	return &LikeUseCase{
		bookRepo:      bookRepo,
		engagementSvc: engagementSvc,
		statsRepo:     statsRepo,
		storeTimeout:  storeTimeout,
	}
}

// LikeResponse 点赞响应DTO
type LikeResponse struct {
	BookID  uint `json:"book_id"`
	Liked   bool `json:"liked"`   // 操作后的点赞状态
	Changed bool `json:"changed"` // 本次是否真的发生了变化
}

// Like 点赞(幂等)
func (uc *LikeUseCase) Like(ctx context.Context, bookID, userID uint) (*LikeResponse, error) {
	return uc.execute(ctx, bookID, userID, true)
}

// Unlike 取消点赞(幂等)
func (uc *LikeUseCase) Unlike(ctx context.Context, bookID, userID uint) (*LikeResponse, error) {
	return uc.execute(ctx, bookID, userID, false)
}

func (uc *LikeUseCase) execute(ctx context.Context, bookID, userID uint, like bool) (*LikeResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.storeTimeout)
	defer cancel()

	op := "like"
	if !like {
		op = "unlike"
	}

	// 1. 图书必须存在
	if _, err := uc.bookRepo.FindByID(ctx, bookID); err != nil {
		metrics.IncCounterVec(metrics.EngagementOpsTotal, map[string]string{"op": op, "result": "failure"})
		return nil, err
	}

	// 2. 幂等的状态变更
	var (
		changed bool
		err     error
	)
	if like {
		changed, err = uc.engagementSvc.Like(ctx, bookID, userID)
	} else {
		changed, err = uc.engagementSvc.Unlike(ctx, bookID, userID)
	}
	if err != nil {
		metrics.IncCounterVec(metrics.EngagementOpsTotal, map[string]string{"op": op, "result": "failure"})
		return nil, err
	}

	// 3. 状态真的变了才动计数
	if changed {
		delta := int64(1)
		if !like {
			delta = -1
		}
		if err := uc.statsRepo.AddLikes(ctx, bookID, delta); err != nil {
			// 计数是派生数据,失败不回滚点赞状态
			log.Printf("点赞计数更新失败: book=%d delta=%d err=%v", bookID, delta, err)
		}
	}

	metrics.IncCounterVec(metrics.EngagementOpsTotal, map[string]string{"op": op, "result": "success"})
	return &LikeResponse{BookID: bookID, Liked: like, Changed: changed}, nil
}
