package engagement

import (
	"context"
	"time"

	"github.com/xiebiao/unilib/internal/domain/book"
	"github.com/xiebiao/unilib/internal/domain/engagement"
	"github.com/xiebiao/unilib/internal/domain/stats"
	"github.com/xiebiao/unilib/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/unilib/pkg/metrics"
)

// RateUseCase 评分用例
// 教学要点:评分与统计回写的一致性
//
// 评分流程涉及三次写:
// 1. 评分记录插入或就地更新
// 2. 评论保存(可选,同键覆盖)
// 3. 评分均值全量重算后回写统计投影
//
// 三者放在一个数据库事务里:均值是按全量评分AVG()算出来的,
// 如果评分写入和均值回写分开提交,中间窗口读到的均值是旧的,
// 且回写失败会留下永久性的偏差。全量重算而不是增量近似,
// 意味着哪怕投影曾经脏过,下一次评分也会把它修正回来
type RateUseCase struct {
	bookRepo      book.Repository
	engagementSvc engagement.Service
	statsRepo     stats.Repository
	txManager     *mysql.TxManager
	storeTimeout  time.Duration
}

// NewRateUseCase 创建评分用例
func NewRateUseCase(
	bookRepo book.Repository,
	engagementSvc engagement.Service,
	statsRepo stats.Repository,
	txManager *mysql.TxManager,
	storeTimeout time.Duration,
) *RateUseCase {
	return &RateUseCase{
		bookRepo:      bookRepo,
		engagementSvc: engagementSvc,
		statsRepo:     statsRepo,
		txManager:     txManager,
		storeTimeout:  storeTimeout,
	}
}

// RateRequest 评分请求DTO
type RateRequest struct {
	BookID  uint
	UserID  uint
	Value   int    // 评分值[1,5]
	Comment string // 可选评论
}

// RateResponse 评分响应DTO
type RateResponse struct {
	BookID        uint    `json:"book_id"`
	Value         int     `json:"value"`
	AverageRating float64 `json:"average_rating"`
	TotalRatings  int64   `json:"total_ratings"`
}

// Execute 执行评分
func (uc *RateUseCase) Execute(ctx context.Context, req RateRequest) (*RateResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.storeTimeout)
	defer cancel()

	// 1. 图书必须存在
	if _, err := uc.bookRepo.FindByID(ctx, req.BookID); err != nil {
		metrics.IncCounterVec(metrics.EngagementOpsTotal, map[string]string{"op": "rate", "result": "failure"})
		return nil, err
	}

	// 2. 评分写入 + 均值重算 + 投影回写,一个事务内完成
	var (
		rating  *engagement.Rating
		summary engagement.RatingSummary
	)
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		var innerErr error
		rating, summary, innerErr = uc.engagementSvc.Rate(txCtx, req.BookID, req.UserID, req.Value, req.Comment)
		if innerErr != nil {
			return innerErr
		}
		return uc.statsRepo.SetRating(txCtx, req.BookID, summary.Average, summary.Count)
	})
	if err != nil {
		metrics.IncCounterVec(metrics.EngagementOpsTotal, map[string]string{"op": "rate", "result": "failure"})
		return nil, err
	}

	// 3. 评论落库成功时评论计数也要跟上
	// 评论是同键覆盖,计数用真实行数回写而不是盲目+1
	if req.Comment != "" {
		uc.syncCommentCount(ctx, req.BookID)
	}

	metrics.IncCounterVec(metrics.EngagementOpsTotal, map[string]string{"op": "rate", "result": "success"})
	return &RateResponse{
		BookID:        req.BookID,
		Value:         rating.Value,
		AverageRating: summary.Average,
		TotalRatings:  summary.Count,
	}, nil
}

// syncCommentCount 按真实行数回写评论计数(best-effort)
func (uc *RateUseCase) syncCommentCount(ctx context.Context, bookID uint) {
	count, err := uc.engagementSvc.CommentsCount(ctx, bookID)
	if err != nil {
		return
	}
	current, err := uc.statsRepo.FindByBook(ctx, bookID)
	if err != nil {
		return
	}
	if delta := count - current.TotalComments; delta != 0 {
		_ = uc.statsRepo.AddComments(ctx, bookID, delta)
	}
}
