package catalog

import (
	"context"
	"log"
	"time"

	"github.com/xiebiao/unilib/internal/domain/book"
	"github.com/xiebiao/unilib/internal/domain/engagement"
	"github.com/xiebiao/unilib/internal/domain/reservation"
	"github.com/xiebiao/unilib/internal/domain/stats"
	"github.com/xiebiao/unilib/pkg/circuitbreaker"
	"github.com/xiebiao/unilib/pkg/metrics"
)

// QueryBooksUseCase 目录查询用例(检索/过滤/详情)
// 设计说明:
// 1. 读路径fail-soft:存储瞬时故障时返回空结果而不是报错,
//    目录浏览页降级为空列表,好过整页5xx
// 2. 所有读都走熔断器,存储持续故障时快速失败,不让慢查询
//    把连接池拖垮(写路径不走熔断器,写失败必须让调用方知道)
// 3. 详情页的统计投影/互动状态是辅助数据,单独降级为零值
type QueryBooksUseCase struct {
	bookService     book.Service
	reservationRepo reservation.Repository
	engagementSvc   engagement.Service
	statsService    stats.Service
	breaker         *circuitbreaker.CircuitBreaker
	storeTimeout    time.Duration
}

// NewQueryBooksUseCase 创建目录查询用例
func NewQueryBooksUseCase(
	bookService book.Service,
	reservationRepo reservation.Repository,
	engagementSvc engagement.Service,
	statsService stats.Service,
	breaker *circuitbreaker.CircuitBreaker,
	storeTimeout time.Duration,
) *QueryBooksUseCase {
	return &QueryBooksUseCase{
		bookService:     bookService,
		reservationRepo: reservationRepo,
		engagementSvc:   engagementSvc,
		statsService:    statsService,
		breaker:         breaker,
		storeTimeout:    storeTimeout,
	}
}

// BookSummary 列表项DTO
// 列表不展示简介全文,也不逐本查询预约队列,
// 状态只区分available/borrowed(Reserved判定留给详情页)
type BookSummary struct {
	ID              uint   `json:"id"`
	ISBN            string `json:"isbn"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	Category        string `json:"category"`
	Language        string `json:"language"`
	CoverURL        string `json:"cover_url"`
	TotalCopies     int    `json:"total_copies"`
	AvailableCopies int    `json:"available_copies"`
	Status          string `json:"status"`
	Liked           bool   `json:"liked"`     // 当前用户是否已点赞(未登录时恒为false)
	MyRating        int    `json:"my_rating"` // 当前用户的评分(0表示未评分或未登录)
}

// BookDetail 详情DTO
type BookDetail struct {
	BookSummary
	Publisher           string  `json:"publisher"`
	PublishYear         int     `json:"publish_year"`
	Description         string  `json:"description"`
	PendingReservations int64   `json:"pending_reservations"`
	TotalBorrows        int64   `json:"total_borrows"`
	AverageRating       float64 `json:"average_rating"`
	TotalRatings        int64   `json:"total_ratings"`
	TotalLikes          int64   `json:"total_likes"`
	TotalComments       int64   `json:"total_comments"`
	Liked               bool    `json:"liked"`     // 当前用户是否已点赞
	MyRating            int     `json:"my_rating"` // 当前用户的评分(0表示未评分)
}

// Search 搜索图书(标题/作者/分类/简介子串匹配)
// fail-soft: 存储故障或熔断器打开时返回空列表
// userID非0时逐项标注当前用户的点赞/评分状态(标注失败单独降级)
func (uc *QueryBooksUseCase) Search(ctx context.Context, query string, userID uint) []BookSummary {
	ctx, cancel := context.WithTimeout(ctx, uc.storeTimeout)
	defer cancel()

	var books []*book.Book
	err := uc.breaker.Execute(func() error {
		var innerErr error
		books, innerErr = uc.bookService.SearchBooks(ctx, query)
		return innerErr
	})
	uc.recordBreakerResult(err)
	if err != nil {
		log.Printf("目录搜索降级为空结果: %v", err)
		return []BookSummary{}
	}

	return uc.annotateForUser(ctx, toSummaries(books), userID)
}

// List 按条件过滤图书列表
// fail-soft: 同Search
func (uc *QueryBooksUseCase) List(ctx context.Context, params book.ListParams, userID uint) []BookSummary {
	ctx, cancel := context.WithTimeout(ctx, uc.storeTimeout)
	defer cancel()

	var books []*book.Book
	err := uc.breaker.Execute(func() error {
		var innerErr error
		books, innerErr = uc.bookService.ListBooks(ctx, params)
		return innerErr
	})
	uc.recordBreakerResult(err)
	if err != nil {
		log.Printf("目录列表降级为空结果: %v", err)
		return []BookSummary{}
	}

	return uc.annotateForUser(ctx, toSummaries(books), userID)
}

// annotateForUser 给列表项标注当前用户的点赞/评分状态
// 未登录(userID=0)时跳过;批量IN查询一次拿回整页的互动状态,
// 标注失败只降级为未标注,列表本身照常返回
func (uc *QueryBooksUseCase) annotateForUser(ctx context.Context, list []BookSummary, userID uint) []BookSummary {
	if userID == 0 || len(list) == 0 {
		return list
	}

	bookIDs := make([]uint, len(list))
	for i := range list {
		bookIDs[i] = list[i].ID
	}

	states, err := uc.engagementSvc.StatesForUser(ctx, userID, bookIDs)
	if err != nil {
		log.Printf("互动状态标注降级: user=%d err=%v", userID, err)
		return list
	}

	for i := range list {
		if state, ok := states[list[i].ID]; ok {
			list[i].Liked = state.Liked
			if state.Rating != nil {
				list[i].MyRating = state.Rating.Value
			}
		}
	}
	return list
}

// GetDetail 图书详情
// 主记录读取失败时返回错误(NotFound必须如实暴露),
// 统计投影/预约队列/用户互动状态读取失败时各自降级为零值
func (uc *QueryBooksUseCase) GetDetail(ctx context.Context, bookID, userID uint) (*BookDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.storeTimeout)
	defer cancel()

	// 1. 主记录(fail-loud)
	b, err := uc.bookService.GetBookByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	detail := &BookDetail{
		BookSummary: toSummary(b),
		Publisher:   b.Publisher,
		PublishYear: b.PublishYear,
		Description: b.Description,
	}

	// 2. 预约队列长度(降级为0,状态退化为borrowed)
	pending, err := uc.reservationRepo.CountPendingByBook(ctx, bookID)
	if err != nil {
		log.Printf("预约队列查询降级: book=%d err=%v", bookID, err)
		pending = 0
	}
	detail.PendingReservations = pending
	detail.Status = string(b.StatusWith(int(pending)))

	// 3. 统计投影(降级为零值)
	if st, err := uc.statsService.StatisticsForBook(ctx, bookID); err == nil {
		detail.TotalBorrows = st.TotalBorrows
		detail.AverageRating = st.AverageRating
		detail.TotalRatings = st.TotalRatings
		detail.TotalLikes = st.TotalLikes
		detail.TotalComments = st.TotalComments
	} else {
		log.Printf("统计投影查询降级: book=%d err=%v", bookID, err)
	}

	// 4. 当前用户的互动状态(未登录时userID=0,跳过)
	if userID != 0 {
		if state, err := uc.engagementSvc.StateForUser(ctx, bookID, userID); err == nil {
			detail.Liked = state.Liked
			if state.Rating != nil {
				detail.MyRating = state.Rating.Value
			}
		} else {
			log.Printf("互动状态查询降级: book=%d user=%d err=%v", bookID, userID, err)
		}
	}

	return detail, nil
}

// recordBreakerResult 上报熔断器指标
func (uc *QueryBooksUseCase) recordBreakerResult(err error) {
	result := "success"
	switch err {
	case nil:
	case circuitbreaker.ErrOpenState:
		result = "rejected"
	default:
		result = "failure"
	}
	metrics.IncCounterVec(metrics.CircuitBreakerRequests, map[string]string{
		"name":   uc.breaker.Name(),
		"result": result,
	})
}

func toSummary(b *book.Book) BookSummary {
	return BookSummary{
		ID:              b.ID,
		ISBN:            b.ISBN,
		Title:           b.Title,
		Author:          b.Author,
		Category:        b.Category,
		Language:        b.Language,
		CoverURL:        b.CoverURL,
		TotalCopies:     b.TotalCopies,
		AvailableCopies: b.AvailableCopies,
		Status:          string(b.Status()),
	}
}

func toSummaries(books []*book.Book) []BookSummary {
	list := make([]BookSummary, len(books))
	for i, b := range books {
		list[i] = toSummary(b)
	}
	return list
}
