package catalog

import (
	"context"
	"time"

	"github.com/xiebiao/unilib/internal/domain/book"
	"github.com/xiebiao/unilib/internal/domain/lending"
	"github.com/xiebiao/unilib/internal/domain/stats"
	apperrors "github.com/xiebiao/unilib/pkg/errors"
)

// DashboardInvalidator 仪表盘缓存失效入口
// 目录的任何写操作都要让缓存的汇总页失效(redis.DashboardCache实现)
type DashboardInvalidator interface {
	Invalidate(ctx context.Context) error
}

// ManageBooksUseCase 目录管理用例(馆员操作:入库/更新/调整副本/下架)
// 设计说明:
// 1. 写路径fail-loud:存储故障直接向调用方返回StoreUnavailable,
//    绝不静默吞掉(读路径的降级策略见query_books.go,两者刻意不同)
// 2. 每次变更都追加一条动态记录并发布目录事件,两者都是
//    best-effort副作用,失败不回滚主操作
type ManageBooksUseCase struct {
	bookService    book.Service
	bookRepo       book.Repository
	lendingRepo    lending.Repository
	statsService   stats.Service
	events         *EventPublisher
	dashboardCache DashboardInvalidator // 可为nil
	storeTimeout   time.Duration
}

// NewManageBooksUseCase 创建目录管理用例
func NewManageBooksUseCase(
	bookService book.Service,
	bookRepo book.Repository,
	lendingRepo lending.Repository,
	statsService stats.Service,
	events *EventPublisher,
	dashboardCache DashboardInvalidator,
	storeTimeout time.Duration,
) *ManageBooksUseCase {
	return &ManageBooksUseCase{
		bookService:    bookService,
		bookRepo:       bookRepo,
		lendingRepo:    lendingRepo,
		statsService:   statsService,
		events:         events,
		dashboardCache: dashboardCache,
		storeTimeout:   storeTimeout,
	}
}

// AddBookRequest 图书入库请求DTO
type AddBookRequest struct {
	ISBN        string
	Title       string
	Author      string
	Publisher   string
	PublishYear int
	Category    string
	Language    string
	Description string
	CoverURL    string
	TotalCopies int
	OperatorID  uint // 操作的馆员用户ID(从JWT中提取)
}

// AddBook 图书入库
func (uc *ManageBooksUseCase) AddBook(ctx context.Context, req AddBookRequest) (*book.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.storeTimeout)
	defer cancel()

	// 1. 业务规则校验与持久化(领域服务负责)
	b, err := uc.bookService.AddBook(ctx, req.ISBN, req.Title, req.Author,
		req.Publisher, req.PublishYear, req.Category, req.Language,
		req.Description, req.CoverURL, req.TotalCopies)
	if err != nil {
		return nil, err
	}

	// 2. 追加动态(best-effort,不回滚入库)
	_ = uc.statsService.RecordActivity(ctx, stats.ActivityBookAdded, b.ID, req.OperatorID, b.Title)

	// 3. 发布目录事件 + 失效仪表盘缓存
	uc.events.Publish(RoutingBookAdded, BookEvent{
		BookID: int64(b.ID), ISBN: b.ISBN, Title: b.Title, Action: "created",
	})
	uc.invalidateDashboard(ctx)

	return b, nil
}

// UpdateBookRequest 更新图书信息请求DTO
// 空字段表示不修改
type UpdateBookRequest struct {
	BookID      uint
	Title       string
	Author      string
	Publisher   string
	Category    string
	Language    string
	Description string
	OperatorID  uint
}

// UpdateBook 更新图书基本信息
func (uc *ManageBooksUseCase) UpdateBook(ctx context.Context, req UpdateBookRequest) (*book.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.storeTimeout)
	defer cancel()

	b, err := uc.bookService.UpdateBookInfo(ctx, req.BookID, req.Title,
		req.Author, req.Publisher, req.Category, req.Language, req.Description)
	if err != nil {
		return nil, err
	}

	_ = uc.statsService.RecordActivity(ctx, stats.ActivityBookUpdated, b.ID, req.OperatorID, b.Title)
	uc.events.Publish(RoutingBookUpdated, BookEvent{
		BookID: int64(b.ID), ISBN: b.ISBN, Title: b.Title, Action: "updated",
	})
	uc.invalidateDashboard(ctx)

	return b, nil
}

// AdjustCopies 调整馆藏副本总数
// 业务规则校验(新总数>=已借出数)由领域实体完成
func (uc *ManageBooksUseCase) AdjustCopies(ctx context.Context, bookID uint, newTotal int, operatorID uint) (*book.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.storeTimeout)
	defer cancel()

	b, err := uc.bookService.AdjustCopies(ctx, bookID, newTotal)
	if err != nil {
		return nil, err
	}

	_ = uc.statsService.RecordActivity(ctx, stats.ActivityBookUpdated, b.ID, operatorID, b.Title)
	uc.events.Publish(RoutingBookUpdated, BookEvent{
		BookID: int64(b.ID), ISBN: b.ISBN, Title: b.Title, Action: "updated",
	})
	uc.invalidateDashboard(ctx)

	return b, nil
}

// DeleteBook 图书下架(软删除)
// 业务规则: 仍有未归还借阅的图书禁止下架(归还流程需要回写副本计数)
func (uc *ManageBooksUseCase) DeleteBook(ctx context.Context, bookID, operatorID uint) error {
	ctx, cancel := context.WithTimeout(ctx, uc.storeTimeout)
	defer cancel()

	// 1. 查询图书(顺便拿到标题用于动态文案)
	b, err := uc.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		return err
	}

	// 2. 防护检查:存在未归还借阅时拒绝删除
	active, err := uc.lendingRepo.CountActiveByBook(ctx, bookID)
	if err != nil {
		return err
	}
	if active > 0 {
		return apperrors.New(apperrors.ErrCodeHasActiveBorrows, "图书仍有未归还的借阅，禁止下架")
	}

	// 3. 软删除
	if err := uc.bookRepo.Delete(ctx, bookID); err != nil {
		return err
	}

	// 4. 副作用
	_ = uc.statsService.RecordActivity(ctx, stats.ActivityBookDeleted, bookID, operatorID, b.Title)
	uc.events.Publish(RoutingBookDeleted, BookEvent{
		BookID: int64(bookID), ISBN: b.ISBN, Title: b.Title, Action: "deleted",
	})
	uc.invalidateDashboard(ctx)

	return nil
}

// invalidateDashboard 失效仪表盘缓存(best-effort)
func (uc *ManageBooksUseCase) invalidateDashboard(ctx context.Context) {
	if uc.dashboardCache == nil {
		return
	}
	_ = uc.dashboardCache.Invalidate(ctx)
}
