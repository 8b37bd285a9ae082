package lending

import (
	"context"
	"time"

	"github.com/xiebiao/unilib/internal/domain/book"
	"github.com/xiebiao/unilib/internal/domain/lending"
)

// QueryBorrowingsUseCase 借阅台账查询用例
// 是否逾期永远在查询时基于asOf计算,台账里没有is_overdue列
type QueryBorrowingsUseCase struct {
	lendingSvc   lending.Service
	bookRepo     book.Repository
	storeTimeout time.Duration
}

// NewQueryBorrowingsUseCase 创建台账查询用例
func NewQueryBorrowingsUseCase(
	lendingSvc lending.Service,
	bookRepo book.Repository,
	storeTimeout time.Duration,
) *QueryBorrowingsUseCase {
	return &QueryBorrowingsUseCase{
		lendingSvc:   lendingSvc,
		bookRepo:     bookRepo,
		storeTimeout: storeTimeout,
	}
}

// BorrowingItem 台账列表项DTO
type BorrowingItem struct {
	ID         uint   `json:"id"`
	TicketNo   string `json:"ticket_no"`
	BookID     uint   `json:"book_id"`
	BookTitle  string `json:"book_title"`
	UserID     uint   `json:"user_id"`
	BorrowDate string `json:"borrow_date"`
	DueDate    string `json:"due_date"`
	ReturnDate string `json:"return_date,omitempty"`
	IsReturned bool   `json:"is_returned"`
	IsOverdue  bool   `json:"is_overdue"`
}

// ListForUser 某用户的全部借阅记录(含历史)
func (uc *QueryBorrowingsUseCase) ListForUser(ctx context.Context, userID uint) ([]BorrowingItem, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.storeTimeout)
	defer cancel()

	borrowings, err := uc.lendingSvc.BorrowingsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.toItems(ctx, borrowings), nil
}

// ListOverdue 截至当前时间已逾期的借阅记录(馆员视图)
func (uc *QueryBorrowingsUseCase) ListOverdue(ctx context.Context) ([]BorrowingItem, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.storeTimeout)
	defer cancel()

	borrowings, err := uc.lendingSvc.OverdueBorrowings(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	return uc.toItems(ctx, borrowings), nil
}

// toItems 转换为DTO,逾期标志在这里计算
// 书名查询失败时降级为空(台账本身是主数据,书名只是展示增强)
func (uc *QueryBorrowingsUseCase) toItems(ctx context.Context, borrowings []*lending.Borrowing) []BorrowingItem {
	now := time.Now()
	items := make([]BorrowingItem, len(borrowings))
	titles := make(map[uint]string)

	for i, b := range borrowings {
		title, ok := titles[b.BookID]
		if !ok {
			if bk, err := uc.bookRepo.FindByID(ctx, b.BookID); err == nil {
				title = bk.Title
			}
			titles[b.BookID] = title
		}

		item := BorrowingItem{
			ID:         b.ID,
			TicketNo:   b.TicketNo,
			BookID:     b.BookID,
			BookTitle:  title,
			UserID:     b.UserID,
			BorrowDate: b.BorrowDate.Format("2006-01-02 15:04:05"),
			DueDate:    b.DueDate.Format("2006-01-02 15:04:05"),
			IsReturned: b.IsReturned,
			IsOverdue:  b.IsOverdue(now),
		}
		if b.ReturnDate != nil {
			item.ReturnDate = b.ReturnDate.Format("2006-01-02 15:04:05")
		}
		items[i] = item
	}
	return items
}
