package lending

import (
	"context"
	"time"
)

// Service 借阅台账领域服务
// 设计说明:
// 1. 台账对外只提供派生查询,借出/归还的编排在application层
// 2. IsOverdue永远在查询时计算,这里统一注入asOf时间,便于测试
type Service interface {
	// ActiveBorrowings 所有未归还的借阅记录
	ActiveBorrowings(ctx context.Context) ([]*Borrowing, error)

	// OverdueBorrowings 截至asOf已逾期的借阅记录
	OverdueBorrowings(ctx context.Context, asOf time.Time) ([]*Borrowing, error)

	// BorrowingsForUser 某用户的全部借阅记录
	BorrowingsForUser(ctx context.Context, userID uint) ([]*Borrowing, error)

	// BorrowingsForBook 某图书的全部借阅记录
	BorrowingsForBook(ctx context.Context, bookID uint) ([]*Borrowing, error)
}

type service struct {
	repo Repository
}

// NewService 创建借阅台账服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// ActiveBorrowings 所有未归还的借阅记录
func (s *service) ActiveBorrowings(ctx context.Context) ([]*Borrowing, error) {
	return s.repo.ListActive(ctx)
}

// OverdueBorrowings 截至asOf已逾期的借阅记录
func (s *service) OverdueBorrowings(ctx context.Context, asOf time.Time) ([]*Borrowing, error) {
	if asOf.IsZero() {
		asOf = time.Now()
	}
	return s.repo.ListOverdue(ctx, asOf)
}

// BorrowingsForUser 某用户的全部借阅记录
func (s *service) BorrowingsForUser(ctx context.Context, userID uint) ([]*Borrowing, error) {
	return s.repo.ListByUserID(ctx, userID)
}

// BorrowingsForBook 某图书的全部借阅记录
func (s *service) BorrowingsForBook(ctx context.Context, bookID uint) ([]*Borrowing, error) {
	return s.repo.ListByBookID(ctx, bookID)
}
