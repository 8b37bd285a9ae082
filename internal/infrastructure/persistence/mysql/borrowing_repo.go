package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/xiebiao/unilib/internal/domain/lending"
	apperrors "github.com/xiebiao/unilib/pkg/errors"
)

// borrowingRepository 借阅台账仓储实现(MySQL)
// 设计说明:
// 1. 借阅记录只增不删:借出时插入,归还时补写归还字段
// 2. "未归还"统一用is_returned = false表达,逾期在查询时算
type borrowingRepository struct {
	db *gorm.DB
}

// NewBorrowingRepository 创建借阅台账仓储
func NewBorrowingRepository(db *gorm.DB) lending.Repository {
	return &borrowingRepository{db: db}
}

// Create 创建借阅记录
func (r *borrowingRepository) Create(ctx context.Context, b *lending.Borrowing) error {
	model := &BorrowingModel{
		TicketNo:   b.TicketNo,
		BookID:     b.BookID,
		UserID:     b.UserID,
		BorrowDate: b.BorrowDate,
		DueDate:    b.DueDate,
		ReturnDate: b.ReturnDate,
		IsReturned: b.IsReturned,
	}

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建借阅记录失败")
	}

	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找借阅记录
func (r *borrowingRepository) FindByID(ctx context.Context, id uint) (*lending.Borrowing, error) {
	var model BorrowingModel
	err := getDB(ctx, r.db).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, lending.ErrBorrowingNotFound
		}
		return nil, apperrors.Wrap(err, "查询借阅记录失败")
	}

	return toBorrowingEntity(&model), nil
}

// FindByTicketNo 根据借阅单号查找借阅记录
func (r *borrowingRepository) FindByTicketNo(ctx context.Context, ticketNo string) (*lending.Borrowing, error) {
	var model BorrowingModel
	err := getDB(ctx, r.db).Where("ticket_no = ?", ticketNo).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, lending.ErrBorrowingNotFound
		}
		return nil, apperrors.Wrap(err, "查询借阅记录失败")
	}

	return toBorrowingEntity(&model), nil
}

// FindActiveForUserAndBook 查找用户对某书最早的未归还借阅
// 同一用户同一本书可以借多个副本,归还时按借出顺序消账
func (r *borrowingRepository) FindActiveForUserAndBook(ctx context.Context, bookID, userID uint) (*lending.Borrowing, error) {
	var model BorrowingModel
	err := getDB(ctx, r.db).
		Where("book_id = ? AND user_id = ? AND is_returned = ?", bookID, userID, false).
		Order("borrow_date ASC, id ASC").
		First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, lending.ErrNoActiveBorrowing
		}
		return nil, apperrors.Wrap(err, "查询借阅记录失败")
	}

	return toBorrowingEntity(&model), nil
}

// Update 更新借阅记录(仅用于补写归还字段)
func (r *borrowingRepository) Update(ctx context.Context, b *lending.Borrowing) error {
	result := getDB(ctx, r.db).Model(&BorrowingModel{}).
		Where("id = ?", b.ID).
		Updates(map[string]interface{}{
			"is_returned": b.IsReturned,
			"return_date": b.ReturnDate,
		})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新借阅记录失败")
	}
	if result.RowsAffected == 0 {
		return lending.ErrBorrowingNotFound
	}
	return nil
}

// ListActive 所有未归还的借阅记录
func (r *borrowingRepository) ListActive(ctx context.Context) ([]*lending.Borrowing, error) {
	var models []BorrowingModel
	err := getDB(ctx, r.db).
		Where("is_returned = ?", false).
		Order("borrow_date ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询借阅记录失败")
	}
	return toBorrowingEntities(models), nil
}

// ListOverdue 截至asOf已逾期的借阅记录
func (r *borrowingRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]*lending.Borrowing, error) {
	var models []BorrowingModel
	err := getDB(ctx, r.db).
		Where("is_returned = ? AND due_date < ?", false, asOf).
		Order("due_date ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询逾期借阅失败")
	}
	return toBorrowingEntities(models), nil
}

// ListByUserID 查询用户的借阅记录(含历史)
func (r *borrowingRepository) ListByUserID(ctx context.Context, userID uint) ([]*lending.Borrowing, error) {
	var models []BorrowingModel
	err := getDB(ctx, r.db).
		Where("user_id = ?", userID).
		Order("borrow_date DESC, id DESC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询借阅记录失败")
	}
	return toBorrowingEntities(models), nil
}

// ListByBookID 查询图书的借阅记录(含历史)
func (r *borrowingRepository) ListByBookID(ctx context.Context, bookID uint) ([]*lending.Borrowing, error) {
	var models []BorrowingModel
	err := getDB(ctx, r.db).
		Where("book_id = ?", bookID).
		Order("borrow_date DESC, id DESC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询借阅记录失败")
	}
	return toBorrowingEntities(models), nil
}

// CountActive 未归还借阅总数
func (r *borrowingRepository) CountActive(ctx context.Context) (int64, error) {
	var total int64
	err := getDB(ctx, r.db).Model(&BorrowingModel{}).
		Where("is_returned = ?", false).
		Count(&total).Error
	if err != nil {
		return 0, apperrors.Wrap(err, "统计借阅数失败")
	}
	return total, nil
}

// CountActiveByBook 某书未归还借阅数
func (r *borrowingRepository) CountActiveByBook(ctx context.Context, bookID uint) (int64, error) {
	var total int64
	err := getDB(ctx, r.db).Model(&BorrowingModel{}).
		Where("book_id = ? AND is_returned = ?", bookID, false).
		Count(&total).Error
	if err != nil {
		return 0, apperrors.Wrap(err, "统计借阅数失败")
	}
	return total, nil
}

// CountActiveByUser 某用户未归还借阅数
func (r *borrowingRepository) CountActiveByUser(ctx context.Context, userID uint) (int64, error) {
	var total int64
	err := getDB(ctx, r.db).Model(&BorrowingModel{}).
		Where("user_id = ? AND is_returned = ?", userID, false).
		Count(&total).Error
	if err != nil {
		return 0, apperrors.Wrap(err, "统计借阅数失败")
	}
	return total, nil
}

// toBorrowingEntity GORM模型 → 领域实体
func toBorrowingEntity(model *BorrowingModel) *lending.Borrowing {
	return &lending.Borrowing{
		ID:         model.ID,
		TicketNo:   model.TicketNo,
		BookID:     model.BookID,
		UserID:     model.UserID,
		BorrowDate: model.BorrowDate,
		DueDate:    model.DueDate,
		ReturnDate: model.ReturnDate,
		IsReturned: model.IsReturned,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

func toBorrowingEntities(models []BorrowingModel) []*lending.Borrowing {
	borrowings := make([]*lending.Borrowing, len(models))
	for i := range models {
		borrowings[i] = toBorrowingEntity(&models[i])
	}
	return borrowings
}
