package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/unilib/internal/domain/reservation"
	apperrors "github.com/xiebiao/unilib/pkg/errors"
)

// reservationRepository 预约仓储实现(MySQL)
type reservationRepository struct {
	db *gorm.DB
}

// NewReservationRepository 创建预约仓储
func NewReservationRepository(db *gorm.DB) reservation.Repository {
	return &reservationRepository{db: db}
}

// Create 创建预约
func (r *reservationRepository) Create(ctx context.Context, res *reservation.Reservation) error {
	model := &ReservationModel{
		BookID: res.BookID,
		UserID: res.UserID,
		Status: string(res.Status),
	}

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建预约失败")
	}

	res.ID = model.ID
	res.CreatedAt = model.CreatedAt
	res.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找预约
func (r *reservationRepository) FindByID(ctx context.Context, id uint) (*reservation.Reservation, error) {
	var model ReservationModel
	err := getDB(ctx, r.db).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, reservation.ErrReservationNotFound
		}
		return nil, apperrors.Wrap(err, "查询预约失败")
	}

	return toReservationEntity(&model), nil
}

// FindPendingForUserAndBook 查找用户对某书的pending预约
// "先查后插"的查询一半:存在即幂等返回,不存在才插入新预约
func (r *reservationRepository) FindPendingForUserAndBook(ctx context.Context, bookID, userID uint) (*reservation.Reservation, error) {
	var model ReservationModel
	err := getDB(ctx, r.db).
		Where("book_id = ? AND user_id = ? AND status = ?", bookID, userID, string(reservation.StatusPending)).
		First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, reservation.ErrReservationNotFound
		}
		return nil, apperrors.Wrap(err, "查询预约失败")
	}

	return toReservationEntity(&model), nil
}

// Update 更新预约(状态流转)
func (r *reservationRepository) Update(ctx context.Context, res *reservation.Reservation) error {
	result := getDB(ctx, r.db).Model(&ReservationModel{}).
		Where("id = ?", res.ID).
		Update("status", string(res.Status))

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新预约失败")
	}
	if result.RowsAffected == 0 {
		return reservation.ErrReservationNotFound
	}
	return nil
}

// ListPendingByBook 某书的pending预约,按创建时间升序(先到先得)
func (r *reservationRepository) ListPendingByBook(ctx context.Context, bookID uint) ([]*reservation.Reservation, error) {
	var models []ReservationModel
	err := getDB(ctx, r.db).
		Where("book_id = ? AND status = ?", bookID, string(reservation.StatusPending)).
		Order("created_at ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询预约列表失败")
	}

	reservations := make([]*reservation.Reservation, len(models))
	for i := range models {
		reservations[i] = toReservationEntity(&models[i])
	}
	return reservations, nil
}

// CountPending pending预约总数
func (r *reservationRepository) CountPending(ctx context.Context) (int64, error) {
	var total int64
	err := getDB(ctx, r.db).Model(&ReservationModel{}).
		Where("status = ?", string(reservation.StatusPending)).
		Count(&total).Error
	if err != nil {
		return 0, apperrors.Wrap(err, "统计预约数失败")
	}
	return total, nil
}

// CountPendingByBook 某书的pending预约数
func (r *reservationRepository) CountPendingByBook(ctx context.Context, bookID uint) (int64, error) {
	var total int64
	err := getDB(ctx, r.db).Model(&ReservationModel{}).
		Where("book_id = ? AND status = ?", bookID, string(reservation.StatusPending)).
		Count(&total).Error
	if err != nil {
		return 0, apperrors.Wrap(err, "统计预约数失败")
	}
	return total, nil
}

// toReservationEntity GORM模型 → 领域实体
func toReservationEntity(model *ReservationModel) *reservation.Reservation {
	return &reservation.Reservation{
		ID:        model.ID,
		BookID:    model.BookID,
		UserID:    model.UserID,
		Status:    reservation.Status(model.Status),
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
