package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/unilib/internal/domain/stats"
	apperrors "github.com/xiebiao/unilib/pkg/errors"
)

// statsRepository 统计投影仓储实现(MySQL)
// 设计说明:
// 1. 所有Add*方法都是原子UPDATE(SET x = GREATEST(x + ?, 0)),
//    并发增减不会丢更新,计数也永不为负
// 2. 投影行按bookID懒创建:第一次增减前先ON DUPLICATE KEY兜底补行
type statsRepository struct {
	db *gorm.DB
}

// NewStatsRepository 创建统计投影仓储
func NewStatsRepository(db *gorm.DB) stats.Repository {
	return &statsRepository{db: db}
}

// FindByBook 某书的统计投影,不存在时返回零值投影(不报错)
func (r *statsRepository) FindByBook(ctx context.Context, bookID uint) (*stats.BookStatistics, error) {
	var model BookStatisticsModel
	err := getDB(ctx, r.db).Where("book_id = ?", bookID).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 没有任何互动的图书:全零投影
			return &stats.BookStatistics{BookID: bookID}, nil
		}
		return nil, apperrors.Wrap(err, "查询图书统计失败")
	}

	return toStatisticsEntity(&model), nil
}

// AddBorrows 累计借阅次数增减
func (r *statsRepository) AddBorrows(ctx context.Context, bookID uint, delta int64) error {
	return r.addCounter(ctx, bookID, "total_borrows", delta)
}

// AddReservations 累计预约次数增减
func (r *statsRepository) AddReservations(ctx context.Context, bookID uint, delta int64) error {
	return r.addCounter(ctx, bookID, "total_reservations", delta)
}

// AddLikes 点赞数增减
func (r *statsRepository) AddLikes(ctx context.Context, bookID uint, delta int64) error {
	return r.addCounter(ctx, bookID, "total_likes", delta)
}

// AddComments 评论数增减
func (r *statsRepository) AddComments(ctx context.Context, bookID uint, delta int64) error {
	return r.addCounter(ctx, bookID, "total_comments", delta)
}

// addCounter 计数器原子增减
// UPDATE book_statistics SET col = GREATEST(col + ?, 0) WHERE book_id = ?
// GREATEST兜底:补偿回退多扣时计数落在0,不会变负
func (r *statsRepository) addCounter(ctx context.Context, bookID uint, column string, delta int64) error {
	db := getDB(ctx, r.db)

	// 1. 懒创建投影行(已存在时no-op)
	if err := r.ensureRow(db, bookID); err != nil {
		return err
	}

	// 2. 原子增减
	err := db.Model(&BookStatisticsModel{}).
		Where("book_id = ?", bookID).
		Update(column, gorm.Expr("GREATEST("+column+" + ?, 0)", delta)).Error
	if err != nil {
		return apperrors.Wrap(err, "更新图书统计失败")
	}
	return nil
}

// SetRating 回写评分均值与条数(全量重算后的结果)
func (r *statsRepository) SetRating(ctx context.Context, bookID uint, average float64, count int64) error {
	db := getDB(ctx, r.db)

	if err := r.ensureRow(db, bookID); err != nil {
		return err
	}

	err := db.Model(&BookStatisticsModel{}).
		Where("book_id = ?", bookID).
		Updates(map[string]interface{}{
			"average_rating": average,
			"total_ratings":  count,
		}).Error
	if err != nil {
		return apperrors.Wrap(err, "更新评分统计失败")
	}
	return nil
}

// TopBorrowed 借阅次数最多的前n本
// 并列时按图书入库顺序(books.id升序):保证榜单排序稳定可复现
// 从books侧LEFT JOIN:没有统计投影行的图书视为0次借阅,
// 馆藏不足n本热门书时榜单用它们补齐,而不是凭空缩短
func (r *statsRepository) TopBorrowed(ctx context.Context, n int) ([]*stats.BookStatistics, error) {
	var models []BookStatisticsModel
	err := getDB(ctx, r.db).Model(&BookModel{}).
		Select(`books.id AS book_id,
			COALESCE(book_statistics.total_borrows, 0) AS total_borrows,
			COALESCE(book_statistics.total_reservations, 0) AS total_reservations,
			COALESCE(book_statistics.average_rating, 0) AS average_rating,
			COALESCE(book_statistics.total_ratings, 0) AS total_ratings,
			COALESCE(book_statistics.total_likes, 0) AS total_likes,
			COALESCE(book_statistics.total_comments, 0) AS total_comments`).
		Joins("LEFT JOIN book_statistics ON book_statistics.book_id = books.id").
		Order("COALESCE(book_statistics.total_borrows, 0) DESC, books.id ASC").
		Limit(n).
		Scan(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询借阅排行失败")
	}

	result := make([]*stats.BookStatistics, len(models))
	for i := range models {
		result[i] = toStatisticsEntity(&models[i])
	}
	return result, nil
}

// CreateActivity 记录一条动态
func (r *statsRepository) CreateActivity(ctx context.Context, activity *stats.Activity) error {
	model := &ActivityModel{
		Type:   string(activity.Type),
		BookID: activity.BookID,
		UserID: activity.UserID,
		Detail: activity.Detail,
	}

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "记录动态失败")
	}

	activity.ID = model.ID
	activity.CreatedAt = model.CreatedAt
	return nil
}

// ListRecentActivities 最近n条动态,按创建时间倒序
func (r *statsRepository) ListRecentActivities(ctx context.Context, n int) ([]*stats.Activity, error) {
	var models []ActivityModel
	err := getDB(ctx, r.db).
		Order("created_at DESC, id DESC").
		Limit(n).
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询动态失败")
	}

	activities := make([]*stats.Activity, len(models))
	for i := range models {
		activities[i] = &stats.Activity{
			ID:        models[i].ID,
			Type:      stats.ActivityType(models[i].Type),
			BookID:    models[i].BookID,
			UserID:    models[i].UserID,
			Detail:    models[i].Detail,
			CreatedAt: models[i].CreatedAt,
		}
	}
	return activities, nil
}

// ensureRow 懒创建投影行
// INSERT ... ON DUPLICATE KEY UPDATE book_id = book_id(已存在时no-op)
func (r *statsRepository) ensureRow(db *gorm.DB, bookID uint) error {
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "book_id"}},
		DoNothing: true,
	}).Create(&BookStatisticsModel{BookID: bookID}).Error
	if err != nil {
		return apperrors.Wrap(err, "初始化图书统计失败")
	}
	return nil
}

// toStatisticsEntity GORM模型 → 领域实体
func toStatisticsEntity(model *BookStatisticsModel) *stats.BookStatistics {
	return &stats.BookStatistics{
		BookID:            model.BookID,
		TotalBorrows:      model.TotalBorrows,
		TotalReservations: model.TotalReservations,
		AverageRating:     model.AverageRating,
		TotalRatings:      model.TotalRatings,
		TotalLikes:        model.TotalLikes,
		TotalComments:     model.TotalComments,
		UpdatedAt:         model.UpdatedAt,
	}
}
