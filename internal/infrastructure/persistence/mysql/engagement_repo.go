package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/unilib/internal/domain/engagement"
	apperrors "github.com/xiebiao/unilib/pkg/errors"
)

// engagementRepository 互动仓储实现(MySQL)
// 评分/点赞/评论三张小表,唯一索引都落在(book_id, user_id)上
type engagementRepository struct {
	db *gorm.DB
}

// NewEngagementRepository 创建互动仓储
func NewEngagementRepository(db *gorm.DB) engagement.Repository {
	return &engagementRepository{db: db}
}

// FindRating 查找用户对某书的评分
func (r *engagementRepository) FindRating(ctx context.Context, bookID, userID uint) (*engagement.Rating, error) {
	var model RatingModel
	err := getDB(ctx, r.db).
		Where("book_id = ? AND user_id = ?", bookID, userID).
		First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, engagement.ErrRatingNotFound
		}
		return nil, apperrors.Wrap(err, "查询评分失败")
	}

	return &engagement.Rating{
		ID:        model.ID,
		BookID:    model.BookID,
		UserID:    model.UserID,
		Value:     model.Value,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}, nil
}

// CreateRating 新增评分
func (r *engagementRepository) CreateRating(ctx context.Context, rating *engagement.Rating) error {
	model := &RatingModel{
		BookID: rating.BookID,
		UserID: rating.UserID,
		Value:  rating.Value,
	}

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建评分失败")
	}

	rating.ID = model.ID
	rating.CreatedAt = model.CreatedAt
	rating.UpdatedAt = model.UpdatedAt
	return nil
}

// UpdateRating 就地更新评分
func (r *engagementRepository) UpdateRating(ctx context.Context, rating *engagement.Rating) error {
	result := getDB(ctx, r.db).Model(&RatingModel{}).
		Where("id = ?", rating.ID).
		Update("value", rating.Value)

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新评分失败")
	}
	if result.RowsAffected == 0 {
		return engagement.ErrRatingNotFound
	}
	return nil
}

// RatingSummary 某书的评分均值与条数
// 全量重算:AVG/COUNT直接落在数据库侧,没有评分时返回(0, 0)
func (r *engagementRepository) RatingSummary(ctx context.Context, bookID uint) (float64, int64, error) {
	var result struct {
		Avg   float64
		Count int64
	}
	err := getDB(ctx, r.db).Model(&RatingModel{}).
		Select("COALESCE(AVG(value), 0) AS avg, COUNT(*) AS count").
		Where("book_id = ?", bookID).
		Scan(&result).Error
	if err != nil {
		return 0, 0, apperrors.Wrap(err, "统计评分失败")
	}
	return result.Avg, result.Count, nil
}

// FindLike 查找用户对某书的点赞
func (r *engagementRepository) FindLike(ctx context.Context, bookID, userID uint) (*engagement.Like, error) {
	var model LikeModel
	err := getDB(ctx, r.db).
		Where("book_id = ? AND user_id = ?", bookID, userID).
		First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, engagement.ErrLikeNotFound
		}
		return nil, apperrors.Wrap(err, "查询点赞失败")
	}

	return &engagement.Like{
		ID:        model.ID,
		BookID:    model.BookID,
		UserID:    model.UserID,
		CreatedAt: model.CreatedAt,
	}, nil
}

// CreateLike 新增点赞
// 并发的重复点赞会撞(book_id, user_id)唯一索引,
// 上层把重复当作幂等成功处理,这里只负责如实转译错误
func (r *engagementRepository) CreateLike(ctx context.Context, like *engagement.Like) error {
	model := &LikeModel{
		BookID: like.BookID,
		UserID: like.UserID,
	}

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return engagement.ErrAlreadyLiked
		}
		return apperrors.Wrap(err, "创建点赞失败")
	}

	like.ID = model.ID
	like.CreatedAt = model.CreatedAt
	return nil
}

// DeleteLike 删除点赞
func (r *engagementRepository) DeleteLike(ctx context.Context, bookID, userID uint) error {
	result := getDB(ctx, r.db).
		Where("book_id = ? AND user_id = ?", bookID, userID).
		Delete(&LikeModel{})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除点赞失败")
	}
	if result.RowsAffected == 0 {
		return engagement.ErrLikeNotFound
	}
	return nil
}

// ListLikedBookIDs 用户在给定图书集合中点赞过的bookID
// 列表页标注:一条IN查询拿回全部命中,避免逐本FindLike的N+1
func (r *engagementRepository) ListLikedBookIDs(ctx context.Context, userID uint, bookIDs []uint) ([]uint, error) {
	if len(bookIDs) == 0 {
		return nil, nil
	}

	var ids []uint
	err := getDB(ctx, r.db).Model(&LikeModel{}).
		Where("user_id = ? AND book_id IN ?", userID, bookIDs).
		Pluck("book_id", &ids).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "批量查询点赞失败")
	}
	return ids, nil
}

// ListRatingsByUser 用户在给定图书集合中的评分
func (r *engagementRepository) ListRatingsByUser(ctx context.Context, userID uint, bookIDs []uint) ([]*engagement.Rating, error) {
	if len(bookIDs) == 0 {
		return nil, nil
	}

	var models []RatingModel
	err := getDB(ctx, r.db).
		Where("user_id = ? AND book_id IN ?", userID, bookIDs).
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "批量查询评分失败")
	}

	ratings := make([]*engagement.Rating, len(models))
	for i := range models {
		ratings[i] = &engagement.Rating{
			ID:        models[i].ID,
			BookID:    models[i].BookID,
			UserID:    models[i].UserID,
			Value:     models[i].Value,
			CreatedAt: models[i].CreatedAt,
			UpdatedAt: models[i].UpdatedAt,
		}
	}
	return ratings, nil
}

// SaveComment 保存评论((图书,用户)键上就地覆盖)
// 使用MySQL的INSERT ... ON DUPLICATE KEY UPDATE(GORM clause.OnConflict)
func (r *engagementRepository) SaveComment(ctx context.Context, comment *engagement.Comment) error {
	model := &CommentModel{
		BookID:  comment.BookID,
		UserID:  comment.UserID,
		Content: comment.Content,
	}

	err := getDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "book_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "updated_at"}),
	}).Create(model).Error
	if err != nil {
		return apperrors.Wrap(err, "保存评论失败")
	}

	comment.ID = model.ID
	comment.CreatedAt = model.CreatedAt
	comment.UpdatedAt = model.UpdatedAt
	return nil
}

// ListCommentsByBook 某书的全部评论,按创建时间降序
func (r *engagementRepository) ListCommentsByBook(ctx context.Context, bookID uint) ([]*engagement.Comment, error) {
	var models []CommentModel
	err := getDB(ctx, r.db).
		Where("book_id = ?", bookID).
		Order("created_at DESC, id DESC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询评论失败")
	}

	comments := make([]*engagement.Comment, len(models))
	for i := range models {
		comments[i] = &engagement.Comment{
			ID:        models[i].ID,
			BookID:    models[i].BookID,
			UserID:    models[i].UserID,
			Content:   models[i].Content,
			CreatedAt: models[i].CreatedAt,
			UpdatedAt: models[i].UpdatedAt,
		}
	}
	return comments, nil
}

// CountCommentsByBook 某书的评论数
func (r *engagementRepository) CountCommentsByBook(ctx context.Context, bookID uint) (int64, error) {
	var total int64
	err := getDB(ctx, r.db).Model(&CommentModel{}).
		Where("book_id = ?", bookID).
		Count(&total).Error
	if err != nil {
		return 0, apperrors.Wrap(err, "统计评论数失败")
	}
	return total, nil
}
