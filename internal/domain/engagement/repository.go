package engagement

import (
	"context"
)

// Repository 互动仓储接口(依赖倒置原则)
// 评分/点赞/评论都是小而独立的记录,合并在一个仓储里维护
type Repository interface {
	// FindRating 查找用户对某书的评分
	// 不存在时返回ErrRatingNotFound
	FindRating(ctx context.Context, bookID, userID uint) (*Rating, error)

	// CreateRating 新增评分
	CreateRating(ctx context.Context, rating *Rating) error

	// UpdateRating 就地更新评分
	UpdateRating(ctx context.Context, rating *Rating) error

	// RatingSummary 某书的评分均值与条数
	// 没有评分时返回(0, 0, nil)
	RatingSummary(ctx context.Context, bookID uint) (avg float64, count int64, err error)

	// FindLike 查找用户对某书的点赞
	// 不存在时返回ErrLikeNotFound
	FindLike(ctx context.Context, bookID, userID uint) (*Like, error)

	// CreateLike 新增点赞
	CreateLike(ctx context.Context, like *Like) error

	// DeleteLike 删除点赞
	DeleteLike(ctx context.Context, bookID, userID uint) error

	// ListLikedBookIDs 用户在给定图书集合中点赞过的bookID
	// 列表页标注用,一条IN查询代替逐本FindLike
	ListLikedBookIDs(ctx context.Context, userID uint, bookIDs []uint) ([]uint, error)

	// ListRatingsByUser 用户在给定图书集合中的评分
	ListRatingsByUser(ctx context.Context, userID uint, bookIDs []uint) ([]*Rating, error)

	// SaveComment 保存评论((图书,用户)键上就地覆盖)
	SaveComment(ctx context.Context, comment *Comment) error

	// ListCommentsByBook 某书的全部评论,按创建时间降序
	ListCommentsByBook(ctx context.Context, bookID uint) ([]*Comment, error)

	// CountCommentsByBook 某书的评论数
	CountCommentsByBook(ctx context.Context, bookID uint) (int64, error)
}
