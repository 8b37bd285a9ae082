package stats

import (
	"context"
)

// Repository 统计投影仓储接口(依赖倒置原则)
// 教学要点:
// 1. 所有Add*方法都是原子UPDATE(UPDATE ... SET x = x + ?),
//    带下限守卫保证计数永不为负
// 2. 投影行按bookID懒创建:第一次增减时自动补一行
type Repository interface {
	// FindByBook 某书的统计投影,不存在时返回零值投影(不报错)
	FindByBook(ctx context.Context, bookID uint) (*BookStatistics, error)

	// AddBorrows 累计借阅次数增减(delta可为负,用于补偿回退)
	AddBorrows(ctx context.Context, bookID uint, delta int64) error

	// AddReservations 累计预约次数增减
	AddReservations(ctx context.Context, bookID uint, delta int64) error

	// AddLikes 点赞数增减(下限0)
	AddLikes(ctx context.Context, bookID uint, delta int64) error

	// AddComments 评论数增减(下限0)
	AddComments(ctx context.Context, bookID uint, delta int64) error

	// SetRating 回写评分均值与条数(全量重算后的结果)
	SetRating(ctx context.Context, bookID uint, average float64, count int64) error

	// TopBorrowed 借阅次数最多的前n本
	// 并列时按图书入库顺序(book_id升序)排序
	TopBorrowed(ctx context.Context, n int) ([]*BookStatistics, error)

	// CreateActivity 记录一条动态
	CreateActivity(ctx context.Context, activity *Activity) error

	// ListRecentActivities 最近n条动态,按创建时间倒序
	ListRecentActivities(ctx context.Context, n int) ([]*Activity, error)
}
