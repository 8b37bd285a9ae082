package stats

import (
	"context"
	"time"
)

// ActivityView 带相对时间标签的动态视图
type ActivityView struct {
	Activity  *Activity
	TimeLabel string
}

// Service 统计领域服务
// 仪表盘级别的汇总(图书总数、活跃借阅数等)由application层
// 跨仓储编排,这里只负责投影与动态本身
type Service interface {
	// StatisticsForBook 某书的统计投影
	StatisticsForBook(ctx context.Context, bookID uint) (*BookStatistics, error)

	// RecordActivity 记录一条动态
	RecordActivity(ctx context.Context, typ ActivityType, bookID, userID uint, detail string) error

	// RecentActivities 最近n条动态,带相对时间标签
	RecentActivities(ctx context.Context, n int) ([]*ActivityView, error)
}

type service struct {
	repo Repository
	now  func() time.Time // 可注入,便于测试相对时间标签
}

// NewService 创建统计服务
func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

// StatisticsForBook 某书的统计投影
func (s *service) StatisticsForBook(ctx context.Context, bookID uint) (*BookStatistics, error) {
	return s.repo.FindByBook(ctx, bookID)
}

// RecordActivity 记录一条动态
func (s *service) RecordActivity(ctx context.Context, typ ActivityType, bookID, userID uint, detail string) error {
	return s.repo.CreateActivity(ctx, NewActivity(typ, bookID, userID, detail))
}

// RecentActivities 最近n条动态
func (s *service) RecentActivities(ctx context.Context, n int) ([]*ActivityView, error) {
	activities, err := s.repo.ListRecentActivities(ctx, n)
	if err != nil {
		return nil, err
	}

	now := s.now()
	views := make([]*ActivityView, len(activities))
	for i, a := range activities {
		views[i] = &ActivityView{
			Activity:  a,
			TimeLabel: a.TimeLabel(now),
		}
	}
	return views, nil
}
