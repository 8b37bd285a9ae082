package stats

import (
	"fmt"
	"time"
)

// BookStatistics 图书统计投影
// 设计说明:
// 1. 这是派生数据,只允许作为借阅/预约/互动操作的副作用增减,
//    不接受用户直接编辑
// 2. 计数永不为负(存储层UPDATE带下限守卫)
// 3. 平均评分不做增量近似,每次评分变更后全量重算并回写
type BookStatistics struct {
	BookID            uint
	TotalBorrows      int64   // 累计借阅次数
	TotalReservations int64   // 累计预约次数
	AverageRating     float64 // 评分均值
	TotalRatings      int64   // 评分条数
	TotalLikes        int64   // 点赞数
	TotalComments     int64   // 评论数
	UpdatedAt         time.Time
}

// ActivityType 动态类型
type ActivityType string

const (
	ActivityBookAdded    ActivityType = "book_added"    // 图书入库
	ActivityBookUpdated  ActivityType = "book_updated"  // 图书信息更新
	ActivityBookDeleted  ActivityType = "book_deleted"  // 图书下架
	ActivityUserApproved ActivityType = "user_approved" // 管理员批准注册
	ActivityUserRejected ActivityType = "user_rejected" // 管理员驳回注册
)

// Activity 动态(审计)记录
// 仪表盘"最近动态"的数据源,按创建时间倒序展示
type Activity struct {
	ID        uint
	Type      ActivityType // 动态类型
	BookID    uint         // 相关图书ID(无则为0)
	UserID    uint         // 相关用户ID(无则为0)
	Detail    string       // 展示文案(如图书标题)
	CreatedAt time.Time
}

// NewActivity 创建动态记录
func NewActivity(typ ActivityType, bookID, userID uint, detail string) *Activity {
	return &Activity{
		Type:      typ,
		BookID:    bookID,
		UserID:    userID,
		Detail:    detail,
		CreatedAt: time.Now(),
	}
}

// TimeLabel 人性化的相对时间标签
// 业务规则:
// - 1分钟内: 刚刚
// - 1小时内: X分钟前
// - 24小时内: X小时前
// - 30天内: X天前
// - 超过30天: 绝对日期(yyyy-MM-dd)
func (a *Activity) TimeLabel(now time.Time) string {
	elapsed := now.Sub(a.CreatedAt)

	switch {
	case elapsed < time.Minute:
		return "刚刚"
	case elapsed < time.Hour:
		return fmt.Sprintf("%d分钟前", int(elapsed.Minutes()))
	case elapsed < 24*time.Hour:
		return fmt.Sprintf("%d小时前", int(elapsed.Hours()))
	case elapsed < 30*24*time.Hour:
		return fmt.Sprintf("%d天前", int(elapsed.Hours()/24))
	default:
		return a.CreatedAt.Format("2006-01-02")
	}
}
