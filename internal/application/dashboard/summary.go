package dashboard

import (
	"context"
	"log"
	"time"

	"github.com/xiebiao/unilib/internal/domain/book"
	"github.com/xiebiao/unilib/internal/domain/lending"
	"github.com/xiebiao/unilib/internal/domain/reservation"
	"github.com/xiebiao/unilib/internal/domain/stats"
	"github.com/xiebiao/unilib/internal/domain/user"
	redisstore "github.com/xiebiao/unilib/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/unilib/pkg/metrics"
)

// 仪表盘默认条数
const (
	popularBooksLimit     = 10
	recentActivitiesLimit = 20
	activeUsersLimit      = 10
)

// SummaryUseCase 仪表盘汇总用例
// 设计说明:
// 1. 汇总要打七八次存储查询,Redis短TTL缓存挡住仪表盘轮询
//    (缓存任何故障都按miss处理,Redis挂了仪表盘只是变慢,不是变空)
// 2. 各区块独立降级:热门榜查询失败不应该拖垮总数卡片,
//    失败区块返回零值并记日志
// 3. 热门榜按累计借阅次数降序,并列时按入库顺序——同一份数据
//    怎么查都是同一个顺序,前端不会闪动
type SummaryUseCase struct {
	bookRepo        book.Repository
	userRepo        user.Repository
	lendingRepo     lending.Repository
	reservationRepo reservation.Repository
	statsRepo       stats.Repository
	statsService    stats.Service
	cache           *redisstore.DashboardCache // 可为nil
	storeTimeout    time.Duration
}

// NewSummaryUseCase 创建仪表盘用例
func NewSummaryUseCase(
	bookRepo book.Repository,
	userRepo user.Repository,
	lendingRepo lending.Repository,
	reservationRepo reservation.Repository,
	statsRepo stats.Repository,
	statsService stats.Service,
	cache *redisstore.DashboardCache,
	storeTimeout time.Duration,
) *SummaryUseCase {
	return &SummaryUseCase{
		bookRepo:        bookRepo,
		userRepo:        userRepo,
		lendingRepo:     lendingRepo,
		reservationRepo: reservationRepo,
		statsRepo:       statsRepo,
		statsService:    statsService,
		cache:           cache,
		storeTimeout:    storeTimeout,
	}
}

// Summary 仪表盘汇总DTO
type Summary struct {
	TotalBooks          int64          `json:"total_books"`
	TotalUsers          int64          `json:"total_users"`
	ActiveBorrowings    int64          `json:"active_borrowings"`
	OverdueBorrowings   int64          `json:"overdue_borrowings"`
	PendingReservations int64          `json:"pending_reservations"`
	PopularBooks        []PopularBook  `json:"popular_books"`
	ActiveUsers         []ActiveUser   `json:"active_users"`
	RecentActivities    []ActivityItem `json:"recent_activities"`
	GeneratedAt         string         `json:"generated_at"`
}

// PopularBook 热门图书榜项
type PopularBook struct {
	BookID        uint    `json:"book_id"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	TotalBorrows  int64   `json:"total_borrows"`
	AverageRating float64 `json:"average_rating"`
	TotalLikes    int64   `json:"total_likes"`
}

// ActiveUser 活跃用户项
type ActiveUser struct {
	UserID           uint   `json:"user_id"`
	Nickname         string `json:"nickname"`
	ActiveBorrowings int64  `json:"active_borrowings"`
	RegisteredAt     string `json:"registered_at"`
}

// ActivityItem 最近动态项
// TimeLabel是相对时间文案(刚刚/X分钟前/...),超过30天退化为绝对日期
type ActivityItem struct {
	Type      string `json:"type"`
	BookID    uint   `json:"book_id,omitempty"`
	UserID    uint   `json:"user_id,omitempty"`
	Detail    string `json:"detail"`
	TimeLabel string `json:"time_label"`
}

// Execute 生成仪表盘汇总(优先走缓存)
func (uc *SummaryUseCase) Execute(ctx context.Context) (*Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.storeTimeout)
	defer cancel()

	// 1. 查缓存
	if uc.cache != nil {
		var cached Summary
		if hit, _ := uc.cache.Get(ctx, &cached); hit {
			metrics.IncCounterVec(metrics.DashboardCacheTotal, map[string]string{"result": "hit"})
			return &cached, nil
		}
		metrics.IncCounterVec(metrics.DashboardCacheTotal, map[string]string{"result": "miss"})
	}

	// 2. 逐区块汇总(各自降级)
	summary := &Summary{
		PopularBooks:     []PopularBook{},
		ActiveUsers:      []ActiveUser{},
		RecentActivities: []ActivityItem{},
		GeneratedAt:      time.Now().Format("2006-01-02 15:04:05"),
	}

	uc.fillCounts(ctx, summary)
	uc.fillPopularBooks(ctx, summary)
	uc.fillActiveUsers(ctx, summary)
	uc.fillRecentActivities(ctx, summary)

	// 3. 回填缓存(best-effort)
	if uc.cache != nil {
		if err := uc.cache.Set(ctx, summary); err != nil {
			log.Printf("仪表盘缓存回填失败: %v", err)
		}
	}

	return summary, nil
}

// fillCounts 总数卡片
func (uc *SummaryUseCase) fillCounts(ctx context.Context, s *Summary) {
	var err error
	if s.TotalBooks, err = uc.bookRepo.Count(ctx); err != nil {
		log.Printf("图书总数查询降级: %v", err)
	}
	if s.TotalUsers, err = uc.userRepo.Count(ctx); err != nil {
		log.Printf("用户总数查询降级: %v", err)
	}
	if s.ActiveBorrowings, err = uc.lendingRepo.CountActive(ctx); err != nil {
		log.Printf("在借数查询降级: %v", err)
	}
	if s.PendingReservations, err = uc.reservationRepo.CountPending(ctx); err != nil {
		log.Printf("待处理预约数查询降级: %v", err)
	}

	// 逾期数在查询时基于当前时间计算,台账里没有逾期列
	if overdue, err := uc.lendingRepo.ListOverdue(ctx, time.Now()); err != nil {
		log.Printf("逾期数查询降级: %v", err)
	} else {
		s.OverdueBorrowings = int64(len(overdue))
	}
}

// fillPopularBooks 热门图书榜(按累计借阅次数降序,并列按入库顺序)
func (uc *SummaryUseCase) fillPopularBooks(ctx context.Context, s *Summary) {
	top, err := uc.statsRepo.TopBorrowed(ctx, popularBooksLimit)
	if err != nil {
		log.Printf("热门榜查询降级: %v", err)
		return
	}

	for _, st := range top {
		item := PopularBook{
			BookID:        st.BookID,
			TotalBorrows:  st.TotalBorrows,
			AverageRating: st.AverageRating,
			TotalLikes:    st.TotalLikes,
		}
		// 书名/作者是展示增强,查不到(如已下架)就跳过该项
		b, err := uc.bookRepo.FindByID(ctx, st.BookID)
		if err != nil {
			continue
		}
		item.Title = b.Title
		item.Author = b.Author
		s.PopularBooks = append(s.PopularBooks, item)
	}
}

// fillActiveUsers 活跃用户(最近注册,标注各自的在借数)
func (uc *SummaryUseCase) fillActiveUsers(ctx context.Context, s *Summary) {
	users, err := uc.userRepo.ListRecent(ctx, activeUsersLimit)
	if err != nil {
		log.Printf("活跃用户查询降级: %v", err)
		return
	}

	for _, u := range users {
		active, err := uc.lendingRepo.CountActiveByUser(ctx, u.ID)
		if err != nil {
			active = 0
		}
		s.ActiveUsers = append(s.ActiveUsers, ActiveUser{
			UserID:           u.ID,
			Nickname:         u.Nickname,
			ActiveBorrowings: active,
			RegisteredAt:     u.CreatedAt.Format("2006-01-02"),
		})
	}
}

// fillRecentActivities 最近动态
func (uc *SummaryUseCase) fillRecentActivities(ctx context.Context, s *Summary) {
	views, err := uc.statsService.RecentActivities(ctx, recentActivitiesLimit)
	if err != nil {
		log.Printf("最近动态查询降级: %v", err)
		return
	}

	for _, v := range views {
		s.RecentActivities = append(s.RecentActivities, ActivityItem{
			Type:      string(v.Activity.Type),
			BookID:    v.Activity.BookID,
			UserID:    v.Activity.UserID,
			Detail:    v.Activity.Detail,
			TimeLabel: v.TimeLabel,
		})
	}
}
