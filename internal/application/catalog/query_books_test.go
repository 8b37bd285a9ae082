package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/unilib/internal/domain/book"
	"github.com/xiebiao/unilib/internal/domain/engagement"
	"github.com/xiebiao/unilib/internal/domain/reservation"
	"github.com/xiebiao/unilib/internal/domain/stats"
	"github.com/xiebiao/unilib/pkg/circuitbreaker"
)

// 教学说明：目录查询用例单元测试
//
// 目录读路径的容错策略:
// - 列表/搜索 fail-soft:存储故障或熔断器打开时返回空列表
// - 详情页主记录 fail-loud:NotFound必须如实暴露
// - 详情页辅助区块(预约队列/统计/互动状态)各自降级为零值

const testTimeout = 5 * time.Second

// fakeBookRepo 内存图书仓储(带读路径错误注入)
type fakeBookRepo struct {
	books     map[uint]*book.Book
	nextID    uint
	searchErr error // Search/List错误注入
	findErr   error // FindByID错误注入
}

func newFakeBookRepo(books ...*book.Book) *fakeBookRepo {
	f := &fakeBookRepo{books: make(map[uint]*book.Book)}
	for _, b := range books {
		f.books[b.ID] = b
		if b.ID > f.nextID {
			f.nextID = b.ID
		}
	}
	return f
}

func (f *fakeBookRepo) Create(ctx context.Context, b *book.Book) error {
	f.nextID++
	b.ID = f.nextID
	f.books[b.ID] = b
	return nil
}

func (f *fakeBookRepo) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	b, ok := f.books[id]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	return b, nil
}

func (f *fakeBookRepo) FindByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	for _, b := range f.books {
		if b.ISBN == isbn {
			return b, nil
		}
	}
	return nil, book.ErrBookNotFound
}

func (f *fakeBookRepo) Update(ctx context.Context, b *book.Book) error {
	f.books[b.ID] = b
	return nil
}

func (f *fakeBookRepo) Delete(ctx context.Context, id uint) error {
	delete(f.books, id)
	return nil
}

func (f *fakeBookRepo) Search(ctx context.Context, query string) ([]*book.Book, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	var result []*book.Book
	for id := uint(1); id <= uint(len(f.books)); id++ {
		if b, ok := f.books[id]; ok {
			result = append(result, b)
		}
	}
	return result, nil
}

func (f *fakeBookRepo) List(ctx context.Context, params book.ListParams) ([]*book.Book, error) {
	return f.Search(ctx, "")
}

func (f *fakeBookRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(f.books)), nil
}
func (f *fakeBookRepo) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	return f.FindByID(ctx, id)
}
func (f *fakeBookRepo) UpdateAvailableCopies(ctx context.Context, id uint, delta int) error {
	return nil
}

// fakeReservationRepo 只实现详情页用到的CountPendingByBook
type fakeReservationRepo struct {
	pending  map[uint]int64
	countErr error
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{pending: make(map[uint]int64)}
}

func (f *fakeReservationRepo) Create(ctx context.Context, r *reservation.Reservation) error {
	return nil
}
func (f *fakeReservationRepo) FindByID(ctx context.Context, id uint) (*reservation.Reservation, error) {
	return nil, reservation.ErrReservationNotFound
}
func (f *fakeReservationRepo) FindPendingForUserAndBook(ctx context.Context, bookID, userID uint) (*reservation.Reservation, error) {
	return nil, reservation.ErrReservationNotFound
}
func (f *fakeReservationRepo) Update(ctx context.Context, r *reservation.Reservation) error {
	return nil
}
func (f *fakeReservationRepo) ListPendingByBook(ctx context.Context, bookID uint) ([]*reservation.Reservation, error) {
	return nil, nil
}
func (f *fakeReservationRepo) CountPending(ctx context.Context) (int64, error) { return 0, nil }

func (f *fakeReservationRepo) CountPendingByBook(ctx context.Context, bookID uint) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.pending[bookID], nil
}

// engKey 互动记录的(图书,用户)复合键
type engKey struct {
	bookID uint
	userID uint
}

// fakeEngagementRepo 最小互动仓储(详情页与列表页的用户状态标注)
type fakeEngagementRepo struct {
	liked   map[engKey]bool
	rating  map[engKey]int
	listErr error // 批量查询错误注入(标注降级场景)
}

func newFakeEngagementRepo() *fakeEngagementRepo {
	return &fakeEngagementRepo{liked: make(map[engKey]bool), rating: make(map[engKey]int)}
}

func (f *fakeEngagementRepo) FindRating(ctx context.Context, bookID, userID uint) (*engagement.Rating, error) {
	v, ok := f.rating[engKey{bookID, userID}]
	if !ok {
		return nil, engagement.ErrRatingNotFound
	}
	return &engagement.Rating{BookID: bookID, UserID: userID, Value: v}, nil
}
func (f *fakeEngagementRepo) CreateRating(ctx context.Context, r *engagement.Rating) error {
	return nil
}
func (f *fakeEngagementRepo) UpdateRating(ctx context.Context, r *engagement.Rating) error {
	return nil
}
func (f *fakeEngagementRepo) RatingSummary(ctx context.Context, bookID uint) (float64, int64, error) {
	return 0, 0, nil
}

func (f *fakeEngagementRepo) FindLike(ctx context.Context, bookID, userID uint) (*engagement.Like, error) {
	if !f.liked[engKey{bookID, userID}] {
		return nil, engagement.ErrLikeNotFound
	}
	return &engagement.Like{BookID: bookID, UserID: userID}, nil
}
func (f *fakeEngagementRepo) CreateLike(ctx context.Context, l *engagement.Like) error { return nil }
func (f *fakeEngagementRepo) DeleteLike(ctx context.Context, bookID, userID uint) error {
	return nil
}

func (f *fakeEngagementRepo) ListLikedBookIDs(ctx context.Context, userID uint, bookIDs []uint) ([]uint, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var ids []uint
	for _, id := range bookIDs {
		if f.liked[engKey{id, userID}] {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *fakeEngagementRepo) ListRatingsByUser(ctx context.Context, userID uint, bookIDs []uint) ([]*engagement.Rating, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var ratings []*engagement.Rating
	for _, id := range bookIDs {
		if v, ok := f.rating[engKey{id, userID}]; ok {
			ratings = append(ratings, &engagement.Rating{BookID: id, UserID: userID, Value: v})
		}
	}
	return ratings, nil
}
func (f *fakeEngagementRepo) SaveComment(ctx context.Context, c *engagement.Comment) error {
	return nil
}
func (f *fakeEngagementRepo) ListCommentsByBook(ctx context.Context, bookID uint) ([]*engagement.Comment, error) {
	return nil, nil
}
func (f *fakeEngagementRepo) CountCommentsByBook(ctx context.Context, bookID uint) (int64, error) {
	return 0, nil
}

// fakeStatsRepo 供详情页读取统计投影,同时记录动态供管理用例断言
type fakeStatsRepo struct {
	stats      map[uint]*stats.BookStatistics
	activities []*stats.Activity
	findErr    error
}

func newFakeStatsRepo() *fakeStatsRepo {
	return &fakeStatsRepo{stats: make(map[uint]*stats.BookStatistics)}
}

func (f *fakeStatsRepo) FindByBook(ctx context.Context, bookID uint) (*stats.BookStatistics, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if st, ok := f.stats[bookID]; ok {
		return st, nil
	}
	return &stats.BookStatistics{BookID: bookID}, nil
}
func (f *fakeStatsRepo) AddBorrows(ctx context.Context, bookID uint, delta int64) error { return nil }
func (f *fakeStatsRepo) AddReservations(ctx context.Context, bookID uint, delta int64) error {
	return nil
}
func (f *fakeStatsRepo) AddLikes(ctx context.Context, bookID uint, delta int64) error    { return nil }
func (f *fakeStatsRepo) AddComments(ctx context.Context, bookID uint, delta int64) error { return nil }
func (f *fakeStatsRepo) SetRating(ctx context.Context, bookID uint, average float64, count int64) error {
	return nil
}
func (f *fakeStatsRepo) TopBorrowed(ctx context.Context, n int) ([]*stats.BookStatistics, error) {
	return nil, nil
}
func (f *fakeStatsRepo) CreateActivity(ctx context.Context, a *stats.Activity) error {
	f.activities = append(f.activities, a)
	return nil
}
func (f *fakeStatsRepo) ListRecentActivities(ctx context.Context, n int) ([]*stats.Activity, error) {
	return nil, nil
}

func testBreaker() *circuitbreaker.CircuitBreaker {
	return circuitbreaker.NewCircuitBreaker("catalog-read", circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
}

func testBook(id uint, total, available int) *book.Book {
	return &book.Book{
		ID:              id,
		ISBN:            "9787115428028",
		Title:           "Go语言实战",
		Author:          "William Kennedy",
		Publisher:       "人民邮电出版社",
		PublishYear:     2017,
		Category:        "计算机",
		Language:        "zh",
		TotalCopies:     total,
		AvailableCopies: available,
	}
}

func newQuerySetup(bookRepo *fakeBookRepo) (*fakeReservationRepo, *fakeStatsRepo, *fakeEngagementRepo, *QueryBooksUseCase) {
	resRepo := newFakeReservationRepo()
	statsRepo := newFakeStatsRepo()
	engRepo := newFakeEngagementRepo()
	uc := NewQueryBooksUseCase(
		book.NewService(bookRepo),
		resRepo,
		engagement.NewService(engRepo),
		stats.NewService(statsRepo),
		testBreaker(),
		testTimeout,
	)
	return resRepo, statsRepo, engRepo, uc
}

// TestSearchBooks 测试搜索
func TestSearchBooks(t *testing.T) {
	ctx := context.Background()

	t.Run("正常搜索", func(t *testing.T) {
		_, _, _, uc := newQuerySetup(newFakeBookRepo(testBook(1, 3, 2), testBook(2, 1, 0)))

		result := uc.Search(ctx, "Go", 0)
		require.Len(t, result, 2)
		assert.Equal(t, "available", result[0].Status)
		assert.Equal(t, "borrowed", result[1].Status)
	})

	t.Run("存储故障时降级为空列表", func(t *testing.T) {
		bookRepo := newFakeBookRepo(testBook(1, 3, 2))
		bookRepo.searchErr = errors.New("数据库连接中断")
		_, _, _, uc := newQuerySetup(bookRepo)

		result := uc.Search(ctx, "Go", 0)
		assert.NotNil(t, result, "降级返回空列表而不是nil")
		assert.Empty(t, result, "读路径fail-soft,不向用户抛错")
	})
}

// TestListBooks 测试列表与熔断
func TestListBooks(t *testing.T) {
	ctx := context.Background()

	t.Run("正常列表", func(t *testing.T) {
		_, _, _, uc := newQuerySetup(newFakeBookRepo(testBook(1, 3, 2)))

		result := uc.List(ctx, book.ListParams{}, 0)
		assert.Len(t, result, 1)
	})

	t.Run("连续失败后熔断器打开", func(t *testing.T) {
		bookRepo := newFakeBookRepo(testBook(1, 3, 2))
		bookRepo.searchErr = errors.New("数据库连接中断")
		breaker := testBreaker()
		uc := NewQueryBooksUseCase(
			book.NewService(bookRepo),
			newFakeReservationRepo(),
			engagement.NewService(newFakeEngagementRepo()),
			stats.NewService(newFakeStatsRepo()),
			breaker,
			testTimeout,
		)

		// 连续5次失败触发熔断
		for i := 0; i < 5; i++ {
			assert.Empty(t, uc.List(ctx, book.ListParams{}, 0))
		}
		assert.Equal(t, circuitbreaker.StateOpen, breaker.State(), "连续失败后熔断器打开")

		// 熔断打开后请求被快速拒绝,依然返回空列表
		assert.Empty(t, uc.List(ctx, book.ListParams{}, 0))
	})
}

// TestListAnnotatesUserState 测试列表页的用户互动状态标注
//
// 登录用户浏览列表时,每一项都要附带自己的点赞/评分状态,
// 底层是一次批量IN查询,不随列表长度退化成逐本查询
func TestListAnnotatesUserState(t *testing.T) {
	ctx := context.Background()

	t.Run("登录用户的列表项附带点赞与评分", func(t *testing.T) {
		_, _, engRepo, uc := newQuerySetup(newFakeBookRepo(
			testBook(1, 3, 2), testBook(2, 1, 1), testBook(3, 2, 2),
		))
		engRepo.liked[engKey{1, 10}] = true
		engRepo.rating[engKey{1, 10}] = 5
		engRepo.rating[engKey{3, 10}] = 2

		result := uc.List(ctx, book.ListParams{}, 10)
		require.Len(t, result, 3)

		assert.True(t, result[0].Liked)
		assert.Equal(t, 5, result[0].MyRating)
		assert.False(t, result[1].Liked, "没有互动的图书保持零值")
		assert.Zero(t, result[1].MyRating)
		assert.False(t, result[2].Liked)
		assert.Equal(t, 2, result[2].MyRating)
	})

	t.Run("搜索结果同样标注", func(t *testing.T) {
		_, _, engRepo, uc := newQuerySetup(newFakeBookRepo(testBook(1, 3, 2)))
		engRepo.liked[engKey{1, 10}] = true

		result := uc.Search(ctx, "Go", 10)
		require.Len(t, result, 1)
		assert.True(t, result[0].Liked)
	})

	t.Run("未登录时不标注", func(t *testing.T) {
		_, _, engRepo, uc := newQuerySetup(newFakeBookRepo(testBook(1, 3, 2)))
		engRepo.liked[engKey{1, 10}] = true

		result := uc.List(ctx, book.ListParams{}, 0)
		require.Len(t, result, 1)
		assert.False(t, result[0].Liked)
	})

	t.Run("标注失败时列表照常返回", func(t *testing.T) {
		_, _, engRepo, uc := newQuerySetup(newFakeBookRepo(testBook(1, 3, 2)))
		engRepo.liked[engKey{1, 10}] = true
		engRepo.listErr = errors.New("互动表不可用")

		result := uc.List(ctx, book.ListParams{}, 10)
		require.Len(t, result, 1, "标注是辅助数据,失败只降级不报错")
		assert.False(t, result[0].Liked)
	})
}

// TestGetDetail 测试详情页
func TestGetDetail(t *testing.T) {
	ctx := context.Background()

	t.Run("主记录不存在时如实报错", func(t *testing.T) {
		_, _, _, uc := newQuerySetup(newFakeBookRepo())

		_, err := uc.GetDetail(ctx, 999, 0)
		assert.ErrorIs(t, err, book.ErrBookNotFound, "详情页主记录fail-loud")
	})

	t.Run("全部借出且有预约时状态为reserved", func(t *testing.T) {
		resRepo, _, _, uc := newQuerySetup(newFakeBookRepo(testBook(1, 2, 0)))
		resRepo.pending[1] = 3

		detail, err := uc.GetDetail(ctx, 1, 0)
		require.NoError(t, err)
		assert.Equal(t, "reserved", detail.Status)
		assert.Equal(t, int64(3), detail.PendingReservations)
	})

	t.Run("预约队列查询失败时状态退化为borrowed", func(t *testing.T) {
		resRepo, _, _, uc := newQuerySetup(newFakeBookRepo(testBook(1, 2, 0)))
		resRepo.pending[1] = 3
		resRepo.countErr = errors.New("预约表不可用")

		detail, err := uc.GetDetail(ctx, 1, 0)
		require.NoError(t, err, "辅助区块失败不影响详情页返回")
		assert.Equal(t, "borrowed", detail.Status)
		assert.Zero(t, detail.PendingReservations)
	})

	t.Run("统计投影失败时降级为零值", func(t *testing.T) {
		_, statsRepo, _, uc := newQuerySetup(newFakeBookRepo(testBook(1, 2, 1)))
		statsRepo.findErr = errors.New("统计表不可用")

		detail, err := uc.GetDetail(ctx, 1, 0)
		require.NoError(t, err)
		assert.Zero(t, detail.TotalBorrows)
		assert.Zero(t, detail.AverageRating)
	})

	t.Run("登录用户附带互动状态", func(t *testing.T) {
		_, statsRepo, engRepo, uc := newQuerySetup(newFakeBookRepo(testBook(1, 2, 1)))
		statsRepo.stats[1] = &stats.BookStatistics{
			BookID: 1, TotalBorrows: 7, AverageRating: 4.5, TotalRatings: 2,
		}
		engRepo.liked[engKey{1, 10}] = true
		engRepo.rating[engKey{1, 10}] = 5

		detail, err := uc.GetDetail(ctx, 1, 10)
		require.NoError(t, err)
		assert.True(t, detail.Liked)
		assert.Equal(t, 5, detail.MyRating)
		assert.Equal(t, int64(7), detail.TotalBorrows)
		assert.Equal(t, 4.5, detail.AverageRating)
	})

	t.Run("未登录时跳过互动状态", func(t *testing.T) {
		_, _, engRepo, uc := newQuerySetup(newFakeBookRepo(testBook(1, 2, 1)))
		engRepo.liked[engKey{1, 10}] = true

		detail, err := uc.GetDetail(ctx, 1, 0)
		require.NoError(t, err)
		assert.False(t, detail.Liked)
		assert.Zero(t, detail.MyRating)
	})
}
