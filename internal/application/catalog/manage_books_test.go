package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/unilib/internal/domain/book"
	"github.com/xiebiao/unilib/internal/domain/lending"
	"github.com/xiebiao/unilib/internal/domain/stats"
	apperrors "github.com/xiebiao/unilib/pkg/errors"
)

// fakeLendingRepo 只提供删除防护检查用到的活跃借阅计数
type fakeLendingRepo struct {
	activeByBook map[uint]int64
}

func newFakeLendingRepo() *fakeLendingRepo {
	return &fakeLendingRepo{activeByBook: make(map[uint]int64)}
}

func (f *fakeLendingRepo) Create(ctx context.Context, b *lending.Borrowing) error { return nil }
func (f *fakeLendingRepo) FindByID(ctx context.Context, id uint) (*lending.Borrowing, error) {
	return nil, lending.ErrBorrowingNotFound
}
func (f *fakeLendingRepo) FindByTicketNo(ctx context.Context, ticketNo string) (*lending.Borrowing, error) {
	return nil, lending.ErrBorrowingNotFound
}
func (f *fakeLendingRepo) FindActiveForUserAndBook(ctx context.Context, bookID, userID uint) (*lending.Borrowing, error) {
	return nil, lending.ErrNoActiveBorrowing
}
func (f *fakeLendingRepo) Update(ctx context.Context, b *lending.Borrowing) error { return nil }
func (f *fakeLendingRepo) ListActive(ctx context.Context) ([]*lending.Borrowing, error) {
	return nil, nil
}
func (f *fakeLendingRepo) ListOverdue(ctx context.Context, asOf time.Time) ([]*lending.Borrowing, error) {
	return nil, nil
}
func (f *fakeLendingRepo) ListByUserID(ctx context.Context, userID uint) ([]*lending.Borrowing, error) {
	return nil, nil
}
func (f *fakeLendingRepo) ListByBookID(ctx context.Context, bookID uint) ([]*lending.Borrowing, error) {
	return nil, nil
}
func (f *fakeLendingRepo) CountActive(ctx context.Context) (int64, error) { return 0, nil }

func (f *fakeLendingRepo) CountActiveByBook(ctx context.Context, bookID uint) (int64, error) {
	return f.activeByBook[bookID], nil
}

func (f *fakeLendingRepo) CountActiveByUser(ctx context.Context, userID uint) (int64, error) {
	return 0, nil
}

func newManageSetup(bookRepo *fakeBookRepo) (*fakeLendingRepo, *fakeStatsRepo, *ManageBooksUseCase) {
	lendingRepo := newFakeLendingRepo()
	statsRepo := newFakeStatsRepo()
	// 事件发布器不接MQ(publisher为nil时Publish静默跳过),缓存不接Redis
	uc := NewManageBooksUseCase(
		book.NewService(bookRepo),
		bookRepo,
		lendingRepo,
		stats.NewService(statsRepo),
		NewEventPublisher(nil, "unilib.catalog"),
		nil,
		testTimeout,
	)
	return lendingRepo, statsRepo, uc
}

// TestAddBookUseCase 测试图书入库用例
func TestAddBookUseCase(t *testing.T) {
	ctx := context.Background()

	t.Run("正常入库并记录动态", func(t *testing.T) {
		bookRepo := newFakeBookRepo()
		_, statsRepo, uc := newManageSetup(bookRepo)

		b, err := uc.AddBook(ctx, AddBookRequest{
			ISBN:        "9787115428028",
			Title:       "Go语言实战",
			Author:      "William Kennedy",
			Publisher:   "人民邮电出版社",
			PublishYear: 2017,
			Category:    "计算机",
			Language:    "zh",
			TotalCopies: 3,
			OperatorID:  1,
		})
		require.NoError(t, err)
		assert.NotZero(t, b.ID)
		assert.Equal(t, 3, b.AvailableCopies, "入库时全部副本可借")

		require.Len(t, statsRepo.activities, 1)
		assert.Equal(t, stats.ActivityBookAdded, statsRepo.activities[0].Type)
		assert.Equal(t, b.ID, statsRepo.activities[0].BookID)
		assert.Equal(t, "Go语言实战", statsRepo.activities[0].Detail)
	})

	t.Run("ISBN重复时拒绝入库", func(t *testing.T) {
		bookRepo := newFakeBookRepo(testBook(1, 3, 3))
		_, statsRepo, uc := newManageSetup(bookRepo)

		_, err := uc.AddBook(ctx, AddBookRequest{
			ISBN:        "9787115428028", // 与已有图书相同
			Title:       "另一本书",
			Author:      "某作者",
			Publisher:   "某出版社",
			PublishYear: 2020,
			Category:    "计算机",
			Language:    "zh",
			TotalCopies: 1,
			OperatorID:  1,
		})
		assert.ErrorIs(t, err, book.ErrISBNDuplicate)
		assert.Empty(t, statsRepo.activities, "入库失败不记录动态")
	})
}

// TestUpdateBookUseCase 测试图书信息更新用例
func TestUpdateBookUseCase(t *testing.T) {
	ctx := context.Background()
	bookRepo := newFakeBookRepo(testBook(1, 3, 3))
	_, statsRepo, uc := newManageSetup(bookRepo)

	b, err := uc.UpdateBook(ctx, UpdateBookRequest{
		BookID:     1,
		Title:      "Go语言实战(第2版)",
		OperatorID: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "Go语言实战(第2版)", b.Title)
	assert.Equal(t, "William Kennedy", b.Author, "空字段不修改")

	require.Len(t, statsRepo.activities, 1)
	assert.Equal(t, stats.ActivityBookUpdated, statsRepo.activities[0].Type)
}

// TestAdjustCopiesUseCase 测试副本调整用例
func TestAdjustCopiesUseCase(t *testing.T) {
	ctx := context.Background()

	t.Run("扩充副本", func(t *testing.T) {
		bookRepo := newFakeBookRepo(testBook(1, 3, 1))
		_, _, uc := newManageSetup(bookRepo)

		b, err := uc.AdjustCopies(ctx, 1, 5, 1)
		require.NoError(t, err)
		assert.Equal(t, 5, b.TotalCopies)
		assert.Equal(t, 3, b.AvailableCopies, "扩充的副本立即可借")
	})

	t.Run("缩减到低于已借出数时拒绝", func(t *testing.T) {
		bookRepo := newFakeBookRepo(testBook(1, 3, 1)) // 已借出2本
		_, statsRepo, uc := newManageSetup(bookRepo)

		_, err := uc.AdjustCopies(ctx, 1, 1, 1)
		assert.ErrorIs(t, err, book.ErrInvalidCopies)
		assert.Empty(t, statsRepo.activities)
	})
}

// fakeDashboardCache 记录失效调用次数
type fakeDashboardCache struct {
	invalidations int
}

func (f *fakeDashboardCache) Invalidate(ctx context.Context) error {
	f.invalidations++
	return nil
}

// TestManageInvalidatesDashboard 测试目录写操作失效仪表盘缓存
//
// 馆藏总数显示在仪表盘上,任何目录写操作(入库/更新/调副本/下架)
// 之后缓存里的汇总页都已过时,必须让它失效
func TestManageInvalidatesDashboard(t *testing.T) {
	ctx := context.Background()
	bookRepo := newFakeBookRepo(testBook(1, 3, 3))
	cache := &fakeDashboardCache{}
	uc := NewManageBooksUseCase(
		book.NewService(bookRepo),
		bookRepo,
		newFakeLendingRepo(),
		stats.NewService(newFakeStatsRepo()),
		NewEventPublisher(nil, "unilib.catalog"),
		cache,
		testTimeout,
	)

	_, err := uc.AddBook(ctx, AddBookRequest{
		ISBN: "9787111558422", Title: "Go程序设计语言", Author: "Alan Donovan",
		Publisher: "机械工业出版社", PublishYear: 2017, Category: "计算机",
		Language: "zh", TotalCopies: 2, OperatorID: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invalidations, "入库后失效")

	_, err = uc.UpdateBook(ctx, UpdateBookRequest{BookID: 1, Title: "新标题", OperatorID: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, cache.invalidations, "更新后失效")

	_, err = uc.AdjustCopies(ctx, 1, 5, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, cache.invalidations, "调整副本后失效")

	require.NoError(t, uc.DeleteBook(ctx, 1, 1))
	assert.Equal(t, 4, cache.invalidations, "下架后失效")
}

// TestDeleteBookUseCase 测试图书下架用例
func TestDeleteBookUseCase(t *testing.T) {
	ctx := context.Background()

	t.Run("正常下架", func(t *testing.T) {
		bookRepo := newFakeBookRepo(testBook(1, 3, 3))
		_, statsRepo, uc := newManageSetup(bookRepo)

		require.NoError(t, uc.DeleteBook(ctx, 1, 1))

		_, err := bookRepo.FindByID(ctx, 1)
		assert.ErrorIs(t, err, book.ErrBookNotFound)
		require.Len(t, statsRepo.activities, 1)
		assert.Equal(t, stats.ActivityBookDeleted, statsRepo.activities[0].Type)
	})

	t.Run("仍有未归还借阅时禁止下架", func(t *testing.T) {
		bookRepo := newFakeBookRepo(testBook(1, 3, 2))
		lendingRepo, statsRepo, uc := newManageSetup(bookRepo)
		lendingRepo.activeByBook[1] = 1

		err := uc.DeleteBook(ctx, 1, 1)
		require.Error(t, err)
		appErr := apperrors.GetAppError(err)
		assert.Equal(t, apperrors.ErrCodeHasActiveBorrows, appErr.Code)

		_, findErr := bookRepo.FindByID(ctx, 1)
		assert.NoError(t, findErr, "图书未被删除")
		assert.Empty(t, statsRepo.activities)
	})

	t.Run("图书不存在", func(t *testing.T) {
		bookRepo := newFakeBookRepo()
		_, _, uc := newManageSetup(bookRepo)

		err := uc.DeleteBook(ctx, 999, 1)
		assert.ErrorIs(t, err, book.ErrBookNotFound)
	})
}
