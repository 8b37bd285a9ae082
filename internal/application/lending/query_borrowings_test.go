package lending

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/unilib/internal/domain/lending"
)

// 教学说明：台账查询用例单元测试
//
// 重点验证逾期标志在查询时计算,以及书名查询失败时的降级

// TestListForUser 测试用户借阅记录查询
func TestListForUser(t *testing.T) {
	ctx := context.Background()

	bookRepo := newFakeBookRepo(testBook(1, 3, 3))
	lendingRepo := newFakeLendingRepo()
	svc := lending.NewService(lendingRepo)

	// 一条在借(未逾期)、一条在借(已逾期)、一条已归还
	current := lending.NewBorrowing("BRW_A", 1, 10, time.Now().Add(7*24*time.Hour))
	overdue := lending.NewBorrowing("BRW_B", 1, 10, time.Now().Add(time.Hour))
	overdue.DueDate = time.Now().Add(-24 * time.Hour)
	returned := lending.NewBorrowing("BRW_C", 1, 10, time.Now().Add(time.Hour))
	for _, b := range []*lending.Borrowing{current, overdue, returned} {
		require.NoError(t, lendingRepo.Create(ctx, b))
	}
	require.NoError(t, returned.MarkReturned(time.Now()))
	require.NoError(t, lendingRepo.Update(ctx, returned))

	uc := NewQueryBorrowingsUseCase(svc, bookRepo, testTimeout)
	items, err := uc.ListForUser(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 3)

	byTicket := make(map[string]BorrowingItem)
	for _, item := range items {
		byTicket[item.TicketNo] = item
	}

	assert.False(t, byTicket["BRW_A"].IsOverdue)
	assert.True(t, byTicket["BRW_B"].IsOverdue, "逾期标志在查询时计算")
	assert.False(t, byTicket["BRW_C"].IsOverdue, "已归还的记录不算逾期")
	assert.True(t, byTicket["BRW_C"].IsReturned)
	assert.NotEmpty(t, byTicket["BRW_C"].ReturnDate)
	assert.Equal(t, "Go语言实战", byTicket["BRW_A"].BookTitle)
}

// TestListOverdue 测试逾期视图
func TestListOverdue(t *testing.T) {
	ctx := context.Background()

	bookRepo := newFakeBookRepo(testBook(1, 3, 3))
	lendingRepo := newFakeLendingRepo()

	overdue := lending.NewBorrowing("BRW_OD", 1, 10, time.Now().Add(time.Hour))
	overdue.DueDate = time.Now().Add(-time.Hour)
	fine := lending.NewBorrowing("BRW_OK", 1, 20, time.Now().Add(7*24*time.Hour))
	require.NoError(t, lendingRepo.Create(ctx, overdue))
	require.NoError(t, lendingRepo.Create(ctx, fine))

	uc := NewQueryBorrowingsUseCase(lending.NewService(lendingRepo), bookRepo, testTimeout)
	items, err := uc.ListOverdue(ctx)
	require.NoError(t, err)

	require.Len(t, items, 1, "只返回已逾期的记录")
	assert.Equal(t, "BRW_OD", items[0].TicketNo)
	assert.True(t, items[0].IsOverdue)
}

// TestBookTitleDegraded 测试书名查询失败时降级
func TestBookTitleDegraded(t *testing.T) {
	ctx := context.Background()

	bookRepo := newFakeBookRepo() // 空仓储,书名查不到
	bookRepo.findErr = errors.New("图书表不可用")
	lendingRepo := newFakeLendingRepo()
	require.NoError(t, lendingRepo.Create(ctx, lending.NewBorrowing("BRW_X", 1, 10, time.Time{})))

	uc := NewQueryBorrowingsUseCase(lending.NewService(lendingRepo), bookRepo, testTimeout)
	items, err := uc.ListForUser(ctx, 10)

	require.NoError(t, err, "书名只是展示增强,查询失败不影响台账返回")
	require.Len(t, items, 1)
	assert.Empty(t, items[0].BookTitle)
}
