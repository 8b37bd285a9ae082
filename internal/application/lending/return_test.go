package lending

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/unilib/internal/domain/lending"
	"github.com/xiebiao/unilib/internal/domain/reservation"
)

// 教学说明：归还用例单元测试
//
// 测试场景覆盖：
// 1. 正常归还：台账补写归还字段 + 副本计数复原
// 2. 无未归还记录：返回NoActiveBorrowing
// 3. 多条在借记录时归还最早的一条
// 4. 归还触发预约兑现(best-effort)

// borrowThenSetup 先完成一次借阅,返回组装好的归还用例
func borrowSetup(t *testing.T) (*fakeBookRepo, *fakeLendingRepo, *fakeReservationService, *ReturnUseCase) {
	t.Helper()
	bookRepo := newFakeBookRepo(testBook(1, 3, 3))
	lendingRepo := newFakeLendingRepo()
	resSvc := &fakeReservationService{}

	borrowUC := NewBorrowUseCase(bookRepo, lendingRepo, newFakeStatsRepo(), testTimeout)
	_, err := borrowUC.Execute(context.Background(), BorrowRequest{BookID: 1, UserID: 10})
	require.NoError(t, err)

	return bookRepo, lendingRepo, resSvc, NewReturnUseCase(bookRepo, lendingRepo, resSvc, testTimeout)
}

// TestReturn 测试正常归还
func TestReturn(t *testing.T) {
	ctx := context.Background()

	bookRepo, lendingRepo, _, uc := borrowSetup(t)
	require.Equal(t, 2, bookRepo.books[1].AvailableCopies)

	resp, err := uc.Execute(ctx, 1, 10)
	require.NoError(t, err)

	assert.Equal(t, 3, bookRepo.books[1].AvailableCopies, "副本计数复原")
	assert.Equal(t, 0, lendingRepo.activeCount(1), "台账补写归还字段")
	assert.False(t, resp.WasOverdue)
	assert.NotEmpty(t, resp.TicketNo)
}

// TestReturnNoActiveBorrowing 测试无未归还记录
func TestReturnNoActiveBorrowing(t *testing.T) {
	ctx := context.Background()

	t.Run("从未借过", func(t *testing.T) {
		_, _, _, uc := borrowSetup(t)

		_, err := uc.Execute(ctx, 1, 99)
		assert.ErrorIs(t, err, lending.ErrNoActiveBorrowing)
	})

	t.Run("重复归还", func(t *testing.T) {
		bookRepo, _, _, uc := borrowSetup(t)

		_, err := uc.Execute(ctx, 1, 10)
		require.NoError(t, err)

		_, err = uc.Execute(ctx, 1, 10)
		assert.ErrorIs(t, err, lending.ErrNoActiveBorrowing, "已归还后再还一次应报错")
		assert.Equal(t, 3, bookRepo.books[1].AvailableCopies, "计数不会超过馆藏总数")
	})
}

// TestReturnEarliestFirst 测试多副本在借时归还最早的一条
func TestReturnEarliestFirst(t *testing.T) {
	ctx := context.Background()

	bookRepo := newFakeBookRepo(testBook(1, 3, 3))
	lendingRepo := newFakeLendingRepo()
	borrowUC := NewBorrowUseCase(bookRepo, lendingRepo, newFakeStatsRepo(), testTimeout)

	// 同一用户借两个副本
	first, err := borrowUC.Execute(ctx, BorrowRequest{BookID: 1, UserID: 10})
	require.NoError(t, err)
	second, err := borrowUC.Execute(ctx, BorrowRequest{BookID: 1, UserID: 10})
	require.NoError(t, err)

	uc := NewReturnUseCase(bookRepo, lendingRepo, &fakeReservationService{}, testTimeout)
	resp, err := uc.Execute(ctx, 1, 10)
	require.NoError(t, err)

	assert.Equal(t, first.TicketNo, resp.TicketNo, "归还最早借出的那条")
	assert.Equal(t, 1, lendingRepo.activeCount(1))

	resp, err = uc.Execute(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, second.TicketNo, resp.TicketNo)
	assert.Equal(t, 3, bookRepo.books[1].AvailableCopies)
}

// TestReturnOverdue 测试逾期归还标注
func TestReturnOverdue(t *testing.T) {
	ctx := context.Background()

	bookRepo := newFakeBookRepo(testBook(1, 3, 2))
	lendingRepo := newFakeLendingRepo()

	// 直接造一条已逾期的在借记录
	overdue := lending.NewBorrowing("BRW_OVERDUE", 1, 10, time.Now().Add(time.Hour))
	overdue.DueDate = time.Now().Add(-48 * time.Hour)
	require.NoError(t, lendingRepo.Create(ctx, overdue))

	uc := NewReturnUseCase(bookRepo, lendingRepo, &fakeReservationService{}, testTimeout)
	resp, err := uc.Execute(ctx, 1, 10)
	require.NoError(t, err)

	assert.True(t, resp.WasOverdue, "归还时已逾期应如实标注")
}

// TestReturnCompensatesOnCounterFailure 测试副本计数写失败时的补偿
//
// 归还是两步写:台账补写归还字段 → 副本计数+1
// 第二步失败时必须把台账退回未归还状态,否则这个副本就永久丢失,
// 而且重试会因为找不到在借记录直接报NoActiveBorrowing
func TestReturnCompensatesOnCounterFailure(t *testing.T) {
	ctx := context.Background()

	bookRepo, lendingRepo, _, uc := borrowSetup(t)
	require.Equal(t, 2, bookRepo.books[1].AvailableCopies)

	// 借阅成功后,让副本计数的存储写失败
	bookRepo.updateErr = errors.New("存储不可用")

	_, err := uc.Execute(ctx, 1, 10)
	require.Error(t, err)

	assert.Equal(t, 1, lendingRepo.activeCount(1), "补偿后台账恢复为未归还")
	assert.Equal(t, 2, bookRepo.books[1].AvailableCopies, "副本计数未动")

	// 存储恢复后重试,这次应当完整归还
	bookRepo.updateErr = nil
	resp, err := uc.Execute(ctx, 1, 10)
	require.NoError(t, err, "台账已退回,重试不应报NoActiveBorrowing")

	assert.NotEmpty(t, resp.TicketNo)
	assert.Equal(t, 3, bookRepo.books[1].AvailableCopies, "重试后副本计数复原")
	assert.Equal(t, 0, lendingRepo.activeCount(1))
}

// TestReturnFulfillsReservation 测试归还触发预约兑现
func TestReturnFulfillsReservation(t *testing.T) {
	ctx := context.Background()

	t.Run("归还后兑现队列中最早的预约", func(t *testing.T) {
		bookRepo, _, resSvc, uc := borrowSetup(t)
		resSvc.next = &reservation.Reservation{ID: 5, BookID: 1, UserID: 20, Status: reservation.StatusFulfilled}

		_, err := uc.Execute(ctx, 1, 10)
		require.NoError(t, err)

		assert.Equal(t, []uint{1}, resSvc.fulfilled, "归还后尝试兑现该书的预约")
		assert.Equal(t, 3, bookRepo.books[1].AvailableCopies)
	})

	t.Run("兑现失败不影响归还", func(t *testing.T) {
		bookRepo, lendingRepo, resSvc, uc := borrowSetup(t)
		resSvc.fulfillErr = errors.New("预约表不可用")

		_, err := uc.Execute(ctx, 1, 10)
		require.NoError(t, err, "书已经还了,兑现失败只记日志")
		assert.Equal(t, 3, bookRepo.books[1].AvailableCopies)
		assert.Equal(t, 0, lendingRepo.activeCount(1))
	})
}
