package lending

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 教学说明：借阅台账实体单元测试
//
// 核心关注点：是否逾期永远在查询时基于asOf计算,台账里没有逾期列
// 这样"逾期"永远不会是陈旧数据

// TestIsOverdue 测试逾期判定
func TestIsOverdue(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	t.Run("未到应还日期不逾期", func(t *testing.T) {
		b := NewBorrowing("BRW001", 1, 1, now.Add(48*time.Hour))
		assert.False(t, b.IsOverdue(now))
	})

	t.Run("超过应还日期即逾期", func(t *testing.T) {
		b := NewBorrowing("BRW002", 1, 1, now.Add(-time.Hour))
		assert.True(t, b.IsOverdue(now))
	})

	t.Run("已归还的记录永不逾期", func(t *testing.T) {
		b := NewBorrowing("BRW003", 1, 1, now.Add(-time.Hour))
		require.NoError(t, b.MarkReturned(now))
		assert.False(t, b.IsOverdue(now), "已归还的记录不算逾期,哪怕还晚了")
	})

	t.Run("逾期判定随asOf变化", func(t *testing.T) {
		// 同一条记录,在不同的时间点查询结论不同
		b := NewBorrowing("BRW004", 1, 1, now.Add(24*time.Hour))
		assert.False(t, b.IsOverdue(now))
		assert.True(t, b.IsOverdue(now.Add(48*time.Hour)))
	})
}

// TestMarkReturned 测试归还流转
func TestMarkReturned(t *testing.T) {
	now := time.Now()

	t.Run("正常归还", func(t *testing.T) {
		b := NewBorrowing("BRW005", 1, 1, time.Time{})
		require.NoError(t, b.MarkReturned(now))
		assert.True(t, b.IsReturned)
		require.NotNil(t, b.ReturnDate)
		assert.Equal(t, now, *b.ReturnDate)
	})

	t.Run("重复归还应失败", func(t *testing.T) {
		b := NewBorrowing("BRW006", 1, 1, time.Time{})
		require.NoError(t, b.MarkReturned(now))
		assert.ErrorIs(t, b.MarkReturned(now), ErrAlreadyReturned)
	})

	t.Run("撤销归还后可再次归还", func(t *testing.T) {
		// 归还Saga补偿时走这条路:台账退回未归还,重试不受影响
		b := NewBorrowing("BRW009", 1, 1, time.Time{})
		require.NoError(t, b.MarkReturned(now))

		b.UnmarkReturned(now)
		assert.False(t, b.IsReturned)
		assert.Nil(t, b.ReturnDate)
		require.NoError(t, b.MarkReturned(now))
	})
}

// TestDefaultLoanPeriod 测试默认借期
func TestDefaultLoanPeriod(t *testing.T) {
	b := NewBorrowing("BRW007", 1, 1, time.Time{})

	expected := b.BorrowDate.Add(DefaultLoanPeriod)
	assert.WithinDuration(t, expected, b.DueDate, time.Second, "未指定应还日期时取默认14天借期")
}

// TestIsOwnedBy 测试归属检查
func TestIsOwnedBy(t *testing.T) {
	b := NewBorrowing("BRW008", 1, 42, time.Time{})
	assert.True(t, b.IsOwnedBy(42))
	assert.False(t, b.IsOwnedBy(7))
}

// TestGenerateTicketNo 测试借阅单号生成
func TestGenerateTicketNo(t *testing.T) {
	no := GenerateTicketNo()
	assert.True(t, strings.HasPrefix(no, "BRW"), "单号以BRW开头")
	assert.Regexp(t, `^BRW\d{10}[0-9a-f]{8}$`, no, "时间戳+UUID十六进制后缀")

	// 同一秒内生成的单号靠UUID后缀区分
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		seen[GenerateTicketNo()] = true
	}
	assert.Len(t, seen, 100, "单号不应重复")
}
