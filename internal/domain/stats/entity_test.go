package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// 教学说明：动态时间标签单元测试
//
// 业务规则：
// - 1分钟内: 刚刚
// - 1小时内: X分钟前
// - 24小时内: X小时前
// - 30天内: X天前
// - 超过30天: 绝对日期(yyyy-MM-dd)
//
// 边界值是这类规则最容易出错的地方,逐一覆盖

func activityAt(at time.Time) *Activity {
	a := NewActivity(ActivityBookAdded, 1, 0, "Go语言实战")
	a.CreatedAt = at
	return a
}

// TestTimeLabel 测试相对时间标签
func TestTimeLabel(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.Local)

	tests := []struct {
		name    string
		elapsed time.Duration
		want    string
	}{
		{"刚刚发生", 10 * time.Second, "刚刚"},
		{"59秒仍算刚刚", 59 * time.Second, "刚刚"},
		{"满1分钟", time.Minute, "1分钟前"},
		{"30分钟", 30 * time.Minute, "30分钟前"},
		{"59分钟", 59 * time.Minute, "59分钟前"},
		{"满1小时", time.Hour, "1小时前"},
		{"23小时", 23 * time.Hour, "23小时前"},
		{"满24小时", 24 * time.Hour, "1天前"},
		{"29天", 29 * 24 * time.Hour, "29天前"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := activityAt(now.Add(-tt.elapsed))
			assert.Equal(t, tt.want, a.TimeLabel(now))
		})
	}

	t.Run("超过30天退化为绝对日期", func(t *testing.T) {
		created := now.Add(-31 * 24 * time.Hour)
		a := activityAt(created)
		assert.Equal(t, created.Format("2006-01-02"), a.TimeLabel(now))
	})

	t.Run("恰好30天退化为绝对日期", func(t *testing.T) {
		created := now.Add(-30 * 24 * time.Hour)
		a := activityAt(created)
		assert.Equal(t, created.Format("2006-01-02"), a.TimeLabel(now))
	})
}
