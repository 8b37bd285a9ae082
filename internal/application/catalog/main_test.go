package catalog

import (
	"os"
	"testing"

	"github.com/xiebiao/unilib/pkg/metrics"
)

// TestMain 注册Prometheus指标后再跑用例
// 用例会走到metrics.* 的计数路径,不注册直接解引用nil会panic
func TestMain(m *testing.M) {
	metrics.InitMetrics()
	os.Exit(m.Run())
}
