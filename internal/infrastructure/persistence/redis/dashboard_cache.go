package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/xiebiao/unilib/pkg/errors"
)

// dashboardKey 仪表盘汇总的缓存Key
const dashboardKey = "dashboard:summary"

// DashboardCache 仪表盘汇总缓存
// 设计说明:
// 1. 仪表盘聚合5张表的统计结果,每次现算代价不小,用短TTL缓存吸收读压力
// 2. 缓存永远是可丢的:Get失败或未命中都当作miss,由调用方现算回填
// 3. 值为JSON序列化的汇总对象,结构由调用方定义(泛型存取)
type DashboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDashboardCache 创建仪表盘缓存
func NewDashboardCache(client *redis.Client, ttl time.Duration) *DashboardCache {
	return &DashboardCache{client: client, ttl: ttl}
}

// Get 读取缓存的汇总,写入dest
// 未命中返回(false, nil);Redis故障同样按未命中处理(fail-soft)
func (c *DashboardCache) Get(ctx context.Context, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, dashboardKey).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		// 缓存故障不阻塞仪表盘,调用方直接现算
		return false, nil
	}

	if err := json.Unmarshal(data, dest); err != nil {
		// 缓存内容损坏:当作未命中,下次Set时覆盖
		return false, nil
	}
	return true, nil
}

// Set 回填汇总缓存
func (c *DashboardCache) Set(ctx context.Context, summary interface{}) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return apperrors.Wrap(err, "序列化仪表盘汇总失败")
	}

	if err := c.client.Set(ctx, dashboardKey, data, c.ttl).Err(); err != nil {
		return apperrors.Wrap(err, "写入仪表盘缓存失败")
	}
	return nil
}

// Invalidate 主动失效(借阅/归还等写操作后调用,避免读到过期计数)
func (c *DashboardCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, dashboardKey).Err(); err != nil {
		return apperrors.Wrap(err, "失效仪表盘缓存失败")
	}
	return nil
}
