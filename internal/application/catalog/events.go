package catalog

import (
	"log"

	"github.com/google/uuid"

	"github.com/xiebiao/unilib/pkg/metrics"
	"github.com/xiebiao/unilib/pkg/mq"
)

// 目录事件路由键
// Topic交换机按catalog.book.*订阅全部目录变更
const (
	RoutingBookAdded   = "catalog.book.created"
	RoutingBookUpdated = "catalog.book.updated"
	RoutingBookDeleted = "catalog.book.deleted"
)

// BookEvent 目录变更事件
// 下游(检索索引、推荐系统)据此增量同步,事件只携带标识信息,
// 详情由消费方回查
type BookEvent struct {
	EventID string `json:"event_id"` // UUID,消费方据此去重
	BookID  int64  `json:"book_id"`
	ISBN    string `json:"isbn"`
	Title   string `json:"title"`
	Action  string `json:"action"`
}

// EventPublisher 目录事件发布器
// 设计说明:
// 1. MQ是可选组件(配置enabled=false时publisher为nil),
//    事件发布永远是best-effort:失败只记日志,绝不阻塞目录写入
// 2. 这里包一层是为了让用例代码不感知publisher是否存在
type EventPublisher struct {
	publisher *mq.Publisher // 可为nil
	exchange  string
}

// NewEventPublisher 创建事件发布器(publisher可为nil)
func NewEventPublisher(publisher *mq.Publisher, exchange string) *EventPublisher {
	return &EventPublisher{publisher: publisher, exchange: exchange}
}

// Publish 发布目录事件(best-effort)
func (p *EventPublisher) Publish(routingKey string, event BookEvent) {
	if p == nil || p.publisher == nil {
		return
	}
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if err := p.publisher.Publish(routingKey, event); err != nil {
		log.Printf("目录事件发布失败[%s]: %v", routingKey, err)
		return
	}
	metrics.IncCounterVec(metrics.MessagesPublishedTotal, map[string]string{
		"exchange":    p.exchange,
		"routing_key": routingKey,
	})
}
