package lending

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenerateTicketNo 生成借阅单号
// 设计原则:
// 1. 全局唯一(数据库唯一索引兜底)
// 2. 时间有序(便于排查问题)
// 3. 不可预测(防止恶意遍历)
//
// 后缀取UUIDv4的前4字节,熵来自crypto/rand,
// math/rand的序列可被推算,不满足第3条
//
// 格式:BRW + 时间戳(秒) + 8位十六进制随机后缀
// 示例:BRW1699248000a3f91c02
func GenerateTicketNo() string {
	u := uuid.New()
	timestamp := time.Now().Unix()
	suffix := binary.BigEndian.Uint32(u[:4])
	return fmt.Sprintf("BRW%d%08x", timestamp, suffix)
}
