// Package keylock 提供按Key（字符串）粒度的互斥锁
//
// 使用场景：预约登记要求"同一用户同一本书至多一条待处理预约",
// 这是一个跨行的业务约束,单靠行锁覆盖不住"先查后插"的窗口。
// 按 book:user 维度串行化这段临界区,不同图书之间互不阻塞。
//
// 使用方式：
//
//	locker := keylock.New()
//	unlock := locker.Lock(fmt.Sprintf("reserve:%d:%d", bookID, userID))
//	defer unlock()
//	// ... 查询是否已有待处理预约,没有则插入 ...
//
// 注意：仅在单进程内有效,多实例部署时应换成数据库唯一索引
// 或Redis分布式锁兜底（本项目两者都有,keylock减少冲突报错）。
package keylock

import "sync"

// KeyLock 按Key分配互斥锁,Key不存在时惰性创建
type KeyLock struct {
	mu    sync.Mutex
	locks map[string]*entry
}

// entry 引用计数的锁,最后一个持有者释放时从map删除,
// 避免Key无限增长（每本书每个用户都可能留下一条）
type entry struct {
	mu   sync.Mutex
	refs int
}

// New 创建一个KeyLock
func New() *KeyLock {
	return &KeyLock{
		locks: make(map[string]*entry),
	}
}

// Lock 获取key对应的互斥锁,返回解锁函数
//
// 返回闭包而不是暴露Unlock(key),调用方不可能解错Key
func (k *KeyLock) Lock(key string) func() {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// Len 当前持有中的Key数量（测试与监控用）
func (k *KeyLock) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
