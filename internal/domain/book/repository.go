package book

import (
	"context"
)

// 排序方式
const (
	SortPopular    = "popular"     // 最受欢迎(按点赞数降序)
	SortNewest     = "newest"      // 最新出版(按出版年份降序)
	SortTitleAsc   = "title_asc"   // 书名A-Z
	SortAuthorAsc  = "author_asc"  // 作者A-Z
	SortCreatedAsc = "created_asc" // 入库顺序
)

// Repository 图书仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 便于Mock测试,不依赖具体数据库实现
// 3. 任何存储调用失败统一包装为StoreUnavailable向上传播
type Repository interface {
	// Create 创建图书
	Create(ctx context.Context, book *Book) error

	// FindByID 根据ID查找图书
	FindByID(ctx context.Context, id uint) (*Book, error)

	// FindByISBN 根据ISBN查找图书
	FindByISBN(ctx context.Context, isbn string) (*Book, error)

	// Update 更新图书信息
	Update(ctx context.Context, book *Book) error

	// Delete 删除图书(软删除)
	Delete(ctx context.Context, id uint) error

	// Search 搜索图书
	// 对标题/作者/分类/简介做大小写不敏感的子串匹配
	Search(ctx context.Context, query string) ([]*Book, error)

	// List 按条件过滤图书列表
	List(ctx context.Context, params ListParams) ([]*Book, error)

	// Count 图书总数
	Count(ctx context.Context) (int64, error)

	// LockByID 悲观锁查询图书(用于借阅流程锁定副本计数)
	// 使用SELECT FOR UPDATE锁定行,防止并发借阅超借
	LockByID(ctx context.Context, id uint) (*Book, error)

	// UpdateAvailableCopies 原子更新可借副本数
	// delta为正数表示归还,负数表示借出
	// 内部带守卫条件: 0 <= available_copies + delta <= total_copies
	// 借出时副本不足返回ErrNotAvailable(这是防止计数为负的最后防线)
	UpdateAvailableCopies(ctx context.Context, id uint, delta int) error
}

// ListParams 列表过滤参数
type ListParams struct {
	Categories    []string // 分类(多选,空表示不过滤)
	AvailableOnly bool     // 仅显示有可借副本的图书
	Language      string   // 语种(空表示不过滤)
	SortBy        string   // 排序方式(见Sort*常量)
	Limit         int      // 返回条数上限(0表示不限制)
}
