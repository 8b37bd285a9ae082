package book

import (
	"context"
	"regexp"
	"time"
)

// Service 图书领域服务接口
// 设计说明:
// 1. 领域服务封装跨实体的业务逻辑和业务规则校验
// 2. 不依赖具体的Repository实现(依赖倒置)
// 3. 借还/预约等跨聚合流程在application层编排,这里只管目录本身
type Service interface {
	// AddBook 图书入库(上架)
	// 业务规则:
	// - ISBN格式必须合法(10位或13位数字)
	// - 副本数必须>=1
	// - 出版年份必须在合理区间
	// - ISBN不能重复
	AddBook(ctx context.Context, isbn, title, author, publisher string, year int, category, language, description, coverURL string, totalCopies int) (*Book, error)

	// GetBookByID 根据ID获取图书详情
	GetBookByID(ctx context.Context, id uint) (*Book, error)

	// GetBookByISBN 根据ISBN获取图书
	GetBookByISBN(ctx context.Context, isbn string) (*Book, error)

	// UpdateBookInfo 更新图书基本信息
	UpdateBookInfo(ctx context.Context, id uint, title, author, publisher, category, language, description string) (*Book, error)

	// AdjustCopies 调整馆藏副本总数
	// 业务规则: 新总数不得少于当前已借出数量
	AdjustCopies(ctx context.Context, id uint, newTotal int) (*Book, error)

	// SearchBooks 搜索图书(标题/作者/分类/简介子串匹配)
	SearchBooks(ctx context.Context, query string) ([]*Book, error)

	// ListBooks 按条件过滤图书列表
	ListBooks(ctx context.Context, params ListParams) ([]*Book, error)
}

// service 领域服务实现
type service struct {
	repo Repository
}

// NewService 创建图书领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// AddBook 图书入库
func (s *service) AddBook(ctx context.Context, isbn, title, author, publisher string, year int, category, language, description, coverURL string, totalCopies int) (*Book, error) {
	// 1. ISBN格式校验
	if !isValidISBN(isbn) {
		return nil, ErrInvalidISBN
	}

	// 2. 副本数校验
	if totalCopies < 1 {
		return nil, ErrInvalidCopies
	}

	// 3. 出版年份校验(现代出版物区间)
	if year < 1450 || year > time.Now().Year()+1 {
		return nil, ErrInvalidYear
	}

	// 4. 检查ISBN是否已存在
	existing, err := s.repo.FindByISBN(ctx, isbn)
	if err == nil && existing != nil {
		return nil, ErrISBNDuplicate
	}
	// 如果是ErrBookNotFound以外的错误,返回
	if err != nil && err != ErrBookNotFound {
		return nil, err
	}

	// 5. 创建图书实体
	b := NewBook(isbn, title, author, publisher, year, category, language, description, coverURL, totalCopies)

	// 6. 持久化
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

// GetBookByID 根据ID获取图书
func (s *service) GetBookByID(ctx context.Context, id uint) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

// GetBookByISBN 根据ISBN获取图书
func (s *service) GetBookByISBN(ctx context.Context, isbn string) (*Book, error) {
	if !isValidISBN(isbn) {
		return nil, ErrInvalidISBN
	}
	return s.repo.FindByISBN(ctx, isbn)
}

// UpdateBookInfo 更新图书基本信息
func (s *service) UpdateBookInfo(ctx context.Context, id uint, title, author, publisher, category, language, description string) (*Book, error) {
	// 1. 查询图书
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// 2. 更新信息
	b.UpdateInfo(title, author, publisher, category, language, description)

	// 3. 持久化
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// AdjustCopies 调整馆藏副本总数
func (s *service) AdjustCopies(ctx context.Context, id uint, newTotal int) (*Book, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := b.AdjustTotalCopies(newTotal); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// SearchBooks 搜索图书
func (s *service) SearchBooks(ctx context.Context, query string) ([]*Book, error) {
	return s.repo.Search(ctx, query)
}

// ListBooks 按条件过滤图书列表
func (s *service) ListBooks(ctx context.Context, params ListParams) ([]*Book, error) {
	return s.repo.List(ctx, params)
}

// =========================================
// 辅助函数:业务规则校验
// =========================================

// isValidISBN 校验ISBN格式
// 支持:
// - ISBN-10: 10位数字
// - ISBN-13: 13位数字
// 简化实现:只检查位数和是否全为数字(生产环境应校验校验位)
func isValidISBN(isbn string) bool {
	// 去除可能的分隔符(如978-7-115-42802-8 → 9787115428028)
	re := regexp.MustCompile(`[^0-9Xx]`)
	cleanISBN := re.ReplaceAllString(isbn, "")

	length := len(cleanISBN)
	return length == 10 || length == 13
}
