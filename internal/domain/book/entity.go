package book

import (
	"time"
)

// AvailabilityStatus 图书可借状态（粗粒度视图）
// 设计说明:
// 1. 历史上状态列与副本计数器是两份独立数据,不同代码路径各自更新,容易失步
// 2. 现在以AvailableCopies计数器为唯一事实来源,状态只是派生视图
// 3. Reserved不由计数器单独决定,需要结合待处理预约数(见StatusWith)
type AvailabilityStatus string

const (
	StatusAvailable AvailabilityStatus = "available" // 有可借副本
	StatusBorrowed  AvailabilityStatus = "borrowed"  // 全部借出
	StatusReserved  AvailabilityStatus = "reserved"  // 全部借出且有人预约
)

// Book 图书实体(聚合根)
// DDD设计说明:
// 1. Book是图书聚合的根实体,包含馆藏图书的核心属性
// 2. TotalCopies/AvailableCopies是馆藏副本计数,不变量: 0 <= Available <= Total
// 3. ISBN作为业务唯一标识(数据库层保证唯一性)
// 4. 评分均值、点赞数等聚合指标由stats聚合维护,不放在本实体上
type Book struct {
	ID              uint
	ISBN            string // ISBN号(国际标准书号)
	Title           string // 书名
	Author          string // 作者
	Publisher       string // 出版社
	PublishYear     int    // 出版年份
	Category        string // 分类
	Language        string // 语种
	Description     string // 图书简介
	CoverURL        string // 封面图片URL
	TotalCopies     int    // 馆藏副本总数
	AvailableCopies int    // 当前可借副本数
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewBook 创建新图书(工厂方法)
// 初始时所有副本均可借: AvailableCopies = TotalCopies
func NewBook(isbn, title, author, publisher string, year int, category, language, description, coverURL string, totalCopies int) *Book {
	now := time.Now()
	return &Book{
		ISBN:            isbn,
		Title:           title,
		Author:          author,
		Publisher:       publisher,
		PublishYear:     year,
		Category:        category,
		Language:        language,
		Description:     description,
		CoverURL:        coverURL,
		TotalCopies:     totalCopies,
		AvailableCopies: totalCopies,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Status 可借状态(派生视图)
// 业务规则: Available ⟺ AvailableCopies > 0
func (b *Book) Status() AvailabilityStatus {
	if b.AvailableCopies > 0 {
		return StatusAvailable
	}
	return StatusBorrowed
}

// StatusWith 结合待处理预约数的可借状态
// 全部借出且存在预约时,对外展示为Reserved
func (b *Book) StatusWith(pendingReservations int) AvailabilityStatus {
	if b.AvailableCopies > 0 {
		return StatusAvailable
	}
	if pendingReservations > 0 {
		return StatusReserved
	}
	return StatusBorrowed
}

// IsAvailable 是否有可借副本
func (b *Book) IsAvailable() bool {
	return b.AvailableCopies > 0
}

// BorrowCopy 借出一个副本(领域行为)
// 业务规则: 无可借副本时返回ErrNotAvailable
func (b *Book) BorrowCopy() error {
	if b.AvailableCopies <= 0 {
		return ErrNotAvailable
	}
	b.AvailableCopies--
	b.UpdatedAt = time.Now()
	return nil
}

// ReturnCopy 归还一个副本(领域行为)
// 业务规则: 可借副本数不超过馆藏总数(防止重复归还把计数撑爆)
func (b *Book) ReturnCopy() {
	if b.AvailableCopies < b.TotalCopies {
		b.AvailableCopies++
	}
	b.UpdatedAt = time.Now()
}

// UpdateInfo 更新图书基本信息
func (b *Book) UpdateInfo(title, author, publisher, category, language, description string) {
	if title != "" {
		b.Title = title
	}
	if author != "" {
		b.Author = author
	}
	if publisher != "" {
		b.Publisher = publisher
	}
	if category != "" {
		b.Category = category
	}
	if language != "" {
		b.Language = language
	}
	if description != "" {
		b.Description = description
	}
	b.UpdatedAt = time.Now()
}

// AdjustTotalCopies 调整馆藏副本总数(领域行为)
// 业务规则:
// - 新总数必须>=已借出数量(否则归还时副本无处可放)
// - 可借数按差值同步调整,保持 0 <= Available <= Total
func (b *Book) AdjustTotalCopies(newTotal int) error {
	if newTotal < 1 {
		return ErrInvalidCopies
	}
	borrowed := b.TotalCopies - b.AvailableCopies
	if newTotal < borrowed {
		return ErrInvalidCopies
	}
	b.TotalCopies = newTotal
	b.AvailableCopies = newTotal - borrowed
	b.UpdatedAt = time.Now()
	return nil
}
