package engagement

import (
	"time"
)

// 评分取值范围
const (
	MinRating = 1
	MaxRating = 5
)

// Rating 评分实体
// 设计说明:
// 1. 每个(用户,图书)至多一条评分,重复评分就地更新而非插入
// 2. 评论单独存储,只通过(图书,用户)键关联评分,读取时拼接
type Rating struct {
	ID        uint
	BookID    uint // 图书ID
	UserID    uint // 评分人用户ID
	Value     int  // 评分值,取值[1,5]
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRating 创建评分(工厂方法)
// 取值校验由Service完成,这里只负责装配
func NewRating(bookID, userID uint, value int) *Rating {
	now := time.Now()
	return &Rating{
		BookID:    bookID,
		UserID:    userID,
		Value:     value,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// UpdateValue 就地更新评分值(领域行为)
func (r *Rating) UpdateValue(value int) {
	r.Value = value
	r.UpdatedAt = time.Now()
}

// Like 点赞实体
// 每个(用户,图书)至多一条,存在与否决定totalLikes的增减
type Like struct {
	ID        uint
	BookID    uint
	UserID    uint
	CreatedAt time.Time
}

// NewLike 创建点赞
func NewLike(bookID, userID uint) *Like {
	return &Like{
		BookID:    bookID,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
}

// Comment 评论实体
// 独立于评分存储,读取时按(图书,用户)键与评分拼接
type Comment struct {
	ID        uint
	BookID    uint
	UserID    uint
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewComment 创建评论
func NewComment(bookID, userID uint, content string) *Comment {
	now := time.Now()
	return &Comment{
		BookID:    bookID,
		UserID:    userID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
