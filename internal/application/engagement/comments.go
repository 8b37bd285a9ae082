package engagement

import (
	"context"
	"time"

	"github.com/xiebiao/unilib/internal/domain/engagement"
	"github.com/xiebiao/unilib/internal/domain/user"
)

// CommentsUseCase 评论查询用例
type CommentsUseCase struct {
	engagementSvc engagement.Service
	userRepo      user.Repository
	storeTimeout  time.Duration
}

// NewCommentsUseCase 创建评论查询用例
func NewCommentsUseCase(
	engagementSvc engagement.Service,
	userRepo user.Repository,
	storeTimeout time.Duration,
) *CommentsUseCase {
	return &CommentsUseCase{
		engagementSvc: engagementSvc,
		userRepo:      userRepo,
		storeTimeout:  storeTimeout,
	}
}

// CommentItem 评论列表项DTO
type CommentItem struct {
	UserID    uint   `json:"user_id"`
	Nickname  string `json:"nickname"`
	Content   string `json:"content"`
	Rating    int    `json:"rating"` // 该用户的评分(0表示未评分)
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ListForBook 某书的评论列表(按创建时间倒序)
// 评论与评分独立存储,读取时按(图书,用户)键拼接;
// 昵称查询失败降级为空(展示增强,不是主数据)
func (uc *CommentsUseCase) ListForBook(ctx context.Context, bookID uint) ([]CommentItem, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.storeTimeout)
	defer cancel()

	comments, err := uc.engagementSvc.CommentsForBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	items := make([]CommentItem, len(comments))
	for i, c := range comments {
		item := CommentItem{
			UserID:    c.UserID,
			Content:   c.Content,
			CreatedAt: c.CreatedAt.Format("2006-01-02 15:04:05"),
			UpdatedAt: c.UpdatedAt.Format("2006-01-02 15:04:05"),
		}

		if u, err := uc.userRepo.FindByID(ctx, c.UserID); err == nil {
			item.Nickname = u.Nickname
		}
		if state, err := uc.engagementSvc.StateForUser(ctx, bookID, c.UserID); err == nil && state.Rating != nil {
			item.Rating = state.Rating.Value
		}

		items[i] = item
	}
	return items, nil
}
