package engagement

import (
	"context"
)

// RatingSummary 评分汇总(供application层回写统计投影)
type RatingSummary struct {
	Average float64 // 评分均值
	Count   int64   // 评分条数
}

// UserState 用户对某书的互动状态(目录查询时的标注)
type UserState struct {
	Liked  bool    // 是否已点赞
	Rating *Rating // 用户自己的评分(未评分时为nil)
}

// Service 互动聚合领域服务
// 设计说明:
// 1. 点赞/取消点赞均为幂等操作:重复点赞不报错也不重复计数,
//    返回的changed标志告诉调用方本次是否真的发生了状态变化
//    (统计投影只在changed时±1)
// 2. 评分就地更新,任何变更后均值都按全量评分重算,不做增量近似
type Service interface {
	// Like 点赞
	// 已点赞时为无操作,changed=false
	Like(ctx context.Context, bookID, userID uint) (changed bool, err error)

	// Unlike 取消点赞
	// 未点赞时为无操作,changed=false
	Unlike(ctx context.Context, bookID, userID uint) (changed bool, err error)

	// Rate 评分(可附评论)
	// 业务规则: value必须在[1,5],否则返回ErrInvalidRating
	// 返回变更后的全量评分汇总
	Rate(ctx context.Context, bookID, userID uint, value int, comment string) (*Rating, RatingSummary, error)

	// StateForUser 用户对某书的互动状态
	StateForUser(ctx context.Context, bookID, userID uint) (*UserState, error)

	// StatesForUser 用户对一批图书的互动状态(列表页标注)
	// 底层是两条IN查询,不随图书数量退化成N+1;
	// 没有任何互动的图书不会出现在返回的map里
	StatesForUser(ctx context.Context, userID uint, bookIDs []uint) (map[uint]UserState, error)

	// CommentsForBook 某书的评论列表
	CommentsForBook(ctx context.Context, bookID uint) ([]*Comment, error)

	// CommentsCount 某书的评论数
	CommentsCount(ctx context.Context, bookID uint) (int64, error)
}

type service struct {
	repo Repository
}

// NewService 创建互动服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Like 点赞(幂等)
func (s *service) Like(ctx context.Context, bookID, userID uint) (bool, error) {
	// 1. 已点赞则视为成功,不重复插入
	_, err := s.repo.FindLike(ctx, bookID, userID)
	if err == nil {
		return false, nil
	}
	if err != ErrLikeNotFound {
		return false, err
	}

	// 2. 插入点赞记录
	// 并发的重复点赞可能在这里撞唯一索引,同样按幂等成功处理
	if err := s.repo.CreateLike(ctx, NewLike(bookID, userID)); err != nil {
		if err == ErrAlreadyLiked {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Unlike 取消点赞(幂等)
func (s *service) Unlike(ctx context.Context, bookID, userID uint) (bool, error) {
	_, err := s.repo.FindLike(ctx, bookID, userID)
	if err == ErrLikeNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := s.repo.DeleteLike(ctx, bookID, userID); err != nil {
		return false, err
	}
	return true, nil
}

// Rate 评分
func (s *service) Rate(ctx context.Context, bookID, userID uint, value int, comment string) (*Rating, RatingSummary, error) {
	// 1. 取值校验
	if value < MinRating || value > MaxRating {
		return nil, RatingSummary{}, ErrInvalidRating
	}

	// 2. 查已有评分:存在则就地更新,否则插入
	rating, err := s.repo.FindRating(ctx, bookID, userID)
	switch {
	case err == nil:
		rating.UpdateValue(value)
		if err := s.repo.UpdateRating(ctx, rating); err != nil {
			return nil, RatingSummary{}, err
		}
	case err == ErrRatingNotFound:
		rating = NewRating(bookID, userID, value)
		if err := s.repo.CreateRating(ctx, rating); err != nil {
			return nil, RatingSummary{}, err
		}
	default:
		return nil, RatingSummary{}, err
	}

	// 3. 评论可选,独立存储((图书,用户)键覆盖)
	if comment != "" {
		if err := s.repo.SaveComment(ctx, NewComment(bookID, userID, comment)); err != nil {
			return nil, RatingSummary{}, err
		}
	}

	// 4. 全量重算评分均值
	avg, count, err := s.repo.RatingSummary(ctx, bookID)
	if err != nil {
		return nil, RatingSummary{}, err
	}

	return rating, RatingSummary{Average: avg, Count: count}, nil
}

// StateForUser 用户对某书的互动状态
func (s *service) StateForUser(ctx context.Context, bookID, userID uint) (*UserState, error) {
	state := &UserState{}

	_, err := s.repo.FindLike(ctx, bookID, userID)
	switch err {
	case nil:
		state.Liked = true
	case ErrLikeNotFound:
		// 未点赞
	default:
		return nil, err
	}

	rating, err := s.repo.FindRating(ctx, bookID, userID)
	switch err {
	case nil:
		state.Rating = rating
	case ErrRatingNotFound:
		// 未评分
	default:
		return nil, err
	}

	return state, nil
}

// StatesForUser 用户对一批图书的互动状态
func (s *service) StatesForUser(ctx context.Context, userID uint, bookIDs []uint) (map[uint]UserState, error) {
	states := make(map[uint]UserState, len(bookIDs))
	if len(bookIDs) == 0 {
		return states, nil
	}

	likedIDs, err := s.repo.ListLikedBookIDs(ctx, userID, bookIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range likedIDs {
		state := states[id]
		state.Liked = true
		states[id] = state
	}

	ratings, err := s.repo.ListRatingsByUser(ctx, userID, bookIDs)
	if err != nil {
		return nil, err
	}
	for _, rating := range ratings {
		state := states[rating.BookID]
		state.Rating = rating
		states[rating.BookID] = state
	}

	return states, nil
}

// CommentsForBook 某书的评论列表
func (s *service) CommentsForBook(ctx context.Context, bookID uint) ([]*Comment, error) {
	return s.repo.ListCommentsByBook(ctx, bookID)
}

// CommentsCount 某书的评论数
func (s *service) CommentsCount(ctx context.Context, bookID uint) (int64, error) {
	return s.repo.CountCommentsByBook(ctx, bookID)
}
