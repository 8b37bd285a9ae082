package engagement

import (
	apperrors "github.com/xiebiao/unilib/pkg/errors"
)

// 互动领域错误定义
var (
	// ErrInvalidRating 评分超出范围
	ErrInvalidRating = apperrors.New(apperrors.ErrCodeInvalidRating, "评分必须在1到5之间")

	// ErrRatingNotFound 评分不存在
	ErrRatingNotFound = apperrors.New(apperrors.ErrCodeNotFound, "评分不存在")

	// ErrLikeNotFound 点赞不存在
	ErrLikeNotFound = apperrors.New(apperrors.ErrCodeNotFound, "点赞不存在")

	// ErrAlreadyLiked 重复点赞(并发插入撞唯一索引时由存储层返回)
	// 上层按幂等成功处理,不向客户端报错
	ErrAlreadyLiked = apperrors.New(apperrors.ErrCodeDuplicateEntry, "已点赞")
)
