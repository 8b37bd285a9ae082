package handler

import (
	"github.com/gin-gonic/gin"

	appengagement "github.com/xiebiao/unilib/internal/application/engagement"
	"github.com/xiebiao/unilib/internal/interface/http/dto"
	"github.com/xiebiao/unilib/internal/interface/http/middleware"
	"github.com/xiebiao/unilib/pkg/response"
)

// EngagementHandler 互动HTTP处理器(点赞/评分/评论)
type EngagementHandler struct {
	likeUseCase     *appengagement.LikeUseCase
	rateUseCase     *appengagement.RateUseCase
	commentsUseCase *appengagement.CommentsUseCase
}

// NewEngagementHandler 创建互动处理器
func NewEngagementHandler(
	likeUseCase *appengagement.LikeUseCase,
	rateUseCase *appengagement.RateUseCase,
	commentsUseCase *appengagement.CommentsUseCase,
) *EngagementHandler {
	return &EngagementHandler{
		likeUseCase:     likeUseCase,
		rateUseCase:     rateUseCase,
		commentsUseCase: commentsUseCase,
	}
}

// Like 点赞
// @Summary      点赞图书
// @Description  重复点赞按幂等成功处理,计数不重复累加
// @Tags         互动
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/books/{id}/like [post]
func (h *EngagementHandler) Like(c *gin.Context) {
	bookID, ok := parseIDParam(c)
	if !ok {
		return
	}

	result, err := h.likeUseCase.Like(c.Request.Context(), bookID, middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Unlike 取消点赞
// @Summary      取消点赞
// @Description  未点赞时为无操作,同样返回成功
// @Tags         互动
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/books/{id}/like [delete]
func (h *EngagementHandler) Unlike(c *gin.Context) {
	bookID, ok := parseIDParam(c)
	if !ok {
		return
	}

	result, err := h.likeUseCase.Unlike(c.Request.Context(), bookID, middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Rate 评分(可附评论)
// @Summary      评分
// @Description  每个用户对每本书一条评分,重复评分就地更新并重算均值
// @Tags         互动
// @Accept       json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        request body dto.RateRequest true "评分信息"
// @Success      200 {object} response.Response
// @Failure      422 {object} response.Response "评分超出范围"
// @Router       /api/v1/books/{id}/rating [put]
func (h *EngagementHandler) Rate(c *gin.Context) {
	bookID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.rateUseCase.Execute(c.Request.Context(), appengagement.RateRequest{
		BookID:  bookID,
		UserID:  middleware.MustGetUserID(c),
		Value:   req.Value,
		Comment: req.Comment,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Comments 评论列表
// @Summary      评论列表
// @Tags         互动
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/books/{id}/comments [get]
func (h *EngagementHandler) Comments(c *gin.Context) {
	bookID, ok := parseIDParam(c)
	if !ok {
		return
	}

	items, err := h.commentsUseCase.ListForBook(c.Request.Context(), bookID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"list": items, "count": len(items)})
}
