package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	appcatalog "github.com/xiebiao/unilib/internal/application/catalog"
	"github.com/xiebiao/unilib/internal/domain/book"
	"github.com/xiebiao/unilib/internal/interface/http/dto"
	"github.com/xiebiao/unilib/internal/interface/http/middleware"
	"github.com/xiebiao/unilib/pkg/response"
)

// BookHandler 目录HTTP处理器
type BookHandler struct {
	manageUseCase *appcatalog.ManageBooksUseCase
	queryUseCase  *appcatalog.QueryBooksUseCase
}

// NewBookHandler 创建目录处理器
func NewBookHandler(
	manageUseCase *appcatalog.ManageBooksUseCase,
	queryUseCase *appcatalog.QueryBooksUseCase,
) *BookHandler {
	return &BookHandler{
		manageUseCase: manageUseCase,
		queryUseCase:  queryUseCase,
	}
}

// AddBook 图书入库
// @Summary      图书入库
// @Description  馆员录入新图书
// @Tags         目录
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AddBookRequest true "图书信息"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      403 {object} response.Response "需要馆员权限"
// @Failure      422 {object} response.Response "ISBN已存在"
// @Router       /api/v1/books [post]
func (h *BookHandler) AddBook(c *gin.Context) {
	var req dto.AddBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	b, err := h.manageUseCase.AddBook(c.Request.Context(), appcatalog.AddBookRequest{
		ISBN:        req.ISBN,
		Title:       req.Title,
		Author:      req.Author,
		Publisher:   req.Publisher,
		PublishYear: req.PublishYear,
		Category:    req.Category,
		Language:    req.Language,
		Description: req.Description,
		CoverURL:    req.CoverURL,
		TotalCopies: req.TotalCopies,
		OperatorID:  middleware.MustGetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toBookResponse(b))
}

// UpdateBook 更新图书信息
// @Summary      更新图书信息
// @Tags         目录
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        request body dto.UpdateBookRequest true "更新字段(空字段不修改)"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Router       /api/v1/books/{id} [put]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	bookID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	b, err := h.manageUseCase.UpdateBook(c.Request.Context(), appcatalog.UpdateBookRequest{
		BookID:      bookID,
		Title:       req.Title,
		Author:      req.Author,
		Publisher:   req.Publisher,
		Category:    req.Category,
		Language:    req.Language,
		Description: req.Description,
		OperatorID:  middleware.MustGetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toBookResponse(b))
}

// AdjustCopies 调整馆藏副本总数
// @Summary      调整馆藏副本总数
// @Tags         目录
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        request body dto.AdjustCopiesRequest true "新的副本总数"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Router       /api/v1/books/{id}/copies [put]
func (h *BookHandler) AdjustCopies(c *gin.Context) {
	bookID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.AdjustCopiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	b, err := h.manageUseCase.AdjustCopies(c.Request.Context(), bookID, req.TotalCopies, middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toBookResponse(b))
}

// DeleteBook 图书下架
// @Summary      图书下架
// @Description  仍有未归还借阅的图书禁止下架
// @Tags         目录
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	bookID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.manageUseCase.DeleteBook(c.Request.Context(), bookID, middleware.MustGetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": true})
}

// SearchBooks 搜索图书
// @Summary      搜索图书
// @Description  标题/作者/分类/简介的大小写不敏感子串匹配;存储故障时降级为空列表
// @Tags         目录
// @Param        q query string true "搜索关键词"
// @Success      200 {object} response.Response
// @Router       /api/v1/books/search [get]
func (h *BookHandler) SearchBooks(c *gin.Context) {
	var req dto.SearchBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	// OptionalAuth注入的userID,登录时列表项附带点赞/评分标注
	list := h.queryUseCase.Search(c.Request.Context(), req.Query, middleware.GetUserID(c))
	response.Success(c, gin.H{"list": list, "count": len(list)})
}

// ListBooks 图书列表
// @Summary      图书列表
// @Description  支持分类多选/仅可借/语种过滤与多种排序;存储故障时降级为空列表
// @Tags         目录
// @Param        categories query string false "分类(逗号分隔多选)"
// @Param        available_only query bool false "仅显示有可借副本的图书"
// @Param        language query string false "语种"
// @Param        sort_by query string false "排序(popular/newest/title_asc/author_asc/created_asc)"
// @Param        limit query int false "返回条数上限"
// @Success      200 {object} response.Response
// @Router       /api/v1/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	var req dto.ListBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	params := book.ListParams{
		AvailableOnly: req.AvailableOnly,
		Language:      req.Language,
		SortBy:        req.SortBy,
		Limit:         req.Limit,
	}
	if req.Categories != "" {
		for _, cat := range strings.Split(req.Categories, ",") {
			if cat = strings.TrimSpace(cat); cat != "" {
				params.Categories = append(params.Categories, cat)
			}
		}
	}

	list := h.queryUseCase.List(c.Request.Context(), params, middleware.GetUserID(c))
	response.Success(c, gin.H{"list": list, "count": len(list)})
}

// GetBook 图书详情
// @Summary      图书详情
// @Description  含统计投影与当前用户的互动状态(登录时)
// @Tags         目录
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	bookID, ok := parseIDParam(c)
	if !ok {
		return
	}

	// OptionalAuth注入的userID,匿名时为0
	detail, err := h.queryUseCase.GetDetail(c.Request.Context(), bookID, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, detail)
}

// parseIDParam 解析路径中的:id参数
func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		response.ErrorWithCode(c, 40900, "无效的图书ID")
		return 0, false
	}
	return uint(id), true
}

func toBookResponse(b *book.Book) *dto.BookResponse {
	return &dto.BookResponse{
		ID:              b.ID,
		ISBN:            b.ISBN,
		Title:           b.Title,
		Author:          b.Author,
		Publisher:       b.Publisher,
		PublishYear:     b.PublishYear,
		Category:        b.Category,
		Language:        b.Language,
		Description:     b.Description,
		CoverURL:        b.CoverURL,
		TotalCopies:     b.TotalCopies,
		AvailableCopies: b.AvailableCopies,
		Status:          string(b.Status()),
		CreatedAt:       b.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
