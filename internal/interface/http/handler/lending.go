package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	applending "github.com/xiebiao/unilib/internal/application/lending"
	"github.com/xiebiao/unilib/internal/interface/http/dto"
	"github.com/xiebiao/unilib/internal/interface/http/middleware"
	"github.com/xiebiao/unilib/pkg/response"
)

// LendingHandler 借还HTTP处理器
type LendingHandler struct {
	borrowUseCase *applending.BorrowUseCase
	returnUseCase *applending.ReturnUseCase
	queryUseCase  *applending.QueryBorrowingsUseCase
}

// NewLendingHandler 创建借还处理器
func NewLendingHandler(
	borrowUseCase *applending.BorrowUseCase,
	returnUseCase *applending.ReturnUseCase,
	queryUseCase *applending.QueryBorrowingsUseCase,
) *LendingHandler {
	return &LendingHandler{
		borrowUseCase: borrowUseCase,
		returnUseCase: returnUseCase,
		queryUseCase:  queryUseCase,
	}
}

// Borrow 借阅图书
// @Summary      借阅图书
// @Description  无可借副本时返回NotAvailable,不产生任何台账记录
// @Tags         借还
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.BorrowRequest true "借阅信息"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      422 {object} response.Response "无可借副本"
// @Router       /api/v1/borrowings [post]
func (h *LendingHandler) Borrow(c *gin.Context) {
	var req dto.BorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	var dueDate time.Time
	if req.DueDate != "" {
		// 应还日期按当天结束算
		parsed, err := time.ParseInLocation("2006-01-02", req.DueDate, time.Local)
		if err != nil {
			response.ErrorWithCode(c, 40900, "应还日期格式错误(yyyy-MM-dd)")
			return
		}
		dueDate = parsed.Add(24*time.Hour - time.Second)
	}

	result, err := h.borrowUseCase.Execute(c.Request.Context(), applending.BorrowRequest{
		BookID:  req.BookID,
		UserID:  middleware.MustGetUserID(c),
		DueDate: dueDate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Return 归还图书
// @Summary      归还图书
// @Description  没有未归还的借阅记录时返回NoActiveBorrowing,计数不变
// @Tags         借还
// @Security     BearerAuth
// @Param        request body dto.ReturnRequest true "归还信息"
// @Success      200 {object} response.Response
// @Failure      422 {object} response.Response "没有未归还的借阅记录"
// @Router       /api/v1/borrowings/return [post]
func (h *LendingHandler) Return(c *gin.Context) {
	var req dto.ReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.returnUseCase.Execute(c.Request.Context(), req.BookID, middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// MyBorrowings 我的借阅记录
// @Summary      我的借阅记录
// @Description  含历史记录,逾期标志在查询时计算
// @Tags         借还
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Router       /api/v1/borrowings/mine [get]
func (h *LendingHandler) MyBorrowings(c *gin.Context) {
	items, err := h.queryUseCase.ListForUser(c.Request.Context(), middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"list": items, "count": len(items)})
}

// OverdueBorrowings 逾期借阅列表(馆员视图)
// @Summary      逾期借阅列表
// @Tags         借还
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Failure      403 {object} response.Response "需要馆员权限"
// @Router       /api/v1/borrowings/overdue [get]
func (h *LendingHandler) OverdueBorrowings(c *gin.Context) {
	items, err := h.queryUseCase.ListOverdue(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"list": items, "count": len(items)})
}
