package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appreservation "github.com/xiebiao/unilib/internal/application/reservation"
	"github.com/xiebiao/unilib/internal/interface/http/dto"
	"github.com/xiebiao/unilib/internal/interface/http/middleware"
	"github.com/xiebiao/unilib/pkg/response"
)

// ReservationHandler 预约HTTP处理器
type ReservationHandler struct {
	reserveUseCase *appreservation.ReserveUseCase
	cancelUseCase  *appreservation.CancelUseCase
}

// NewReservationHandler 创建预约处理器
func NewReservationHandler(
	reserveUseCase *appreservation.ReserveUseCase,
	cancelUseCase *appreservation.CancelUseCase,
) *ReservationHandler {
	return &ReservationHandler{
		reserveUseCase: reserveUseCase,
		cancelUseCase:  cancelUseCase,
	}
}

// Reserve 预约图书
// @Summary      预约图书
// @Description  重复预约按幂等成功处理,返回已有预约
// @Tags         预约
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.ReserveRequest true "预约信息"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/reservations [post]
func (h *ReservationHandler) Reserve(c *gin.Context) {
	var req dto.ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.reserveUseCase.Execute(c.Request.Context(), req.BookID, middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Cancel 取消预约
// @Summary      取消预约
// @Description  只能取消自己的pending预约
// @Tags         预约
// @Security     BearerAuth
// @Param        id path int true "预约ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "预约不存在"
// @Router       /api/v1/reservations/{id} [delete]
func (h *ReservationHandler) Cancel(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		response.ErrorWithCode(c, 40900, "无效的预约ID")
		return
	}

	if err := h.cancelUseCase.Execute(c.Request.Context(), uint(id), middleware.MustGetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"cancelled": true})
}
