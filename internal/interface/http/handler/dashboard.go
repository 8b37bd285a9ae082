package handler

import (
	"github.com/gin-gonic/gin"

	appdashboard "github.com/xiebiao/unilib/internal/application/dashboard"
	"github.com/xiebiao/unilib/pkg/response"
)

// DashboardHandler 仪表盘HTTP处理器
type DashboardHandler struct {
	summaryUseCase *appdashboard.SummaryUseCase
}

// NewDashboardHandler 创建仪表盘处理器
func NewDashboardHandler(summaryUseCase *appdashboard.SummaryUseCase) *DashboardHandler {
	return &DashboardHandler{summaryUseCase: summaryUseCase}
}

// Summary 仪表盘汇总
// @Summary      仪表盘汇总
// @Description  总数卡片/热门榜/活跃用户/最近动态,短TTL缓存
// @Tags         仪表盘
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=appdashboard.Summary}
// @Failure      403 {object} response.Response "需要馆员权限"
// @Router       /api/v1/dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, err := h.summaryUseCase.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, summary)
}
