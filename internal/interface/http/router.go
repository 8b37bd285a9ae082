// Package http 注册HTTP路由
//
// 路由设计:
// - 目录读接口公开(详情页OptionalAuth,登录后附带个人互动状态)
// - 借还/预约/互动需要登录
// - 目录管理/账号审批/逾期视图/仪表盘需要馆员权限
package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/xiebiao/unilib/internal/interface/http/handler"
	"github.com/xiebiao/unilib/internal/interface/http/middleware"
	"github.com/xiebiao/unilib/pkg/response"
)

// Handlers 路由注册所需的全部处理器
type Handlers struct {
	User        *handler.UserHandler
	Book        *handler.BookHandler
	Lending     *handler.LendingHandler
	Reservation *handler.ReservationHandler
	Engagement  *handler.EngagementHandler
	Dashboard   *handler.DashboardHandler
}

// RegisterRoutes 注册全部路由
func RegisterRoutes(r *gin.Engine, h Handlers, auth *middleware.AuthMiddleware) {
	// 可观测性中间件对所有路由生效
	r.Use(middleware.Metrics())
	r.Use(middleware.Tracing("unilib-api"))

	// 健康检查与运维端点
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong", "status": "healthy"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger文档(生产环境建议禁用或加访问控制)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		// 用户模块(公开接口)
		users := v1.Group("/users")
		{
			users.POST("/register", h.User.Register)
			users.POST("/login", h.User.Login)
			users.POST("/refresh", h.User.RefreshToken)
		}

		// 目录读接口(公开;可选登录,登录后附带个人互动状态标注)
		books := v1.Group("/books")
		{
			books.GET("", auth.OptionalAuth(), h.Book.ListBooks)
			books.GET("/search", auth.OptionalAuth(), h.Book.SearchBooks)
			books.GET("/:id", auth.OptionalAuth(), h.Book.GetBook)
			books.GET("/:id/comments", h.Engagement.Comments)
		}

		// 需要登录的接口
		authorized := v1.Group("")
		authorized.Use(auth.RequireAuth())
		{
			authorized.GET("/profile", h.User.Profile)
			authorized.POST("/users/logout", h.User.Logout)

			// 借还
			authorized.POST("/borrowings", h.Lending.Borrow)
			authorized.POST("/borrowings/return", h.Lending.Return)
			authorized.GET("/borrowings/mine", h.Lending.MyBorrowings)

			// 预约
			authorized.POST("/reservations", h.Reservation.Reserve)
			authorized.DELETE("/reservations/:id", h.Reservation.Cancel)

			// 互动
			authorized.POST("/books/:id/like", h.Engagement.Like)
			authorized.DELETE("/books/:id/like", h.Engagement.Unlike)
			authorized.PUT("/books/:id/rating", h.Engagement.Rate)
		}

		// 馆员接口
		admin := v1.Group("")
		admin.Use(auth.RequireAuth(), auth.RequireAdmin())
		{
			// 目录管理
			admin.POST("/books", h.Book.AddBook)
			admin.PUT("/books/:id", h.Book.UpdateBook)
			admin.PUT("/books/:id/copies", h.Book.AdjustCopies)
			admin.DELETE("/books/:id", h.Book.DeleteBook)

			// 账号审批
			admin.POST("/users/:id/approve", h.User.Approve)
			admin.POST("/users/:id/reject", h.User.Reject)

			// 运营视图
			admin.GET("/borrowings/overdue", h.Lending.OverdueBorrowings)
			admin.GET("/dashboard", h.Dashboard.Summary)
		}
	}
}
