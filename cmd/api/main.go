package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	appcatalog "github.com/xiebiao/unilib/internal/application/catalog"
	appdashboard "github.com/xiebiao/unilib/internal/application/dashboard"
	appengagement "github.com/xiebiao/unilib/internal/application/engagement"
	applending "github.com/xiebiao/unilib/internal/application/lending"
	appreservation "github.com/xiebiao/unilib/internal/application/reservation"
	appuser "github.com/xiebiao/unilib/internal/application/user"
	"github.com/xiebiao/unilib/internal/domain/book"
	"github.com/xiebiao/unilib/internal/domain/engagement"
	"github.com/xiebiao/unilib/internal/domain/lending"
	"github.com/xiebiao/unilib/internal/domain/reservation"
	"github.com/xiebiao/unilib/internal/domain/stats"
	"github.com/xiebiao/unilib/internal/domain/user"
	"github.com/xiebiao/unilib/internal/infrastructure/config"
	"github.com/xiebiao/unilib/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/unilib/internal/infrastructure/persistence/redis"
	httpiface "github.com/xiebiao/unilib/internal/interface/http"
	"github.com/xiebiao/unilib/internal/interface/http/handler"
	"github.com/xiebiao/unilib/internal/interface/http/middleware"
	"github.com/xiebiao/unilib/pkg/circuitbreaker"
	"github.com/xiebiao/unilib/pkg/jwt"
	"github.com/xiebiao/unilib/pkg/keylock"
	"github.com/xiebiao/unilib/pkg/metrics"
	"github.com/xiebiao/unilib/pkg/mq"
	"github.com/xiebiao/unilib/pkg/tracing"
)

// main 主程序入口
// 说明：手动依赖注入版本；cmd/api/wire.go提供Wire版本的等价组装，
// 两者共用http.RegisterRoutes，路由表只维护一份
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	fmt.Printf("✓ 配置加载成功\n")
	fmt.Printf("  - 服务端口: %d\n", cfg.Server.Port)
	fmt.Printf("  - 运行模式: %s\n", cfg.Server.Mode)
	fmt.Printf("  - 数据库: %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	fmt.Printf("  - Redis: %s\n", cfg.Redis.Addr())

	// 2. 初始化可观测性组件
	metrics.InitMetrics()

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorAddr)
		if err != nil {
			log.Fatalf("初始化链路追踪失败: %v", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				log.Printf("关闭链路追踪失败: %v", err)
			}
		}()
	}

	// 3. 初始化存储连接
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}

	// 4. 可选组件：RabbitMQ目录事件
	// 未启用时传nil Publisher,EventPublisher内部会跳过发布
	var publisher *mq.Publisher
	if cfg.MQ.Enabled {
		publisher, err = mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
		if err != nil {
			log.Fatalf("初始化RabbitMQ失败: %v", err)
		}
		defer publisher.Close()
	}

	// 5. 依赖注入（手动组装）
	// Repository ← Service ← UseCase ← Handler

	// 基础设施层
	userRepo := mysql.NewUserRepository(db)
	bookRepo := mysql.NewBookRepository(db)
	lendingRepo := mysql.NewBorrowingRepository(db)
	reservationRepo := mysql.NewReservationRepository(db)
	engagementRepo := mysql.NewEngagementRepository(db)
	statsRepo := mysql.NewStatsRepository(db)
	txManager := mysql.NewTxManager(db)
	sessionStore := redis.NewSessionStore(redisClient)
	dashboardCache := redis.NewDashboardCache(redisClient, cfg.Engine.DashboardCacheTTL)
	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)

	// 目录读接口的熔断器:存储连续失败后快速拒绝,读路径降级为空结果
	catalogBreaker := newCatalogBreaker()

	// 预约写路径的进程内键锁
	reserveLocker := keylock.New()

	// 领域层
	userService := user.NewService(userRepo)
	bookService := book.NewService(bookRepo)
	lendingService := lending.NewService(lendingRepo)
	reservationService := reservation.NewService(reservationRepo)
	engagementService := engagement.NewService(engagementRepo)
	statsService := stats.NewService(statsRepo)

	// 应用层
	storeTimeout := cfg.Engine.StoreTimeout
	eventPublisher := appcatalog.NewEventPublisher(publisher, cfg.MQ.Exchange)

	registerUC := appuser.NewRegisterUseCase(userService, storeTimeout)
	loginUC := appuser.NewLoginUseCase(userService, jwtManager, sessionStore, storeTimeout)
	logoutUC := appuser.NewLogoutUseCase(sessionStore, storeTimeout)
	refreshUC := appuser.NewRefreshTokenUseCase(jwtManager)
	approveUC := appuser.NewApproveUseCase(userService, statsService, sessionStore, storeTimeout)

	manageBooksUC := appcatalog.NewManageBooksUseCase(
		bookService, bookRepo, lendingRepo, statsService,
		eventPublisher, dashboardCache, storeTimeout,
	)
	queryBooksUC := appcatalog.NewQueryBooksUseCase(
		bookService, reservationRepo, engagementService, statsService,
		catalogBreaker, storeTimeout,
	)

	borrowUC := applending.NewBorrowUseCase(bookRepo, lendingRepo, statsRepo, storeTimeout)
	returnUC := applending.NewReturnUseCase(bookRepo, lendingRepo, reservationService, storeTimeout)
	queryBorrowingsUC := applending.NewQueryBorrowingsUseCase(lendingService, bookRepo, storeTimeout)

	reserveUC := appreservation.NewReserveUseCase(
		bookRepo, reservationService, statsRepo, reserveLocker, storeTimeout,
	)
	cancelUC := appreservation.NewCancelUseCase(reservationService, storeTimeout)

	likeUC := appengagement.NewLikeUseCase(bookRepo, engagementService, statsRepo, storeTimeout)
	rateUC := appengagement.NewRateUseCase(bookRepo, engagementService, statsRepo, txManager, storeTimeout)
	commentsUC := appengagement.NewCommentsUseCase(engagementService, userRepo, storeTimeout)

	summaryUC := appdashboard.NewSummaryUseCase(
		bookRepo, userRepo, lendingRepo, reservationRepo,
		statsRepo, statsService, dashboardCache, storeTimeout,
	)

	// 接口层
	handlers := httpiface.Handlers{
		User:        handler.NewUserHandler(registerUC, loginUC, logoutUC, refreshUC, approveUC),
		Book:        handler.NewBookHandler(manageBooksUC, queryBooksUC),
		Lending:     handler.NewLendingHandler(borrowUC, returnUC, queryBorrowingsUC),
		Reservation: handler.NewReservationHandler(reserveUC, cancelUC),
		Engagement:  handler.NewEngagementHandler(likeUC, rateUC, commentsUC),
		Dashboard:   handler.NewDashboardHandler(summaryUC),
	}
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, sessionStore)

	// 6. 初始化Gin引擎并注册路由
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	httpiface.RegisterRoutes(r, handlers, authMiddleware)

	// 7. 启动服务（带优雅停机）
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		fmt.Printf("\n🚀 服务启动成功！\n")
		fmt.Printf("   访问地址: http://localhost%s\n", addr)
		fmt.Printf("   健康检查: http://localhost%s/ping\n", addr)
		fmt.Printf("   监控指标: http://localhost%s/metrics\n", addr)
		fmt.Printf("   API文档:  http://localhost%s/swagger/index.html\n", addr)
		fmt.Printf("\n按Ctrl+C停止服务\n\n")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("启动服务失败: %v", err)
		}
	}()

	<-ctx.Done()
	stop()
	log.Println("收到停止信号,开始优雅停机...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("优雅停机失败: %v", err)
	}
	log.Println("服务已停止")
}

// newCatalogBreaker 创建目录读接口的熔断器
// 状态变化时同步到Prometheus指标,方便在Grafana里观察熔断历史
func newCatalogBreaker() *circuitbreaker.CircuitBreaker {
	cb := circuitbreaker.NewCircuitBreaker("catalog-read", circuitbreaker.Config{
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	cb.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		log.Printf("熔断器[%s]状态变化: %s -> %s", name, from, to)
		metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
	})
	return cb
}
