//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 教学说明：
// 1. Wire是Google开发的编译期依赖注入工具
// 2. 与运行时反射注入（如Spring的@Autowired）不同，Wire在编译期生成代码
// 3. 优势：零运行时开销、类型安全、编译期检测循环依赖
//
// Wire工作流程：
// Step 1: 编写wire.go（本文件），定义Providers和Injector
// Step 2: 运行 `wire gen ./cmd/api`
// Step 3: Wire生成wire_gen.go，包含完整的依赖创建代码
// Step 4: main.go调用wire_gen.go中的InitializeApp()
//
// 核心概念：
// - Provider: 提供依赖的构造函数（如NewBookRepository）
// - Injector: 声明最终要构造的目标类型（如*gin.Engine）
// - wire.Build(): 告诉Wire如何组装依赖链

package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"

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
	"github.com/xiebiao/unilib/pkg/jwt"
	"github.com/xiebiao/unilib/pkg/keylock"
	"github.com/xiebiao/unilib/pkg/mq"
)

// ========================================
// Wire Provider Sets (依赖分组)
// ========================================

// infrastructureSet 基础设施层依赖
// 包含：配置加载、数据库连接、Redis连接
var infrastructureSet = wire.NewSet(
	config.Load,     // 加载配置文件
	mysql.NewDB,     // 创建MySQL连接
	redis.NewClient, // 创建Redis连接
)

// repositorySet 仓储层依赖
// 包含：所有Repository的构造函数与事务管理器
var repositorySet = wire.NewSet(
	mysql.NewUserRepository,        // 用户仓储
	mysql.NewBookRepository,        // 图书仓储
	mysql.NewBorrowingRepository,   // 借阅台账仓储
	mysql.NewReservationRepository, // 预约仓储
	mysql.NewEngagementRepository,  // 互动仓储
	mysql.NewStatsRepository,       // 统计仓储
	mysql.NewTxManager,             // 事务管理器
)

// domainSet 领域层依赖
// 包含：所有领域服务的构造函数
var domainSet = wire.NewSet(
	user.NewService,        // 用户领域服务
	book.NewService,        // 图书领域服务
	lending.NewService,     // 借还领域服务
	reservation.NewService, // 预约领域服务
	engagement.NewService,  // 互动领域服务
	stats.NewService,       // 统计领域服务
)

// applicationSet 应用层依赖
// 包含：所有Use Case的构造函数及其运行参数的Provider
var applicationSet = wire.NewSet(
	provideStoreTimeout,   // 存储往返超时（从config提取）
	provideMQPublisher,    // RabbitMQ发布器（可为nil）
	provideEventPublisher, // 目录事件发布器
	provideDashboardCache, // 仪表盘缓存
	wire.Bind(new(appcatalog.DashboardInvalidator), new(*redis.DashboardCache)),
	newCatalogBreaker, // 目录读熔断器（定义在main.go）
	keylock.New,       // 预约写路径键锁

	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
	appuser.NewLogoutUseCase,
	appuser.NewRefreshTokenUseCase,
	appuser.NewApproveUseCase,

	appcatalog.NewManageBooksUseCase,
	appcatalog.NewQueryBooksUseCase,

	applending.NewBorrowUseCase,
	applending.NewReturnUseCase,
	applending.NewQueryBorrowingsUseCase,

	appreservation.NewReserveUseCase,
	appreservation.NewCancelUseCase,

	appengagement.NewLikeUseCase,
	appengagement.NewRateUseCase,
	appengagement.NewCommentsUseCase,

	appdashboard.NewSummaryUseCase,
)

// middlewareSet 中间件依赖
// 包含：JWT管理器、Session存储、认证中间件
var middlewareSet = wire.NewSet(
	provideJWTManager,
	provideSessionStore,
	middleware.NewAuthMiddleware,
)

// handlerSet HTTP处理器依赖
var handlerSet = wire.NewSet(
	handler.NewUserHandler,
	handler.NewBookHandler,
	handler.NewLendingHandler,
	handler.NewReservationHandler,
	handler.NewEngagementHandler,
	handler.NewDashboardHandler,
	wire.Struct(new(httpiface.Handlers), "*"), // 聚合为路由注册用的Handlers结构
)

// ========================================
// Custom Providers (自定义Provider)
// ========================================
// 有些依赖的构造参数需要从Config中提取，Wire无法自动拆字段，
// 这时需要手动编写Provider函数

// provideStoreTimeout 从配置提取存储往返超时
// 注意：这是本依赖图中唯一的time.Duration Provider，
// 所有接收time.Duration的用例构造函数都会注入它
func provideStoreTimeout(cfg *config.Config) time.Duration {
	return cfg.Engine.StoreTimeout
}

// provideMQPublisher 创建RabbitMQ发布器
// MQ未启用时返回nil，EventPublisher内部会跳过发布
func provideMQPublisher(cfg *config.Config) (*mq.Publisher, error) {
	if !cfg.MQ.Enabled {
		return nil, nil
	}
	return mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
}

// provideEventPublisher 创建目录事件发布器
func provideEventPublisher(cfg *config.Config, publisher *mq.Publisher) *appcatalog.EventPublisher {
	return appcatalog.NewEventPublisher(publisher, cfg.MQ.Exchange)
}

// provideDashboardCache 创建仪表盘缓存
func provideDashboardCache(cfg *config.Config, client *goredis.Client) *redis.DashboardCache {
	return redis.NewDashboardCache(client, cfg.Engine.DashboardCacheTTL)
}

// provideJWTManager 从配置创建JWT管理器
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideSessionStore 从Redis客户端创建Session存储
func provideSessionStore(client *goredis.Client) *redis.SessionStore {
	return redis.NewSessionStore(client)
}

// provideGinEngine 创建并配置Gin引擎
// 路由表在http.RegisterRoutes中统一维护，
// main.go的手动注入版本调用的是同一个函数
func provideGinEngine(
	cfg *config.Config,
	handlers httpiface.Handlers,
	authMiddleware *middleware.AuthMiddleware,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	httpiface.RegisterRoutes(r, handlers, authMiddleware)
	return r
}

// ========================================
// Wire Injector (依赖注入器)
// ========================================

// InitializeApp 初始化整个应用
//
// wire.Build 的参数是所有的 Provider，
// Wire会在编译期分析依赖关系，在wire_gen.go中生成初始化代码
func InitializeApp() (*gin.Engine, error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		middlewareSet,
		handlerSet,
		provideGinEngine,
	)

	// 返回值是占位符，实际由wire_gen.go中的生成代码替代
	return nil, nil
}
