package mysql

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/unilib/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 自动迁移表结构（AutoMigrate）
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	// 1. 构建DSN连接字符串
	dsn := cfg.Database.DSN()

	// 2. 配置GORM日志
	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info // 开发环境打印SQL
	}

	// 3. 连接数据库
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 4. 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	// 5. 测试连接
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	log.Println("✓ 数据库连接成功")

	// 6. 自动迁移表结构（开发环境）
	// 注意：生产环境应使用专门的迁移工具（如golang-migrate）
	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// autoMigrate 自动迁移表结构
// 注意:AutoMigrate只会创建表、添加字段,不会删除或修改现有字段
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&BookModel{},
		&BorrowingModel{},
		&ReservationModel{},
		&RatingModel{},
		&LikeModel{},
		&CommentModel{},
		&BookStatisticsModel{},
		&ActivityModel{},
	)
}

// UserModel GORM用户模型
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain/user/entity.go是领域实体，不依赖GORM
// 3. Repository负责两者之间的转换
type UserModel struct {
	ID        uint           `gorm:"primaryKey"`
	Email     string         `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string         `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	Nickname  string         `gorm:"size:50;not null;comment:昵称"`
	Status    string         `gorm:"size:20;not null;default:pending;index;comment:审批状态"`
	IsAdmin   bool           `gorm:"default:false;comment:管理员标志"`
	CreatedAt time.Time      `gorm:"index;comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间（软删除）"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// BookModel GORM图书模型
// 设计说明:
// 1. AvailableCopies是可借状态的唯一事实来源,没有冗余的状态列
//    (历史实现里状态枚举与计数器并存且各自更新,容易失步,已裁掉)
// 2. ISBN有唯一索引,防止重复入库
// 3. 搜索列(标题/作者/分类)加索引优化子串查询
type BookModel struct {
	ID              uint           `gorm:"primaryKey"`
	ISBN            string         `gorm:"uniqueIndex;size:20;not null;comment:ISBN号"`
	Title           string         `gorm:"index:idx_search;size:200;not null;comment:书名"`
	Author          string         `gorm:"index:idx_search;size:100;not null;comment:作者"`
	Publisher       string         `gorm:"size:100;comment:出版社"`
	PublishYear     int            `gorm:"index;comment:出版年份"`
	Category        string         `gorm:"index;size:50;comment:分类"`
	Language        string         `gorm:"index;size:20;comment:语种"`
	Description     string         `gorm:"type:text;comment:图书简介"`
	CoverURL        string         `gorm:"size:500;comment:封面图片URL"`
	TotalCopies     int            `gorm:"not null;default:1;comment:馆藏副本总数"`
	AvailableCopies int            `gorm:"not null;default:1;comment:可借副本数"`
	CreatedAt       time.Time      `gorm:"index;comment:创建时间"`
	UpdatedAt       time.Time      `gorm:"comment:更新时间"`
	DeletedAt       gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// BorrowingModel GORM借阅记录模型
// 设计说明:
// 1. TicketNo有唯一索引(业务主键,幂等核对用)
// 2. (book_id, user_id, is_returned)联合索引支撑归还查询
// 3. 没有is_overdue列:逾期永远在查询时用due_date计算
type BorrowingModel struct {
	ID         uint       `gorm:"primaryKey"`
	TicketNo   string     `gorm:"uniqueIndex;size:32;not null;comment:借阅单号"`
	BookID     uint       `gorm:"index:idx_active,priority:1;not null;comment:图书ID"`
	UserID     uint       `gorm:"index:idx_active,priority:2;index;not null;comment:借阅人用户ID"`
	BorrowDate time.Time  `gorm:"not null;comment:借出日期"`
	DueDate    time.Time  `gorm:"index;not null;comment:应还日期"`
	ReturnDate *time.Time `gorm:"comment:归还日期"`
	IsReturned bool       `gorm:"index:idx_active,priority:3;not null;default:false;comment:是否已归还"`
	CreatedAt  time.Time  `gorm:"index;comment:创建时间"`
	UpdatedAt  time.Time  `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (BorrowingModel) TableName() string {
	return "borrowings"
}

// ReservationModel GORM预约模型
// (book_id, user_id, status)联合索引支撑"先查后插"的唯一性检查
type ReservationModel struct {
	ID        uint      `gorm:"primaryKey"`
	BookID    uint      `gorm:"index:idx_pending,priority:1;not null;comment:图书ID"`
	UserID    uint      `gorm:"index:idx_pending,priority:2;not null;comment:预约人用户ID"`
	Status    string    `gorm:"index:idx_pending,priority:3;size:20;not null;default:pending;comment:预约状态"`
	CreatedAt time.Time `gorm:"index;comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (ReservationModel) TableName() string {
	return "reservations"
}

// RatingModel GORM评分模型
// (book_id, user_id)唯一索引:每个用户对每本书至多一条评分
type RatingModel struct {
	ID        uint      `gorm:"primaryKey"`
	BookID    uint      `gorm:"uniqueIndex:uk_book_user;not null;comment:图书ID"`
	UserID    uint      `gorm:"uniqueIndex:uk_book_user;not null;comment:评分人用户ID"`
	Value     int       `gorm:"not null;comment:评分值(1-5)"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (RatingModel) TableName() string {
	return "ratings"
}

// LikeModel GORM点赞模型
// (book_id, user_id)唯一索引:重复点赞在数据库层兜底
type LikeModel struct {
	ID        uint      `gorm:"primaryKey"`
	BookID    uint      `gorm:"uniqueIndex:uk_like_book_user;not null;comment:图书ID"`
	UserID    uint      `gorm:"uniqueIndex:uk_like_book_user;not null;comment:点赞人用户ID"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
}

// TableName 指定表名
func (LikeModel) TableName() string {
	return "likes"
}

// CommentModel GORM评论模型
// 与评分没有外键关联,只通过(book_id, user_id)键在读取时拼接
type CommentModel struct {
	ID        uint      `gorm:"primaryKey"`
	BookID    uint      `gorm:"uniqueIndex:uk_comment_book_user;not null;comment:图书ID"`
	UserID    uint      `gorm:"uniqueIndex:uk_comment_book_user;not null;comment:评论人用户ID"`
	Content   string    `gorm:"type:text;not null;comment:评论内容"`
	CreatedAt time.Time `gorm:"index;comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (CommentModel) TableName() string {
	return "comments"
}

// BookStatisticsModel GORM图书统计投影模型
// 只作为其他操作的副作用增减,不接受直接编辑
type BookStatisticsModel struct {
	ID                uint      `gorm:"primaryKey"`
	BookID            uint      `gorm:"uniqueIndex;not null;comment:图书ID"`
	TotalBorrows      int64     `gorm:"index;not null;default:0;comment:累计借阅次数"`
	TotalReservations int64     `gorm:"not null;default:0;comment:累计预约次数"`
	AverageRating     float64   `gorm:"not null;default:0;comment:评分均值"`
	TotalRatings      int64     `gorm:"not null;default:0;comment:评分条数"`
	TotalLikes        int64     `gorm:"not null;default:0;comment:点赞数"`
	TotalComments     int64     `gorm:"not null;default:0;comment:评论数"`
	UpdatedAt         time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (BookStatisticsModel) TableName() string {
	return "book_statistics"
}

// ActivityModel GORM动态(审计)模型
type ActivityModel struct {
	ID        uint      `gorm:"primaryKey"`
	Type      string    `gorm:"size:30;not null;comment:动态类型"`
	BookID    uint      `gorm:"index;comment:相关图书ID"`
	UserID    uint      `gorm:"index;comment:相关用户ID"`
	Detail    string    `gorm:"size:255;comment:展示文案"`
	CreatedAt time.Time `gorm:"index;comment:创建时间"`
}

// TableName 指定表名
func (ActivityModel) TableName() string {
	return "activities"
}
