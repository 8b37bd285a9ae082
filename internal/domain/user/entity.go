package user

import (
	"time"
)

// Status 用户账号状态
// 注册后为pending,等待管理员批准;批准/驳回会记录到动态审计流
type Status string

const (
	StatusPending  Status = "pending"  // 待审批
	StatusApproved Status = "approved" // 已批准
	StatusRejected Status = "rejected" // 已驳回
)

// User 用户实体（聚合根）
// DDD设计说明：
// 1. User是用户聚合的根实体，包含用户的核心属性
// 2. 密码已加密存储（bcrypt），不应该有GetPassword()等方法暴露明文
// 3. 领域实体不依赖GORM tag（infrastructure层的Repository实现时会处理映射）
type User struct {
	ID        uint
	Email     string
	Password  string // bcrypt哈希值
	Nickname  string
	Status    Status
	IsAdmin   bool // 管理员标志(审批、目录管理权限)
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建新用户（工厂方法）
// hashedPassword必须是bcrypt加密后的密码;初始状态为pending
func NewUser(email, hashedPassword, nickname string) *User {
	now := time.Now()
	return &User{
		Email:     email,
		Password:  hashedPassword,
		Nickname:  nickname,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Approve 批准注册(领域行为)
func (u *User) Approve() error {
	if u.Status != StatusPending {
		return ErrNotPending
	}
	u.Status = StatusApproved
	u.UpdatedAt = time.Now()
	return nil
}

// Reject 驳回注册(领域行为)
func (u *User) Reject() error {
	if u.Status != StatusPending {
		return ErrNotPending
	}
	u.Status = StatusRejected
	u.UpdatedAt = time.Now()
	return nil
}

// CanSignIn 是否允许登录(只有已批准账号可登录)
func (u *User) CanSignIn() bool {
	return u.Status == StatusApproved
}

// UpdateNickname 更新昵称（领域行为）
func (u *User) UpdateNickname(nickname string) {
	u.Nickname = nickname
	u.UpdatedAt = time.Now()
}
