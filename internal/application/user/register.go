package user

import (
	"context"
	"time"

	"github.com/xiebiao/unilib/internal/domain/user"
)

// RegisterUseCase 用户注册用例
// 注册后账号处于pending状态,等待馆员审批后方可登录
type RegisterUseCase struct {
	userService  user.Service
	storeTimeout time.Duration
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(userService user.Service, storeTimeout time.Duration) *RegisterUseCase {
	return &RegisterUseCase{
		userService:  userService,
		storeTimeout: storeTimeout,
	}
}

// RegisterRequest 注册请求DTO
type RegisterRequest struct {
	Email    string
	Password string
	Nickname string
}

// RegisterResponse 注册响应DTO
type RegisterResponse struct {
	UserID   uint   `json:"user_id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	Status   string `json:"status"`
}

// Execute 执行注册
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.storeTimeout)
	defer cancel()

	u, err := uc.userService.Register(ctx, req.Email, req.Password, req.Nickname)
	if err != nil {
		return nil, err
	}

	return &RegisterResponse{
		UserID:   u.ID,
		Email:    u.Email,
		Nickname: u.Nickname,
		Status:   string(u.Status),
	}, nil
}
