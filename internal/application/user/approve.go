package user

import (
	"context"
	"log"
	"time"

	"github.com/xiebiao/unilib/internal/domain/stats"
	"github.com/xiebiao/unilib/internal/domain/user"
	"github.com/xiebiao/unilib/internal/infrastructure/persistence/redis"
)

// ApproveUseCase 账号审批用例(馆员操作)
// 设计说明:
// 1. 只有pending账号可以批准/驳回,状态流转由领域实体保证
// 2. 审批结果追加到动态审计流(best-effort)
// 3. 驳回时顺手清掉该账号的会话,已签发的Token失效
type ApproveUseCase struct {
	userService  user.Service
	statsService stats.Service
	sessionStore *redis.SessionStore
	storeTimeout time.Duration
}

// NewApproveUseCase 创建审批用例
func NewApproveUseCase(
	userService user.Service,
	statsService stats.Service,
	sessionStore *redis.SessionStore,
	storeTimeout time.Duration,
) *ApproveUseCase {
	return &ApproveUseCase{
		userService:  userService,
		statsService: statsService,
		sessionStore: sessionStore,
		storeTimeout: storeTimeout,
	}
}

// ApproveResponse 审批响应DTO
type ApproveResponse struct {
	UserID   uint   `json:"user_id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	Status   string `json:"status"`
}

// Approve 批准注册
func (uc *ApproveUseCase) Approve(ctx context.Context, userID, operatorID uint) (*ApproveResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.storeTimeout)
	defer cancel()

	u, err := uc.userService.Approve(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := uc.statsService.RecordActivity(ctx, stats.ActivityUserApproved, 0, u.ID, u.Nickname); err != nil {
		log.Printf("审批动态记录失败: user=%d err=%v", u.ID, err)
	}

	return toApproveResponse(u), nil
}

// Reject 驳回注册
func (uc *ApproveUseCase) Reject(ctx context.Context, userID, operatorID uint) (*ApproveResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.storeTimeout)
	defer cancel()

	u, err := uc.userService.Reject(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := uc.statsService.RecordActivity(ctx, stats.ActivityUserRejected, 0, u.ID, u.Nickname); err != nil {
		log.Printf("审批动态记录失败: user=%d err=%v", u.ID, err)
	}

	// 驳回后清掉会话,已签发的Token随会话失效
	if err := uc.sessionStore.DeleteSession(ctx, u.ID); err != nil {
		log.Printf("会话清理失败: user=%d err=%v", u.ID, err)
	}

	return toApproveResponse(u), nil
}

func toApproveResponse(u *user.User) *ApproveResponse {
	return &ApproveResponse{
		UserID:   u.ID,
		Email:    u.Email,
		Nickname: u.Nickname,
		Status:   string(u.Status),
	}
}
