package dto

// RateRequest HTTP评分请求
// value取值[1,5],超出范围由validator先拦一道,
// 领域服务还会再校验(HTTP层校验保护不了其他入口)
type RateRequest struct {
	Value   int    `json:"value" binding:"required,min=1,max=5" example:"5"`
	Comment string `json:"comment" binding:"omitempty,max=2000" example:"内容翔实,推荐阅读"`
}
