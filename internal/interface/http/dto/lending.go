package dto

// BorrowRequest HTTP借阅请求
// due_date可选,格式yyyy-MM-dd,缺省取默认借期(14天)
type BorrowRequest struct {
	BookID  uint   `json:"book_id" binding:"required" example:"1"`
	DueDate string `json:"due_date" binding:"omitempty,datetime=2006-01-02" example:"2024-12-01"`
}

// ReturnRequest HTTP归还请求
// 按(图书,当前用户)定位最早的未归还借阅
type ReturnRequest struct {
	BookID uint `json:"book_id" binding:"required" example:"1"`
}

// ReserveRequest HTTP预约请求
type ReserveRequest struct {
	BookID uint `json:"book_id" binding:"required" example:"1"`
}
