package dto

// AddBookRequest HTTP图书入库请求
// validator tag说明:
// - required: 必填字段
// - min/max: 数值范围校验
// - oneof: 枚举取值校验
type AddBookRequest struct {
	ISBN        string `json:"isbn" binding:"required" example:"9787115428028"`
	Title       string `json:"title" binding:"required,max=200" example:"数据库系统概念"`
	Author      string `json:"author" binding:"required,max=100" example:"Abraham Silberschatz"`
	Publisher   string `json:"publisher" binding:"required,max=100" example:"机械工业出版社"`
	PublishYear int    `json:"publish_year" binding:"required,min=1450" example:"2012"`
	Category    string `json:"category" binding:"required,max=50" example:"计算机"`
	Language    string `json:"language" binding:"omitempty,max=20" example:"中文"`
	Description string `json:"description" binding:"max=5000" example:"数据库领域的经典教材"`
	CoverURL    string `json:"cover_url" binding:"omitempty,url,max=500" example:"https://example.com/cover.jpg"`
	TotalCopies int    `json:"total_copies" binding:"required,min=1,max=999" example:"5"`
}

// UpdateBookRequest HTTP图书信息更新请求
// 空字段表示不修改
type UpdateBookRequest struct {
	Title       string `json:"title" binding:"omitempty,max=200"`
	Author      string `json:"author" binding:"omitempty,max=100"`
	Publisher   string `json:"publisher" binding:"omitempty,max=100"`
	Category    string `json:"category" binding:"omitempty,max=50"`
	Language    string `json:"language" binding:"omitempty,max=20"`
	Description string `json:"description" binding:"omitempty,max=5000"`
}

// AdjustCopiesRequest HTTP馆藏副本调整请求
type AdjustCopiesRequest struct {
	TotalCopies int `json:"total_copies" binding:"required,min=1,max=999" example:"8"`
}

// ListBooksRequest HTTP图书列表请求
// 过滤条件全部可选;categories支持逗号分隔多选
type ListBooksRequest struct {
	Categories    string `form:"categories" binding:"omitempty,max=200" example:"计算机,数学"`
	AvailableOnly bool   `form:"available_only" example:"true"`
	Language      string `form:"language" binding:"omitempty,max=20" example:"中文"`
	SortBy        string `form:"sort_by" binding:"omitempty,oneof=popular newest title_asc author_asc created_asc" example:"popular"`
	Limit         int    `form:"limit" binding:"omitempty,min=1,max=100" example:"20"`
}

// SearchBooksRequest HTTP图书搜索请求
type SearchBooksRequest struct {
	Query string `form:"q" binding:"required,min=1,max=100" example:"数据库"`
}

// BookResponse HTTP图书详情响应
type BookResponse struct {
	ID              uint   `json:"id" example:"1"`
	ISBN            string `json:"isbn" example:"9787115428028"`
	Title           string `json:"title" example:"数据库系统概念"`
	Author          string `json:"author" example:"Abraham Silberschatz"`
	Publisher       string `json:"publisher" example:"机械工业出版社"`
	PublishYear     int    `json:"publish_year" example:"2012"`
	Category        string `json:"category" example:"计算机"`
	Language        string `json:"language" example:"中文"`
	Description     string `json:"description" example:"数据库领域的经典教材"`
	CoverURL        string `json:"cover_url" example:"https://example.com/cover.jpg"`
	TotalCopies     int    `json:"total_copies" example:"5"`
	AvailableCopies int    `json:"available_copies" example:"3"`
	Status          string `json:"status" example:"available"`
	CreatedAt       string `json:"created_at" example:"2024-01-15 10:30:00"`
}
