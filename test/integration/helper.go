package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// 教学说明：测试辅助工具
// 这个文件包含集成测试的通用辅助函数，遵循DRY原则（Don't Repeat Yourself）
// 将重复的代码（HTTP请求、JSON解析、注册审批流程）封装成可复用的函数

const (
	// BaseURL API基础URL
	BaseURL = "http://localhost:8080/api/v1"
	// Timeout HTTP请求超时时间
	Timeout = 10 * time.Second
)

// Response 统一响应结构
type Response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// RegisterData 注册响应数据
type RegisterData struct {
	ID       uint   `json:"user_id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	Status   string `json:"status"`
}

// LoginData 登录响应数据
type LoginData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// BookData 图书响应数据
type BookData struct {
	ID              uint   `json:"id"`
	ISBN            string `json:"isbn"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	Publisher       string `json:"publisher"`
	PublishYear     int    `json:"publish_year"`
	Category        string `json:"category"`
	TotalCopies     int    `json:"total_copies"`
	AvailableCopies int    `json:"available_copies"`
	Status          string `json:"status"`
}

// BorrowData 借阅响应数据
type BorrowData struct {
	BorrowingID uint   `json:"borrowing_id"`
	TicketNo    string `json:"ticket_no"`
	BookID      uint   `json:"book_id"`
	BorrowDate  string `json:"borrow_date"`
	DueDate     string `json:"due_date"`
}

// ReturnData 归还响应数据
type ReturnData struct {
	TicketNo   string `json:"ticket_no"`
	BookID     uint   `json:"book_id"`
	ReturnDate string `json:"return_date"`
	WasOverdue bool   `json:"was_overdue"`
}

// ReserveData 预约响应数据
type ReserveData struct {
	ReservationID uint   `json:"reservation_id"`
	BookID        uint   `json:"book_id"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
}

// DoJSON 发送带JSON体的请求并解析JSON响应
//
// 教学说明：
// - 使用*testing.T参数，可以在失败时立即终止测试
// - 使用require包进行断言，失败会立即停止（不继续执行）
// - 返回*Response而非error，简化调用方代码
func DoJSON(t *testing.T, method, url string, data interface{}, token string) *Response {
	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		require.NoError(t, err, "JSON序列化失败")
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err, "创建HTTP请求失败")

	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	var result Response
	err = json.Unmarshal(raw, &result)
	require.NoError(t, err, "解析JSON响应失败: %s", string(raw))

	return &result
}

// PostJSON 发送POST请求并解析JSON响应
func PostJSON(t *testing.T, url string, data interface{}, token string) *Response {
	return DoJSON(t, "POST", url, data, token)
}

// PutJSON 发送PUT请求并解析JSON响应
func PutJSON(t *testing.T, url string, data interface{}, token string) *Response {
	return DoJSON(t, "PUT", url, data, token)
}

// DeleteJSON 发送DELETE请求并解析JSON响应
func DeleteJSON(t *testing.T, url string, token string) *Response {
	return DoJSON(t, "DELETE", url, nil, token)
}

// GetJSON 发送GET请求并解析JSON响应
func GetJSON(t *testing.T, url string, token string) *Response {
	return DoJSON(t, "GET", url, nil, token)
}

// GenerateTestEmail 生成唯一的测试邮箱
//
// 教学说明：
// 使用纳秒时间戳确保邮箱唯一性，避免测试重复运行时邮箱冲突
func GenerateTestEmail(prefix string) string {
	return fmt.Sprintf("%s_%d@test.com", prefix, time.Now().UnixNano())
}

// GenerateTestISBN 生成唯一的测试ISBN
//
// 教学说明：
// ISBN-13格式：978 + 10位数字
// 使用时间戳的后10位确保唯一性
func GenerateTestISBN() string {
	timestamp := time.Now().UnixNano()
	return fmt.Sprintf("978%010d", timestamp%10000000000)
}

// AdminToken 登录馆员账号并返回Token
//
// 教学说明：
// 审批、目录管理接口需要馆员权限,而馆员账号无法通过API自助创建,
// 集成测试环境需要预先在数据库中建好一个馆员账号,
// 账号密码可通过环境变量覆盖
func AdminToken(t *testing.T) string {
	email := os.Getenv("UNILIB_ADMIN_EMAIL")
	if email == "" {
		email = "admin@unilib.test"
	}
	password := os.Getenv("UNILIB_ADMIN_PASSWORD")
	if password == "" {
		password = "Admin1234"
	}

	loginReq := map[string]string{
		"email":    email,
		"password": password,
	}
	resp := PostJSON(t, BaseURL+"/users/login", loginReq, "")
	require.Equal(t, 0, resp.Code, "馆员登录失败(测试环境需要seed馆员账号): %s", resp.Message)

	var data LoginData
	err := json.Unmarshal(resp.Data, &data)
	require.NoError(t, err, "解析馆员登录响应失败")
	return data.AccessToken
}

// RegisterApprovedUser 注册读者账号、由馆员审批通过并返回Token
//
// 教学说明：
// 这是一个"高阶"辅助函数，封装了注册→审批→登录的完整流程
// （新注册账号是pending状态，审批通过前无法登录）
func RegisterApprovedUser(t *testing.T, nickname string) (email string, token string) {
	adminToken := AdminToken(t)

	// 1. 注册
	email = GenerateTestEmail(nickname)
	registerReq := map[string]string{
		"email":    email,
		"password": "Test1234",
		"nickname": nickname,
	}
	registerResp := PostJSON(t, BaseURL+"/users/register", registerReq, "")
	require.Equal(t, 0, registerResp.Code, "注册失败: %s", registerResp.Message)

	var registerData RegisterData
	err := json.Unmarshal(registerResp.Data, &registerData)
	require.NoError(t, err, "解析注册响应失败")

	// 2. 馆员审批
	approveResp := PostJSON(t, fmt.Sprintf("%s/users/%d/approve", BaseURL, registerData.ID), nil, adminToken)
	require.Equal(t, 0, approveResp.Code, "审批失败: %s", approveResp.Message)

	// 3. 登录
	loginReq := map[string]string{
		"email":    email,
		"password": "Test1234",
	}
	loginResp := PostJSON(t, BaseURL+"/users/login", loginReq, "")
	require.Equal(t, 0, loginResp.Code, "登录失败: %s", loginResp.Message)

	var loginData LoginData
	err = json.Unmarshal(loginResp.Data, &loginData)
	require.NoError(t, err, "解析登录响应失败")

	return email, loginData.AccessToken
}

// AddTestBook 入库测试图书并返回图书ID
//
// 教学说明：
// 封装了图书入库流程（需要馆员权限），返回bookID供后续测试使用
func AddTestBook(t *testing.T, adminToken string, title string, copies int) uint {
	bookReq := map[string]interface{}{
		"isbn":         GenerateTestISBN(),
		"title":        title,
		"author":       "测试作者",
		"publisher":    "测试出版社",
		"publish_year": 2020,
		"category":     "计算机",
		"language":     "中文",
		"description":  "集成测试用图书",
		"total_copies": copies,
	}

	bookResp := PostJSON(t, BaseURL+"/books", bookReq, adminToken)
	require.Equal(t, 0, bookResp.Code, "图书入库失败: %s", bookResp.Message)

	var bookData BookData
	err := json.Unmarshal(bookResp.Data, &bookData)
	require.NoError(t, err, "解析图书响应失败")

	return bookData.ID
}
