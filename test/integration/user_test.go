package integration

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 教学说明：用户模块集成测试
//
// 集成测试 vs 单元测试：
// - 单元测试：Mock外部依赖（数据库、Redis），测试单个函数的逻辑
// - 集成测试：使用真实的数据库和Redis，测试完整的API流程
//
// 集成测试的价值：
// 1. 验证各组件协同工作（Handler → UseCase → Service → Repository → Database）
// 2. 发现配置错误（如数据库连接、Wire依赖注入）
// 3. 验证业务流程的完整性
//
// 运行方式：
//   make test-integration   # 需要先启动Docker环境并seed馆员账号
//   go test -v ./test/integration/...

// TestUserRegister 测试读者注册功能
//
// 测试场景：
// 1. 正常注册（初始状态为pending）
// 2. 重复邮箱注册（应失败）
// 3. 密码格式校验
// 4. 邮箱格式校验
func TestUserRegister(t *testing.T) {
	t.Run("正常注册", func(t *testing.T) {
		email := GenerateTestEmail("normal_user")
		registerReq := map[string]string{
			"email":    email,
			"password": "Test1234",
			"nickname": "测试读者",
		}

		resp := PostJSON(t, BaseURL+"/users/register", registerReq, "")
		assert.Equal(t, 0, resp.Code, "注册应该成功")

		var data RegisterData
		err := json.Unmarshal(resp.Data, &data)
		require.NoError(t, err, "解析响应数据失败")

		assert.NotZero(t, data.ID, "用户ID应该大于0")
		assert.Equal(t, email, data.Email, "返回的邮箱应该与请求一致")
		assert.Equal(t, "pending", data.Status, "新注册账号应该是待审批状态")

		t.Logf("✓ 注册成功，用户ID: %d, 状态: %s", data.ID, data.Status)
	})

	t.Run("重复邮箱注册应失败", func(t *testing.T) {
		email := GenerateTestEmail("duplicate_user")
		registerReq := map[string]string{
			"email":    email,
			"password": "Test1234",
			"nickname": "测试读者1",
		}

		resp1 := PostJSON(t, BaseURL+"/users/register", registerReq, "")
		require.Equal(t, 0, resp1.Code, "第一次注册应该成功")

		registerReq["nickname"] = "测试读者2"
		resp2 := PostJSON(t, BaseURL+"/users/register", registerReq, "")

		assert.NotEqual(t, 0, resp2.Code, "重复邮箱注册应该失败")
		assert.Contains(t, resp2.Message, "邮箱", "错误信息应该提示邮箱相关")

		t.Logf("✓ 重复邮箱注册正确返回错误: %s", resp2.Message)
	})

	t.Run("密码过短应失败", func(t *testing.T) {
		registerReq := map[string]string{
			"email":    GenerateTestEmail("short_pwd"),
			"password": "123",
			"nickname": "测试读者",
		}

		resp := PostJSON(t, BaseURL+"/users/register", registerReq, "")
		assert.NotEqual(t, 0, resp.Code, "密码过短应该失败")

		t.Logf("✓ 密码过短正确返回错误: %s", resp.Message)
	})

	t.Run("邮箱格式错误应失败", func(t *testing.T) {
		registerReq := map[string]string{
			"email":    "invalid-email",
			"password": "Test1234",
			"nickname": "测试读者",
		}

		resp := PostJSON(t, BaseURL+"/users/register", registerReq, "")
		assert.NotEqual(t, 0, resp.Code, "邮箱格式错误应该失败")

		t.Logf("✓ 邮箱格式错误正确返回错误: %s", resp.Message)
	})
}

// TestUserApprovalFlow 测试注册审批流程
//
// 测试场景：
// 1. 待审批账号登录应被拒绝
// 2. 馆员审批通过后可以登录
// 3. 馆员驳回后登录仍被拒绝
// 4. 非馆员无权审批
func TestUserApprovalFlow(t *testing.T) {
	adminToken := AdminToken(t)

	t.Run("待审批账号登录应被拒绝", func(t *testing.T) {
		email := GenerateTestEmail("pending_user")
		registerReq := map[string]string{
			"email":    email,
			"password": "Test1234",
			"nickname": "待审批读者",
		}
		registerResp := PostJSON(t, BaseURL+"/users/register", registerReq, "")
		require.Equal(t, 0, registerResp.Code, "注册失败")

		loginReq := map[string]string{"email": email, "password": "Test1234"}
		loginResp := PostJSON(t, BaseURL+"/users/login", loginReq, "")

		assert.NotEqual(t, 0, loginResp.Code, "待审批账号不应该能登录")

		t.Logf("✓ 待审批账号登录被拒绝: %s", loginResp.Message)
	})

	t.Run("审批通过后可以登录", func(t *testing.T) {
		email := GenerateTestEmail("approved_user")
		registerReq := map[string]string{
			"email":    email,
			"password": "Test1234",
			"nickname": "已批准读者",
		}
		registerResp := PostJSON(t, BaseURL+"/users/register", registerReq, "")
		require.Equal(t, 0, registerResp.Code, "注册失败")

		var registerData RegisterData
		require.NoError(t, json.Unmarshal(registerResp.Data, &registerData))

		approveResp := PostJSON(t, fmt.Sprintf("%s/users/%d/approve", BaseURL, registerData.ID), nil, adminToken)
		require.Equal(t, 0, approveResp.Code, "审批失败: %s", approveResp.Message)

		loginReq := map[string]string{"email": email, "password": "Test1234"}
		loginResp := PostJSON(t, BaseURL+"/users/login", loginReq, "")
		assert.Equal(t, 0, loginResp.Code, "审批通过后应该能登录")

		var loginData LoginData
		require.NoError(t, json.Unmarshal(loginResp.Data, &loginData))
		assert.NotEmpty(t, loginData.AccessToken, "应该返回access_token")
		assert.NotEmpty(t, loginData.RefreshToken, "应该返回refresh_token")

		t.Logf("✓ 审批通过后登录成功，用户ID: %d", registerData.ID)
	})

	t.Run("驳回后登录仍被拒绝", func(t *testing.T) {
		email := GenerateTestEmail("rejected_user")
		registerReq := map[string]string{
			"email":    email,
			"password": "Test1234",
			"nickname": "被驳回读者",
		}
		registerResp := PostJSON(t, BaseURL+"/users/register", registerReq, "")
		require.Equal(t, 0, registerResp.Code, "注册失败")

		var registerData RegisterData
		require.NoError(t, json.Unmarshal(registerResp.Data, &registerData))

		rejectResp := PostJSON(t, fmt.Sprintf("%s/users/%d/reject", BaseURL, registerData.ID), nil, adminToken)
		require.Equal(t, 0, rejectResp.Code, "驳回失败: %s", rejectResp.Message)

		loginReq := map[string]string{"email": email, "password": "Test1234"}
		loginResp := PostJSON(t, BaseURL+"/users/login", loginReq, "")
		assert.NotEqual(t, 0, loginResp.Code, "被驳回账号不应该能登录")

		t.Logf("✓ 被驳回账号登录被拒绝: %s", loginResp.Message)
	})

	t.Run("非馆员无权审批", func(t *testing.T) {
		_, readerToken := RegisterApprovedUser(t, "reader")

		email := GenerateTestEmail("victim_user")
		registerReq := map[string]string{
			"email":    email,
			"password": "Test1234",
			"nickname": "待审批读者",
		}
		registerResp := PostJSON(t, BaseURL+"/users/register", registerReq, "")
		require.Equal(t, 0, registerResp.Code, "注册失败")

		var registerData RegisterData
		require.NoError(t, json.Unmarshal(registerResp.Data, &registerData))

		approveResp := PostJSON(t, fmt.Sprintf("%s/users/%d/approve", BaseURL, registerData.ID), nil, readerToken)
		assert.NotEqual(t, 0, approveResp.Code, "普通读者不应该有审批权限")

		t.Logf("✓ 非馆员审批正确被拒绝: %s", approveResp.Message)
	})
}

// TestUserLogin 测试用户登录功能
func TestUserLogin(t *testing.T) {
	email, token := RegisterApprovedUser(t, "login_test")

	t.Run("密码错误应失败", func(t *testing.T) {
		loginReq := map[string]string{
			"email":    email,
			"password": "WrongPassword",
		}

		resp := PostJSON(t, BaseURL+"/users/login", loginReq, "")
		assert.NotEqual(t, 0, resp.Code, "密码错误应该失败")

		t.Logf("✓ 密码错误正确返回错误: %s", resp.Message)
	})

	t.Run("用户不存在应失败", func(t *testing.T) {
		loginReq := map[string]string{
			"email":    "nonexistent@test.com",
			"password": "Test1234",
		}

		resp := PostJSON(t, BaseURL+"/users/login", loginReq, "")
		assert.NotEqual(t, 0, resp.Code, "用户不存在应该失败")

		t.Logf("✓ 用户不存在正确返回错误: %s", resp.Message)
	})

	t.Run("Token可以访问受保护接口", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/profile", token)
		assert.Equal(t, 0, resp.Code, "使用有效Token应该可以查看个人信息")

		t.Logf("✓ Token验证通过，可以访问受保护接口")
	})

	t.Run("无效Token应被拒绝", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/profile", "invalid.jwt.token")
		assert.NotEqual(t, 0, resp.Code, "无效Token应该被拒绝")

		t.Logf("✓ 无效Token正确被拒绝: %s", resp.Message)
	})

	t.Run("读者无权访问馆员接口", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/dashboard", token)
		assert.NotEqual(t, 0, resp.Code, "普通读者不应该能访问仪表盘")

		t.Logf("✓ 读者访问馆员接口正确被拒绝: %s", resp.Message)
	})
}
