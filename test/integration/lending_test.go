package integration

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 教学说明：借还模块集成测试
//
// 借阅是一个跨三张表的流程（副本计数扣减→台账追加→统计累加），
// 集成测试从API层验证整个流程的最终一致性：
// 借出后可借数下降、台账可查、归还后计数恢复

// TestBorrowReturnFlow 测试完整的借还流程
func TestBorrowReturnFlow(t *testing.T) {
	t.Log("========================================")
	t.Log("测试完整借还流程")
	t.Log("========================================")

	adminToken := AdminToken(t)
	_, readerToken := RegisterApprovedUser(t, "borrow_flow")

	// Step 1: 馆员入库一本2副本的图书
	t.Log("\n➜ Step 1: 图书入库")
	bookID := AddTestBook(t, adminToken, "借还流程测试图书", 2)
	t.Logf("✓ 入库成功，图书ID: %d", bookID)

	// Step 2: 读者借出
	t.Log("\n➜ Step 2: 读者借出")
	borrowReq := map[string]interface{}{"book_id": bookID}
	borrowResp := PostJSON(t, BaseURL+"/borrowings", borrowReq, readerToken)
	require.Equal(t, 0, borrowResp.Code, "借阅失败: %s", borrowResp.Message)

	var borrowData BorrowData
	require.NoError(t, json.Unmarshal(borrowResp.Data, &borrowData))
	assert.NotEmpty(t, borrowData.TicketNo, "应该返回借阅单号")
	assert.NotEmpty(t, borrowData.DueDate, "应该返回应还日期(缺省14天借期)")
	t.Logf("✓ 借出成功，单号: %s, 应还日期: %s", borrowData.TicketNo, borrowData.DueDate)

	// Step 3: 详情页可借数下降
	t.Log("\n➜ Step 3: 验证可借数下降")
	detailResp := GetJSON(t, fmt.Sprintf("%s/books/%d", BaseURL, bookID), "")
	require.Equal(t, 0, detailResp.Code)

	var detail BookData
	require.NoError(t, json.Unmarshal(detailResp.Data, &detail))
	assert.Equal(t, 1, detail.AvailableCopies, "借出后可借数应该从2降到1")
	t.Logf("✓ 可借数: %d/%d", detail.AvailableCopies, detail.TotalCopies)

	// Step 4: 我的借阅列表可见
	t.Log("\n➜ Step 4: 查询我的借阅")
	mineResp := GetJSON(t, BaseURL+"/borrowings/mine", readerToken)
	require.Equal(t, 0, mineResp.Code)

	var mine struct {
		List []struct {
			TicketNo   string `json:"ticket_no"`
			BookID     uint   `json:"book_id"`
			IsReturned bool   `json:"is_returned"`
			IsOverdue  bool   `json:"is_overdue"`
		} `json:"list"`
	}
	require.NoError(t, json.Unmarshal(mineResp.Data, &mine))
	require.NotEmpty(t, mine.List, "借阅列表不应为空")
	assert.Equal(t, borrowData.TicketNo, mine.List[0].TicketNo)
	assert.False(t, mine.List[0].IsReturned)
	assert.False(t, mine.List[0].IsOverdue, "刚借出不应该逾期")
	t.Logf("✓ 借阅列表包含%d条记录", len(mine.List))

	// Step 5: 归还
	t.Log("\n➜ Step 5: 归还")
	returnReq := map[string]interface{}{"book_id": bookID}
	returnResp := PostJSON(t, BaseURL+"/borrowings/return", returnReq, readerToken)
	require.Equal(t, 0, returnResp.Code, "归还失败: %s", returnResp.Message)

	var returnData ReturnData
	require.NoError(t, json.Unmarshal(returnResp.Data, &returnData))
	assert.Equal(t, borrowData.TicketNo, returnData.TicketNo, "归还的应该是刚才那笔借阅")
	assert.False(t, returnData.WasOverdue)
	t.Logf("✓ 归还成功，单号: %s", returnData.TicketNo)

	// Step 6: 可借数恢复
	t.Log("\n➜ Step 6: 验证可借数恢复")
	detailResp2 := GetJSON(t, fmt.Sprintf("%s/books/%d", BaseURL, bookID), "")
	require.Equal(t, 0, detailResp2.Code)

	var detail2 BookData
	require.NoError(t, json.Unmarshal(detailResp2.Data, &detail2))
	assert.Equal(t, 2, detail2.AvailableCopies, "归还后可借数应该恢复到2")

	t.Log("\n========================================")
	t.Log("✅ 完整借还流程测试通过")
	t.Log("========================================")
}

// TestBorrowEdgeCases 测试借阅边界场景
func TestBorrowEdgeCases(t *testing.T) {
	adminToken := AdminToken(t)

	t.Run("副本借完后继续借应失败", func(t *testing.T) {
		_, reader1 := RegisterApprovedUser(t, "edge_reader1")
		_, reader2 := RegisterApprovedUser(t, "edge_reader2")
		bookID := AddTestBook(t, adminToken, "单副本图书", 1)

		borrowReq := map[string]interface{}{"book_id": bookID}
		resp1 := PostJSON(t, BaseURL+"/borrowings", borrowReq, reader1)
		require.Equal(t, 0, resp1.Code, "第一位读者借阅应该成功")

		resp2 := PostJSON(t, BaseURL+"/borrowings", borrowReq, reader2)
		assert.NotEqual(t, 0, resp2.Code, "副本已借完，第二位读者借阅应该失败")

		// 失败借阅不应该把可借数扣成负数
		detailResp := GetJSON(t, fmt.Sprintf("%s/books/%d", BaseURL, bookID), "")
		var detail BookData
		require.NoError(t, json.Unmarshal(detailResp.Data, &detail))
		assert.Equal(t, 0, detail.AvailableCopies)

		t.Logf("✓ 无副本借阅正确返回错误: %s", resp2.Message)
	})

	t.Run("同一读者可借同一本书的多个副本", func(t *testing.T) {
		_, reader := RegisterApprovedUser(t, "edge_reader3")
		bookID := AddTestBook(t, adminToken, "多副本图书", 3)

		borrowReq := map[string]interface{}{"book_id": bookID}
		resp1 := PostJSON(t, BaseURL+"/borrowings", borrowReq, reader)
		require.Equal(t, 0, resp1.Code)
		resp2 := PostJSON(t, BaseURL+"/borrowings", borrowReq, reader)
		require.Equal(t, 0, resp2.Code, "同一读者借第二个副本应该成功")

		var b1, b2 BorrowData
		require.NoError(t, json.Unmarshal(resp1.Data, &b1))
		require.NoError(t, json.Unmarshal(resp2.Data, &b2))
		assert.NotEqual(t, b1.TicketNo, b2.TicketNo, "两笔借阅应该是独立的台账记录")

		// 归还一次只结清最早的一笔
		returnReq := map[string]interface{}{"book_id": bookID}
		returnResp := PostJSON(t, BaseURL+"/borrowings/return", returnReq, reader)
		require.Equal(t, 0, returnResp.Code)

		var returnData ReturnData
		require.NoError(t, json.Unmarshal(returnResp.Data, &returnData))
		assert.Equal(t, b1.TicketNo, returnData.TicketNo, "应该先归还最早的一笔")

		t.Logf("✓ 多副本借阅与最早优先归还验证通过")
	})

	t.Run("从未借阅直接归还应失败", func(t *testing.T) {
		_, reader := RegisterApprovedUser(t, "edge_reader4")
		bookID := AddTestBook(t, adminToken, "未借阅图书", 1)

		returnReq := map[string]interface{}{"book_id": bookID}
		resp := PostJSON(t, BaseURL+"/borrowings/return", returnReq, reader)
		assert.NotEqual(t, 0, resp.Code, "没有未归还借阅时归还应该失败")

		t.Logf("✓ 无借阅归还正确返回错误: %s", resp.Message)
	})

	t.Run("有未归还借阅的图书禁止下架", func(t *testing.T) {
		_, reader := RegisterApprovedUser(t, "edge_reader5")
		bookID := AddTestBook(t, adminToken, "在借图书", 1)

		borrowReq := map[string]interface{}{"book_id": bookID}
		borrowResp := PostJSON(t, BaseURL+"/borrowings", borrowReq, reader)
		require.Equal(t, 0, borrowResp.Code)

		deleteResp := DeleteJSON(t, fmt.Sprintf("%s/books/%d", BaseURL, bookID), adminToken)
		assert.NotEqual(t, 0, deleteResp.Code, "在借图书不应该能下架")

		t.Logf("✓ 在借图书下架正确被拒绝: %s", deleteResp.Message)
	})
}
