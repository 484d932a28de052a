package dao

import (
	"docchat-backend/model"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
)

func setupDB(t *testing.T) {
	t.Helper()
	if err := Init(sqlite.Open(":memory:")); err != nil {
		t.Fatalf("初始化测试数据库失败: %v", err)
	}
}

func newConversation(t *testing.T, title string) *model.Conversation {
	t.Helper()
	conversation := &model.Conversation{
		ID:    uuid.New().String(),
		Title: title,
	}
	if err := CreateConversation(conversation); err != nil {
		t.Fatalf("创建会话失败: %v", err)
	}
	return conversation
}

// TestMessageOrdering 验证会话内消息按创建时间升序返回
func TestMessageOrdering(t *testing.T) {
	setupDB(t)
	conversation := newConversation(t, "test")

	base := time.Now().Add(-time.Hour)
	texts := []string{"first", "second", "third"}
	for i, text := range texts {
		msg := &model.Message{
			ConversationID: conversation.ID,
			Role:           model.RoleUser,
			Message:        text,
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		}
		if err := SaveMessage(msg); err != nil {
			t.Fatalf("写入消息失败: %v", err)
		}
	}

	messages, err := GetMessagesByConversationID(conversation.ID)
	if err != nil {
		t.Fatalf("查询消息失败: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("消息数 = %d, 期望 3", len(messages))
	}
	for i, text := range texts {
		if messages[i].Message != text {
			t.Errorf("messages[%d] = %q, 期望 %q", i, messages[i].Message, text)
		}
	}
}

// TestConversationOrdering 验证会话列表按更新时间降序返回
func TestConversationOrdering(t *testing.T) {
	setupDB(t)

	older := newConversation(t, "older")
	newer := newConversation(t, "newer")

	// 向较新的会话追加消息以刷新更新时间
	if err := SaveMessage(&model.Message{
		ConversationID: newer.ID,
		Role:           model.RoleUser,
		Message:        "hi",
		CreatedAt:      time.Now().Add(time.Minute),
	}); err != nil {
		t.Fatalf("写入消息失败: %v", err)
	}

	conversations, err := GetConversations()
	if err != nil {
		t.Fatalf("查询会话失败: %v", err)
	}
	if len(conversations) != 2 {
		t.Fatalf("会话数 = %d, 期望 2", len(conversations))
	}
	if conversations[0].ID != newer.ID {
		t.Errorf("首位会话 = %q, 期望最近更新的 %q", conversations[0].Title, "newer")
	}
	if conversations[1].ID != older.ID {
		t.Errorf("末位会话 = %q, 期望 %q", conversations[1].Title, "older")
	}
}

// TestSaveMessageTouchesConversation 验证追加消息刷新会话的更新时间
func TestSaveMessageTouchesConversation(t *testing.T) {
	setupDB(t)
	conversation := newConversation(t, "test")

	createdAt := time.Now().Add(time.Hour)
	if err := SaveMessage(&model.Message{
		ConversationID: conversation.ID,
		Role:           model.RoleAssistant,
		Message:        "answer",
		CreatedAt:      createdAt,
	}); err != nil {
		t.Fatalf("写入消息失败: %v", err)
	}

	updated, err := GetConversationByID(conversation.ID)
	if err != nil {
		t.Fatalf("查询会话失败: %v", err)
	}
	if !updated.UpdatedAt.After(conversation.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, 应晚于创建时的 %v", updated.UpdatedAt, conversation.UpdatedAt)
	}
}

// TestDeleteConversation 验证单个删除会同时清理其消息
func TestDeleteConversation(t *testing.T) {
	setupDB(t)
	keep := newConversation(t, "keep")
	drop := newConversation(t, "drop")

	for _, conv := range []*model.Conversation{keep, drop} {
		if err := SaveMessage(&model.Message{
			ConversationID: conv.ID,
			Role:           model.RoleUser,
			Message:        "hi",
		}); err != nil {
			t.Fatalf("写入消息失败: %v", err)
		}
	}

	if err := DeleteConversation(drop.ID); err != nil {
		t.Fatalf("删除会话失败: %v", err)
	}

	if _, err := GetConversationByID(drop.ID); err == nil {
		t.Error("被删除的会话仍可查询")
	}
	messages, err := GetMessagesByConversationID(drop.ID)
	if err != nil {
		t.Fatalf("查询消息失败: %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("被删除会话残留 %d 条消息", len(messages))
	}

	// 其他会话不受影响
	kept, err := GetMessagesByConversationID(keep.ID)
	if err != nil {
		t.Fatalf("查询消息失败: %v", err)
	}
	if len(kept) != 1 {
		t.Errorf("保留会话的消息数 = %d, 期望 1", len(kept))
	}
}

// TestDeleteAllConversations 验证批量删除后两张表均为空
func TestDeleteAllConversations(t *testing.T) {
	setupDB(t)

	for i := 0; i < 3; i++ {
		conversation := newConversation(t, "test")
		if err := SaveMessage(&model.Message{
			ConversationID: conversation.ID,
			Role:           model.RoleUser,
			Message:        "hi",
		}); err != nil {
			t.Fatalf("写入消息失败: %v", err)
		}
	}

	if err := DeleteAllConversations(); err != nil {
		t.Fatalf("批量删除失败: %v", err)
	}

	conversations, err := GetConversations()
	if err != nil {
		t.Fatalf("查询会话失败: %v", err)
	}
	if len(conversations) != 0 {
		t.Errorf("会话表残留 %d 行", len(conversations))
	}

	var messageCount int64
	if err := DB.Model(&model.Message{}).Count(&messageCount).Error; err != nil {
		t.Fatalf("统计消息失败: %v", err)
	}
	if messageCount != 0 {
		t.Errorf("消息表残留 %d 行", messageCount)
	}
}
