package model

import (
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	// 会话标题的最大长度（rune数）
	maxTitleRunes = 50
)

type Conversation struct {
	ID        string    `gorm:"primarykey;size:36" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// Message 建立联合索引 (conversation_id, created_at)
type Message struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	CreatedAt      time.Time `gorm:"index:idx_conversation_created" json:"created_at"`
	ConversationID string    `gorm:"not null;index:idx_conversation_created;size:36" json:"conversation_id"`
	Role           string    `gorm:"not null" json:"role"`
	Message        string    `gorm:"type:text" json:"message"`
}

func (Message) TableName() string {
	return "chat_history"
}

// TruncateTitle 由首条用户消息生成会话标题
func TruncateTitle(text string) string {
	runes := []rune(text)
	if len(runes) <= maxTitleRunes {
		return text
	}
	return string(runes[:maxTitleRunes]) + "..."
}
