package dao

import (
	"docchat-backend/model"

	"gorm.io/gorm"
)

func CreateConversation(conversation *model.Conversation) error {
	return DB.Create(conversation).Error
}

func GetConversations() ([]model.Conversation, error) {
	var conversations []model.Conversation
	if err := DB.Order("updated_at DESC").
		Find(&conversations).Error; err != nil {
		return nil, err
	}
	return conversations, nil
}

func GetConversationByID(conversationID string) (*model.Conversation, error) {
	var conversation model.Conversation
	if err := DB.Where("id = ?", conversationID).
		First(&conversation).Error; err != nil {
		return nil, err
	}
	return &conversation, nil
}

func GetMessagesByConversationID(conversationID string) ([]model.Message, error) {
	var messages []model.Message
	if err := DB.Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// SaveMessage 追加消息并刷新会话的更新时间
func SaveMessage(message *model.Message) error {
	return DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}

		return tx.Model(&model.Conversation{}).
			Where("id = ?", message.ConversationID).
			Update("updated_at", message.CreatedAt).Error
	})
}

func UpdateConversationTitle(conversationID, title string) error {
	return DB.Model(&model.Conversation{}).
		Where("id = ?", conversationID).
		Update("title", title).Error
}

func DeleteConversation(conversationID string) error {
	return DB.Transaction(func(tx *gorm.DB) error {
		// 先删除会话内的对话记录，底层存储不保证级联删除
		if err := tx.Where("conversation_id = ?", conversationID).
			Delete(&model.Message{}).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", conversationID).
			Delete(&model.Conversation{}).Error
	})
}

func DeleteAllConversations() error {
	return DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").
			Delete(&model.Message{}).Error; err != nil {
			return err
		}

		return tx.Where("1 = 1").
			Delete(&model.Conversation{}).Error
	})
}
