package controller

import (
	"docchat-backend/dao"
	"docchat-backend/model"
	"docchat-backend/request"
	"docchat-backend/response"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func CreateConversation(c *gin.Context) {
	var req request.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error(ErrParseRequest.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, response.ErrorResponse{
			Error: ErrParseRequest.Error(),
		})
		return
	}

	conversation := model.Conversation{
		ID:    uuid.New().String(),
		Title: model.TruncateTitle(req.Title),
	}
	if err := dao.CreateConversation(&conversation); err != nil {
		slog.Error(ErrCreateConversation.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.ErrorResponse{
			Error: ErrCreateConversation.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.CreateConversationResponse{
		Success:        true,
		ConversationID: conversation.ID,
	})
}

func GetConversations(c *gin.Context) {
	conversations, err := dao.GetConversations()
	if err != nil {
		slog.Error(ErrGetConversations.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.ErrorResponse{
			Error: ErrGetConversations.Error(),
		})
		return
	}

	resp := response.GetConversationsResponse{
		Conversations: make([]response.ConversationResponse, 0, len(conversations)),
	}
	for _, conv := range conversations {
		resp.Conversations = append(resp.Conversations, response.ConversationResponse{
			ID:        conv.ID,
			Title:     conv.Title,
			CreatedAt: conv.CreatedAt,
			UpdatedAt: conv.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, resp)
}

func GetConversationMessages(c *gin.Context) {
	conversationID := c.Param("id")

	conversation, err := dao.GetConversationByID(conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, response.ErrorResponse{
				Error: ErrConversationNotFound.Error(),
			})
			return
		}

		slog.Error(ErrGetConversationMessages.Error(), "conversation_id", conversationID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.ErrorResponse{
			Error: ErrGetConversationMessages.Error(),
		})
		return
	}

	messages, err := dao.GetMessagesByConversationID(conversationID)
	if err != nil {
		slog.Error(ErrGetConversationMessages.Error(), "conversation_id", conversationID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.ErrorResponse{
			Error: ErrGetConversationMessages.Error(),
		})
		return
	}

	resp := response.GetConversationResponse{
		Conversation: response.ConversationResponse{
			ID:        conversation.ID,
			Title:     conversation.Title,
			CreatedAt: conversation.CreatedAt,
			UpdatedAt: conversation.UpdatedAt,
		},
		Messages: make([]response.MessageResponse, 0, len(messages)),
	}
	for _, m := range messages {
		resp.Messages = append(resp.Messages, response.MessageResponse{
			ID:        m.ID,
			Role:      m.Role,
			Message:   m.Message,
			CreatedAt: m.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, resp)
}

func DeleteConversation(c *gin.Context) {
	conversationID := c.Param("id")
	if err := dao.DeleteConversation(conversationID); err != nil {
		slog.Error(ErrDeleteConversation.Error(), "conversation_id", conversationID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.ErrorResponse{
			Error: ErrDeleteConversation.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse{Success: true})
}

func DeleteAllConversations(c *gin.Context) {
	if err := dao.DeleteAllConversations(); err != nil {
		slog.Error(ErrDeleteConversations.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.ErrorResponse{
			Error: ErrDeleteConversations.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse{Success: true})
}
