package controller

import (
	"docchat-backend/request"
	"docchat-backend/response"
	"docchat-backend/service/titlegen"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

func Chat(c *gin.Context) {
	var req request.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error(ErrParseRequest.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, response.ErrorResponse{
			Error: ErrParseRequest.Error(),
		})
		return
	}

	if err := chatOrchestrator.Run(c, req.ConversationID, req.Message); err != nil {
		slog.Error(ErrCallModel.Error(), "conversation_id", req.ConversationID, "err", err)

		// 流已开始时直接终止，不追加错误载荷
		if !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.ErrorResponse{
				Error: userFacingMessage(err),
			})
		}
		return
	}

	if titleGenerator != nil {
		titleGenerator.Register(titlegen.TitleTask{
			ConversationID: req.ConversationID,
			UserText:       req.Message,
		})
	}
}
