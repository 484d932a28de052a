package request

type ChatRequest struct {
	Message        string `json:"message" binding:"required"`
	ConversationID string `json:"conversationId" binding:"required"`
}

type CreateConversationRequest struct {
	Title string `json:"title" binding:"required"`
}
