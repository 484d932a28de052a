package controller

import (
	"docchat-backend/service/filesearch"
	"errors"
)

var (
	ErrParseRequest = errors.New("failed to parse request")

	ErrNoFileUploaded = errors.New("no file uploaded")
	ErrUploadFile     = errors.New("failed to process uploaded file")
	ErrGetFiles       = errors.New("failed to get files")
	ErrDeleteFile     = errors.New("failed to delete file")
	ErrFileNotFound   = errors.New("file not found")

	ErrCreateConversation      = errors.New("failed to create a conversation")
	ErrGetConversations        = errors.New("failed to get conversations")
	ErrGetConversationMessages = errors.New("failed to get conversation messages")
	ErrDeleteConversation      = errors.New("failed to delete conversation")
	ErrDeleteConversations     = errors.New("failed to delete conversations")
	ErrConversationNotFound    = errors.New("conversation not found")

	ErrCallModel = errors.New("error while calling generative service")
)

// userFacingMessage 按外部服务错误的分类选择面向用户的提示文案
func userFacingMessage(err error) string {
	switch filesearch.Kind(err) {
	case filesearch.KindRateLimited:
		return "API 요청 한도를 초과했습니다. 잠시 후 다시 시도해주세요."
	case filesearch.KindInvalidCredential:
		return "API 키가 유효하지 않습니다. 서버 설정을 확인해주세요."
	case filesearch.KindUnavailable:
		return "서비스를 일시적으로 사용할 수 없습니다. 잠시 후 다시 시도해주세요."
	case filesearch.KindNetworkError:
		return "네트워크 연결 오류입니다. 인터넷 연결을 확인해주세요."
	default:
		return "요청 처리 중 오류가 발생했습니다."
	}
}
