package chat

import (
	"context"
	"docchat-backend/dao"
	"docchat-backend/model"
	"docchat-backend/service/filesearch"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Generator 生成服务适配器，接口化以便测试替换
type Generator interface {
	GenerateStream(ctx context.Context, genReq filesearch.GenerateRequest, fn filesearch.StreamFunc) error
}

// Orchestrator 对话编排器
// Store 为进程级文档库句柄，初始化失败时为nil，对话降级为无检索模式
type Orchestrator struct {
	Client Generator
	Store  *filesearch.Store
	Model  string
}

func NewOrchestrator(client Generator, store *filesearch.Store, modelName string) *Orchestrator {
	return &Orchestrator{
		Client: client,
		Store:  store,
		Model:  modelName,
	}
}

// Run 执行一轮对话：持久化用户消息 → 流式转发生成结果 → 持久化助手消息
// 流开始前的失败由调用方返回结构化错误；流开始后的失败直接终止流
func (o *Orchestrator) Run(c *gin.Context, conversationID, userText string) error {
	// 用户消息先于模型调用写入；写入失败不中止本轮对话
	userMessage := &model.Message{
		ConversationID: conversationID,
		Role:           model.RoleUser,
		Message:        userText,
	}
	if err := dao.SaveMessage(userMessage); err != nil {
		slog.Error("Failed to persist user message",
			"conversation_id", conversationID,
			"err", err,
		)
	}

	genReq := filesearch.GenerateRequest{
		Model:  o.Model,
		Prompt: userText,
	}
	if o.retrievalReady() {
		genReq.StoreName = o.Store.Name
	}

	relay := newStreamRelay(c.Writer)

	// 客户端断开时取消生成调用
	if err := o.Client.GenerateStream(c.Request.Context(), genReq, relay.Write); err != nil {
		return err
	}

	// 助手消息仅在完整回答收集完成后写入
	// 此处写入失败意味着用户看到了完整回答但记录缺失，仅记录日志
	assistantMessage := &model.Message{
		ConversationID: conversationID,
		Role:           model.RoleAssistant,
		Message:        relay.Answer(),
	}
	if err := dao.SaveMessage(assistantMessage); err != nil {
		slog.Error("Failed to persist assistant message",
			"conversation_id", conversationID,
			"err", err,
		)
	}

	return nil
}

func (o *Orchestrator) retrievalReady() bool {
	if o.Store == nil {
		return false
	}

	count, err := dao.CountFiles()
	if err != nil {
		slog.Warn("Failed to count files, falling back to plain mode", "err", err)
		return false
	}
	return count > 0
}

// streamRelay 将生成的文本片段按序转发给客户端，同时缓冲完整回答
type streamRelay struct {
	writer gin.ResponseWriter
	answer strings.Builder
}

func newStreamRelay(writer gin.ResponseWriter) *streamRelay {
	return &streamRelay{writer: writer}
}

func (r *streamRelay) Write(ctx context.Context, chunk []byte) error {
	if !r.writer.Written() {
		r.writer.Header().Set("Content-Type", "text/plain; charset=utf-8")
		r.writer.WriteHeader(http.StatusOK)
	}

	if _, err := r.writer.Write(chunk); err != nil {
		return err
	}
	r.writer.Flush()

	r.answer.Write(chunk)
	return nil
}

func (r *streamRelay) Answer() string {
	return r.answer.String()
}
