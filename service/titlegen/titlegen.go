package titlegen

import (
	"bytes"
	"context"
	"docchat-backend/dao"
	"docchat-backend/model"
	"docchat-backend/utils"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	taskChanSize = 100
	workerNum    = 2

	// 仅在会话的首轮对话后细化标题
	maxMessagesForRefine = 2
)

//go:embed prompts/title.txt
var titlePrompt string

type TitleTask struct {
	ConversationID string
	UserText       string
}

// Generator 会话标题生成器，通过生成服务的OpenAI兼容端点调用模型
type Generator struct {
	llm       llms.Model
	taskChan  chan TitleTask
	workerNum int
}

func New(apiKey, baseURL, modelName string) (*Generator, error) {
	llm, err := openai.New(
		openai.WithModel(modelName),
		openai.WithToken(apiKey),
		openai.WithBaseURL(baseURL),
		openai.WithHTTPClient(utils.DefaultHTTPClient()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm client: %v", err)
	}

	return &Generator{
		llm:       llm,
		taskChan:  make(chan TitleTask, taskChanSize),
		workerNum: workerNum,
	}, nil
}

func (g *Generator) Run() {
	ctx := context.Background()
	for i := 1; i <= g.workerNum; i++ {
		go g.work(ctx, i)
	}
}

// Register 注册标题生成任务，队列满时丢弃而非阻塞请求
func (g *Generator) Register(task TitleTask) {
	select {
	case g.taskChan <- task:
	default:
		slog.Warn("Title task queue full, dropping task",
			"conversation_id", task.ConversationID,
		)
	}
}

func (g *Generator) work(ctx context.Context, id int) {
	slog.Info("Starting title worker", "worker_id", id)

	for task := range g.taskChan {
		if err := g.refineTitle(ctx, task); err != nil {
			slog.Error("Failed to refine conversation title",
				"conversation_id", task.ConversationID,
				"err", err,
			)
		}
	}

	slog.Info("Title worker exit", "worker_id", id)
}

func (g *Generator) refineTitle(ctx context.Context, task TitleTask) error {
	messages, err := dao.GetMessagesByConversationID(task.ConversationID)
	if err != nil {
		return err
	}
	if len(messages) > maxMessagesForRefine {
		return nil
	}

	conversation, err := dao.GetConversationByID(task.ConversationID)
	if err != nil {
		return err
	}

	// 标题已被改写时跳过
	if conversation.Title != model.TruncateTitle(task.UserText) {
		return nil
	}

	title, err := g.generateTitle(ctx, task.UserText)
	if err != nil {
		return err
	}
	if title == "" {
		return nil
	}

	return dao.UpdateConversationTitle(task.ConversationID, model.TruncateTitle(title))
}

func (g *Generator) generateTitle(ctx context.Context, userText string) (string, error) {
	tmpl, err := template.New("prompt").Parse(titlePrompt)
	if err != nil {
		return "", fmt.Errorf("failed to parse prompt template: %v", err)
	}

	var buf bytes.Buffer
	data := struct {
		Content string
	}{
		Content: userText,
	}
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %v", err)
	}

	resp, err := llms.GenerateFromSinglePrompt(ctx, g.llm, buf.String())
	if err != nil {
		return "", fmt.Errorf("llm call error: %w", err)
	}

	return strings.TrimSpace(strings.Trim(strings.TrimSpace(resp), `"`)), nil
}
