package filesearch

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const (
	ssePrefix = "data:"

	// SSE单行缓冲上限
	maxSSELineSize = 1 << 20
)

// GenerateRequest 流式生成请求
// StoreName 非空时挂载文档检索工具，限定在该文档库内检索
type GenerateRequest struct {
	Model     string
	Prompt    string
	StoreName string
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// StreamFunc 按序接收生成的文本片段，全部片段拼接后即为完整回答
type StreamFunc func(ctx context.Context, chunk []byte) error

// GenerateStream 调用生成服务并逐片段转发输出
func (c *Client) GenerateStream(ctx context.Context, genReq GenerateRequest, fn StreamFunc) error {
	const op = "generate stream"

	payload := map[string]any{
		"contents": []map[string]any{
			{
				"parts": []map[string]string{
					{"text": genReq.Prompt},
				},
			},
		},
	}

	if genReq.StoreName != "" {
		payload["tools"] = []map[string]any{
			{
				"fileSearch": map[string]any{
					"fileSearchStoreNames": []string{genReq.StoreName},
				},
			},
		}
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %v", err)
	}

	url := fmt.Sprintf("%s/%s/models/%s:streamGenerateContent?alt=sse", c.baseURL, apiVersion, genReq.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payloadJSON))
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuthHeaders(req)

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return networkError(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(op, resp.StatusCode, responseError(resp.Body))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), maxSSELineSize)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, ssePrefix) {
			continue
		}

		data := strings.TrimSpace(strings.TrimPrefix(line, ssePrefix))
		if data == "" {
			continue
		}

		var chunk generateResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return fmt.Errorf("failed to decode stream chunk: %v", err)
		}

		text := chunkText(&chunk)
		if text == "" {
			continue
		}

		if err := fn(ctx, []byte(text)); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return networkError(op, err)
	}
	return nil
}

func chunkText(chunk *generateResponse) string {
	if len(chunk.Candidates) == 0 {
		return ""
	}
	parts := chunk.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return ""
	}
	return parts[0].Text
}
