package filesearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func sseChunk(text string) string {
	payload := map[string]any{
		"candidates": []map[string]any{
			{
				"content": map[string]any{
					"parts": []map[string]string{
						{"text": text},
					},
				},
			},
		},
	}
	data, _ := json.Marshal(payload)
	return "data: " + string(data) + "\n\n"
}

// TestGenerateStreamOrder 验证片段按序送达且拼接为完整回答
func TestGenerateStreamOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/gemini-2.5-flash:streamGenerateContent" {
			t.Errorf("未预期的请求路径: %s", r.URL.Path)
		}

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, sseChunk("안녕"))
		fmt.Fprint(w, sseChunk("하세요 "))
		fmt.Fprint(w, sseChunk("world"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	var fragments []string
	err := client.GenerateStream(context.Background(), GenerateRequest{
		Model:  "gemini-2.5-flash",
		Prompt: "hi",
	}, func(ctx context.Context, chunk []byte) error {
		fragments = append(fragments, string(chunk))
		return nil
	})
	if err != nil {
		t.Fatalf("GenerateStream 返回错误: %v", err)
	}

	if len(fragments) != 3 {
		t.Fatalf("片段数 = %d, 期望 3", len(fragments))
	}
	if got := strings.Join(fragments, ""); got != "안녕하세요 world" {
		t.Errorf("完整回答 = %q", got)
	}
}

// TestGenerateStreamRetrievalTool 验证指定文档库时请求挂载检索工具
func TestGenerateStreamRetrievalTool(t *testing.T) {
	var body []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		fmt.Fprint(w, sseChunk("ok"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	err := client.GenerateStream(context.Background(), GenerateRequest{
		Model:     "gemini-2.5-flash",
		Prompt:    "hi",
		StoreName: "fileSearchStores/s1",
	}, func(ctx context.Context, chunk []byte) error { return nil })
	if err != nil {
		t.Fatalf("GenerateStream 返回错误: %v", err)
	}

	if !strings.Contains(string(body), "fileSearchStores/s1") {
		t.Errorf("请求体未包含文档库名称: %s", body)
	}
	if !strings.Contains(string(body), "fileSearch") {
		t.Errorf("请求体未挂载检索工具: %s", body)
	}
}

// TestGenerateStreamPlainMode 验证未指定文档库时不挂载任何工具
func TestGenerateStreamPlainMode(t *testing.T) {
	var body []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		fmt.Fprint(w, sseChunk("ok"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	err := client.GenerateStream(context.Background(), GenerateRequest{
		Model:  "gemini-2.5-flash",
		Prompt: "hi",
	}, func(ctx context.Context, chunk []byte) error { return nil })
	if err != nil {
		t.Fatalf("GenerateStream 返回错误: %v", err)
	}

	if strings.Contains(string(body), "tools") {
		t.Errorf("无检索模式的请求不应包含工具: %s", body)
	}
}

// TestGenerateStreamCallbackError 验证回调错误会中止流
func TestGenerateStreamCallbackError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sseChunk("a"))
		fmt.Fprint(w, sseChunk("b"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	calls := 0
	err := client.GenerateStream(context.Background(), GenerateRequest{
		Model:  "gemini-2.5-flash",
		Prompt: "hi",
	}, func(ctx context.Context, chunk []byte) error {
		calls++
		return fmt.Errorf("client gone")
	})
	if err == nil {
		t.Fatal("回调出错时应返回错误")
	}
	if calls != 1 {
		t.Errorf("回调次数 = %d, 期望 1", calls)
	}
}

// TestGenerateStreamStatusError 验证流开始前的失败携带错误分类
func TestGenerateStreamStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error": {"message": "quota exceeded"}}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	err := client.GenerateStream(context.Background(), GenerateRequest{
		Model:  "gemini-2.5-flash",
		Prompt: "hi",
	}, func(ctx context.Context, chunk []byte) error { return nil })

	if Kind(err) != KindRateLimited {
		t.Errorf("Kind = %v, 期望 KindRateLimited", Kind(err))
	}
}
