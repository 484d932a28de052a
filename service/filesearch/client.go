package filesearch

import (
	"bytes"
	"context"
	"docchat-backend/utils"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	apiVersion = "v1beta"

	// 配置 300s 超时时间处理流式输出
	streamTimeout = 300 * time.Second

	defaultPollInterval = 2 * time.Second
	defaultPollAttempts = 150
)

// errOperationPending 导入操作尚未完成，轮询继续
var errOperationPending = errors.New("import operation still pending")

type Store struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// Operation 外部服务的异步导入操作句柄
type Operation struct {
	Name     string `json:"name"`
	Done     bool   `json:"done"`
	Response struct {
		DocumentName string `json:"documentName"`
	} `json:"response"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type uploadedFile struct {
	File struct {
		Name string `json:"name"`
	} `json:"file"`
}

type Client struct {
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	streamClient *http.Client
	pollInterval time.Duration
	pollAttempts uint
}

type ClientOption func(*Client)

func WithPollInterval(interval time.Duration) ClientOption {
	return func(c *Client) {
		c.pollInterval = interval
	}
}

func WithPollAttempts(attempts uint) ClientOption {
	return func(c *Client) {
		c.pollAttempts = attempts
	}
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
		c.streamClient = httpClient
	}
}

func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:      baseURL,
		apiKey:       apiKey,
		httpClient:   utils.DefaultHTTPClient(),
		streamClient: utils.NewHTTPClient(utils.WithTimeout(streamTimeout)),
		pollInterval: defaultPollInterval,
		pollAttempts: defaultPollAttempts,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateStore 创建文档库，进程启动时调用一次
func (c *Client) CreateStore(ctx context.Context, displayName string) (*Store, error) {
	url := fmt.Sprintf("%s/%s/fileSearchStores", c.baseURL, apiVersion)
	payload := map[string]string{"displayName": displayName}

	var store Store
	if err := c.doJSON(ctx, "create store", http.MethodPost, url, payload, &store); err != nil {
		return nil, err
	}
	return &store, nil
}

// ImportDocument 上传文件原始字节并发起异步导入，返回未完成的操作句柄
func (c *Client) ImportDocument(ctx context.Context, store *Store, localPath, displayName, mimeType string) (*Operation, error) {
	fileName, err := c.uploadFile(ctx, localPath, displayName, mimeType)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s/%s:importFile", c.baseURL, apiVersion, store.Name)
	payload := map[string]string{"fileName": fileName}

	var op Operation
	if err := c.doJSON(ctx, "import document", http.MethodPost, url, payload, &op); err != nil {
		return nil, err
	}
	return &op, nil
}

// AwaitCompletion 轮询导入操作直至完成，返回外部文档标识
// 轮询有界：固定间隔、最大次数，ctx取消时终止等待（不会取消远端任务）
func (c *Client) AwaitCompletion(ctx context.Context, op *Operation) (string, error) {
	current := op

	err := retry.Do(
		func() error {
			if current.Done {
				return nil
			}

			url := fmt.Sprintf("%s/%s/%s", c.baseURL, apiVersion, current.Name)
			var polled Operation
			if err := c.doJSON(ctx, "poll operation", http.MethodGet, url, nil, &polled); err != nil {
				return err
			}

			current = &polled
			if !current.Done {
				return errOperationPending
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.pollAttempts),
		retry.Delay(c.pollInterval),
		retry.DelayType(retry.FixedDelay),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, errOperationPending)
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return "", err
	}

	if current.Error != nil {
		return "", &ServiceError{
			Kind: KindUnknown,
			Op:   "import operation",
			Err:  fmt.Errorf("operation failed with code %d: %s", current.Error.Code, current.Error.Message),
		}
	}

	return current.Response.DocumentName, nil
}

// RemoveDocument 从外部文档库删除文档
func (c *Client) RemoveDocument(ctx context.Context, documentName string) error {
	url := fmt.Sprintf("%s/%s/%s?force=true", c.baseURL, apiVersion, documentName)
	return c.doJSON(ctx, "remove document", http.MethodDelete, url, nil, nil)
}

// uploadFile 以multipart方式上传文件原始字节
func (c *Client) uploadFile(ctx context.Context, localPath, displayName, mimeType string) (string, error) {
	const op = "upload file"

	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open file %s: %v", localPath, err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	metadata := map[string]map[string]string{
		"file": {
			"displayName": displayName,
			"mimeType":    mimeType,
		},
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("failed to marshal file metadata: %v", err)
	}

	metadataHeader := textproto.MIMEHeader{}
	metadataHeader.Set("Content-Type", "application/json; charset=utf-8")
	metadataPart, err := writer.CreatePart(metadataHeader)
	if err != nil {
		return "", fmt.Errorf("failed to create metadata part: %v", err)
	}
	if _, err := metadataPart.Write(metadataJSON); err != nil {
		return "", fmt.Errorf("failed to write metadata part: %v", err)
	}

	mediaHeader := textproto.MIMEHeader{}
	mediaHeader.Set("Content-Type", mimeType)
	mediaPart, err := writer.CreatePart(mediaHeader)
	if err != nil {
		return "", fmt.Errorf("failed to create media part: %v", err)
	}
	if _, err := io.Copy(mediaPart, file); err != nil {
		return "", fmt.Errorf("failed to write media part: %v", err)
	}

	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize multipart body: %v", err)
	}

	url := fmt.Sprintf("%s/upload/%s/files?uploadType=multipart", c.baseURL, apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "multipart/related; boundary="+writer.Boundary())
	c.setAuthHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", networkError(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", statusError(op, resp.StatusCode, responseError(resp.Body))
	}

	var uploaded uploadedFile
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %v", err)
	}

	return uploaded.File.Name, nil
}

func (c *Client) doJSON(ctx context.Context, op, method, url string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		payloadJSON, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %v", err)
		}
		body = bytes.NewReader(payloadJSON)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setAuthHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return networkError(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return statusError(op, resp.StatusCode, responseError(resp.Body))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %v", err)
	}
	return nil
}

func (c *Client) setAuthHeaders(req *http.Request) {
	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")
}

func responseError(body io.Reader) error {
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return errors.New("request rejected")
	}

	var apiError struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &apiError); err == nil && apiError.Error.Message != "" {
		return errors.New(apiError.Error.Message)
	}
	return fmt.Errorf("request rejected: %s", data)
}
