package upload

import (
	"context"
	"docchat-backend/dao"
	"docchat-backend/model"
	"docchat-backend/service/filesearch"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
)

var (
	ErrUnsupportedType = errors.New("only document files are allowed (.txt, .pdf, .md, .csv)")
	ErrDuplicateFile   = errors.New("a file with the same name already exists")
	ErrStoreNotReady   = errors.New("document store is not initialized")
)

var mimeTypes = map[string]string{
	".txt": "text/plain",
	".pdf": "application/pdf",
	".md":  "text/markdown",
	".csv": "text/csv",
}

// Importer 文档库适配器，接口化以便测试替换
type Importer interface {
	ImportDocument(ctx context.Context, store *filesearch.Store, localPath, displayName, mimeType string) (*filesearch.Operation, error)
	AwaitCompletion(ctx context.Context, op *filesearch.Operation) (string, error)
	RemoveDocument(ctx context.Context, documentName string) error
}

// Pipeline 上传管线：校验 → 落盘 → 导入外部文档库 → 记录元数据
type Pipeline struct {
	UploadDir string
	Client    Importer

	// 进程级文档库句柄，启动时创建一次；为nil时处于降级模式
	Store *filesearch.Store
}

func NewPipeline(uploadDir string, client Importer, store *filesearch.Store) *Pipeline {
	return &Pipeline{
		UploadDir: uploadDir,
		Client:    client,
		Store:     store,
	}
}

// Process 处理单个上传请求，返回完全落定的文件记录
// 校验失败不产生任何网络调用；落盘之后的失败保留本地文件以便重试
func (p *Pipeline) Process(ctx context.Context, fileHeader *multipart.FileHeader) (*model.File, error) {
	fileName := DecodeFilename(fileHeader.Filename)

	ext := strings.ToLower(filepath.Ext(fileName))
	mimeType, ok := mimeTypes[ext]
	if !ok {
		return nil, ErrUnsupportedType
	}

	// 文件名唯一性在落盘和外部导入之前检查，重名不得覆盖已有副本
	existing, err := dao.GetFileByName(fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing file: %v", err)
	}
	if existing != nil {
		return nil, ErrDuplicateFile
	}

	stagedPath := filepath.Join(p.UploadDir, fileName)
	if err := stageFile(fileHeader, stagedPath); err != nil {
		return nil, fmt.Errorf("failed to stage uploaded file: %v", err)
	}

	documentName, err := p.importStaged(ctx, stagedPath, fileName, ext, mimeType)
	if err != nil {
		return nil, err
	}

	file := &model.File{
		ID:           uuid.New().String(),
		FileName:     fileName,
		FileSize:     fileHeader.Size,
		DocumentName: documentName,
		MimeType:     mimeType,
	}
	if err := dao.SaveFile(file); err != nil {
		return nil, fmt.Errorf("failed to save file metadata: %v", err)
	}

	return file, nil
}

// Remove 删除文件：先从外部文档库删除，失败时中止元数据删除
func (p *Pipeline) Remove(ctx context.Context, fileID string) (*model.File, error) {
	file, err := dao.GetFileByID(fileID)
	if err != nil {
		return nil, err
	}

	if file.DocumentName != "" {
		if err := p.Client.RemoveDocument(ctx, file.DocumentName); err != nil {
			return nil, err
		}
	}

	if err := dao.DeleteFileByID(fileID); err != nil {
		return nil, fmt.Errorf("failed to delete file metadata: %v", err)
	}

	// 清理本地副本，避免重启时被重新导入
	stagedPath := filepath.Join(p.UploadDir, file.FileName)
	if err := os.Remove(stagedPath); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to remove staged file", "path", stagedPath, "err", err)
	}

	return file, nil
}

// LoadExisting 启动时将uploads目录中已有的文档重新导入新建的文档库
// 单个文件失败仅记录日志并跳过
func (p *Pipeline) LoadExisting(ctx context.Context) {
	entries, err := os.ReadDir(p.UploadDir)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("Failed to scan upload directory", "dir", p.UploadDir, "err", err)
		}
		return
	}

	loaded := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		fileName := entry.Name()
		ext := strings.ToLower(filepath.Ext(fileName))
		mimeType, ok := mimeTypes[ext]
		if !ok {
			slog.Info("Skipping non-document file", "file", fileName)
			continue
		}

		if err := p.reimport(ctx, fileName, ext, mimeType); err != nil {
			slog.Error("Failed to reimport staged file", "file", fileName, "err", err)
			continue
		}

		loaded++
		slog.Info("Reimported staged file", "file", fileName)
	}

	slog.Info("Finished loading staged files", "loaded", loaded)
}

func (p *Pipeline) reimport(ctx context.Context, fileName, ext, mimeType string) error {
	stagedPath := filepath.Join(p.UploadDir, fileName)

	documentName, err := p.importStaged(ctx, stagedPath, fileName, ext, mimeType)
	if err != nil {
		return err
	}

	existing, err := dao.GetFileByName(fileName)
	if err != nil {
		return err
	}
	if existing != nil {
		return dao.UpdateFileDocumentName(existing.ID, documentName)
	}

	info, err := os.Stat(stagedPath)
	if err != nil {
		return err
	}

	return dao.SaveFile(&model.File{
		ID:           uuid.New().String(),
		FileName:     fileName,
		FileSize:     info.Size(),
		DocumentName: documentName,
		MimeType:     mimeType,
	})
}

// importStaged 通过临时工作副本执行外部上传，规避文件名编码问题
// 临时副本在所有退出路径上都会被删除
func (p *Pipeline) importStaged(ctx context.Context, stagedPath, displayName, ext, mimeType string) (string, error) {
	if p.Store == nil {
		return "", ErrStoreNotReady
	}

	tempPath := filepath.Join(p.UploadDir, "temp_"+uuid.New().String()+ext)
	if err := copyFile(stagedPath, tempPath); err != nil {
		return "", fmt.Errorf("failed to create working copy: %v", err)
	}
	defer func() {
		if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
			slog.Error("Failed to delete working copy", "path", tempPath, "err", err)
		}
	}()

	op, err := p.Client.ImportDocument(ctx, p.Store, tempPath, displayName, mimeType)
	if err != nil {
		return "", err
	}

	return p.Client.AwaitCompletion(ctx, op)
}

func stageFile(fileHeader *multipart.FileHeader, dst string) error {
	src, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

// DecodeFilename 修复以latin-1单字节编码送达的UTF-8文件名
// 无法还原为合法UTF-8时原样返回
func DecodeFilename(name string) string {
	decoded, err := charmap.ISO8859_1.NewEncoder().String(name)
	if err != nil || !utf8.ValidString(decoded) {
		return name
	}
	return decoded
}
