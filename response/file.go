package response

import "time"

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type UploadResponse struct {
	Success    bool   `json:"success"`
	FileName   string `json:"fileName"`
	TotalFiles int64  `json:"totalFiles"`
	FileID     string `json:"fileId"`
}

type FileResponse struct {
	ID         string    `json:"id"`
	FileName   string    `json:"fileName"`
	FileSize   int64     `json:"fileSize"`
	UploadedAt time.Time `json:"uploadedAt"`
}

type GetFilesResponse struct {
	Count     int            `json:"count"`
	Files     []FileResponse `json:"files"`
	StoreName string         `json:"storeName"`
}

type DeleteFileResponse struct {
	Success    bool   `json:"success"`
	FileName   string `json:"fileName"`
	TotalFiles int64  `json:"totalFiles"`
}
