package model

import "time"

// File 已导入文档库的文件元数据
// DocumentName 为外部文档库返回的文档标识，仅在导入操作完成后写入
type File struct {
	ID           string    `gorm:"primarykey;size:36" json:"id"`
	FileName     string    `gorm:"not null;uniqueIndex;size:255" json:"file_name"`
	FileSize     int64     `gorm:"not null" json:"file_size"`
	DocumentName string    `gorm:"not null" json:"document_name"`
	MimeType     string    `gorm:"not null" json:"mime_type"`
	UploadedAt   time.Time `gorm:"not null;autoCreateTime;index" json:"uploaded_at"`
}

func (File) TableName() string {
	return "files"
}
