package dao

import (
	"docchat-backend/model"
	"errors"

	"gorm.io/gorm"
)

func SaveFile(file *model.File) error {
	return DB.Create(file).Error
}

func GetFiles() ([]model.File, error) {
	var files []model.File
	if err := DB.Order("uploaded_at DESC").
		Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

func GetFileByID(fileID string) (*model.File, error) {
	var file model.File
	if err := DB.Where("id = ?", fileID).
		First(&file).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

func GetFileByName(fileName string) (*model.File, error) {
	var file model.File
	if err := DB.Where("file_name = ?", fileName).
		First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &file, nil
}

func DeleteFileByID(fileID string) error {
	return DB.Where("id = ?", fileID).
		Delete(&model.File{}).Error
}

// UpdateFileDocumentName 在重新导入后刷新外部文档标识
func UpdateFileDocumentName(fileID, documentName string) error {
	return DB.Model(&model.File{}).
		Where("id = ?", fileID).
		Update("document_name", documentName).Error
}

func CountFiles() (int64, error) {
	var count int64
	if err := DB.Model(&model.File{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
