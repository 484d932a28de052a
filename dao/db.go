package dao

import (
	"docchat-backend/model"
	"fmt"

	"gorm.io/gorm"
)

var DB *gorm.DB

// Init 初始化数据库连接并迁移表结构
func Init(dialector gorm.Dialector) error {
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect database: %v", err)
	}

	if err := db.AutoMigrate(
		&model.File{},
		&model.Conversation{},
		&model.Message{},
	); err != nil {
		return fmt.Errorf("failed to migrate tables: %v", err)
	}

	DB = db
	return nil
}
