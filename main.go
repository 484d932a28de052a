package main

import (
	"context"
	"docchat-backend/config"
	"docchat-backend/controller"
	"docchat-backend/dao"
	"docchat-backend/router"
	"docchat-backend/service/chat"
	"docchat-backend/service/filesearch"
	"docchat-backend/service/titlegen"
	"docchat-backend/service/upload"
	"log/slog"
	"os"
	"time"

	"gorm.io/driver/mysql"
)

const storeInitTimeout = 30 * time.Second

func main() {
	if err := dao.Init(mysql.Open(config.Cfg.MySQL.DSN)); err != nil {
		slog.Error("Failed to initialize database", "err", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(config.Cfg.Upload.Dir, 0o755); err != nil {
		slog.Error("Failed to create upload directory", "dir", config.Cfg.Upload.Dir, "err", err)
		os.Exit(1)
	}

	client := filesearch.NewClient(config.Cfg.Model.BaseURL, config.Cfg.Model.APIKey,
		filesearch.WithPollInterval(time.Duration(config.Cfg.FileSearch.PollInterval)),
		filesearch.WithPollAttempts(config.Cfg.FileSearch.PollAttempts),
	)

	// 文档库初始化失败不中止进程，对话以无检索模式运行
	store := initFileSearchStore(client)

	pipeline := upload.NewPipeline(config.Cfg.Upload.Dir, client, store)
	orchestrator := chat.NewOrchestrator(client, store, config.Cfg.Model.Name)

	var titleGen *titlegen.Generator
	if config.Cfg.Model.TitleModel != "" {
		var err error
		titleGen, err = titlegen.New(
			config.Cfg.Model.APIKey,
			config.Cfg.Model.BaseURL+"/v1beta/openai",
			config.Cfg.Model.TitleModel,
		)
		if err != nil {
			slog.Error("Failed to create title generator", "err", err)
			titleGen = nil
		} else {
			titleGen.Run()
		}
	}

	controller.Init(pipeline, orchestrator, titleGen, store)

	// 将uploads目录中已有的文档重新导入新建的文档库
	if store != nil {
		go pipeline.LoadExisting(context.Background())
	}

	r := router.Register()
	if err := r.Run(":" + config.Cfg.Server.Port); err != nil {
		slog.Error("Server exited", "err", err)
		os.Exit(1)
	}
}

func initFileSearchStore(client *filesearch.Client) *filesearch.Store {
	ctx, cancel := context.WithTimeout(context.Background(), storeInitTimeout)
	defer cancel()

	store, err := client.CreateStore(ctx, config.Cfg.FileSearch.StoreDisplayName)
	if err != nil {
		slog.Error("Failed to initialize file search store, chat runs without retrieval", "err", err)
		return nil
	}

	slog.Info("File search store created", "store", store.Name)
	return store
}
