package controller

import (
	"docchat-backend/service/chat"
	"docchat-backend/service/filesearch"
	"docchat-backend/service/titlegen"
	"docchat-backend/service/upload"
)

var (
	uploadPipeline   *upload.Pipeline
	chatOrchestrator *chat.Orchestrator

	// 标题生成器未配置时为nil
	titleGenerator *titlegen.Generator

	// 进程级文档库句柄，初始化失败时为nil
	store *filesearch.Store
)

// Init 注入控制器依赖，进程启动时调用一次
func Init(pipeline *upload.Pipeline, orchestrator *chat.Orchestrator, titleGen *titlegen.Generator, storeHandle *filesearch.Store) {
	uploadPipeline = pipeline
	chatOrchestrator = orchestrator
	titleGenerator = titleGen
	store = storeHandle
}
