package router

import (
	"docchat-backend/controller"
	"docchat-backend/middleware"
	"net/http"

	"github.com/gin-gonic/gin"
)

func Register() *gin.Engine {
	r := gin.Default()
	r.Use(middleware.CORSMiddleware())

	api := r.Group("/api")
	{
		api.POST("/upload", controller.UploadFile)
		api.GET("/files", controller.GetFiles)
		api.DELETE("/files/:fileId", controller.DeleteFile)

		api.POST("/chat", controller.Chat)

		api.POST("/conversations", controller.CreateConversation)
		api.GET("/conversations", controller.GetConversations)
		api.GET("/conversations/:id", controller.GetConversationMessages)
		api.DELETE("/conversations/:id", controller.DeleteConversation)
		api.DELETE("/conversations", controller.DeleteAllConversations)
	}

	// 其余路径提供静态UI
	r.NoRoute(gin.WrapH(http.FileServer(http.Dir("./public"))))

	return r
}
