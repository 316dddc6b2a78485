package router

import (
	"finreport-backend/controller"
	"finreport-backend/middleware"

	"github.com/gin-gonic/gin"
)

func Register() *gin.Engine {
	r := gin.Default()
	r.Use(middleware.CORSMiddleware())

	api := r.Group("/api")
	{
		public := api.Group("/user")
		{
			public.POST("/register", controller.UserRegister)
			public.POST("/login", controller.UserLogin)
		}

		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.POST("/session", controller.CreateSession)
			protected.GET("/sessions", controller.GetSessions)
			protected.DELETE("/session/:id", controller.DeleteSession)
			protected.GET("/session/:id/messages", controller.GetSessionMessages)
			protected.PUT("/session/title", controller.UpdateSessionTitle)

			protected.POST("/chat", controller.Chat)

			protected.POST("/document", controller.UploadDocument)
			protected.GET("/documents", controller.GetDocuments)
			protected.DELETE("/document/:id", controller.DeleteDocument)
			protected.POST("/document/:id/reindex", controller.ReindexDocument)

			protected.GET("/audit/logs", controller.GetQueryLogs)
			protected.GET("/audit/stats", controller.GetProviderStats)
			protected.DELETE("/audit/logs", controller.PurgeQueryLogs)
		}
	}

	return r
}
