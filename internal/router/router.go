package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prasobpai/internal/handler"
)

// SetupRouter 配置 Gin 引擎和路由。
func SetupRouter(api *handler.API) *gin.Engine {
	r := gin.Default()

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/view", api.RecordView)
		apiGroup.GET("/stats", api.Stats)

		apiGroup.POST("/stories", api.CreateStory)
		apiGroup.GET("/stories/:id", api.GetStory)
	}

	return r
}
