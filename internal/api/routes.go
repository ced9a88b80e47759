package api

import (
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all API routes on the gin router.
func registerRoutes(router *gin.Engine, h *handlers) {
	router.GET("/healthz", h.health)

	api := router.Group("/api")
	{
		api.GET("/inventory", h.listInventory)
		api.POST("/inventory", h.addInventory)
		api.GET("/inventory/low", h.lowStock)
		api.PATCH("/inventory/:id", h.updateInventory)

		api.GET("/animals", h.listAnimals)

		api.GET("/tasks", h.listTasks)
		api.POST("/tasks", h.addTask)
		api.POST("/tasks/:id/complete", h.completeTask)
		api.POST("/tasks/:id/status", h.setTaskStatus)
		api.POST("/tasks/:id/assignments", h.assignTask)

		api.GET("/export/:type", h.exportData)
	}
}
