package main

import (
	"github.com/gin-gonic/gin"

	"taskloop/api/config"
	"taskloop/api/handlers"
	"taskloop/api/middleware"
	"taskloop/api/store"
	"taskloop/api/utils"
)

// newRouter wires stores, handlers, and middleware into the gin engine.
// activityStore may be nil when activity tracking is disabled.
func newRouter(cfg *config.Config, userStore *store.UserStore, todoStore *store.TodoStore, activityStore *store.ActivityStore, tokens *utils.TokenManager) *gin.Engine {
	authHandlers := handlers.NewAuthHandlers(userStore, tokens, activityStore)
	todoHandlers := handlers.NewTodoHandlers(todoStore, activityStore)
	statsHandlers := handlers.NewStatsHandlers(activityStore)

	r := gin.Default()

	r.Use(middleware.CORSMiddleware(cfg.FEOrigin))

	// Authentication endpoints (no token required)
	r.POST("/signup", authHandlers.Signup)
	r.POST("/login", authHandlers.Login)

	// Protected routes (require a valid bearer token)
	protected := r.Group("/")
	protected.Use(middleware.AuthRequired(tokens))
	{
		protected.GET("/todos", todoHandlers.List)
		protected.POST("/todos", todoHandlers.Create)
		protected.PUT("/todos/:id", todoHandlers.Update)
		protected.DELETE("/todos/:id", todoHandlers.Delete)

		protected.GET("/profile", handlers.Profile)

		statsGroup := protected.Group("/stats")
		{
			statsGroup.GET("/action-counts", statsHandlers.GetActionCountsOverTime)
			statsGroup.GET("/unique-users", statsHandlers.GetUniqueUsersOverTime)
			statsGroup.GET("/top-actions", statsHandlers.GetTopActions)
		}
	}

	return r
}
