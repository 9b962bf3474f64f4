package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/taskflow/taskflow-backend/handlers"
	"github.com/taskflow/taskflow-backend/model"
)

func SetupRoutes(
	router *gin.Engine,
	environment string,
	gate *handlers.AuthGate,
	authHandler *handlers.AuthHandler,
	usersHandler *handlers.UsersHandler,
	tasksHandler *handlers.TasksHandler,
	oauthHandler *handlers.OAuthHandler,
) {
	api := router.Group("/api")
	api.GET("/health", handlers.HealthHandler(environment))

	users := api.Group("/users")
	{
		users.POST("/register", authHandler.RegisterHandler)
		users.POST("/login", authHandler.LoginHandler)

		protected := users.Group("/")
		protected.Use(gate.Handler())
		protected.GET("/me", usersHandler.ProfileHandler)
		protected.PUT("/me", usersHandler.UpdateProfileHandler)
		protected.POST("/change-password", usersHandler.ChangePasswordHandler)
	}

	auth := api.Group("/auth")
	{
		auth.GET("/google", oauthHandler.RedirectHandler(model.ProviderGoogle))
		auth.GET("/google/callback", oauthHandler.CallbackHandler(model.ProviderGoogle))
		auth.GET("/github", oauthHandler.RedirectHandler(model.ProviderGithub))
		auth.GET("/github/callback", oauthHandler.CallbackHandler(model.ProviderGithub))
	}

	tasks := api.Group("/tasks")
	tasks.Use(gate.Handler())
	{
		tasks.GET("", tasksHandler.ListTasksHandler)
		tasks.POST("", tasksHandler.NewTaskHandler)
		tasks.GET("/debug", tasksHandler.DebugHandler)
		tasks.GET("/:id", tasksHandler.GetTaskHandler)
		tasks.PUT("/:id", tasksHandler.UpdateTaskHandler)
		tasks.DELETE("/:id", tasksHandler.DeleteTaskHandler)
	}
}
