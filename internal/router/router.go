package router

import (
	"log/slog"

	"github.com/cloudwego/hertz/pkg/app/server"

	"github.com/chazo1994/Creatory/internal/handler"
	"github.com/chazo1994/Creatory/internal/middleware"
)

// Handlers groups every HTTP handler of the dev server
type Handlers struct {
	Auth          *handler.AuthHandler
	Workspace     *handler.WorkspaceHandler
	Conversation  *handler.ConversationHandler
	Orchestration *handler.OrchestrationHandler
	Workflow      *handler.WorkflowHandler
	Health        *handler.HealthHandler
}

// Setup sets up all routes
func Setup(h *server.Hertz, handlers Handlers, logger *slog.Logger) {
	// Global middleware
	h.Use(middleware.Recovery())
	h.Use(middleware.Logger(logger))
	h.Use(middleware.CORS())

	// Health check routes (no authentication required)
	h.GET("/ping", handlers.Health.Ping)
	h.GET("/health/ready", handlers.Health.Readiness)
	h.GET("/health/live", handlers.Health.Liveness)

	// API v1 routes
	apiV1 := h.Group("/api/v1")
	{
		// ============ Public routes (no authentication required) ============
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", handlers.Auth.Register)
			auth.POST("/login", handlers.Auth.Login)
		}

		// ============ Protected routes (bearer token required) ============
		authorized := apiV1.Group("")
		authorized.Use(handlers.Auth.AuthMiddleware()...)
		{
			authorized.GET("/auth/me", handlers.Auth.Me)

			workspaces := authorized.Group("/workspaces")
			{
				workspaces.GET("", handlers.Workspace.List)
				workspaces.POST("", handlers.Workspace.Create)
				workspaces.GET("/:id", handlers.Workspace.Get)
			}

			conversations := authorized.Group("/conversations")
			{
				conversations.GET("", handlers.Conversation.List)
				conversations.POST("", handlers.Conversation.Create)
				conversations.GET("/:id/threads", handlers.Conversation.ListThreads)
				conversations.POST("/:id/threads", handlers.Conversation.CreateThread)
				conversations.GET("/:id/threads/:tid/messages", handlers.Conversation.ListMessages)
				conversations.POST("/:id/threads/:tid/messages", handlers.Conversation.CreateMessage)
				conversations.POST("/:id/inject", handlers.Conversation.Inject)
			}

			orchestration := authorized.Group("/orchestration")
			{
				orchestration.POST("/conversations/:cid/threads/:tid/chat", handlers.Orchestration.Chat)
				orchestration.GET("/runs/:id", handlers.Orchestration.GetRun)
				orchestration.GET("/runs/:id/tasks", handlers.Orchestration.ListTasks)
				orchestration.GET("/runs/:id/stream", handlers.Orchestration.Stream)
			}

			workflows := authorized.Group("/workflows")
			{
				workflows.GET("/templates", handlers.Workflow.ListTemplates)
				workflows.POST("/templates", handlers.Workflow.CreateTemplate)
				workflows.GET("/templates/:id", handlers.Workflow.GetTemplate)
				workflows.POST("/templates/:id/run", handlers.Workflow.RunTemplate)
				workflows.GET("/runs/:id", handlers.Workflow.GetRun)
				workflows.GET("/runs/:id/steps", handlers.Workflow.ListSteps)
			}
		}
	}
}
