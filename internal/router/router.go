package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/trackline-dev/trackline/internal/handlers"
	"github.com/trackline-dev/trackline/internal/middleware"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:3001", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws/rooms/:room_id", middleware.AuthMiddleware(), handlers.WebSocket)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.CreateUser)
			auth.POST("/login", handlers.LoginUser)
			auth.POST("/logout", handlers.LogoutUser)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
			auth.PATCH("/me", middleware.AuthMiddleware(), handlers.UpdateUser)
			auth.DELETE("/me", middleware.AuthMiddleware(), handlers.DeleteUser)
		}

		users := api.Group("/users", middleware.AuthMiddleware())
		{
			users.GET("", handlers.ListUsers)
			users.GET("/:user_id", handlers.GetUser)
		}

		// Projects are publicly readable; writes require authentication
		api.GET("/projects", handlers.ListProjects)
		api.GET("/projects/:project_id", handlers.GetProject)

		projects := api.Group("/projects", middleware.AuthMiddleware())
		{
			projects.POST("", handlers.CreateProject)
			projects.PATCH("/:project_id", handlers.UpdateProject)
			projects.DELETE("/:project_id", handlers.DeleteProject)
		}

		issues := api.Group("/issues", middleware.AuthMiddleware())
		{
			issues.POST("", handlers.CreateIssue)
			issues.GET("", handlers.ListIssues)
			issues.GET("/:issue_id", handlers.GetIssue)
			issues.PATCH("/:issue_id", handlers.UpdateIssue)
			issues.DELETE("/:issue_id", handlers.DeleteIssue)

			// Comment endpoints
			issues.GET("/:issue_id/comments", handlers.ListComments)
			issues.POST("/:issue_id/comments", handlers.CreateComment)
		}

		comments := api.Group("/comments", middleware.AuthMiddleware())
		{
			comments.DELETE("/:comment_id", handlers.DeleteComment)
		}

		notifications := api.Group("/notifications", middleware.AuthMiddleware())
		{
			notifications.GET("", handlers.ListNotifications)
			notifications.POST("/read-all", handlers.MarkAllNotificationsRead)
			notifications.POST("/:notification_id/read", handlers.MarkNotificationRead)
			notifications.POST("/:notification_id/unread", handlers.MarkNotificationUnread)
		}

		rooms := api.Group("/chat/rooms", middleware.AuthMiddleware())
		{
			rooms.GET("", handlers.ListChatRooms)
			rooms.POST("", handlers.CreateChatRoom)
			rooms.POST("/:room_id/join", handlers.JoinChatRoom)
			rooms.POST("/:room_id/leave", handlers.LeaveChatRoom)
			rooms.GET("/:room_id/messages", handlers.ListMessages)
			rooms.POST("/:room_id/messages", handlers.CreateMessage)
			rooms.POST("/:room_id/messages/:message_id/read", handlers.MarkMessageRead)
		}
	}

	return r
}
