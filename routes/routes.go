package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/chmgroup/mediahub-backend/controllers"
	"github.com/chmgroup/mediahub-backend/middleware"
	"github.com/chmgroup/mediahub-backend/models"
	"github.com/chmgroup/mediahub-backend/ws"
)

func SetupRouter(r *gin.Engine, db *gorm.DB) *gin.Engine {
	r.GET("/ping", controllers.Ping)
	r.GET("/health", controllers.Health)

	// Machine-to-machine surface, guarded by the shared API key.
	webhook := r.Group("/webhook")
	{
		webhook.Use(middleware.RequireAPIKey(), middleware.DBMiddleware(db))
		webhook.POST("/sync", controllers.SyncContent)
		webhook.GET("/status", controllers.SyncStatus)
	}
	r.POST("/reports/jobs/:id/callback", middleware.RequireAPIKey(), controllers.ReportJobCallback)

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/login", middleware.RateLimit(10, time.Minute), controllers.Login)
		auth.POST("/refresh", controllers.RefreshToken)
		auth.GET("/validate-invite", controllers.ValidateInvite)
		auth.POST("/accept-invite", middleware.RateLimit(10, time.Minute), controllers.AcceptInvite)
		auth.GET("/me", middleware.AuthMiddleware(), controllers.Me)

		invites := auth.Group("")
		invites.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.RoleAdmin))
		invites.POST("/invite", controllers.InviteUser)
		invites.GET("/invitations", controllers.ListInvitations)
		invites.DELETE("/invitations/:id", controllers.RevokeInvitation)
	}

	analytics := api.Group("/analytics")
	{
		analytics.Use(middleware.AuthMiddleware(), middleware.DBMiddleware(db))
		analytics.GET("/summary", controllers.AnalyticsSummary)
		analytics.GET("/platforms", controllers.AnalyticsPlatforms)
		analytics.GET("/timeline", controllers.AnalyticsTimeline)
		analytics.GET("/trends", controllers.AnalyticsTrends)
		analytics.GET("/posts/search", controllers.SearchPosts)
		analytics.GET("/clips/search", controllers.SearchClips)
		analytics.GET("/shoots", controllers.AnalyticsShoots)
		analytics.GET("/shoots/:id", controllers.AnalyticsShootDetail)
		analytics.GET("/shoots/:id/transcript", controllers.AnalyticsShootTranscript)
		analytics.GET("/shoots/:id/transcript/download", controllers.DownloadShootTranscript)
		analytics.GET("/doctors", controllers.AnalyticsDoctors)
	}

	clients := api.Group("/clients")
	{
		clients.Use(middleware.AuthMiddleware(), middleware.DBMiddleware(db))
		clients.GET("", controllers.ListClients)
		clients.GET("/:slug", controllers.GetClientBySlug)
		clients.GET("/:slug/projects", controllers.ListClientProjects)
		clients.POST("", middleware.RequireRoles(models.RoleAdmin), controllers.CreateClient)
		clients.POST("/:slug/users", middleware.RequireRoles(models.RoleAdmin), controllers.GrantClientAccess)
		clients.DELETE("/:slug/users/:userId", middleware.RequireRoles(models.RoleAdmin), controllers.RevokeClientAccess)
	}
	api.GET("/kol-groups", middleware.AuthMiddleware(), middleware.DBMiddleware(db), controllers.ListKOLGroups)

	reports := api.Group("/reports")
	{
		reports.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.RoleAdmin, models.RoleEditor))
		reports.POST("/upload", controllers.UploadReportFile)
		reports.GET("/uploads", controllers.ListReportUploads)
		reports.POST("/generate", controllers.GenerateReport)
		reports.GET("/jobs", controllers.ListReportJobs)
		reports.GET("/jobs/:id", controllers.GetReportJob)
		reports.GET("/jobs/:id/status", controllers.GetReportJobStatus)
		reports.GET("/jobs/:id/download", controllers.DownloadReport)
		reports.DELETE("/jobs/:id", middleware.RequireRoles(models.RoleAdmin), controllers.DeleteReportJob)
	}

	chat := api.Group("/chat")
	{
		chat.Use(middleware.AuthMiddleware())
		chat.POST("/query", middleware.RateLimit(30, time.Minute), controllers.ChatQuery)
		chat.GET("/health", controllers.ChatHealth)
		chat.GET("/sources", controllers.ChatSources)
	}

	admin := api.Group("/admin")
	{
		admin.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.RoleAdmin))
		admin.GET("/users", controllers.ListUsers)
		admin.GET("/users/:id", controllers.GetUser)
		admin.PATCH("/users/:id", controllers.UpdateUser)
		admin.DELETE("/users/:id", controllers.DeleteUser)
	}

	r.GET("/ws/reports/:id", ws.HandleReportJobWebSocket)

	return r
}
