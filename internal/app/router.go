package app

import (
	"bootcamp_backend/docs"
	"bootcamp_backend/internal/config"
	"bootcamp_backend/internal/middleware"
	"bootcamp_backend/internal/model"
	"bootcamp_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/profile", c.auth.GetProfile)
		authGroup.GET("/dashboard", c.progress.Dashboard)

		authGroup.GET("/pathways", c.progress.ListPathways)
		authGroup.GET("/pathways/:id", c.progress.GetPathway)
		authGroup.GET("/pathways/:id/progress", c.progress.GetPathwayProgress)

		authGroup.GET("/modules/:id/state", c.progress.GetModuleState)
		authGroup.GET("/modules/:id/resources", c.resource.ListModuleResources)
		authGroup.POST("/modules/:id/submit", c.progress.SubmitModule)

		authGroup.POST("/resources/:id/start", c.resource.StartResource)
		authGroup.PUT("/resources/:id/progress", c.resource.UpdateResourceProgress)
		authGroup.POST("/resources/:id/complete", c.resource.CompleteResource)
		authGroup.POST("/resources/:id/submissions", c.resource.UploadSubmission)
		authGroup.GET("/resources/:id/submissions", c.resource.ListSubmissions)

		authGroup.GET("/submissions/:id/download", c.resource.DownloadSubmission)
		authGroup.DELETE("/submissions/:id", c.resource.DeleteSubmission)

		authGroup.GET("/achievements", c.achievement.ListAchievements)
		authGroup.GET("/streak", c.achievement.GetStreak)
	}

	adminGroup := router.Group("/api/admin")
	adminGroup.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Instructor, model.Admin))
	{
		adminGroup.GET("/review/queue", c.review.PendingQueue)
		adminGroup.POST("/submissions/:id/review", c.review.ReviewSubmission)

		adminGroup.GET("/students/:userId/modules/:moduleId/state", c.review.StudentModuleState)
		adminGroup.POST("/students/:userId/modules/:moduleId/approve", c.review.ApproveModule)
		adminGroup.POST("/students/:userId/modules/:moduleId/reject", c.review.RejectModule)
	}
}
