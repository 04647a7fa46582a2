package app

import (
	"simedu_backend/internal/config"
	"simedu_backend/internal/middleware"
	"simedu_backend/internal/repository"
	"simedu_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config, users *repository.UserRepository) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	a.registerPublicRoutes(router, c)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg, users))
	{
		a.registerSessionRoutes(authGroup, c)
	}

	a.registerAdminRoutes(router, c, cfg, users)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/login", c.auth.Login)
		public.POST("/forgot-password", c.auth.ForgotPassword)
		public.POST("/reset-password", c.auth.ResetPassword)
		public.POST("/demo-request", c.contact.SubmitDemoRequest)
	}
}

// registerSessionRoutes mounts the learner-facing surface: profile,
// course content and the simulation session pipeline.
func (a *App) registerSessionRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/profile", c.auth.GetProfile)

	group.GET("/simulations", c.simulation.ListSimulations)
	group.GET("/simulations/:name/assets", c.simulation.SimulationAssets)
	group.GET("/courses/:id/simulations", c.simulation.CourseSimulations)

	sessions := group.Group("/sessions")
	{
		sessions.POST("/init", c.simulation.InitSession)
		sessions.POST("/turn", c.simulation.SendTurn)
		sessions.POST("/end", c.simulation.EndSession)
		sessions.GET("/:threadId/report", c.simulation.SessionReport)
	}
}

// registerAdminRoutes mounts the tenant administration surface:
// directory, class management and reporting.
func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, cfg *config.Config, users *repository.UserRepository) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg, users), middleware.AdminMiddleware())
	{
		admin.GET("/users", c.user.SearchUsers)
		admin.POST("/users", c.user.CreateUser)
		admin.PUT("/users/:id", c.user.UpdateUser)
		admin.DELETE("/users/:id", c.user.DeleteUser)
		admin.POST("/users/import", c.user.ImportUsers)

		admin.GET("/classes", c.class.ListClasses)
		admin.POST("/classes/assign", c.class.AssignUsers)
		admin.DELETE("/classes/:name", c.class.DeleteClass)
		admin.PUT("/classes/:name/rename", c.class.RenameClass)
		admin.PUT("/classes/:name/dates", c.class.UpdateClassDates)

		reports := admin.Group("/reports")
		{
			reports.GET("/summary", c.report.Summary)
			reports.GET("/monthly", c.report.MonthlySeries)
			reports.GET("/courses", c.report.CourseStats)
			reports.GET("/class", c.report.ClassStats)
			reports.GET("/criteria", c.report.CriterionStats)
			reports.GET("/non-participants", c.report.NonParticipants)
			reports.GET("/popularity", c.report.Popularity)
		}
	}
}
