package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"freelance/internal/domain"
	"freelance/internal/handler"
	"freelance/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	UserHandler    *handler.UserHandler
	ProjectHandler *handler.ProjectHandler
	PaymentHandler *handler.PaymentHandler
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
	JWTSecret      string
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware. Recovery keeps panics from leaking stack traces
	// to callers; they surface as a plain 500.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	auth := middleware.Auth(deps.JWTSecret)
	adminOnly := middleware.RequireRoles(domain.RoleAdmin)
	clientOnly := middleware.RequireRoles(domain.RoleClient)
	anyRole := middleware.RequireRoles(domain.RoleAdmin, domain.RoleClient)

	api := router.Group("/api")
	{
		// User routes. Registration and recovery are unauthenticated.
		users := api.Group("/users")
		{
			users.POST("/register", deps.UserHandler.Register)
			users.POST("/login", deps.UserHandler.Login)
			users.POST("/forget-password", deps.UserHandler.ForgetPassword)
			users.POST("/reset-password/:token", deps.UserHandler.ResetPassword)
		}

		// Project routes.
		projects := api.Group("/projects", auth)
		{
			projects.POST("/create", adminOnly, deps.ProjectHandler.CreateProject)
			projects.GET("/all", adminOnly, deps.ProjectHandler.GetAllProjects)
			projects.GET("/get-by-id/:projectId", anyRole, deps.ProjectHandler.GetProjectByID)
			projects.PUT("/update/:projectId", adminOnly, deps.ProjectHandler.UpdateProject)
			projects.DELETE("/delete/:projectId", adminOnly, deps.ProjectHandler.DeleteProject)
			projects.POST("/export", adminOnly, deps.ProjectHandler.ExportProjects)
			projects.POST("/import", adminOnly, deps.ProjectHandler.ImportProjects)
		}

		// Payment routes. The webhook authenticates by signature, not by
		// bearer token, so it sits outside the auth group.
		payments := api.Group("/payments")
		{
			payments.POST("/webhook", deps.PaymentHandler.Webhook)
			payments.POST("/initiate", auth, clientOnly, deps.PaymentHandler.InitiatePayment)
			payments.POST("/update", auth, adminOnly, deps.PaymentHandler.UpdatePayment)
			payments.GET("/all", auth, adminOnly, deps.PaymentHandler.GetAllPayments)
			payments.GET("/:paymentId", auth, anyRole, deps.PaymentHandler.GetPayment)
		}
	}

	return router
}
