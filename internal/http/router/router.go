package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vkaryagin/freelance-market/internal/config"
	"github.com/vkaryagin/freelance-market/internal/http/handlers"
	"github.com/vkaryagin/freelance-market/internal/http/middleware"
	"github.com/vkaryagin/freelance-market/internal/metrics"
	"github.com/vkaryagin/freelance-market/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	financeHandler *handlers.FinanceHandler,
	withdrawalHandler *handlers.WithdrawalHandler,
	orderHandler *handlers.OrderHandler,
	applicationHandler *handlers.ApplicationHandler,
	disputeHandler *handlers.DisputeHandler,
	notificationHandler *handlers.NotificationHandler,
	mediaHandler *handlers.MediaHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.StaticFS("/media", http.Dir(cfg.MediaStoragePath))

	api := r.Group("/api/v1")

	mutationRateLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)

	// Публичные маршруты
	api.GET("/orders", orderHandler.List)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/orders/my", orderHandler.ListMine)
		protected.GET("/orders/:id", middleware.UUIDValidator("id"), orderHandler.Get)
		protected.POST("/orders", mutationRateLimit, orderHandler.Create)
		protected.PUT("/orders/:id/status", middleware.UUIDValidator("id"), orderHandler.UpdateStatus)

		protected.POST("/orders/:id/applications", middleware.UUIDValidator("id"), mutationRateLimit, applicationHandler.Create)
		protected.GET("/orders/:id/applications", middleware.UUIDValidator("id"), applicationHandler.ListByOrder)
		protected.PUT("/orders/:id/applications/:applicationId",
			middleware.UUIDValidator("id"), middleware.UUIDValidator("applicationId"), applicationHandler.Respond)

		protected.POST("/legal/applications/:applicationId/view",
			middleware.UUIDValidator("applicationId"), applicationHandler.MarkViewed)

		protected.GET("/finance/balance", financeHandler.GetBalance)
		protected.GET("/finance/transactions", financeHandler.ListTransactions)
		protected.POST("/finance/transactions", mutationRateLimit, financeHandler.CreateTransaction)
		protected.POST("/finance/withdrawal", mutationRateLimit, withdrawalHandler.Create)
		protected.GET("/finance/withdrawal", withdrawalHandler.List)

		protected.POST("/disputes", mutationRateLimit, disputeHandler.Open)
		protected.GET("/disputes", disputeHandler.List)
		protected.GET("/disputes/:id", middleware.UUIDValidator("id"), disputeHandler.Get)
		protected.POST("/disputes/:id/messages", middleware.UUIDValidator("id"), disputeHandler.AddMessage)

		protected.GET("/notifications", notificationHandler.List)
		protected.GET("/notifications/unread/count", notificationHandler.CountUnread)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.PUT("/notifications/:id/read", middleware.UUIDValidator("id"), notificationHandler.MarkAsRead)

		protected.POST("/media/attachments", mutationRateLimit, mediaHandler.Upload)
	}

	// Админские маршруты
	admin := api.Group("/")
	admin.Use(middleware.AuthMiddleware(tokenManager), middleware.RequireAdmin())
	{
		admin.GET("/finance/stats", financeHandler.GetStats)
		admin.GET("/finance/withdrawal/all", withdrawalHandler.ListAll)
		admin.PUT("/finance/withdrawal/:id", middleware.UUIDValidator("id"), withdrawalHandler.Process)

		admin.GET("/disputes/all", disputeHandler.ListAll)
		admin.PUT("/disputes/:id/resolve", middleware.UUIDValidator("id"), disputeHandler.Resolve)

		admin.POST("/legal/process-ignored", applicationHandler.ProcessIgnored)
	}

	return r
}
