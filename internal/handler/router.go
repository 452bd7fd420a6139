package handler

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/hottakes-api/internal/middleware"
	"github.com/yourusername/hottakes-api/pkg/logger"
)

// RouterDeps - все, что нужно для сборки маршрутов
type RouterDeps struct {
	Auth        *AuthHandler
	Hottakes    *HottakeHandler
	Submissions *SubmissionHandler
	Leaderboard *LeaderboardHandler
	GameDays    *GameDayHandler
	Health      *HealthHandler

	AuthMiddleware *middleware.AuthMiddleware
	RateLimiter    *middleware.RateLimiter

	AllowedOrigins []string
	AdminHeader    string
	TrustedProxies []string
	Log            *logger.Logger
}

// NewRouter собирает gin.Engine со всеми маршрутами /api
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(deps.Log))

	if err := router.SetTrustedProxies(deps.TrustedProxies); err != nil {
		deps.Log.Warn("Не удалось настроить доверенные прокси", "error", err)
	}

	adminHeader := deps.AdminHeader
	if adminHeader == "" {
		adminHeader = middleware.DefaultAdminHeader
	}
	if len(deps.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", adminHeader},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	authMW := deps.AuthMiddleware
	limit := func(cfg middleware.RateLimitConfig) gin.HandlerFunc {
		if deps.RateLimiter == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return deps.RateLimiter.Limit(cfg)
	}

	api := router.Group("/api")
	api.Use(authMW.Identify())
	{
		api.GET("/health", deps.Health.Health)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", limit(middleware.StrictAuthRateLimitConfig()), deps.Auth.Register)
			authGroup.POST("/login", limit(middleware.StrictAuthRateLimitConfig()), deps.Auth.Login)
			authGroup.POST("/forgot-password", limit(middleware.DefaultAuthRateLimitConfig()), deps.Auth.ForgotPassword)
			authGroup.POST("/reset-password", limit(middleware.DefaultAuthRateLimitConfig()), deps.Auth.ResetPassword)
			authGroup.POST("/logout", deps.Auth.Logout)
			authGroup.GET("/me", authMW.RequireAuth(), deps.Auth.Me)
		}

		hottakes := api.Group("/hottakes")
		{
			hottakes.GET("", deps.Hottakes.List)
			hottakes.POST("", authMW.AdminOnly(), deps.Hottakes.Create)
			hottakes.PATCH("/:id", authMW.AdminOnly(), middleware.ExtractUintParam("id", "hottakeID"), deps.Hottakes.UpdateStatus)
		}

		submissions := api.Group("/submissions")
		{
			submissions.GET("", deps.Submissions.List)
			submissions.GET("/:nickname", deps.Submissions.Get)
			submissions.POST("", authMW.RequireAuth(), deps.Submissions.Submit)
		}

		api.GET("/leaderboard", deps.Leaderboard.Get)
		api.GET("/game-days", deps.GameDays.List)

		admin := api.Group("/admin")
		admin.Use(authMW.AdminOnly())
		{
			admin.GET("/leaderboard/export", deps.Leaderboard.Export)

			admin.GET("/game-days", deps.GameDays.List)
			admin.POST("/game-days", deps.GameDays.Create)

			gameDay := admin.Group("/game-days/:id")
			gameDay.Use(middleware.ExtractUintParam("id", "gameDayID"))
			{
				gameDay.PATCH("", deps.GameDays.Update)
				gameDay.DELETE("", deps.GameDays.Delete)
				gameDay.POST("/finalize", deps.GameDays.Finalize)
			}
		}
	}

	return router
}

// requestLogger пишет одну строку на запрос через zap
func requestLogger(log *logger.Logger) gin.HandlerFunc {
	log = log.Named("HTTP")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start).String(),
			"ip", c.ClientIP(),
		}
		switch {
		case status >= 500:
			log.Error("Запрос", fields...)
		case status >= 400:
			log.Warn("Запрос", fields...)
		default:
			log.Debug("Запрос", fields...)
		}
	}
}
