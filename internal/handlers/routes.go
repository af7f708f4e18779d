package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/harentsoaR/medisync-api/internal/metrics"
	"github.com/harentsoaR/medisync-api/internal/middleware"
	"github.com/harentsoaR/medisync-api/internal/utils"
)

type RouterConfig struct {
	Tokens      *utils.TokenService
	Policy      *middleware.Policy
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer // nil disables /metrics
	AuthLimiter *middleware.RateLimiter
	CORSOrigins []string
	Logger      zerolog.Logger
}

// NewRouter assembles the middleware chain and every route.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{middleware.HeaderXRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORSOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSOrigins
	}
	r.Use(cors.New(corsConfig))
	r.Use(middleware.Authenticate(cfg.Tokens, h.Auth, cfg.Logger))

	policy := cfg.Policy
	if policy == nil {
		policy = middleware.DefaultPolicy()
	}
	r.Use(middleware.Enforce(policy))

	r.GET("/health", h.Health)
	if cfg.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	authRoutes := r.Group("/auth")
	if cfg.AuthLimiter != nil {
		authRoutes.Use(cfg.AuthLimiter.Middleware())
	}
	{
		authRoutes.POST("/login", h.Login)
		authRoutes.POST("/signup", h.Signup)
	}

	userRoutes := r.Group("/user")
	{
		userRoutes.POST("", h.CreateUser)
		userRoutes.GET("/all", h.GetAllUsers)
		userRoutes.GET("/doctors", h.GetDoctors)
		userRoutes.GET("/me", h.GetCurrentUser)
		userRoutes.GET("/username/:username", h.GetUserByUsername)
		userRoutes.GET("/:id", h.GetUser)
		userRoutes.PUT("/:id", h.UpdateUser)
		userRoutes.DELETE("/:id", h.DeleteUser)
	}

	appointmentRoutes := r.Group("/appointment")
	{
		appointmentRoutes.POST("", h.CreateAppointment)
		appointmentRoutes.GET("/all", h.GetAppointments)
		appointmentRoutes.GET("/patient", h.GetPatientAppointments)
		appointmentRoutes.GET("/doctor", h.GetDoctorAppointments)
		appointmentRoutes.GET("/:id", h.GetAppointment)
		appointmentRoutes.PUT("/:id", h.UpdateAppointment)
		appointmentRoutes.PATCH("/:id/cancel", h.CancelAppointment)
		appointmentRoutes.DELETE("/:id", h.DeleteAppointment)
	}

	notificationRoutes := r.Group("/notification")
	{
		notificationRoutes.POST("/send", h.SendNotification)
		notificationRoutes.GET("/my", h.GetMyNotifications)
		notificationRoutes.PATCH("/:id/read", h.MarkNotificationRead)
	}

	return r
}

// Health reports liveness and, when configured, store reachability.
func (h *Handler) Health(c *gin.Context) {
	if h.Ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.Ping(ctx); err != nil {
			h.log.Warn().Err(err).Msg("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
