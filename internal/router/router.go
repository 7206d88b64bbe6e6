package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/liver-report/internal/middleware"
	"github.com/jwalitptl/liver-report/pkg/metrics"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine   *gin.Engine
	session  *middleware.SessionMiddleware
	apiH     Handler
	healthH  Handler
	metricsH gin.HandlerFunc
	config   RouterConfig
}

type RouterConfig struct {
	RateLimit      rate.Limit
	RateBurst      int
	AllowedOrigins []string
	MetricsPath    string
	MaxBodyBytes   int64
}

func NewRouter(
	logger *zerolog.Logger,
	m *metrics.Metrics,
	session *middleware.SessionMiddleware,
	apiH Handler,
	healthH Handler,
	metricsH gin.HandlerFunc,
	config RouterConfig,
) *Router {
	engine := gin.New()

	r := &Router{
		engine:   engine,
		session:  session,
		apiH:     apiH,
		healthH:  healthH,
		metricsH: metricsH,
		config:   config,
	}

	// Add core middlewares
	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(logger),
		middleware.Logger(logger),
	)
	if m != nil {
		engine.Use(middleware.Metrics(m))
	}

	engine.Use(cors.New(corsConfig(config.AllowedOrigins)))

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  config.RateLimit,
		Burst: config.RateBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return r
}

func corsConfig(origins []string) cors.Config {
	config := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", middleware.HeaderSessionToken},
		ExposeHeaders: []string{"Content-Disposition", middleware.HeaderSessionToken, middleware.HeaderXRequestID},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			config.AllowAllOrigins = true
			return config
		}
	}
	if len(origins) == 0 {
		config.AllowAllOrigins = true
		return config
	}
	config.AllowOrigins = origins
	config.AllowCredentials = true
	return config
}

func (r *Router) Setup() {
	r.healthH.RegisterRoutes(&r.engine.RouterGroup)
	if r.metricsH != nil && r.config.MetricsPath != "" {
		r.engine.GET(r.config.MetricsPath, r.metricsH)
	}

	api := r.engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})
	if r.config.MaxBodyBytes > 0 {
		api.Use(middleware.SizeLimit(r.config.MaxBodyBytes))
	}
	api.Use(r.session.Handle())
	r.apiH.RegisterRoutes(api)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
